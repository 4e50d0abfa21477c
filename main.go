package main

import "github.com/kozaktomas/clip-finder/cmd"

func main() {
	cmd.Execute()
}
