package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/clip-finder/internal/config"
	"github.com/kozaktomas/clip-finder/internal/identity"
)

var identityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored identities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		store, closeStore, err := openIdentityStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		slugs, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(slugs) == 0 {
			fmt.Println("No identities stored")
			return nil
		}
		for _, slug := range slugs {
			fmt.Println(slug)
		}
		return nil
	},
}

var identityShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a stored identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		store, closeStore, err := openIdentityStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		slug := identity.Slugify(args[0])
		vectors, err := store.Load(cmd.Context(), slug)
		if errors.Is(err, identity.ErrNotFound) {
			return fmt.Errorf("no stored identity %q", slug)
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s: %d reference vectors\n", slug, len(vectors))
		if len(vectors) > 0 {
			fmt.Printf("  dimension: %d\n", len(vectors[0]))
		}
		return nil
	},
}

var identityDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		store, closeStore, err := openIdentityStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		slug := identity.Slugify(args[0])
		err = store.Delete(cmd.Context(), slug)
		if errors.Is(err, identity.ErrNotFound) {
			return fmt.Errorf("no stored identity %q", slug)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %q\n", slug)
		return nil
	},
}

func init() {
	identityCmd.AddCommand(identityListCmd)
	identityCmd.AddCommand(identityShowCmd)
	identityCmd.AddCommand(identityDeleteCmd)
}
