package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/clip-finder/internal/config"
	"github.com/kozaktomas/clip-finder/internal/detect"
	"github.com/kozaktomas/clip-finder/internal/identity"
)

var identityImportCmd = &cobra.Command{
	Use:   "import <name> <image>...",
	Short: "Build a reference identity from local images",
	Long: `Run face detection on local images and store the resulting embeddings
as the reference set for the given person.

Images with no detected face are skipped with a warning. If an image shows
several faces, the highest-confidence one is used.

Example:
  clip-finder identity import "Jan Novak" ref1.jpg ref2.jpg ref3.jpg`,
	Args: cobra.MinimumNArgs(2),
	RunE: runIdentityImport,
}

func init() {
	identityCmd.AddCommand(identityImportCmd)
}

func runIdentityImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()

	slug := identity.Slugify(args[0])
	if slug == "" {
		return fmt.Errorf("name %q produces an empty slug", args[0])
	}

	detector := detect.NewClient(cfg.Detector.URL, cfg.Detector.MinScore)

	var vectors [][]float32
	for _, path := range args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read image %s: %w", path, err)
		}

		faces, err := detector.DetectFaces(ctx, data)
		if err != nil {
			return fmt.Errorf("detect faces in %s: %w", path, err)
		}
		if len(faces) == 0 {
			fmt.Printf("Warning: no face found in %s, skipping\n", path)
			continue
		}

		best := faces[0]
		for _, f := range faces[1:] {
			if f.Score > best.Score {
				best = f
			}
		}
		if len(best.Embedding) != cfg.Detector.Dim {
			fmt.Printf("Warning: embedding from %s has dimension %d (want %d), skipping\n",
				path, len(best.Embedding), cfg.Detector.Dim)
			continue
		}
		vectors = append(vectors, best.Embedding)
		fmt.Printf("Loaded face from %s\n", path)
	}

	if len(vectors) == 0 {
		return fmt.Errorf("no usable faces found in %d images", len(args)-1)
	}

	store, closeStore, err := openIdentityStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Save(ctx, slug, cfg.Detector.Dim, vectors); err != nil {
		return fmt.Errorf("save identity %q: %w", slug, err)
	}

	fmt.Printf("Stored %d reference vectors for %q\n", len(vectors), slug)
	return nil
}
