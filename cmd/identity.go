package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/clip-finder/internal/config"
	"github.com/kozaktomas/clip-finder/internal/identity"
	"github.com/kozaktomas/clip-finder/internal/identity/postgres"
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Manage stored reference identities",
	Long: `Manage the stored identity vector sets used to match candidates.

Identities are stored in PostgreSQL when DATABASE_URL is set, otherwise as
JSON files under the identity directory.`,
}

func init() {
	rootCmd.AddCommand(identityCmd)
}

// openIdentityStore selects the backend from the configuration. The returned
// closer must be called on every exit path.
func openIdentityStore(cfg *config.Config) (identity.Store, func(), error) {
	if cfg.Database.URL != "" {
		pool, err := postgres.NewPool(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Migrate(context.Background()); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		return postgres.NewIdentityStore(pool), func() { _ = pool.Close() }, nil
	}

	store, err := identity.NewFileStore(cfg.Identity.Dir)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}
