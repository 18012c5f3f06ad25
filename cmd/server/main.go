// Command festivald runs the festival coordinator API and its maintenance
// tasks.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/festival-coordinator/internal/config"
	"github.com/iliyamo/festival-coordinator/internal/database"
	"github.com/iliyamo/festival-coordinator/internal/repository"
	"github.com/iliyamo/festival-coordinator/internal/repository/dataapi"
	"github.com/iliyamo/festival-coordinator/internal/repository/memstore"
	"github.com/iliyamo/festival-coordinator/internal/repository/sqlstore"
)

func main() {
	_ = godotenv.Load() // .env is optional

	root := &cobra.Command{
		Use:           "festivald",
		Short:         "Festival trip coordinator backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), importLineupCmd())

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Error("festivald failed")
		os.Exit(1)
	}
}

// openGateway builds the persistence backend selected by STORE_BACKEND.
func openGateway(ctx context.Context, cfg config.Config) (repository.Gateway, error) {
	switch cfg.Store {
	case config.StoreSQL:
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st, err := sqlstore.New(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return st, nil
	case config.StoreDataAPI:
		c := dataapi.New(cfg.DataAPIURL, cfg.DataAPIKey)
		if err := c.Ping(ctx); err != nil {
			return nil, fmt.Errorf("data api unreachable: %w", err)
		}
		return c, nil
	case config.StoreMemory:
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
}
