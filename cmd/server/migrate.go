package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/festival-coordinator/internal/config"
	"github.com/iliyamo/festival-coordinator/internal/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back the SQL schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := config.LoadDatabaseURL()
			if err != nil {
				return err
			}
			dir := database.Up
			if args[0] == "down" {
				dir = database.Down
			}
			if err := database.Migrate(cmd.Context(), dsn, dir); err != nil {
				return fmt.Errorf("migrate %s: %w", args[0], err)
			}
			logrus.WithField("driver", database.DriverFor(dsn)).Infof("migrate %s done", args[0])
			return nil
		},
	}
}
