package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/festival-coordinator/internal/config"
	"github.com/iliyamo/festival-coordinator/internal/lineup"
	"github.com/iliyamo/festival-coordinator/internal/logging"
	"github.com/iliyamo/festival-coordinator/internal/middleware"
	"github.com/iliyamo/festival-coordinator/internal/model"
)

func importLineupCmd() *cobra.Command {
	var (
		opts    lineup.Options
		groupID string
		status  string
	)
	cmd := &cobra.Command{
		Use:   "import-lineup",
		Short: "Sync scraped lineup JSON files into a group's festivals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Init(cfg.Env, cfg.LogLevel)

			if groupID != "" {
				id, err := uuid.Parse(groupID)
				if err != nil {
					return fmt.Errorf("invalid --group-id: %w", err)
				}
				opts.GroupID = &id
			}
			opts.Status = model.FestivalStatus(status)

			gw, err := openGateway(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer gw.Close()

			im := lineup.NewImporter(gw, logrus.NewEntry(logrus.StandardLogger()))
			if !opts.DryRun {
				if rdb := config.NewRedisClient(cmd.Context(), cfg.Redis); rdb != nil {
					defer rdb.Close()
					im.OnWrite(middleware.CacheInvalidator(cfg.Cache, rdb))
				}
			}
			results, err := im.Run(cmd.Context(), opts)
			out := cmd.OutOrStdout()
			artists := 0
			for _, r := range results {
				artists += r.Artists
				if opts.DryRun {
					fmt.Fprintf(out, "[dry-run] %s: festival=%q, artists=%d\n", r.Slug, r.Festival, r.Artists)
				} else {
					fmt.Fprintf(out, "Synced %s -> festival_id=%s, artists=%d\n", r.Slug, r.FestivalID, r.Artists)
				}
			}
			if err != nil {
				return err
			}
			if opts.DryRun {
				fmt.Fprintf(out, "Dry run complete. Files inspected: %d\n", len(results))
				return nil
			}
			fmt.Fprintf(out, "Sync complete. Festivals synced: %d, artists inserted: %d\n", len(results), artists)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.InputDir, "input-dir", "output", "directory holding <slug>.json lineup files")
	f.StringVar(&groupID, "group-id", "", "existing group to import into")
	f.StringVar(&opts.GroupName, "group-name", lineup.DefaultGroupName, "group to find or create when --group-id is not set")
	f.StringVar(&status, "status", string(model.FestivalConsidering), "status for imported festivals")
	f.StringSliceVar(&opts.Festivals, "festival", nil, "only import these slugs (repeatable)")
	f.BoolVar(&opts.DryRun, "dry-run", false, "report what would be imported without writing")
	return cmd
}
