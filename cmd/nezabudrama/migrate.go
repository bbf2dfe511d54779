package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/m3rciful/nezabudrama/core/bootstrap"
	corecmd "github.com/m3rciful/nezabudrama/core/cmd"
	"github.com/m3rciful/nezabudrama/core/logger"
	"github.com/m3rciful/nezabudrama/drama/app"
	"github.com/m3rciful/nezabudrama/migrations"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := corecmd.ResolveConfigPath(opts.configPath, configEnvVar, defaultConfigPath)
			if err != nil {
				return err
			}
			cfg, err := app.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			defer func() { _ = logger.Shutdown() }()

			res, err := bootstrap.Run(cmd.Context(), bootstrap.Options{
				Config:     &cfg.Config,
				Database:   cfg.Database,
				Migrations: migrations.FS,
			})
			if err != nil {
				return err
			}
			defer res.DB.Close()
			logger.MIG.Info("migrations applied",
				slog.String("event", "db.migrate"),
				slog.String("status", "ok"),
				slog.String("driver", cfg.Database.Driver),
			)
			return nil
		},
	}
}
