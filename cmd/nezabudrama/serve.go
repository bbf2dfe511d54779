package main

import (
	"context"

	"github.com/spf13/cobra"

	corecmd "github.com/m3rciful/nezabudrama/core/cmd"
	"github.com/m3rciful/nezabudrama/drama/app"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return corecmd.Run(cmd.Context(), corecmd.Options{
				ConfigPath:        opts.configPath,
				ConfigEnvVar:      configEnvVar,
				DefaultConfigPath: defaultConfigPath,
				LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
					return app.Load(path)
				},
				Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
					return app.Bootstrap(ctx, cfg.(*app.Config))
				},
			})
		},
	}
}
