package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	configEnvVar      = "CONFIG_PATH"
	defaultConfigPath = "config.yaml"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "nezabudrama",
		Short: "Telegram bot for a personal drama catalog",
		Long: `NeZabuDrama keeps a catalog of watched dramas in a Telegram chat.

Users browse and search the catalog with inline buttons; admins add and delete entries.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to the YAML config (falls back to $"+configEnvVar+", then "+defaultConfigPath+")")

	serve := newServeCmd(opts)
	cmd.AddCommand(serve, newMigrateCmd(opts))
	cmd.RunE = serve.RunE
	return cmd
}
