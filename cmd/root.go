package cmd

import (
	"clearpath-signals/config"
	"github.com/spf13/cobra"
)

func Root(config *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clearpath-signals",
		Short: "traffic signal simulation backend",
	}
	rootCmd.AddCommand(server(config), migrate(config), cleanupAlerts(config))
	return rootCmd
}
