package cmd

import (
	"clearpath-signals/config"
	"clearpath-signals/repository"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func migrate(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := repository.NewRepo(config.DB).Migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info().Str("driver", config.Database.Driver).Msg("database migrated")
			return nil
		},
	}
}
