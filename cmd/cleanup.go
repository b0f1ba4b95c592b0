package cmd

import (
	"clearpath-signals/config"
	"clearpath-signals/dto"
	"clearpath-signals/repository"
	"clearpath-signals/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func cleanupAlerts(config *config.Config) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup-alerts",
		Short: "delete alerts older than --days days",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := service.NewSimulationService(repository.NewRepo(config.DB))
			deleted, err := svc.PurgeAlerts(cmd.Context(), days)
			if err != nil {
				return err
			}
			log.Info().Int64("deleted", deleted).Int("days", days).Msg("alerts purged")
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", dto.DefaultLogRetention, "retention in days")
	return cmd
}
