package main

import (
	"github.com/spf13/cobra"

	"github.com/i474232898/weather-pipeline/internal/scheduler"
)

func scheduleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline every FETCH_INTERVAL until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			sched := scheduler.New(ctx, a.pipeline(), a.cfg.FetchInterval, a.log)
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			<-ctx.Done()
			a.log.Info().Msg("shutting down scheduler")
			return nil
		},
	}
}
