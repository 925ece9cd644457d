package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func workCommand() *cobra.Command {
	var drain bool

	cmd := &cobra.Command{
		Use:   "work",
		Short: "Process queued monitoring tasks without serving the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			pool := a.pool()
			if drain {
				n, err := pool.Drain(ctx)
				a.log.Info("queue drained", "processed", n)
				return err
			}

			a.log.Info("starting workers", "workers", a.cfg.Schedule.Workers)
			pool.Run(ctx)
			a.log.Info("workers stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&drain, "drain", false, "exit once the queue is empty")

	return cmd
}
