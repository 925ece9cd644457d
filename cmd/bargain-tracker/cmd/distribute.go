package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func distributeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "distribute",
		Short: "Enqueue one monitoring task per catalog product and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			n, err := a.scheduler.RunDistribution(ctx)
			if err != nil {
				return fmt.Errorf("distributing: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %d task(s)\n", n)
			return err
		},
	}
}
