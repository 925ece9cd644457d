package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func distributeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribute",
		Short: "Enqueue a monitoring task for every product now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := newClient().Distribute(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), map[string]int{"enqueued": n})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %d task(s)\n", n)
			return err
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "queue",
		Short: "Show the number of pending tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := newClient().QueueDepth(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), map[string]int{"pending": n})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d task(s) pending\n", n)
			return err
		},
	})

	return cmd
}
