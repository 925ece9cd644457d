package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

func subscriptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscription",
		Aliases: []string{"sub"},
		Short:   "Show or toggle notifications for an email",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <email>",
		Short: "Show the subscription for an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newClient().GetSubscription(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), s, func(w io.Writer) error {
				return printSubscription(w, s)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <email> <true|false>",
		Short: "Turn notifications on or off for an email",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid subscribed value %q: %w", args[1], err)
			}
			s, err := newClient().SetSubscription(cmd.Context(), args[0], on)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), s, func(w io.Writer) error {
				return printSubscription(w, s)
			})
		},
	})

	return cmd
}
