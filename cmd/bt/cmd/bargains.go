package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/bargain-tracker/internal/api/client"
)

func bargainsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bargains",
		Aliases: []string{"bargain", "b"},
		Short:   "Manage tracked bargains",
	}

	cmd.AddCommand(bargainsListCmd())
	cmd.AddCommand(bargainsGetCmd())
	cmd.AddCommand(bargainsAddCmd())
	cmd.AddCommand(bargainsDeleteCmd())

	return cmd
}

func bargainsListCmd() *cobra.Command {
	var f apiclient.BargainFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked bargains",
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := newClient().ListBargains(cmd.Context(), f)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), page, func(w io.Writer) error {
				if err := printBargainTable(w, page.Bargains); err != nil {
					return err
				}
				_, err := fmt.Fprintf(w, "\nShowing %d of %d\n", len(page.Bargains), page.Total)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&f.Email, "email", "", "only bargains tracked by this email")
	cmd.Flags().StringVar(&f.ProductURL, "url", "", "only bargains for this product URL")
	cmd.Flags().IntVar(&f.Limit, "limit", 50, "maximum results")
	cmd.Flags().IntVar(&f.Offset, "offset", 0, "results to skip")
	cmd.Flags().StringVar(&f.OrderBy, "order-by", "", "sort field (created_at, product_title)")

	return cmd
}

func bargainsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a tracked bargain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newClient().GetBargain(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), b, func(w io.Writer) error {
				return printBargainDetail(w, b)
			})
		},
	}
}

func bargainsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <email> <product-url>",
		Short: "Track a product page for an email",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newClient().AddBargain(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), b, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Tracking %q for %s (id %s)\n", b.ProductTitle, b.Email, b.ID)
				return err
			})
		},
	}
}

func bargainsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Stop tracking a bargain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteBargain(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted bargain %s\n", args[0])
			return err
		},
	}
}
