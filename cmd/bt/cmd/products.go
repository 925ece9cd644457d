package cmd

import (
	"io"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "p"},
		Short:   "Inspect the product catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every tracked product",
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := newClient().ListProducts(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), products, func(w io.Writer) error {
				return printProductsTable(w, products)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <product-url>",
		Short: "Show the catalog entry for a product URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newClient().GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), p, func(w io.Writer) error {
				return printProductsTable(w, []domain.Product{*p})
			})
		},
	})

	return cmd
}
