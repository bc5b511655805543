package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/egannguyen/petsupplies/internal/entity"
)

func (r *root) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the starter catalog, reviews and seller accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repos, err := openRepositories(ctx, r.cfg)
			if err != nil {
				return err
			}
			defer repos.Close()

			if err := seed(ctx, repos, r.cfg.Seed.Password); err != nil {
				return err
			}
			page, err := repos.Products.Query(ctx, entity.ProductQuery{Limit: 1}.Normalize())
			if err != nil {
				return fmt.Errorf("failed to count products: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog holds %d products (store=%s)\n", page.Total, r.cfg.Store.Driver)
			return nil
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "petsupplies", Version)
		},
	}
}
