package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invar-dev/invar/pkg/component"
	"github.com/invar-dev/invar/pkg/pack"
)

type listOptions struct {
	category string
}

func cmdList() *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the pack's components, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := pack.Open(repoDir(cmd))
			if err != nil {
				return err
			}
			components, err := repo.Components()
			if err != nil {
				return err
			}

			var filter component.Category
			if opts.category != "" {
				filter, err = component.ParseCategory(opts.category)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, c := range components {
				if filter != "" && c.Category != filter {
					continue
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", c.ID, c.Category, c.Origin(), c.FileName())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.category, "category", "", "only list components of this category")
	return cmd
}
