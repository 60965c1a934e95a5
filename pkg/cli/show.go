package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/invar-dev/invar/pkg/component"
	"github.com/invar-dev/invar/pkg/pack"
)

func cmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the pack manifest and its components",
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

			out := cmd.OutOrStdout()
			p := repo.Pack
			fmt.Fprintf(out, "%s %s\n", styleTitle.Render(p.Name), styleDim.Render(p.Version))
			fmt.Fprintf(out, "  minecraft %s, %s %s\n", p.Instance.MinecraftVersion, p.Instance.Loader, p.Instance.LoaderVersion)
			if len(p.Instance.AllowedForeignLoaders) > 0 {
				fmt.Fprintf(out, "  foreign loaders allowed: %v\n", p.Instance.AllowedForeignLoaders)
			}
			fmt.Fprintln(out)

			grouped := lo.GroupBy(components, func(c component.Component) component.Category {
				return c.Category
			})
			for _, category := range component.Categories() {
				group := grouped[category]
				if len(group) == 0 {
					continue
				}
				fmt.Fprintf(out, "%s (%d)\n", styleCategory.Render(string(category)+"s"), len(group))
				for _, c := range group {
					fmt.Fprintf(out, "  %s %s\n", styleID.Render(c.ID.String()), describeComponent(c))
				}
			}
			return nil
		},
	}
	return cmd
}

func describeComponent(c component.Component) string {
	if c.Local != nil {
		return styleDim.Render("local " + c.Local.Path)
	}
	if c.Remote != nil {
		size := ""
		if c.Remote.FileSize > 0 {
			size = " " + styleDim.Render(humanize.Bytes(uint64(c.Remote.FileSize)))
		}
		return styleVersion.Render(c.Remote.FileName) + size
	}
	return styleWarn.Render("unresolved")
}
