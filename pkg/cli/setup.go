package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/invar-dev/invar/pkg/pack"
)

type setupOptions struct {
	name          string
	packVersion   string
	minecraft     string
	loader        string
	loaderVersion string
}

func cmdSetup() *cobra.Command {
	opts := setupOptions{}
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create a new pack repository in the target directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := repoDir(cmd)

			manifest := filepath.Join(dir, pack.FileName)
			if _, err := os.Stat(manifest); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", manifest)
			}

			loader, err := pack.ParseLoader(opts.loader)
			if err != nil {
				return err
			}

			p := &pack.Pack{
				Name:     opts.name,
				Version:  opts.packVersion,
				Instance: pack.NewInstance(opts.minecraft, loader, opts.loaderVersion),
				Settings: pack.DefaultSettings(),
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			if err := p.Write(dir); err != nil {
				return err
			}

			repo, err := pack.Open(dir)
			if err != nil {
				return err
			}
			if err := repo.Setup(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created pack %s for %s %s\n",
				styleTitle.Render(opts.name), opts.loader, opts.minecraft)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "pack name")
	cmd.Flags().StringVar(&opts.packVersion, "pack-version", "0.1.0", "initial pack version")
	cmd.Flags().StringVar(&opts.minecraft, "minecraft", "", "Minecraft version the pack targets")
	cmd.Flags().StringVar(&opts.loader, "loader", "", fmt.Sprintf("modloader (%s)", loaderNames()))
	cmd.Flags().StringVar(&opts.loaderVersion, "loader-version", "", "modloader version")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("minecraft")
	_ = cmd.MarkFlagRequired("loader")

	return cmd
}

func loaderNames() string {
	names := lo.Map(pack.Loaders(), func(l pack.Loader, _ int) string { return string(l) })
	return strings.Join(names, ", ")
}
