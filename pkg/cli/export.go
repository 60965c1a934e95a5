package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/invar-dev/invar/pkg/mrpack"
)

type exportOptions struct {
	output string
	force  bool
}

func cmdExport() *cobra.Command {
	opts := exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the pack as an mrpack archive",
		Long: `Export the pack as an mrpack archive.

Registry components become index entries the launcher downloads
itself; local files are bundled under overrides/. An inconsistent
pack refuses to export unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := newSession(cmd.Context(), repoDir(cmd))
			if err != nil {
				return err
			}

			if violations := sess.solver.Check(); len(violations) > 0 && !opts.force {
				return fmt.Errorf("pack has %d consistency problem(s), fix them or pass --force", len(violations))
			}

			output := opts.output
			if output == "" {
				output = mrpack.ArchiveName(sess.repo.Pack)
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := mrpack.Export(f, sess.repo); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			info, err := os.Stat(output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s (%s)\n",
				styleTitle.Render(output), humanize.Bytes(uint64(info.Size())))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (defaults to <name>-<version>.mrpack)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "export even if the pack is inconsistent")
	return cmd
}
