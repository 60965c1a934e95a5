package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invar-dev/invar/pkg/resolve"
)

func cmdUpdate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Re-resolve every component to the newest consistent versions",
		Long: `Re-resolve every component to the newest consistent versions.

Explicit version pins survive an update: a component added with a
constraint keeps it until re-added with a different one. When the
registry offers nothing new, the update is a no-op and the pack files
are untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sess, err := newSession(ctx, repoDir(cmd))
			if err != nil {
				return err
			}

			report, err := sess.solver.Resolve(ctx, resolve.UpdateAll())
			if err != nil {
				return err
			}
			if err := sess.commit(report); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "updated %d component(s)\n", len(report.Changes))
			printChanges(out, report.Changes)
			return nil
		},
	}
	return cmd
}
