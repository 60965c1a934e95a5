package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func cmdDoctor() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the pack's declared state for consistency problems",
		Long: `Check the pack's declared state for consistency problems.

The check is read-only: it reports missing required dependencies,
version ranges the current selections violate, incompatible pairs and
loader or game-version mismatches, and never changes anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := newSession(cmd.Context(), repoDir(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			violations := sess.solver.Check()
			if len(violations) == 0 {
				fmt.Fprintln(out, "pack is consistent")
				return nil
			}

			for _, v := range violations {
				fmt.Fprintf(out, "  %s\n", styleWarn.Render(v.String()))
			}
			return fmt.Errorf("%d consistency problem(s) found", len(violations))
		},
	}
	return cmd
}
