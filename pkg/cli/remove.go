package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invar-dev/invar/pkg/component"
	"github.com/invar-dev/invar/pkg/resolve"
)

func cmdRemove() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove component...",
		Aliases: []string{"rm"},
		Short:   "Remove components from the pack",
		Long: `Remove components from the pack.

Removal keeps the remaining selections untouched. If something still
requires a removed component, resolution of the rest is unaffected but
"invar doctor" will report the dangling requirement.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := newSession(ctx, repoDir(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, arg := range args {
				id := component.MakeID(arg)

				wasLocal := false
				for _, entry := range sess.repo.Pack.LocalComponents {
					if entry.ID() == id {
						wasLocal = true
					}
				}

				report, err := sess.solver.Resolve(ctx, resolve.RemoveComponent(id))
				if err != nil {
					var unknown *resolve.UnknownComponentError
					if errors.As(err, &unknown) {
						if hint := didYouMean(id, knownIDs(sess)); hint != "" {
							return fmt.Errorf("no component %q in this pack (did you mean %q?)", id, hint)
						}
					}
					return err
				}

				if wasLocal {
					if err := sess.repo.RemoveComponent(id); err != nil {
						return err
					}
				} else if err := sess.commit(report); err != nil {
					return err
				}

				fmt.Fprintf(out, "removed %s\n", styleID.Render(id.String()))
			}

			if violations := sess.solver.Check(); len(violations) > 0 {
				fmt.Fprintln(out, styleWarn.Render(fmt.Sprintf("pack now has %d consistency problem(s), run \"invar doctor\"", len(violations))))
			}
			return nil
		},
	}
	return cmd
}
