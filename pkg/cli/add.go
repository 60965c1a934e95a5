package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invar-dev/invar/pkg/component"
	"github.com/invar-dev/invar/pkg/pack"
	"github.com/invar-dev/invar/pkg/repository"
	"github.com/invar-dev/invar/pkg/resolve"
)

type addOptions struct {
	local    string
	category string
}

func cmdAdd() *cobra.Command {
	opts := addOptions{}
	cmd := &cobra.Command{
		Use:   "add [component[@constraint]...]",
		Short: "Add components to the pack and re-resolve",
		Long: `Add components to the pack and re-resolve.

Remote components are named by their registry slug, optionally pinned
to a version range: "sodium", "fabric-api@=1.0", "lithium@>=0.11".
Required dependencies of the selected versions are pulled in
automatically.

A file already present in the repository is added with --local; its
category is derived from the directory it lives in unless --category
says otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := newSession(ctx, repoDir(cmd))
			if err != nil {
				return err
			}

			if opts.local != "" {
				if len(args) > 0 {
					return fmt.Errorf("--local takes no positional arguments")
				}
				return addLocal(cmd, sess, opts)
			}
			if len(args) == 0 {
				return fmt.Errorf("nothing to add")
			}

			out := cmd.OutOrStdout()
			for _, arg := range args {
				id, constraint := parseComponentSpec(arg)
				report, err := sess.solver.Resolve(ctx, resolve.AddComponent(id, constraint))
				if err != nil {
					if repository.IsNotFound(err) {
						if hint := didYouMean(id, knownIDs(sess)); hint != "" {
							return fmt.Errorf("no component %q found (did you mean %q?)", id, hint)
						}
					}
					return err
				}
				if err := sess.commit(report); err != nil {
					return err
				}
				fmt.Fprintf(out, "added %s\n", styleID.Render(id.String()))
				printChanges(out, report.Changes)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.local, "local", "", "path (relative to the pack root) of a local file to add")
	cmd.Flags().StringVar(&opts.category, "category", "", "category of the local component")
	return cmd
}

// parseComponentSpec splits "id@constraint" into its parts. A bare ID
// means any version.
func parseComponentSpec(raw string) (component.ID, string) {
	id, constraint, _ := strings.Cut(raw, "@")
	return component.MakeID(id), constraint
}

func addLocal(cmd *cobra.Command, sess *session, opts addOptions) error {
	ctx := cmd.Context()
	rel := filepath.ToSlash(filepath.Clean(opts.local))

	if _, err := os.Stat(filepath.Join(sess.repo.Root, filepath.FromSlash(rel))); err != nil {
		return fmt.Errorf("local file %s: %w", rel, err)
	}

	var category component.Category
	if opts.category != "" {
		parsed, err := component.ParseCategory(opts.category)
		if err != nil {
			return err
		}
		category = parsed
	} else {
		dir := strings.SplitN(rel, "/", 2)[0]
		parsed, ok := component.CategoryForDirectory(dir)
		if !ok {
			return fmt.Errorf("cannot derive a category from %q, pass --category", rel)
		}
		category = parsed
	}

	entry := pack.LocalEntry{Path: rel, Category: category}
	for _, existing := range sess.repo.Pack.LocalComponents {
		if existing.ID() == entry.ID() {
			return fmt.Errorf("local component %q already declared (%s)", entry.ID(), existing.Path)
		}
	}
	sess.repo.Pack.LocalComponents = append(sess.repo.Pack.LocalComponents, entry)

	report, err := sess.solver.Resolve(ctx, resolve.AddComponent(entry.ID(), ""))
	if err != nil {
		return err
	}
	if err := sess.repo.Pack.Write(sess.repo.Root); err != nil {
		return err
	}
	if err := sess.commit(report); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "added local %s (%s)\n", styleID.Render(entry.ID().String()), category)
	return nil
}

func knownIDs(sess *session) []component.ID {
	nodes := sess.solver.Graph().Nodes()
	ids := make([]component.ID, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}
