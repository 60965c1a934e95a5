// Package cli wires the invar commands: pack setup and inspection,
// component mutations through the resolver, consistency checking and
// mrpack export.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/chainguard-dev/clog"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"sigs.k8s.io/release-utils/version"

	"github.com/invar-dev/invar/pkg/modrinth"
	"github.com/invar-dev/invar/pkg/pack"
	"github.com/invar-dev/invar/pkg/repository"
	"github.com/invar-dev/invar/pkg/resolve"
)

func New() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:               "invar",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "A declarative dependency manager for Minecraft modpacks",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level, err := charmlog.ParseLevel(logLevel)
			if err != nil {
				level = charmlog.WarnLevel
			}
			logger := clog.New(charmlog.NewWithOptions(os.Stderr, charmlog.Options{
				ReportTimestamp: false,
				Level:           level,
			}))
			cmd.SetContext(clog.WithLogger(cmd.Context(), logger))
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringP("dir", "C", ".", "path to the pack repository")

	cmd.AddCommand(
		cmdSetup(),
		cmdShow(),
		cmdList(),
		cmdAdd(),
		cmdRemove(),
		cmdUpdate(),
		cmdDoctor(),
		cmdExport(),
		version.Version(),
	)

	return cmd
}

func repoDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil || dir == "" {
		return "."
	}
	return dir
}

// session bundles the opened repository with a solver whose graph has
// been rehydrated from the persisted component metadata.
type session struct {
	repo   *pack.Repository
	solver *resolve.Solver
}

func newSession(ctx context.Context, dir string) (*session, error) {
	repo, err := pack.Open(dir)
	if err != nil {
		return nil, err
	}

	var clientOpts []modrinth.Option
	if base := os.Getenv("INVAR_REGISTRY_URL"); base != "" {
		clientOpts = append(clientOpts, modrinth.WithBaseURL(base))
	}

	// Local declarations shadow the registry; a file dropped into the
	// pack wins over a remote project that happens to share its name.
	provider := repository.Chain{
		pack.NewLocalProvider(repo),
		modrinth.NewClient(clientOpts...),
	}

	graph, err := repo.BuildGraph(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("loading pack state: %w", err)
	}

	return &session{
		repo:   repo,
		solver: resolve.NewSolver(graph, provider, repo.Pack.Instance.Target()),
	}, nil
}

// commit persists a successful resolution back into the repository.
func (s *session) commit(report *resolve.Report) error {
	return s.repo.Apply(report.View)
}
