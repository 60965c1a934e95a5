package pack

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/invar-dev/invar/pkg/component"
	"github.com/invar-dev/invar/pkg/repository"
	"github.com/invar-dev/invar/pkg/resolve"
)

// LocalVersionNumber is the synthetic version identifier local
// components carry. A local file has no upstream releases, so resolution
// sees exactly one candidate, compatible with any target and without
// dependency edges.
const LocalVersionNumber = "local"

// LocalProvider serves metadata for the pack's local components,
// implementing the same provider boundary the remote registry does.
// Chain it in front of the registry client so local declarations win.
type LocalProvider struct {
	repo *Repository
}

// NewLocalProvider returns a provider backed by the repository's local
// component entries.
func NewLocalProvider(repo *Repository) *LocalProvider {
	return &LocalProvider{repo: repo}
}

func (p *LocalProvider) entry(id component.ID) (LocalEntry, bool) {
	for _, entry := range p.repo.Pack.LocalComponents {
		if entry.ID() == id {
			return entry, true
		}
	}
	return LocalEntry{}, false
}

// FetchProject implements repository.Provider.
func (p *LocalProvider) FetchProject(_ context.Context, id component.ID) (*repository.Project, error) {
	entry, ok := p.entry(id)
	if !ok {
		return nil, &repository.Error{Kind: repository.NotFound, Component: id}
	}
	return &repository.Project{
		ID:       id.String(),
		Slug:     id.String(),
		Name:     id.String(),
		Category: entry.Category,
		Origin:   "local",
	}, nil
}

// FetchVersions implements repository.Provider.
func (p *LocalProvider) FetchVersions(_ context.Context, id component.ID) ([]component.Version, error) {
	entry, ok := p.entry(id)
	if !ok {
		return nil, &repository.Error{Kind: repository.NotFound, Component: id}
	}
	return []component.Version{localVersion(entry)}, nil
}

func localVersion(entry LocalEntry) component.Version {
	return component.Version{
		ID:     string(entry.ID()),
		Number: LocalVersionNumber,
		Env:    component.ClientAndServer(),
		File: component.VersionFile{
			Path: entry.Path,
			Name: filepath.Base(entry.Path),
		},
	}
}

// BuildGraph rehydrates the component graph from the repository's
// persisted state: every known component becomes a node, and each
// remote component's stored version ID is matched against the
// provider's release list so the assignment carries real dependency
// edges. A stored version the provider no longer lists leaves the node
// unassigned; the doctor check surfaces the drift.
func (r *Repository) BuildGraph(ctx context.Context, provider repository.Provider) (*resolve.Graph, error) {
	components, err := r.Components()
	if err != nil {
		return nil, err
	}

	graph := resolve.NewGraph()
	for _, c := range components {
		if err := graph.AddNode(resolve.Node{
			ID:       c.ID,
			Category: c.Category,
			Origin:   c.Origin(),
		}); err != nil {
			return nil, err
		}

		if c.Local != nil {
			entry, ok := r.localEntry(c.ID)
			if !ok {
				continue
			}
			if err := graph.Select(c.ID, localVersion(entry)); err != nil {
				return nil, err
			}
			continue
		}

		released, err := provider.FetchVersions(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("rehydrating %s: %w", c.ID, err)
		}
		for i := range released {
			if released[i].ID == c.Remote.VersionID {
				if err := graph.Select(c.ID, released[i]); err != nil {
					return nil, err
				}
				break
			}
		}
	}

	return graph, nil
}

func (r *Repository) localEntry(id component.ID) (LocalEntry, bool) {
	for _, entry := range r.Pack.LocalComponents {
		if entry.ID() == id {
			return entry, true
		}
	}
	return LocalEntry{}, false
}

// Apply syncs the repository's persisted component files with a
// committed resolution view: changed selections are rewritten, and
// metadata files for components no longer declared are removed. Local
// components are left alone; resolution never changes them.
func (r *Repository) Apply(view resolve.View) error {
	declared := make(map[component.ID]resolve.Node, len(view.Nodes))
	for _, n := range view.Nodes {
		declared[n.ID] = n
	}

	existing, err := r.Components()
	if err != nil {
		return err
	}
	for _, c := range existing {
		if _, ok := declared[c.ID]; !ok && c.Remote != nil {
			if err := r.RemoveComponent(c.ID); err != nil {
				return err
			}
		}
	}

	for _, sel := range view.Assignment {
		node := declared[sel.Component]
		if node.Origin == "local" {
			continue
		}
		version := sel.Version
		// New components start untagged; SaveComponent keeps the recorded
		// tags when the file already exists.
		if err := r.SaveComponent(component.Component{
			ID:       sel.Component,
			Category: node.Category,
			Tags:     component.Untagged(),
			Env:      version.Env,
			Remote: &component.Remote{
				DownloadURL: version.File.URL,
				FileName:    version.File.Name,
				FileSize:    version.File.Size,
				VersionID:   version.ID,
				Hashes:      version.File.Hashes,
			},
		}); err != nil {
			return err
		}
	}

	return nil
}
