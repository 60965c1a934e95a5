package pack

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invar-dev/invar/pkg/component"
	"github.com/invar-dev/invar/pkg/repository"
	"github.com/invar-dev/invar/pkg/resolve"
)

type fakeRemote struct {
	versions map[component.ID][]component.Version
}

func (f *fakeRemote) FetchProject(_ context.Context, id component.ID) (*repository.Project, error) {
	if _, ok := f.versions[id]; ok {
		return &repository.Project{Slug: string(id), Category: component.CategoryMod, Origin: "remote"}, nil
	}
	return nil, &repository.Error{Kind: repository.NotFound, Component: id}
}

func (f *fakeRemote) FetchVersions(_ context.Context, id component.ID) ([]component.Version, error) {
	if vs, ok := f.versions[id]; ok {
		return vs, nil
	}
	return nil, &repository.Error{Kind: repository.NotFound, Component: id}
}

func TestLocalProviderServesPackEntries(t *testing.T) {
	repo := newTestRepo(t)
	repo.Pack.LocalComponents = []LocalEntry{{Path: "mods/custom.jar", Category: component.CategoryMod}}

	provider := NewLocalProvider(repo)
	ctx := context.Background()

	p, err := provider.FetchProject(ctx, "custom")
	require.NoError(t, err)
	assert.Equal(t, "local", p.Origin)

	vs, err := provider.FetchVersions(ctx, "custom")
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, LocalVersionNumber, vs[0].Number)
	assert.Empty(t, vs[0].Dependencies)

	_, err = provider.FetchProject(ctx, "unknown")
	assert.True(t, repository.IsNotFound(err))
}

func TestBuildGraphRehydratesSelections(t *testing.T) {
	repo := newTestRepo(t)

	stored := component.Version{
		ID:        "sodium-0.5.0",
		Number:    "0.5.0",
		Published: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Loaders:   []string{"fabric"},
		Env:       component.ClientAndServer(),
		File:      component.VersionFile{URL: "https://cdn.example/sodium.jar", Name: "sodium-0.5.0.jar"},
	}
	require.NoError(t, repo.SaveComponent(component.Component{
		ID:       "sodium",
		Category: component.CategoryMod,
		Env:      component.ClientAndServer(),
		Remote: &component.Remote{
			DownloadURL: stored.File.URL,
			FileName:    stored.File.Name,
			VersionID:   stored.ID,
		},
	}))

	remote := &fakeRemote{versions: map[component.ID][]component.Version{
		"sodium": {stored},
	}}

	graph, err := repo.BuildGraph(context.Background(), remote)
	require.NoError(t, err)

	v, ok := graph.Selected("sodium")
	require.True(t, ok)
	assert.Equal(t, "0.5.0", v.Number)
}

func TestBuildGraphLeavesVanishedVersionsUnassigned(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.SaveComponent(component.Component{
		ID:       "sodium",
		Category: component.CategoryMod,
		Remote:   &component.Remote{VersionID: "gone"},
	}))

	remote := &fakeRemote{versions: map[component.ID][]component.Version{
		"sodium": {{ID: "sodium-0.5.1", Number: "0.5.1"}},
	}}

	graph, err := repo.BuildGraph(context.Background(), remote)
	require.NoError(t, err)

	_, ok := graph.Node("sodium")
	assert.True(t, ok)
	_, ok = graph.Selected("sodium")
	assert.False(t, ok, "a version the registry no longer lists stays unassigned")
}

func TestApplySyncsMetadataFiles(t *testing.T) {
	repo := newTestRepo(t)

	// Stale metadata for a component the view no longer declares.
	require.NoError(t, repo.SaveComponent(component.Component{
		ID:       "removed-mod",
		Category: component.CategoryMod,
		Remote:   &component.Remote{VersionID: "old"},
	}))

	view := resolve.View{
		Nodes: []resolve.Node{{ID: "sodium", Category: component.CategoryMod, Origin: "remote"}},
		Assignment: []resolve.Selection{{
			Component: "sodium",
			Version: component.Version{
				ID:     "sodium-0.5.0",
				Number: "0.5.0",
				Env:    component.ClientAndServer(),
				File: component.VersionFile{
					URL:    "https://cdn.example/sodium.jar",
					Name:   "sodium-0.5.0.jar",
					Size:   1024,
					Hashes: component.Hashes{SHA1: "aa", SHA512: "bb"},
				},
			},
		}},
	}
	require.NoError(t, repo.Apply(view))

	components, err := repo.Components()
	require.NoError(t, err)
	require.Len(t, components, 1)

	c := components[0]
	assert.Equal(t, component.ID("sodium"), c.ID)
	require.NotNil(t, c.Remote)
	assert.Equal(t, "sodium-0.5.0", c.Remote.VersionID)
	assert.Equal(t, int64(1024), c.Remote.FileSize)
	assert.Equal(t, "aa", c.Remote.Hashes.SHA1)

	_, err = os.Stat(filepath.Join(repo.Root, "mods", "removed-mod.invar.yml"))
	assert.True(t, os.IsNotExist(err))
}
