package modrinth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invar-dev/invar/pkg/component"
	"github.com/invar-dev/invar/pkg/repository"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/project/sodium", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`{
			"id": "AANobbMI",
			"slug": "sodium",
			"title": "Sodium",
			"description": "A rendering engine replacement",
			"project_type": "mod",
			"client_side": "required",
			"server_side": "unsupported"
		}`))
	})
	mux.HandleFunc("/project/P7dR8mSH", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"id": "P7dR8mSH",
			"slug": "fabric-api",
			"title": "Fabric API",
			"project_type": "mod",
			"client_side": "required",
			"server_side": "required"
		}`))
	})
	mux.HandleFunc("/project/sodium/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[
			{
				"id": "rAfhHfow",
				"project_id": "AANobbMI",
				"version_number": "0.5.0",
				"date_published": "2024-06-01T12:00:00Z",
				"loaders": ["fabric"],
				"game_versions": ["1.20.1"],
				"dependencies": [
					{"project_id": "P7dR8mSH", "dependency_type": "required"},
					{"project_id": "", "file_name": "bundled.jar", "dependency_type": "embedded"},
					{"project_id": "P7dR8mSH", "dependency_type": "unsupported-kind"}
				],
				"files": [
					{"url": "https://cdn.example/extra.jar", "filename": "extra.jar", "primary": false, "size": 10, "hashes": {}},
					{"url": "https://cdn.example/sodium-0.5.0.jar", "filename": "sodium-0.5.0.jar", "primary": true, "size": 2048,
					 "hashes": {"sha1": "aa", "sha512": "bb"}}
				]
			}
		]`))
	})
	mux.HandleFunc("/project/limited", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/project/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{not json`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testClient(t *testing.T) *Client {
	t.Helper()
	server := testServer(t)
	return NewClient(WithBaseURL(server.URL), WithCacheDir(""))
}

func TestFetchProject(t *testing.T) {
	client := testClient(t)

	p, err := client.FetchProject(context.Background(), "sodium")
	require.NoError(t, err)
	assert.Equal(t, "AANobbMI", p.ID)
	assert.Equal(t, "sodium", p.Slug)
	assert.Equal(t, "Sodium", p.Name)
	assert.Equal(t, component.CategoryMod, p.Category)
	assert.Equal(t, "remote", p.Origin)
}

func TestFetchVersions(t *testing.T) {
	client := testClient(t)

	versions, err := client.FetchVersions(context.Background(), "sodium")
	require.NoError(t, err)
	require.Len(t, versions, 1)

	v := versions[0]
	assert.Equal(t, "rAfhHfow", v.ID)
	assert.Equal(t, "0.5.0", v.Number)
	assert.Equal(t, []string{"fabric"}, v.Loaders)
	assert.Equal(t, []string{"1.20.1"}, v.GameVersions)

	// The project's side declarations become the version environment.
	assert.Equal(t, component.RequirementRequired, v.Env.Client)
	assert.Equal(t, component.RequirementUnsupported, v.Env.Server)

	// Opaque dependency project IDs are resolved to slugs; declarations
	// without a project reference or with unknown kinds are dropped.
	require.Len(t, v.Dependencies, 1)
	assert.Equal(t, component.ID("fabric-api"), v.Dependencies[0].Target)
	assert.Equal(t, component.DependencyRequired, v.Dependencies[0].Kind)

	// The primary file wins over siblings.
	assert.Equal(t, "sodium-0.5.0.jar", v.File.Name)
	assert.Equal(t, int64(2048), v.File.Size)
	assert.Equal(t, "aa", v.File.Hashes.SHA1)
}

func TestFetchProjectNotFound(t *testing.T) {
	client := testClient(t)

	_, err := client.FetchProject(context.Background(), "does-not-exist")
	assert.True(t, repository.IsNotFound(err))
}

func TestFetchProjectRateLimited(t *testing.T) {
	client := testClient(t)

	_, err := client.FetchProject(context.Background(), "limited")
	var perr *repository.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, repository.RateLimited, perr.Kind)
}

func TestFetchProjectMalformed(t *testing.T) {
	client := testClient(t)

	_, err := client.FetchProject(context.Background(), "broken")
	var perr *repository.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, repository.MalformedRecord, perr.Kind)
}

func TestResponseCache(t *testing.T) {
	server := testServer(t)
	client := NewClient(WithBaseURL(server.URL), WithCacheDir(t.TempDir()))
	ctx := context.Background()

	_, err := client.FetchProject(ctx, "sodium")
	require.NoError(t, err)

	// Second client, same cache dir: the response comes from disk even
	// with the server gone.
	server.Close()
	again := NewClient(WithBaseURL(server.URL), WithCacheDir(client.cacheDir))
	p, err := again.FetchProject(ctx, "sodium")
	require.NoError(t, err)
	assert.Equal(t, "sodium", p.Slug)
}
