// Package modrinth implements the remote registry provider: it fetches
// project and version records over the registry's HTTP API, maps wire
// records into component metadata, and classifies every failure into the
// provider error kinds the resolver understands.
package modrinth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/chainguard-dev/clog"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/invar-dev/invar/pkg/component"
	invarhttp "github.com/invar-dev/invar/pkg/http"
	"github.com/invar-dev/invar/pkg/repository"
)

const (
	// DefaultBaseURL is the public registry API root.
	DefaultBaseURL = "https://api.modrinth.com/v2"

	// The registry requires a descriptive User-Agent from API consumers.
	userAgent = "invar-dev/invar (modpack dependency manager)"

	// Responses are cached on disk briefly so that a resolve touching the
	// same component several times only hits the registry once.
	cacheTTL = 15 * time.Minute
)

// Client talks to the registry. It is safe for concurrent use.
type Client struct {
	baseURL  string
	http     *invarhttp.RLHTTPClient
	cacheDir string

	mu       sync.Mutex
	projects map[string]*wireProject
	slugs    map[string]component.ID
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root, e.g. a staging
// registry or an httptest server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying rate-limited client.
func WithHTTPClient(h *invarhttp.RLHTTPClient) Option {
	return func(c *Client) { c.http = h }
}

// WithCacheDir overrides the response cache location. The empty string
// disables caching.
func WithCacheDir(dir string) Option {
	return func(c *Client) { c.cacheDir = dir }
}

// NewClient returns a registry client with the default rate limit (five
// requests of burst, one every 200ms sustained) and a response cache
// under the user's XDG cache directory.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		http:     invarhttp.NewClient(rate.NewLimiter(rate.Every(200*time.Millisecond), 5)),
		cacheDir: filepath.Join(xdg.CacheHome, "invar", "modrinth"),
		projects: make(map[string]*wireProject),
		slugs:    make(map[string]component.ID),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchProject implements repository.Provider.
func (c *Client) FetchProject(ctx context.Context, id component.ID) (*repository.Project, error) {
	p, err := c.project(ctx, id, id.String())
	if err != nil {
		return nil, err
	}
	return &repository.Project{
		ID:       p.ID,
		Slug:     p.Slug,
		Name:     p.Title,
		Summary:  p.Description,
		Category: p.category(),
		Origin:   "remote",
	}, nil
}

// FetchVersions implements repository.Provider. The registry returns
// releases newest first; that order is preserved. Dependency edges
// referencing other projects are resolved from opaque registry IDs to
// slugs so they line up with component IDs.
func (c *Client) FetchVersions(ctx context.Context, id component.ID) ([]component.Version, error) {
	project, err := c.project(ctx, id, id.String())
	if err != nil {
		return nil, err
	}

	raw, err := c.get(ctx, id, fmt.Sprintf("%s/project/%s/version", c.baseURL, id))
	if err != nil {
		return nil, err
	}
	var wire []wireVersion
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &repository.Error{Kind: repository.MalformedRecord, Component: id, Err: err}
	}

	env := project.env()
	versions := make([]component.Version, 0, len(wire))
	for _, wv := range wire {
		v := component.Version{
			ID:           wv.ID,
			Number:       wv.VersionNumber,
			Published:    wv.DatePublished,
			Loaders:      wv.Loaders,
			GameVersions: wv.GameVersions,
			Env:          env,
		}
		if f, ok := wv.primaryFile(); ok {
			v.File = component.VersionFile{
				URL:  f.URL,
				Name: f.Filename,
				Size: f.Size,
				Hashes: component.Hashes{
					SHA1:   f.Hashes.SHA1,
					SHA512: f.Hashes.SHA512,
				},
			}
		}
		for _, wd := range wv.Dependencies {
			if wd.ProjectID == "" {
				// File-only dependency declarations carry no project
				// reference and cannot become an edge.
				continue
			}
			kind, ok := parseDependencyKind(wd.DependencyType)
			if !ok {
				continue
			}
			target, err := c.resolveSlug(ctx, wd.ProjectID)
			if err != nil {
				return nil, err
			}
			v.Dependencies = append(v.Dependencies, component.Dependency{
				Target: target,
				Kind:   kind,
			})
		}
		versions = append(versions, v)
	}

	clog.FromContext(ctx).Debug("fetched registry versions", "component", id, "count", len(versions))
	return versions, nil
}

// project fetches and memoizes a wire project record. The registry
// accepts slugs and opaque IDs interchangeably in the same path.
func (c *Client) project(ctx context.Context, id component.ID, key string) (*wireProject, error) {
	c.mu.Lock()
	if p, ok := c.projects[key]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	raw, err := c.get(ctx, id, fmt.Sprintf("%s/project/%s", c.baseURL, key))
	if err != nil {
		return nil, err
	}
	var p wireProject
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &repository.Error{Kind: repository.MalformedRecord, Component: id, Err: err}
	}

	c.mu.Lock()
	c.projects[key] = &p
	c.projects[p.Slug] = &p
	c.projects[p.ID] = &p
	c.slugs[p.ID] = component.MakeID(p.Slug)
	c.mu.Unlock()
	return &p, nil
}

// resolveSlug maps an opaque project ID from a dependency declaration to
// the project's slug. Unresolvable references keep the raw ID; the
// validator reports them as missing if they ever matter.
func (c *Client) resolveSlug(ctx context.Context, projectID string) (component.ID, error) {
	c.mu.Lock()
	if slug, ok := c.slugs[projectID]; ok {
		c.mu.Unlock()
		return slug, nil
	}
	c.mu.Unlock()

	p, err := c.project(ctx, component.MakeID(projectID), projectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return component.MakeID(projectID), nil
		}
		return "", err
	}
	return component.MakeID(p.Slug), nil
}

// get performs one GET against the registry, consulting the on-disk
// response cache first and classifying failures into provider error
// kinds.
func (c *Client) get(ctx context.Context, id component.ID, url string) ([]byte, error) {
	if raw, ok := c.cached(url); ok {
		return raw, nil
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &repository.Error{Kind: repository.Unreachable, Component: id, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &repository.Error{Kind: repository.Unreachable, Component: id, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &repository.Error{Kind: repository.NotFound, Component: id}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &repository.Error{Kind: repository.RateLimited, Component: id}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &repository.Error{
			Kind:      repository.Unreachable,
			Component: id,
			Err:       fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &repository.Error{Kind: repository.Unreachable, Component: id, Err: err}
	}
	c.store(url, raw)
	return raw, nil
}

func (c *Client) cachePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.cacheDir, hex.EncodeToString(sum[:])+".json")
}

func (c *Client) cached(url string) ([]byte, bool) {
	if c.cacheDir == "" {
		return nil, false
	}
	path := c.cachePath(url)
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) > cacheTTL {
		return nil, false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return raw, true
}

// store writes a response to the cache. Cache failures are ignored; a
// cold cache only costs extra requests.
func (c *Client) store(url string, raw []byte) {
	if c.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(c.cachePath(url), raw, 0o644)
}
