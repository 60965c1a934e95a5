package pack

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/invar-dev/invar/pkg/component"
)

// Component metadata files are named "<id>.invar.yml" and live under the
// runtime directory of their category (optionally inside a tag
// subfolder, which users are free to reshuffle).
const (
	componentFileSuffix = ".invar.yml"
)

// Repository is an opened pack repository: a directory holding pack.yml
// and the per-component metadata files.
type Repository struct {
	Root string
	Pack *Pack
}

// Open reads the pack manifest in root and returns the repository.
func Open(root string) (*Repository, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving repository root: %w", err)
	}
	p, err := Read(abs)
	if err != nil {
		return nil, err
	}
	return &Repository{Root: abs, Pack: p}, nil
}

// Setup creates the runtime directory skeleton so that users have an
// obvious place to drop local files.
func (r *Repository) Setup() error {
	for _, dir := range component.RuntimeDirectories() {
		target := filepath.Join(r.Root, string(dir))
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", target, err)
		}
		keep := filepath.Join(target, ".gitkeep")
		if _, err := os.Stat(keep); os.IsNotExist(err) {
			if err := os.WriteFile(keep, nil, 0o644); err != nil {
				return fmt.Errorf("creating %s: %w", keep, err)
			}
		}
	}
	return nil
}

// componentFile pairs a parsed metadata file with where it was found.
// Users are free to move metadata files between tag subfolders, so the
// load location is the only reliable way to update a file in place.
type componentFile struct {
	Path      string
	Component component.Component
}

func (r *Repository) componentFiles() ([]componentFile, error) {
	var files []componentFile

	err := filepath.WalkDir(r.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, componentFileSuffix) {
			return nil
		}
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		var c component.Component
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("parsing component file %s: %w", path, err)
		}
		files = append(files, componentFile{Path: path, Component: c})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking pack repository: %w", err)
	}
	return files, nil
}

// Components lists every component the repository knows about: remote
// ones from their metadata files, local ones from the pack manifest.
// The result is sorted by (category, id) for stable output.
func (r *Repository) Components() ([]component.Component, error) {
	files, err := r.componentFiles()
	if err != nil {
		return nil, err
	}

	components := make([]component.Component, 0, len(files)+len(r.Pack.LocalComponents))
	for _, f := range files {
		components = append(components, f.Component)
	}

	for _, entry := range r.Pack.LocalComponents {
		components = append(components, component.Component{
			ID:       entry.ID(),
			Category: entry.Category,
			Env:      component.ClientAndServer(),
			Local:    &component.Local{Path: entry.Path},
		})
	}

	sort.Slice(components, func(i, j int) bool {
		if components[i].Category != components[j].Category {
			return components[i].Category < components[j].Category
		}
		return components[i].ID < components[j].ID
	})

	return components, nil
}

// ComponentPath returns where a remote component's metadata file is
// saved: under its category's runtime directory, inside a subfolder
// named after the main tag when one is set.
func (r *Repository) ComponentPath(c component.Component) string {
	parts := []string{r.Root, string(component.RuntimeDirectoryFor(c.Category))}
	if c.Tags.Main != nil {
		parts = append(parts, string(*c.Tags.Main))
	}
	parts = append(parts, c.ID.String()+componentFileSuffix)
	return filepath.Join(parts...)
}

// SaveComponent persists a component: remote ones get a metadata file,
// local ones are recorded in pack.yml.
func (r *Repository) SaveComponent(c component.Component) error {
	if c.Local != nil {
		for _, entry := range r.Pack.LocalComponents {
			if entry.ID() == c.ID {
				return nil
			}
		}
		r.Pack.LocalComponents = append(r.Pack.LocalComponents, LocalEntry{
			Path:     c.Local.Path,
			Category: c.Category,
		})
		return r.Pack.Write(r.Root)
	}

	// Update in place when a metadata file for this component already
	// exists, wherever the user keeps it.
	files, err := r.componentFiles()
	if err != nil {
		return err
	}
	path := r.ComponentPath(c)
	for _, f := range files {
		if f.Component.ID == c.ID {
			path = f.Path
			if c.Tags.Main == nil && c.Tags.Others == nil {
				c.Tags = f.Component.Tags
			}
			break
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("serializing component %s: %w", c.ID, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// RemoveComponent deletes a component's persisted form. Remote metadata
// files are searched for by ID rather than path, since users may have
// moved them between tag subfolders.
func (r *Repository) RemoveComponent(id component.ID) error {
	removed := false

	before := len(r.Pack.LocalComponents)
	kept := r.Pack.LocalComponents[:0]
	for _, entry := range r.Pack.LocalComponents {
		if entry.ID() != id {
			kept = append(kept, entry)
		}
	}
	r.Pack.LocalComponents = kept
	if len(kept) != before {
		if err := r.Pack.Write(r.Root); err != nil {
			return err
		}
		removed = true
	}

	files, err := r.componentFiles()
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.Component.ID != id {
			continue
		}
		if err := os.Remove(f.Path); err != nil {
			return err
		}
		removed = true
	}

	if !removed {
		return fmt.Errorf("no component %q in this pack", id)
	}
	return nil
}
