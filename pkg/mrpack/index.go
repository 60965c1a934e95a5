// Package mrpack writes the Modrinth modpack interchange format: a zip
// archive carrying modrinth.index.json for registry-hosted files and an
// overrides/ tree for files shipped with the pack itself.
package mrpack

import (
	"fmt"
	"sort"

	"github.com/invar-dev/invar/pkg/component"
	"github.com/invar-dev/invar/pkg/pack"
)

// IndexFileName is the manifest entry every launcher looks for inside
// the archive.
const IndexFileName = "modrinth.index.json"

// FormatVersion is the index schema revision this package writes.
const FormatVersion = 1

// Index is the modrinth.index.json document.
type Index struct {
	FormatVersion int               `json:"formatVersion"`
	Game          string            `json:"game"`
	VersionID     string            `json:"versionId"`
	Name          string            `json:"name"`
	Summary       string            `json:"summary,omitempty"`
	Files         []IndexFile       `json:"files"`
	Dependencies  map[string]string `json:"dependencies"`
}

// IndexFile is one registry-hosted file the launcher downloads itself.
type IndexFile struct {
	Path      string            `json:"path"`
	Hashes    map[string]string `json:"hashes"`
	Env       *IndexEnv         `json:"env,omitempty"`
	Downloads []string          `json:"downloads"`
	FileSize  int64             `json:"fileSize"`
}

// IndexEnv carries the per-side requirement of a file.
type IndexEnv struct {
	Client string `json:"client"`
	Server string `json:"server"`
}

// BuildIndex assembles the index document for a pack. Remote components
// become downloadable index entries; local components are absent here
// because the exporter ships them under overrides/ instead.
func BuildIndex(p *pack.Pack, components []component.Component) (Index, error) {
	index := Index{
		FormatVersion: FormatVersion,
		Game:          "minecraft",
		VersionID:     p.Version,
		Name:          p.Name,
		Files:         []IndexFile{},
		Dependencies:  p.Instance.IndexDependencies(),
	}

	for _, c := range components {
		if c.Remote == nil {
			continue
		}
		if c.Remote.DownloadURL == "" {
			return Index{}, fmt.Errorf("component %s has no download location", c.ID)
		}
		index.Files = append(index.Files, IndexFile{
			Path: c.RuntimePath(),
			Hashes: map[string]string{
				"sha1":   c.Remote.Hashes.SHA1,
				"sha512": c.Remote.Hashes.SHA512,
			},
			Env: &IndexEnv{
				Client: string(c.Env.Client),
				Server: string(c.Env.Server),
			},
			Downloads: []string{c.Remote.DownloadURL},
			FileSize:  c.Remote.FileSize,
		})
	}

	sort.Slice(index.Files, func(i, j int) bool {
		return index.Files[i].Path < index.Files[j].Path
	})
	return index, nil
}
