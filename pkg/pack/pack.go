// Package pack models the modpack entity itself - its name, version,
// game instance and settings - and the on-disk repository layout where
// the pack and its component metadata files are persisted.
package pack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/invar-dev/invar/pkg/component"
)

// FileName is the pack manifest inside a pack repository.
const FileName = "pack.yml"

// VcsMode controls whether the pack repository auto-commits component
// changes. Parsed and persisted for compatibility; the automation itself
// is out of scope and left to the user's tooling.
type VcsMode string

const (
	VcsTrackComponents VcsMode = "track_components"
	VcsManual          VcsMode = "manual"
)

// BackupSettings mirrors the persisted backup configuration. Like
// VcsMode it is round-tripped, not acted on.
type BackupSettings struct {
	Mode     string `yaml:"mode"`
	MinDepth int    `yaml:"min_depth,omitempty"`
}

// Settings is the per-pack configuration block of pack.yml.
type Settings struct {
	VcsMode VcsMode        `yaml:"vcs_mode"`
	Backup  BackupSettings `yaml:"backup_mode"`
}

// DefaultSettings returns the settings a freshly created pack gets.
func DefaultSettings() Settings {
	return Settings{
		VcsMode: VcsTrackComponents,
		Backup:  BackupSettings{Mode: "start_stop", MinDepth: 4},
	}
}

// LocalEntry tracks one local component inside pack.yml. Local
// components exist as plain files in the repository and are shipped
// as-is; only their path and category need recording.
type LocalEntry struct {
	Path     string             `yaml:"path"`
	Category component.Category `yaml:"category"`
}

// ID derives the component ID from the entry's file stem.
func (e LocalEntry) ID() component.ID {
	base := filepath.Base(e.Path)
	return component.MakeID(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Pack is the top-level modpack entity persisted as pack.yml.
type Pack struct {
	Name     string   `yaml:"name"`
	Version  string   `yaml:"version"`
	Instance Instance `yaml:"instance"`
	Settings Settings `yaml:"settings"`

	LocalComponents []LocalEntry `yaml:"local_components,omitempty"`
}

// Read loads the pack manifest from the given repository root.
func Read(root string) (*Pack, error) {
	path := filepath.Join(root, FileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var p Pack
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &p, nil
}

// Write persists the pack manifest into the given repository root.
func (p *Pack) Write(root string) error {
	raw, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("serializing pack manifest: %w", err)
	}
	path := filepath.Join(root, FileName)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
