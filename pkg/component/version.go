package component

import (
	"time"
)

// DependencyKind classifies an edge from a version to another component.
type DependencyKind string

const (
	// DependencyRequired means the target component must be present and
	// satisfy the edge's range.
	DependencyRequired DependencyKind = "required"

	// DependencyOptional means the target component is not pulled in
	// automatically, but if present it must satisfy the edge's range.
	DependencyOptional DependencyKind = "optional"

	// DependencyIncompatible forbids co-selection of the target at any
	// version within the edge's range (any version when the range is
	// empty).
	DependencyIncompatible DependencyKind = "incompatible"

	// DependencyEmbedded means the target ships inside this version's
	// file. Embedded targets never need a separate selection.
	DependencyEmbedded DependencyKind = "embedded"
)

// Dependency is one constraint edge declared by a Version against another
// component.
type Dependency struct {
	// Target is the component the edge points at.
	Target ID `yaml:"target"`

	// Kind decides whether the edge requires, tolerates or forbids the
	// target.
	Kind DependencyKind `yaml:"kind"`

	// Range is a semver range constraint on the target's selected
	// version. Empty means unbounded ("any version works"), which is the
	// common case for registry metadata.
	Range string `yaml:"range,omitempty"`
}

// Version is one concrete, selectable release of a component. Versions
// are immutable once constructed; a new release is a new Version, never a
// mutation of an old one.
type Version struct {
	// ID is the registry's identifier for this release.
	ID string `yaml:"id"`

	// Number is the version identifier. It is semver-like but not
	// guaranteed to be strict semver for every registry.
	Number string `yaml:"number"`

	// Published is when the registry published this release. It breaks
	// ties between versions whose ordering is otherwise ambiguous.
	Published time.Time `yaml:"published"`

	// Dependencies lists the constraint edges this release declares, in
	// registry order.
	Dependencies []Dependency `yaml:"dependencies,omitempty"`

	// Loaders is the set of loader identifiers this release supports
	// (e.g. "fabric", "forge"). The wildcard "other" marks releases
	// whose loader the registry doesn't model; those are accepted for
	// any pack loader.
	Loaders []string `yaml:"loaders"`

	// GameVersions is the set of game versions this release supports.
	// Resourcepacks and shaderpacks are typically game-version agnostic
	// and carry an empty set.
	GameVersions []string `yaml:"game_versions"`

	// Env is the client/server environment the registry declares for
	// this release. Opaque to resolution; materialization and export
	// consume it.
	Env Env `yaml:"environment"`

	// File is the downloadable artifact for this release. Opaque to
	// resolution; the export layer consumes it.
	File VersionFile `yaml:"file"`
}

// VersionFile is the content reference of a release: a download locator
// for remote components, or a local path.
type VersionFile struct {
	URL    string `yaml:"url,omitempty"`
	Path   string `yaml:"path,omitempty"`
	Name   string `yaml:"name"`
	Size   int64  `yaml:"size"`
	Hashes Hashes `yaml:"hashes"`
}

// SupportsLoader reports whether the release can run under the given
// loader, taking the pack's allowed foreign loaders into account. An
// empty loader set and the "other" wildcard both pass: the registry
// doesn't know, so it's up to the user.
func (v Version) SupportsLoader(loader string, foreign map[string]bool) bool {
	if len(v.Loaders) == 0 {
		return true
	}
	for _, l := range v.Loaders {
		if l == loader || l == "other" || foreign[l] {
			return true
		}
	}
	return false
}

// SupportsGameVersion reports whether the release supports the given game
// version. An empty set means game-version agnostic.
func (v Version) SupportsGameVersion(gameVersion string) bool {
	if len(v.GameVersions) == 0 {
		return true
	}
	for _, gv := range v.GameVersions {
		if gv == gameVersion {
			return true
		}
	}
	return false
}

// Dependency returns the edge targeting the given component, if any.
func (v Version) Dependency(target ID) (Dependency, bool) {
	for _, d := range v.Dependencies {
		if d.Target == target {
			return d, true
		}
	}
	return Dependency{}, false
}
