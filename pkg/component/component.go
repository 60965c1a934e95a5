package component

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ID identifies a component within a pack. IDs are registry slugs for
// remote components and file stems for local ones. They are compared
// case-insensitively; use MakeID to normalize raw input.
type ID string

// MakeID normalizes a raw identifier the same way the registry does:
// trimmed and lowercased.
func MakeID(raw string) ID {
	return ID(strings.ToLower(strings.TrimSpace(raw)))
}

func (id ID) String() string { return string(id) }

// Category is the kind of content a component provides. It decides which
// runtime directory the component's file lands in and never changes after
// the component is created.
type Category string

const (
	CategoryMod          Category = "mod"
	CategoryResourcepack Category = "resourcepack"
	CategoryShaderpack   Category = "shaderpack"
	CategoryDatapack     Category = "datapack"
	CategoryConfig       Category = "config"
)

// Categories lists all valid categories in display order.
func Categories() []Category {
	return []Category{CategoryMod, CategoryResourcepack, CategoryShaderpack, CategoryDatapack, CategoryConfig}
}

// ParseCategory converts user or registry input into a Category. Registry
// responses use a few aliases ("shader", "plugin") which are folded into
// the canonical names.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mod", "plugin":
		return CategoryMod, nil
	case "resourcepack":
		return CategoryResourcepack, nil
	case "shader", "shaderpack":
		return CategoryShaderpack, nil
	case "datapack":
		return CategoryDatapack, nil
	case "config":
		return CategoryConfig, nil
	}
	return "", fmt.Errorf("unknown component category %q", s)
}

// Requirement describes how a component relates to one side (client or
// server) of the game.
type Requirement string

const (
	RequirementRequired    Requirement = "required"
	RequirementOptional    Requirement = "optional"
	RequirementUnsupported Requirement = "unsupported"
)

// Env holds the client- and server-side requirements of a component.
type Env struct {
	Client Requirement `yaml:"client"`
	Server Requirement `yaml:"server"`
}

// ClientAndServer is the default environment for mods and datapacks.
func ClientAndServer() Env {
	return Env{Client: RequirementRequired, Server: RequirementRequired}
}

// ClientOnly is the default environment for resourcepacks and shaderpacks.
func ClientOnly() Env {
	return Env{Client: RequirementRequired, Server: RequirementUnsupported}
}

func (e Env) String() string {
	switch {
	case e.Client != RequirementUnsupported && e.Server != RequirementUnsupported:
		return "client/server"
	case e.Server == RequirementUnsupported:
		return "client"
	default:
		return "server"
	}
}

// Remote is the origin of a component backed by a registry project. It
// records where the selected file comes from and how to verify it.
type Remote struct {
	DownloadURL string `yaml:"download_url"`
	FileName    string `yaml:"file_name"`
	FileSize    int64  `yaml:"file_size"`
	VersionID   string `yaml:"version_id"`
	Hashes      Hashes `yaml:"hashes"`
}

// Local is the origin of a component backed by a file in the pack
// repository. Local components have no upstream versions; the file is
// shipped as-is.
type Local struct {
	Path string `yaml:"path"`
}

// Hashes carries the content digests the registry publishes for a file.
type Hashes struct {
	SHA1   string `yaml:"sha1"`
	SHA512 string `yaml:"sha512"`
}

// Component is a named, categorized unit of installable content: a mod,
// resourcepack, shaderpack, datapack or config file. Exactly one of
// Remote/Local is set; the solver and validator only care about the
// common shape and ignore which one it is.
type Component struct {
	ID       ID             `yaml:"id"`
	Category Category       `yaml:"category"`
	Tags     TagInformation `yaml:"tags"`
	Env      Env            `yaml:"environment"`
	Remote   *Remote        `yaml:"remote,omitempty"`
	Local    *Local         `yaml:"local,omitempty"`
}

// Origin reports where the component comes from, for display and for
// duplicate detection.
func (c Component) Origin() string {
	if c.Local != nil {
		return "local"
	}
	return "remote"
}

// FileName returns the file name the component materializes as.
func (c Component) FileName() string {
	if c.Local != nil {
		return filepath.Base(c.Local.Path)
	}
	if c.Remote != nil {
		return c.Remote.FileName
	}
	return ""
}
