package modrinth

import (
	"time"

	"github.com/invar-dev/invar/pkg/component"
)

// Wire types mirror the registry's JSON schema. Only the fields the
// resolver and exporter consume are declared; everything else in the
// response is ignored.

type wireProject struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ProjectType string `json:"project_type"`
	ClientSide  string `json:"client_side"`
	ServerSide  string `json:"server_side"`
}

type wireVersion struct {
	ID            string           `json:"id"`
	ProjectID     string           `json:"project_id"`
	VersionNumber string           `json:"version_number"`
	DatePublished time.Time        `json:"date_published"`
	Loaders       []string         `json:"loaders"`
	GameVersions  []string         `json:"game_versions"`
	Dependencies  []wireDependency `json:"dependencies"`
	Files         []wireFile       `json:"files"`
}

type wireDependency struct {
	ProjectID      string `json:"project_id"`
	VersionID      string `json:"version_id"`
	DependencyType string `json:"dependency_type"`
}

type wireFile struct {
	URL      string     `json:"url"`
	Filename string     `json:"filename"`
	Primary  bool       `json:"primary"`
	Size     int64      `json:"size"`
	Hashes   wireHashes `json:"hashes"`
}

type wireHashes struct {
	SHA1   string `json:"sha1"`
	SHA512 string `json:"sha512"`
}

func (p wireProject) category() component.Category {
	c, err := component.ParseCategory(p.ProjectType)
	if err != nil {
		return component.CategoryMod
	}
	return c
}

// env derives the component environment from the project's side
// declarations. The registry reports "unknown" for older projects; those
// fall back to the category default.
func (p wireProject) env() component.Env {
	client, clientKnown := parseRequirement(p.ClientSide)
	server, serverKnown := parseRequirement(p.ServerSide)
	if !clientKnown && !serverKnown {
		switch p.category() {
		case component.CategoryResourcepack, component.CategoryShaderpack:
			return component.ClientOnly()
		default:
			return component.ClientAndServer()
		}
	}
	return component.Env{Client: client, Server: server}
}

func parseRequirement(s string) (component.Requirement, bool) {
	switch s {
	case "required":
		return component.RequirementRequired, true
	case "optional":
		return component.RequirementOptional, true
	case "unsupported":
		return component.RequirementUnsupported, true
	default:
		return component.RequirementRequired, false
	}
}

func parseDependencyKind(s string) (component.DependencyKind, bool) {
	switch s {
	case "required":
		return component.DependencyRequired, true
	case "optional":
		return component.DependencyOptional, true
	case "incompatible":
		return component.DependencyIncompatible, true
	case "embedded":
		return component.DependencyEmbedded, true
	}
	return "", false
}

// primaryFile returns the file marked primary, or the first file when the
// registry marks none.
func (v wireVersion) primaryFile() (wireFile, bool) {
	for _, f := range v.Files {
		if f.Primary {
			return f, true
		}
	}
	if len(v.Files) > 0 {
		return v.Files[0], true
	}
	return wireFile{}, false
}
