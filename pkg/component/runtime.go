package component

import (
	"path"
	"strings"
)

// RuntimeDirectory is the folder inside a game instance where a category
// of components is materialized.
type RuntimeDirectory string

const (
	RuntimeMods          RuntimeDirectory = "mods"
	RuntimeResourcepacks RuntimeDirectory = "resourcepacks"
	RuntimeShaderpacks   RuntimeDirectory = "shaderpacks"
	RuntimeDatapacks     RuntimeDirectory = "datapacks"
	RuntimeConfig        RuntimeDirectory = "config"
)

// RuntimeDirectories lists every runtime directory a pack repository sets up.
func RuntimeDirectories() []RuntimeDirectory {
	return []RuntimeDirectory{RuntimeMods, RuntimeResourcepacks, RuntimeShaderpacks, RuntimeDatapacks, RuntimeConfig}
}

// RuntimeDirectoryFor maps a category to the directory its files live in.
func RuntimeDirectoryFor(c Category) RuntimeDirectory {
	switch c {
	case CategoryResourcepack:
		return RuntimeResourcepacks
	case CategoryShaderpack:
		return RuntimeShaderpacks
	case CategoryDatapack:
		return RuntimeDatapacks
	case CategoryConfig:
		return RuntimeConfig
	default:
		return RuntimeMods
	}
}

// CategoryForDirectory is the inverse of RuntimeDirectoryFor, used to
// auto-categorize local files by their parent directory.
func CategoryForDirectory(dir string) (Category, bool) {
	switch RuntimeDirectory(strings.ToLower(dir)) {
	case RuntimeMods:
		return CategoryMod, true
	case RuntimeResourcepacks:
		return CategoryResourcepack, true
	case RuntimeShaderpacks:
		return CategoryShaderpack, true
	case RuntimeDatapacks:
		return CategoryDatapack, true
	case RuntimeConfig:
		return CategoryConfig, true
	}
	return "", false
}

// RuntimePath returns the slash-separated path (relative to the instance
// root) where this component's file should end up.
//
// Mods, datapacks and config files keep their upstream file name.
// Resourcepacks and shaderpacks are renamed to "<id>.<ext>" so that pack
// managers show a stable name regardless of how the author named the
// upload.
func (c Component) RuntimePath() string {
	dir := string(RuntimeDirectoryFor(c.Category))

	name := c.FileName()
	switch c.Category {
	case CategoryResourcepack, CategoryShaderpack:
		ext := strings.TrimPrefix(path.Ext(name), ".")
		if ext == "" {
			ext = "zip"
		}
		name = c.ID.String() + "." + ext
	}

	return path.Join(dir, name)
}
