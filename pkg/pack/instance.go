package pack

import (
	"fmt"
	"strings"

	"github.com/invar-dev/invar/pkg/resolve"
)

// Loader is the mod-loading platform an instance runs on.
type Loader string

const (
	// LoaderMinecraft is vanilla Minecraft with no external modloader.
	// Mods (and thus shaders) can't be loaded under it.
	LoaderMinecraft Loader = "minecraft"
	LoaderForge     Loader = "forge"
	LoaderNeoforge  Loader = "neoforge"
	LoaderFabric    Loader = "fabric"
	LoaderQuilt     Loader = "quilt"
)

// Loaders lists the loaders a pack can be created with.
func Loaders() []Loader {
	return []Loader{LoaderMinecraft, LoaderForge, LoaderNeoforge, LoaderFabric, LoaderQuilt}
}

// ParseLoader folds the aliases seen in registry data and user input
// into a canonical Loader.
func ParseLoader(s string) (Loader, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minecraft", "vanilla", "none", "datapack":
		return LoaderMinecraft, nil
	case "forge":
		return LoaderForge, nil
	case "neoforge":
		return LoaderNeoforge, nil
	case "fabric":
		return LoaderFabric, nil
	case "quilt":
		return LoaderQuilt, nil
	}
	return "", fmt.Errorf("unknown loader %q", s)
}

// Instance is the game side of a pack: the Minecraft version and the
// loader everything must be compatible with. It supplies the resolution
// target; changing either scalar invalidates the whole assignment and
// forces a full re-resolution.
type Instance struct {
	MinecraftVersion string `yaml:"minecraft_version"`
	Loader           Loader `yaml:"loader"`
	LoaderVersion    string `yaml:"loader_version"`

	// AllowedForeignLoaders admits components built for another loader.
	// Compatibility layers like Sinytra Connector load fabric mods on
	// neoforge; listing a loader here keeps such components from being
	// reported as loader mismatches.
	AllowedForeignLoaders []Loader `yaml:"allowed_foreign_loaders,omitempty"`
}

// NewInstance builds an instance with the customary foreign-loader
// allowances: forge and neoforge accept each other's mods, as do fabric
// and quilt.
func NewInstance(minecraftVersion string, loader Loader, loaderVersion string) Instance {
	inst := Instance{
		MinecraftVersion: minecraftVersion,
		Loader:           loader,
		LoaderVersion:    loaderVersion,
	}
	switch loader {
	case LoaderForge:
		inst.AllowedForeignLoaders = []Loader{LoaderNeoforge}
	case LoaderNeoforge:
		inst.AllowedForeignLoaders = []Loader{LoaderForge}
	case LoaderFabric:
		inst.AllowedForeignLoaders = []Loader{LoaderQuilt}
	case LoaderQuilt:
		inst.AllowedForeignLoaders = []Loader{LoaderFabric}
	}
	return inst
}

// Target projects the instance onto the resolver's pack target.
func (i Instance) Target() resolve.Target {
	foreign := make([]string, 0, len(i.AllowedForeignLoaders))
	for _, l := range i.AllowedForeignLoaders {
		foreign = append(foreign, string(l))
	}
	return resolve.Target{
		Loader:         string(i.Loader),
		GameVersion:    i.MinecraftVersion,
		ForeignLoaders: foreign,
	}
}

// IndexDependencies returns the dependency map the mrpack index format
// expects: the game version plus the loader pinned to its version, under
// the loader keys Modrinth launchers understand.
func (i Instance) IndexDependencies() map[string]string {
	deps := map[string]string{"minecraft": i.MinecraftVersion}
	switch i.Loader {
	case LoaderForge:
		deps["forge"] = i.LoaderVersion
	case LoaderNeoforge:
		deps["neoforge"] = i.LoaderVersion
	case LoaderFabric:
		deps["fabric-loader"] = i.LoaderVersion
	case LoaderQuilt:
		deps["quilt-loader"] = i.LoaderVersion
	}
	return deps
}
