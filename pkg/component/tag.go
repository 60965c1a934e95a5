package component

// Tag is a free-form label grouping components by theme. A handful of
// well-known tags exist; anything else is a custom tag.
type Tag string

const (
	TagBuilding    Tag = "building"
	TagCombat      Tag = "combat"
	TagDimensions  Tag = "dimensions"
	TagFarming     Tag = "farming"
	TagLibrary     Tag = "library"
	TagMobs        Tag = "mobs"
	TagPerformance Tag = "performance"
	TagProgression Tag = "progression"
	TagQol         Tag = "qol"
	TagStorage     Tag = "storage"
	TagTechnology  Tag = "technology"
	TagVisual      Tag = "visual"
)

// TagInformation groups a component's main tag with its secondary ones.
// The main tag decides which subfolder the component's metadata file is
// saved under when first added; moving files afterwards is harmless.
type TagInformation struct {
	Main   *Tag  `yaml:"main,omitempty"`
	Others []Tag `yaml:"others,omitempty"`
}

// Untagged is the zero TagInformation.
func Untagged() TagInformation { return TagInformation{} }
