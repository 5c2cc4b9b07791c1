package definition

import "github.com/kataras/dicebear-exporter/pkg/template"

// Summary describes what a build produced. It is meant for reports and
// logs, not for consumption by the rendering engine.
type Summary struct {
	Mode        template.Mode
	ModeWarning string // set when the version gate fell back to legacy
	Size        float64
	Body        VariantSummary

	Components        []ComponentSummary
	Colors            []ColorSummary
	AdditionalOptions []string
}

// ComponentSummary describes one component group.
type ComponentSummary struct {
	Group    string
	Variants []VariantSummary
}

// VariantSummary describes one compiled node.
type VariantSummary struct {
	Key        string
	NodeID     string
	Default    bool
	Colors     []string // referenced color keys
	Components []string // referenced component keys
}

// ColorSummary describes one color group of the export, emitted or not.
type ColorSummary struct {
	Group            string
	Values           []string
	Emitted          bool
	DroppedRelations []string // relation fields dropped as dangling
}
