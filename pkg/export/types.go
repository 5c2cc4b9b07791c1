package export

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Export is the input of a definition build: the avatar frame, its
// component groups and its color groups. Group and key order is the
// document order of the manifest.
type Export struct {
	Frame      Frame                                          `json:"frame" yaml:"frame"`
	Components *orderedmap.OrderedMap[string, ComponentGroup] `json:"components,omitempty" yaml:"components,omitempty"`
	Colors     *orderedmap.OrderedMap[string, ColorGroup]     `json:"colors,omitempty" yaml:"colors,omitempty"`
}

// Frame references the design node that holds the complete avatar.
type Frame struct {
	ID       string        `json:"id" yaml:"id"`
	Name     string        `json:"name,omitempty" yaml:"name,omitempty"`
	Settings FrameSettings `json:"settings" yaml:"settings"`
}

// FrameSettings carries the licensing metadata and build options of a frame.
type FrameSettings struct {
	Title          string `json:"title,omitempty" yaml:"title,omitempty"`
	LicenseName    string `json:"licenseName,omitempty" yaml:"licenseName,omitempty"`
	LicenseURL     string `json:"licenseUrl,omitempty" yaml:"licenseUrl,omitempty"`
	LicenseContent string `json:"licenseContent,omitempty" yaml:"licenseContent,omitempty"`
	Creator        string `json:"creator,omitempty" yaml:"creator,omitempty"`
	Homepage       string `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Source         string `json:"source,omitempty" yaml:"source,omitempty"`

	Precision                int    `json:"precision,omitempty" yaml:"precision,omitempty"`
	ShapeRendering           string `json:"shapeRendering,omitempty" yaml:"shapeRendering,omitempty"`
	BackgroundColorGroupName string `json:"backgroundColorGroupName,omitempty" yaml:"backgroundColorGroupName,omitempty"`
	DicebearVersion          string `json:"dicebearVersion,omitempty" yaml:"dicebearVersion,omitempty"`
}

// ComponentGroup is a named set of mutually alternative variants.
type ComponentGroup struct {
	Settings   ComponentSettings                       `json:"settings" yaml:"settings"`
	Collection *orderedmap.OrderedMap[string, NodeRef] `json:"collection,omitempty" yaml:"collection,omitempty"`
}

// ComponentSettings are shared by all variants of a group. Zero values mean
// "not set".
type ComponentSettings struct {
	Rotation    float64         `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Probability float64         `json:"probability,omitempty" yaml:"probability,omitempty"`
	OffsetX     float64         `json:"offsetX,omitempty" yaml:"offsetX,omitempty"`
	OffsetY     float64         `json:"offsetY,omitempty" yaml:"offsetY,omitempty"`
	Defaults    map[string]bool `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

// ColorGroup is a named, ordered set of color literals.
type ColorGroup struct {
	Settings   ColorSettings                          `json:"settings" yaml:"settings"`
	Collection *orderedmap.OrderedMap[string, string] `json:"collection,omitempty" yaml:"collection,omitempty"`
}

// ColorSettings holds the usage flag and the relations of a color group.
type ColorSettings struct {
	IsUsedByComponents bool   `json:"isUsedByComponents" yaml:"isUsedByComponents"`
	DifferentFromColor string `json:"differentFromColor,omitempty" yaml:"differentFromColor,omitempty"`
	ContrastColor      string `json:"contrastColor,omitempty" yaml:"contrastColor,omitempty"`
}

// NodeRef points at a design node. In a manifest it is written either as an
// object with id and name or as a bare id string.
type NodeRef struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

type nodeRefFields NodeRef

// UnmarshalJSON accepts "1:23" as well as {"id": "1:23", "name": "Eyes"}.
func (r *NodeRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = NodeRef{ID: id}
		return nil
	}

	var fields nodeRefFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("node reference: %w", err)
	}
	*r = NodeRef(fields)
	return nil
}

// UnmarshalYAML accepts a scalar id as well as a mapping with id and name.
func (r *NodeRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*r = NodeRef{ID: value.Value}
		return nil
	}

	var fields nodeRefFields
	if err := value.Decode(&fields); err != nil {
		return fmt.Errorf("node reference: %w", err)
	}
	*r = NodeRef(fields)
	return nil
}

// Each calls fn for every entry of m in insertion order and stops at the
// first error. A nil map has no entries.
func Each[V any](m *orderedmap.OrderedMap[string, V], fn func(key string, value V) error) error {
	if m == nil {
		return nil
	}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		if err := fn(pair.Key, pair.Value); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the value stored under key. A nil map has no entries.
func Lookup[V any](m *orderedmap.OrderedMap[string, V], key string) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	return m.Get(key)
}

// Values returns the values of m in insertion order.
func Values[V any](m *orderedmap.OrderedMap[string, V]) []V {
	var values []V
	_ = Each(m, func(_ string, v V) error {
		values = append(values, v)
		return nil
	})
	return values
}

// NodeIDs returns the frame id followed by every component variant id, in
// document order and without duplicates.
func (e *Export) NodeIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	add(e.Frame.ID)
	_ = Each(e.Components, func(_ string, g ComponentGroup) error {
		return Each(g.Collection, func(_ string, ref NodeRef) error {
			add(ref.ID)
			return nil
		})
	})
	return ids
}
