// Package scaffold derives a starting export manifest from a Figma file.
//
// Component groups come from component sets (one variant per component) and
// from components named "group/variant". Color groups come from swatch
// containers named "colors/<group>": every child with a visible solid fill
// becomes a color of the group, keyed by the child's name.
package scaffold

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/kataras/dicebear-exporter/pkg/export"
	"github.com/kataras/dicebear-exporter/pkg/figma"
)

// DefaultDicebearVersion is the target version of scaffolded manifests.
const DefaultDicebearVersion = "9.x"

const colorsPrefix = "colors/"

// Options tunes the generated frame settings.
type Options struct {
	DicebearVersion string // defaults to DefaultDicebearVersion
	Precision       int
}

// Build returns a manifest for frame with the component and color groups
// found under roots. Roots are walked depth first in document order.
func Build(frame *figma.Node, roots []*figma.Node, opts Options) *export.Manifest {
	if opts.DicebearVersion == "" {
		opts.DicebearVersion = DefaultDicebearVersion
	}

	m := &export.Manifest{
		Export: export.Export{
			Frame: export.Frame{
				ID:   frame.ID,
				Name: frame.Name,
				Settings: export.FrameSettings{
					Title:           frame.Name,
					Precision:       opts.Precision,
					DicebearVersion: opts.DicebearVersion,
				},
			},
			Components: orderedmap.New[string, export.ComponentGroup](),
			Colors:     orderedmap.New[string, export.ColorGroup](),
		},
	}

	for _, root := range roots {
		walk(root, m)
	}

	return m
}

func walk(node *figma.Node, m *export.Manifest) {
	switch {
	case node.Type == "COMPONENT_SET":
		group := Key(node.Name)
		for i := range node.Children {
			child := &node.Children[i]
			if child.Type == "COMPONENT" {
				addComponent(m, group, variantKey(child.Name), child)
			}
		}
		return

	case node.Type == "COMPONENT" && strings.Contains(node.Name, "/"):
		i := strings.LastIndex(node.Name, "/")
		addComponent(m, Key(node.Name[:i]), Key(node.Name[i+1:]), node)
		return

	case strings.HasPrefix(strings.ToLower(node.Name), colorsPrefix):
		addSwatches(m, Key(node.Name[len(colorsPrefix):]), node)
		return
	}

	for i := range node.Children {
		walk(&node.Children[i], m)
	}
}

func addComponent(m *export.Manifest, group, key string, node *figma.Node) {
	g, ok := m.Components.Get(group)
	if !ok {
		g = export.ComponentGroup{Collection: orderedmap.New[string, export.NodeRef]()}
		m.Components.Set(group, g)
	}
	g.Collection.Set(uniqueKey(key, func(k string) bool {
		_, taken := g.Collection.Get(k)
		return taken
	}), export.NodeRef{ID: node.ID, Name: node.Name})
}

func addSwatches(m *export.Manifest, group string, node *figma.Node) {
	collection := orderedmap.New[string, string]()
	for i := range node.Children {
		child := &node.Children[i]
		hex, ok := solidFill(child)
		if !ok {
			continue
		}
		collection.Set(uniqueKey(Key(child.Name), func(k string) bool {
			_, taken := collection.Get(k)
			return taken
		}), hex)
	}
	if collection.Len() == 0 {
		return
	}

	m.Colors.Set(group, export.ColorGroup{
		Settings:   export.ColorSettings{IsUsedByComponents: true},
		Collection: collection,
	})
}

func solidFill(node *figma.Node) (string, bool) {
	for _, fill := range node.Fills {
		if fill.Type == "SOLID" && fill.Color != nil && fill.IsVisible() {
			return ColorToHex(fill.Color), true
		}
	}
	return "", false
}

// ColorToHex converts a Figma RGBA color (with 0-1 float values) to lowercase
// rrggbb, the form definition color values use. Alpha is dropped.
func ColorToHex(color *figma.Color) string {
	if color == nil {
		return "000000"
	}

	r := int(math.Round(color.R * 255))
	g := int(math.Round(color.G * 255))
	b := int(math.Round(color.B * 255))

	return fmt.Sprintf("%02x%02x%02x", r, g, b)
}

// Key turns a layer name into a placeholder-safe camelCase key:
// "Eyes Closed" -> "eyesClosed", "Variant 01" -> "variant01".
func Key(name string) string {
	var sb strings.Builder
	upper := false
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if sb.Len() == 0 {
				sb.WriteRune(unicode.ToLower(r))
			} else if upper {
				sb.WriteRune(unicode.ToUpper(r))
			} else {
				sb.WriteRune(r)
			}
			upper = false
		default:
			upper = true
		}
	}
	if sb.Len() == 0 {
		return "default"
	}
	return sb.String()
}

// variantKey keys a component set member. Figma names them
// "Property=Value, Other=Value"; the values form the key.
func variantKey(name string) string {
	if !strings.Contains(name, "=") {
		return Key(name)
	}

	var values []string
	for _, prop := range strings.Split(name, ",") {
		if _, value, ok := strings.Cut(prop, "="); ok {
			values = append(values, strings.TrimSpace(value))
		}
	}
	return Key(strings.Join(values, " "))
}

func uniqueKey(key string, taken func(string) bool) string {
	if !taken(key) {
		return key
	}
	for n := 2; ; n++ {
		candidate := key + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}
