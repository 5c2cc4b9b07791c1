package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlManifest = `
frame:
  id: "1:1"
  name: Avatar
  settings:
    title: Lorelei
    licenseName: CC0 1.0
    creator: Jane Doe
    precision: 2
    shapeRendering: auto
    backgroundColorGroupName: background
    dicebearVersion: 7.x
components:
  mouth:
    settings:
      probability: 80
      defaults:
        happy: true
    collection:
      sad: "2:2"
      happy:
        id: "2:1"
        name: Mouth / Happy
  eyes:
    settings:
      rotation: 10
    collection:
      open: "3:1"
colors:
  skin:
    settings:
      isUsedByComponents: true
      contrastColor: hair
    collection:
      light: "#f2d3b1"
      dark: "#6b4226"
  hair:
    settings:
      isUsedByComponents: true
    collection:
      black: "#000000"
nodes:
  "1:1":
    width: 120
    file: avatar.svg
  "2:1":
    svg: <svg><path/></svg>
`

func TestLoadYAMLKeepsOrder(t *testing.T) {
	m, err := Load(strings.NewReader(yamlManifest), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "1:1", m.Frame.ID)
	assert.Equal(t, "Lorelei", m.Frame.Settings.Title)
	assert.Equal(t, 2, m.Frame.Settings.Precision)
	assert.Equal(t, "7.x", m.Frame.Settings.DicebearVersion)

	var groups []string
	require.NoError(t, Each(m.Components, func(name string, _ ComponentGroup) error {
		groups = append(groups, name)
		return nil
	}))
	assert.Equal(t, []string{"mouth", "eyes"}, groups)

	mouth, ok := Lookup(m.Components, "mouth")
	require.True(t, ok)
	assert.Equal(t, float64(80), mouth.Settings.Probability)
	assert.True(t, mouth.Settings.Defaults["happy"])
	assert.Equal(t, []NodeRef{{ID: "2:2"}, {ID: "2:1", Name: "Mouth / Happy"}}, Values(mouth.Collection))

	skin, ok := Lookup(m.Colors, "skin")
	require.True(t, ok)
	assert.True(t, skin.Settings.IsUsedByComponents)
	assert.Equal(t, "hair", skin.Settings.ContrastColor)
	assert.Equal(t, []string{"#f2d3b1", "#6b4226"}, Values(skin.Collection))

	src, ok := Lookup(m.Nodes, "1:1")
	require.True(t, ok)
	assert.Equal(t, float64(120), src.Width)
	assert.Equal(t, "avatar.svg", src.File)
}

func TestLoadJSON(t *testing.T) {
	in := `{
  "frame": {"id": "1:1", "settings": {"dicebearVersion": "5.x"}},
  "components": {
    "b": {"settings": {"offsetX": 3}, "collection": {"z": "4:1", "a": {"id": "4:2"}}},
    "a": {"settings": {}, "collection": {}}
  },
  "colors": {"bg": {"settings": {"isUsedByComponents": false}, "collection": {"white": "ffffff"}}}
}`

	m, err := Load(strings.NewReader(in), FormatJSON)
	require.NoError(t, err)

	var order []string
	_ = Each(m.Components, func(name string, g ComponentGroup) error {
		order = append(order, name)
		return Each(g.Collection, func(key string, _ NodeRef) error {
			order = append(order, name+"."+key)
			return nil
		})
	})
	assert.Equal(t, []string{"b", "b.z", "b.a", "a"}, order)

	bg, ok := Lookup(m.Colors, "bg")
	require.True(t, ok)
	assert.False(t, bg.Settings.IsUsedByComponents)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("frame:\n  id: x\n  colour: red\n"), FormatYAML)
	assert.Error(t, err)

	_, err = Load(strings.NewReader(`{"frame": {"id": "x"}, "extra": 1}`), FormatJSON)
	assert.Error(t, err)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(strings.NewReader("{}"), Format("toml"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("export.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("export.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("export"))
}

func TestValidate(t *testing.T) {
	m, err := Load(strings.NewReader(`
components:
  eyes:
    collection:
      open: ""
      closed: "1:2"
`), FormatYAML)
	require.NoError(t, err)

	err = m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame: missing node id")
	assert.Contains(t, err.Error(), "components.eyes.open: missing node id")
	assert.NotContains(t, err.Error(), "closed")
}

func TestNilMapsAreEmpty(t *testing.T) {
	var e Export

	_, ok := Lookup(e.Colors, "x")
	assert.False(t, ok)
	assert.Empty(t, Values(e.Components))
	assert.NoError(t, Each(e.Colors, func(string, ColorGroup) error { return assert.AnError }))
}

func TestNodeIDs(t *testing.T) {
	m, err := Load(strings.NewReader(yamlManifest), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, []string{"1:1", "2:2", "2:1", "3:1"}, m.NodeIDs())

	var empty Export
	assert.Empty(t, empty.NodeIDs())
}

func TestWriteKeepsOrder(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			m, err := Load(strings.NewReader(yamlManifest), FormatYAML)
			require.NoError(t, err)

			var buf strings.Builder
			require.NoError(t, Write(&buf, m, format))

			again, err := Load(strings.NewReader(buf.String()), format)
			require.NoError(t, err)
			assert.Equal(t, m.NodeIDs(), again.NodeIDs())

			skin, ok := Lookup(again.Colors, "skin")
			require.True(t, ok)
			assert.Equal(t, []string{"#f2d3b1", "#6b4226"}, Values(skin.Collection))
			assert.Equal(t, "hair", skin.Settings.ContrastColor)
		})
	}
}
