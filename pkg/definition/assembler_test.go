package definition

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kataras/dicebear-exporter/pkg/export"
	"github.com/kataras/dicebear-exporter/pkg/host"
	"github.com/kataras/dicebear-exporter/pkg/optimize"
	"github.com/kataras/dicebear-exporter/pkg/template"
)

func sampleExport(version string) (*export.Export, *fakeHost) {
	h := newFakeHost(
		node("f", "Avatar", 120, 80, `<svg width="120" height="80"><path fill="{{colors.skin}}"/>{{{components.eyes}}}</svg>`),
		node("e1", "Eyes Open", 0, 0, `<svg><circle/></svg>`),
		node("e2", "Eyes Closed", 0, 0, "\n<svg><line/></svg>\n"),
	)

	e := newExport(
		export.Frame{ID: "f", Settings: export.FrameSettings{
			Title:           "Test",
			LicenseName:     "CC0",
			Creator:         "Me",
			ShapeRendering:  "crispEdges",
			DicebearVersion: version,
			Precision:       3,
		}},
		[]namedComponent{
			{"eyes", componentGroup(export.ComponentSettings{
				Probability: 50,
				OffsetX:     2,
				Defaults:    map[string]bool{"open": true},
			}, variant{"open", "e1"}, variant{"closed", "e2"})},
		},
		[]namedColor{
			{"skin", colorGroup(export.ColorSettings{IsUsedByComponents: true, ContrastColor: "hair"}, "light", "#f2d3b1")},
			{"hair", colorGroup(export.ColorSettings{}, "black", "#000000")},
		},
	)

	return e, h
}

func TestAssembleDirect(t *testing.T) {
	e, h := sampleExport("7.x")

	got, err := New(h, &trimOptimizer{}).Assemble(context.Background(), e)
	require.NoError(t, err)

	want := `{
  "$schema": "https://www.dicebear.com/schemas/definition.json",
  "$comment": "This file was generated by the DiceBear Exporter for Figma. https://www.figma.com/community/plugin/1005765655729342787",
  "meta": {
    "license": {
      "name": "CC0"
    },
    "creator": {
      "name": "Me"
    },
    "source": {
      "name": "Test"
    }
  },
  "body": "<path fill=\"{{colors.skin}}\"/>{{{components.eyes}}}",
  "attributes": {
    "viewBox": "0 0 120 120",
    "fill": "none",
    "shapeRendering": "crispEdges"
  },
  "components": {
    "eyes": {
      "probability": 50,
      "offset": {
        "x": 2
      },
      "values": {
        "open": {
          "content": "<circle/>",
          "default": true
        },
        "closed": {
          "content": "<line/>",
          "default": false
        }
      }
    }
  },
  "colors": {
    "skin": {
      "values": [
        "#f2d3b1"
      ]
    }
  }
}`

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleLegacy(t *testing.T) {
	e, h := sampleExport("5.x")

	res, err := New(h, &trimOptimizer{}).Build(context.Background(), e)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.JSON), &doc))

	assert.Equal(t,
		"`<path fill=\"${escape.xml(`${colors.skin}`)}\"/>${components.eyes?.value(components, colors) ?? ''}`",
		doc["body"])

	open := doc["components"].(map[string]any)["eyes"].(map[string]any)["values"].(map[string]any)["open"].(map[string]any)
	assert.Equal(t, "`<circle/>`", open["content"])
	assert.Equal(t, template.ModeLegacy, res.Summary.Mode)
	assert.Empty(t, res.Summary.ModeWarning)
}

func TestBuildSequentialOrder(t *testing.T) {
	e, h := sampleExport("7.x")
	opt := &trimOptimizer{}

	_, err := New(h, opt).Build(context.Background(), e)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"lookup f",
		"lookup e1", "export e1",
		"lookup e2", "export e2",
		"export f",
	}, h.calls)

	require.Len(t, opt.configs, 3)
	assert.Equal(t, optimize.DefaultConfig("Eyes Open", 3), opt.configs[0])
	assert.Equal(t, "eyes-closed", opt.configs[1].IDPrefix)
	assert.Equal(t, "avatar", opt.configs[2].IDPrefix)
}

func TestBuildSummary(t *testing.T) {
	e, h := sampleExport("7.x")

	res, err := New(h, &trimOptimizer{}).Build(context.Background(), e)
	require.NoError(t, err)

	s := res.Summary
	assert.Equal(t, template.ModeDirect, s.Mode)
	assert.Equal(t, float64(120), s.Size)
	assert.Equal(t, "f", s.Body.NodeID)
	assert.Equal(t, []string{"skin"}, s.Body.Colors)
	assert.Equal(t, []string{"eyes"}, s.Body.Components)

	require.Len(t, s.Components, 1)
	assert.Equal(t, "eyes", s.Components[0].Group)
	assert.Equal(t, []VariantSummary{
		{Key: "open", NodeID: "e1", Default: true},
		{Key: "closed", NodeID: "e2"},
	}, s.Components[0].Variants)

	assert.Equal(t, []ColorSummary{
		{Group: "skin", Values: []string{"#f2d3b1"}, Emitted: true, DroppedRelations: []string{"contrastColor"}},
		{Group: "hair", Values: []string{"#000000"}},
	}, s.Colors)
}

func TestBuildUnsupportedVersionFallsBackToLegacy(t *testing.T) {
	e, h := sampleExport("12.x")

	res, err := New(h, &trimOptimizer{}).Build(context.Background(), e)
	require.NoError(t, err)

	assert.Equal(t, template.ModeLegacy, res.Summary.Mode)
	assert.Contains(t, res.Summary.ModeWarning, "unsupported dicebear version")
}

func TestBuildNodeNotFound(t *testing.T) {
	e, h := sampleExport("7.x")
	delete(h.nodes, "e2")

	res, err := New(h, &trimOptimizer{}).Build(context.Background(), e)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, host.ErrNodeNotFound))

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, SectionComponents, buildErr.Section)
	assert.Equal(t, "eyes", buildErr.Group)
	assert.Equal(t, "closed", buildErr.Key)
	assert.Equal(t, "e2", buildErr.NodeID)
	assert.Contains(t, err.Error(), "components.eyes.closed")
}

func TestBuildFrameNotFound(t *testing.T) {
	e, h := sampleExport("7.x")
	delete(h.nodes, "f")

	_, err := New(h, &trimOptimizer{}).Assemble(context.Background(), e)

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, SectionBody, buildErr.Section)
	assert.ErrorIs(t, err, host.ErrNodeNotFound)
	assert.Equal(t, []string{"lookup f"}, h.calls)
}

func TestBuildOptimizationFailure(t *testing.T) {
	e, h := sampleExport("7.x")
	boom := errors.New("boom")

	_, err := New(h, &trimOptimizer{err: boom}).Build(context.Background(), e)
	assert.ErrorIs(t, err, optimize.ErrOptimization)
	assert.ErrorIs(t, err, boom)
}

func TestBuildMalformedMarkup(t *testing.T) {
	e, h := sampleExport("7.x")
	h.nodes["e1"] = node("e1", "Eyes Open", 0, 0, `<svg><circle/>`)

	_, err := New(h, &trimOptimizer{}).Build(context.Background(), e)
	assert.ErrorIs(t, err, template.ErrMalformedMarkup)
}

func TestBuildCancelled(t *testing.T) {
	e, h := sampleExport("7.x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(h, &trimOptimizer{}).Build(ctx, e)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestViewBoxUsesWidthOnly(t *testing.T) {
	h := newFakeHost(node("f", "Frame", 120, 33, `<svg></svg>`))
	e := newExport(export.Frame{ID: "f", Settings: export.FrameSettings{DicebearVersion: "9.x"}}, nil, nil)

	res, err := New(h, &trimOptimizer{}).Build(context.Background(), e)
	require.NoError(t, err)

	attrs, _ := res.Document.Get("attributes")
	viewBox, _ := attrs.(*Object).Get("viewBox")
	assert.Equal(t, "0 0 120 120", viewBox)

	// Empty body, components, colors and meta are pruned away.
	_, hasBody := res.Document.Get("body")
	assert.False(t, hasBody)
	_, hasMeta := res.Document.Get("meta")
	assert.False(t, hasMeta)
	_, hasComponents := res.Document.Get("components")
	assert.False(t, hasComponents)
}

func TestViewBoxFractionalWidth(t *testing.T) {
	h := newFakeHost(node("f", "Frame", 64.5, 64.5, `<svg><g/></svg>`))
	e := newExport(export.Frame{ID: "f"}, nil, nil)

	res, err := New(h, &trimOptimizer{}).Build(context.Background(), e)
	require.NoError(t, err)
	assert.Contains(t, res.JSON, `"viewBox": "0 0 64.5 64.5"`)
}

func TestBuildComponentsDefaultsAndPruning(t *testing.T) {
	h := newFakeHost(
		node("a", "A", 0, 0, `<svg><a/></svg>`),
		node("b", "B", 0, 0, `<svg><b/></svg>`),
		node("c", "C", 0, 0, `<svg><c/></svg>`),
	)
	e := newExport(export.Frame{ID: "f", Settings: export.FrameSettings{DicebearVersion: "7.x"}},
		[]namedComponent{
			{"plain", componentGroup(export.ComponentSettings{Rotation: 0, OffsetX: 0, OffsetY: 0},
				variant{"a", "a"})},
			{"tuned", componentGroup(export.ComponentSettings{
				Rotation: 15, Probability: 30, OffsetY: -4,
				Defaults: map[string]bool{"b": true, "c": false},
			}, variant{"b", "b"}, variant{"c", "c"})},
		}, nil)

	components, err := New(h, &trimOptimizer{}).BuildComponents(context.Background(), e)
	require.NoError(t, err)

	got, err := Marshal(Prune(components))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &doc))

	want := map[string]any{
		"plain": map[string]any{
			"values": map[string]any{
				"a": map[string]any{"content": "<a/>", "default": false},
			},
		},
		"tuned": map[string]any{
			"rotation":    float64(15),
			"probability": float64(30),
			"offset":      map[string]any{"y": float64(-4)},
			"values": map[string]any{
				"b": map[string]any{"content": "<b/>", "default": true},
				"c": map[string]any{"content": "<c/>", "default": false},
			},
		},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("BuildComponents() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildColorsFiltering(t *testing.T) {
	e := newExport(export.Frame{ID: "f"}, nil, []namedColor{
		{"a", colorGroup(export.ColorSettings{IsUsedByComponents: false}, "x", "111111")},
		{"b", colorGroup(export.ColorSettings{IsUsedByComponents: true, DifferentFromColor: "a"}, "y", "222222", "z", "333333")},
		{"c", colorGroup(export.ColorSettings{IsUsedByComponents: true, DifferentFromColor: "b", ContrastColor: "missing"}, "w", "444444")},
	})

	colors := BuildColors(e)

	_, hasA := colors.Get("a")
	assert.False(t, hasA)

	b, ok := colors.Get("b")
	require.True(t, ok)
	got, err := Marshal(Prune(b))
	require.NoError(t, err)
	assert.JSONEq(t, `{"values": ["222222", "333333"]}`, got)

	c, ok := colors.Get("c")
	require.True(t, ok)
	got, err = Marshal(Prune(c))
	require.NoError(t, err)
	assert.JSONEq(t, `{"differentFromColor": "b", "values": ["444444"]}`, got)
}

func TestBuildAdditionalOptions(t *testing.T) {
	tests := []struct {
		name       string
		background string
		colors     []namedColor
		want       string
	}{
		{
			name:       "unused background group is still emitted",
			background: "bg",
			colors: []namedColor{
				{"bg", colorGroup(export.ColorSettings{IsUsedByComponents: false}, "white", "ffffff", "none", "transparent")},
			},
			want: `{"backgroundColor": {"type": "array", "items": {"type": "string", "pattern": "^(transparent|[a-fA-F0-9]{6})$"}, "default": ["ffffff", "transparent"]}}`,
		},
		{
			name:       "missing group",
			background: "bg",
			want:       `{}`,
		},
		{
			name: "no background group name",
			colors: []namedColor{
				{"bg", colorGroup(export.ColorSettings{IsUsedByComponents: true}, "white", "ffffff")},
			},
			want: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newExport(export.Frame{ID: "f", Settings: export.FrameSettings{BackgroundColorGroupName: tt.background}}, nil, tt.colors)

			got, err := Marshal(BuildAdditionalOptions(e))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, got)
		})
	}
}

func TestBackgroundOptionKeyOrder(t *testing.T) {
	e := newExport(export.Frame{ID: "f", Settings: export.FrameSettings{BackgroundColorGroupName: "bg"}},
		nil,
		[]namedColor{{"bg", colorGroup(export.ColorSettings{}, "a", "aaaaaa")}})

	options := BuildAdditionalOptions(e)
	v, ok := options.Get("backgroundColor")
	require.True(t, ok)
	background, ok := v.(*Object)
	require.True(t, ok)

	var keys []string
	for pair := background.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"type", "items", "default"}, keys)

	got, err := Marshal(options)
	require.NoError(t, err)
	want := `{
  "backgroundColor": {
    "type": "array",
    "items": {
      "type": "string",
      "pattern": "^(transparent|[a-fA-F0-9]{6})$"
    },
    "default": [
      "aaaaaa"
    ]
  }
}`
	assert.Equal(t, want, strings.TrimSpace(got))
}

func TestBackgroundOptionAsymmetry(t *testing.T) {
	h := newFakeHost(node("f", "Frame", 10, 10, `<svg><g/></svg>`))
	e := newExport(export.Frame{ID: "f", Settings: export.FrameSettings{BackgroundColorGroupName: "bg", DicebearVersion: "8.x"}},
		nil,
		[]namedColor{{"bg", colorGroup(export.ColorSettings{}, "a", "aaaaaa")}})

	res, err := New(h, &trimOptimizer{}).Build(context.Background(), e)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.JSON), &doc))

	assert.NotContains(t, doc, "colors")
	options := doc["additionalOptions"].(map[string]any)
	background := options["backgroundColor"].(map[string]any)
	assert.Equal(t, []any{"aaaaaa"}, background["default"])
	assert.Equal(t, []string{"backgroundColor"}, res.Summary.AdditionalOptions)
}
