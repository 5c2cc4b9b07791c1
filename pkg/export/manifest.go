// Package export holds the input model of a definition build and decodes it
// from YAML or JSON manifests.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a manifest.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath derives the manifest format from a file extension.
// Unknown extensions are treated as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Manifest is an Export plus optional node sources for the local host.
type Manifest struct {
	Export `yaml:",inline"`

	// Nodes maps design node ids to their markup, for builds that do not
	// talk to a live design host.
	Nodes *orderedmap.OrderedMap[string, NodeSource] `json:"nodes,omitempty" yaml:"nodes,omitempty"`

	// BaseDir resolves relative NodeSource.File paths. LoadFile sets it to
	// the manifest's directory.
	BaseDir string `json:"-" yaml:"-"`
}

// NodeSource describes one node of a manifest: its metadata and either
// inline SVG markup or the path of an SVG file.
type NodeSource struct {
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Type   string  `json:"type,omitempty" yaml:"type,omitempty"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
	SVG    string  `json:"svg,omitempty" yaml:"svg,omitempty"`
	File   string  `json:"file,omitempty" yaml:"file,omitempty"`
}

// Load decodes a manifest from r.
func Load(r io.Reader, format Format) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode json manifest: %w", err)
		}
	case FormatYAML, "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}

	return &m, nil
}

// LoadFile reads and decodes the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	m, err := Load(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.BaseDir = filepath.Dir(path)

	return m, nil
}

// Validate reports missing node references. Color relations are not checked
// here: dangling relations are dropped during assembly.
func (e *Export) Validate() error {
	var errs []error

	if e.Frame.ID == "" {
		errs = append(errs, errors.New("frame: missing node id"))
	}

	_ = Each(e.Components, func(group string, g ComponentGroup) error {
		return Each(g.Collection, func(key string, ref NodeRef) error {
			if ref.ID == "" {
				errs = append(errs, fmt.Errorf("components.%s.%s: missing node id", group, key))
			}
			return nil
		})
	})

	return errors.Join(errs...)
}

// Write encodes m to w. YAML output uses two space indentation.
func Write(w io.Writer, m *Manifest, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("encode json manifest: %w", err)
		}
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("encode yaml manifest: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml manifest: %w", err)
		}
	default:
		return fmt.Errorf("unsupported manifest format %q", format)
	}
	return nil
}
