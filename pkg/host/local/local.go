// Package local implements host.Host on top of the nodes declared in a
// manifest, for builds that run without a live design tool.
package local

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kataras/dicebear-exporter/pkg/export"
	"github.com/kataras/dicebear-exporter/pkg/host"
)

// ErrFilesDisabled is returned when a node refers to a file and the host was
// created without file access.
var ErrFilesDisabled = errors.New("file node sources are disabled")

// Host serves nodes from a manifest's node sources.
type Host struct {
	nodes      map[string]export.NodeSource
	baseDir    string
	allowFiles bool
}

// Option configures a Host.
type Option func(*Host)

// WithBaseDir sets the directory relative file paths are resolved against.
func WithBaseDir(dir string) Option {
	return func(h *Host) { h.baseDir = dir }
}

// WithFiles enables or disables reading node markup from files.
// File access is enabled by default.
func WithFiles(allow bool) Option {
	return func(h *Host) { h.allowFiles = allow }
}

// New returns a Host for the manifest's nodes. The manifest's BaseDir is
// used unless overridden with WithBaseDir.
func New(m *export.Manifest, opts ...Option) *Host {
	h := &Host{
		nodes:      make(map[string]export.NodeSource),
		baseDir:    m.BaseDir,
		allowFiles: true,
	}
	_ = export.Each(m.Nodes, func(id string, src export.NodeSource) error {
		h.nodes[id] = src
		return nil
	})
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NodeByID implements host.Host. A node without an explicit width takes it
// from its SVG root element.
func (h *Host) NodeByID(ctx context.Context, id string) (*host.Node, error) {
	src, ok := h.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", host.ErrNodeNotFound, id)
	}

	node := &host.Node{
		ID:     id,
		Name:   src.Name,
		Type:   src.Type,
		Width:  src.Width,
		Height: src.Height,
	}
	if node.Name == "" {
		node.Name = id
	}

	if node.Width == 0 || node.Height == 0 {
		markup, err := h.markup(id, src)
		if err != nil {
			return nil, err
		}
		w, ht, err := RootSize(markup)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", id, err)
		}
		if node.Width == 0 {
			node.Width = w
		}
		if node.Height == 0 {
			node.Height = ht
		}
	}

	return node, nil
}

// Export implements host.Host.
func (h *Host) Export(ctx context.Context, node *host.Node) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, ok := h.nodes[node.ID]
	if !ok {
		return "", fmt.Errorf("%w: %q", host.ErrNodeNotFound, node.ID)
	}

	return h.markup(node.ID, src)
}

func (h *Host) markup(id string, src export.NodeSource) (string, error) {
	switch {
	case src.SVG != "":
		return src.SVG, nil
	case src.File != "":
		if !h.allowFiles {
			return "", fmt.Errorf("node %q: %w", id, ErrFilesDisabled)
		}
		path := src.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(h.baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("node %q: %w", id, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("node %q: neither svg nor file is set", id)
	}
}

// RootSize reads the width and height of the root element of an SVG
// document, falling back to the viewBox dimensions when the attributes are
// missing or not plain numbers.
func RootSize(markup string) (width, height float64, err error) {
	dec := xml.NewDecoder(strings.NewReader(markup))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return 0, 0, errors.New("svg document has no root element")
		}
		if err != nil {
			return 0, 0, fmt.Errorf("parse svg: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		var viewBox []string
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "width":
				width = parseLength(attr.Value)
			case "height":
				height = parseLength(attr.Value)
			case "viewBox":
				viewBox = strings.Fields(strings.ReplaceAll(attr.Value, ",", " "))
			}
		}
		if len(viewBox) == 4 {
			if width == 0 {
				width = parseLength(viewBox[2])
			}
			if height == 0 {
				height = parseLength(viewBox[3])
			}
		}
		if width == 0 {
			return 0, 0, errors.New("svg root has neither width nor viewBox")
		}
		return width, height, nil
	}
}

func parseLength(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "px"), 64)
	if err != nil {
		return 0
	}
	return v
}
