package definition

import (
	"context"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/kataras/dicebear-exporter/pkg/export"
	"github.com/kataras/dicebear-exporter/pkg/host"
	"github.com/kataras/dicebear-exporter/pkg/optimize"
)

type fakeNode struct {
	node   host.Node
	markup string
}

// fakeHost records every call so tests can check the processing order.
type fakeHost struct {
	nodes map[string]fakeNode
	calls []string
}

func newFakeHost(nodes ...fakeNode) *fakeHost {
	h := &fakeHost{nodes: make(map[string]fakeNode)}
	for _, n := range nodes {
		h.nodes[n.node.ID] = n
	}
	return h
}

func (h *fakeHost) NodeByID(_ context.Context, id string) (*host.Node, error) {
	h.calls = append(h.calls, "lookup "+id)
	n, ok := h.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", host.ErrNodeNotFound, id)
	}
	node := n.node
	return &node, nil
}

func (h *fakeHost) Export(_ context.Context, node *host.Node) (string, error) {
	h.calls = append(h.calls, "export "+node.ID)
	return h.nodes[node.ID].markup, nil
}

// trimOptimizer only trims whitespace and records the configs it was given.
type trimOptimizer struct {
	configs []optimize.Config
	err     error
}

func (o *trimOptimizer) Optimize(_ context.Context, markup string, cfg optimize.Config) (string, error) {
	o.configs = append(o.configs, cfg)
	if o.err != nil {
		return "", o.err
	}
	return strings.TrimSpace(markup), nil
}

func node(id, name string, width, height float64, markup string) fakeNode {
	return fakeNode{node: host.Node{ID: id, Name: name, Width: width, Height: height}, markup: markup}
}

type variant struct {
	key string
	id  string
}

func componentGroup(settings export.ComponentSettings, variants ...variant) export.ComponentGroup {
	collection := orderedmap.New[string, export.NodeRef]()
	for _, v := range variants {
		collection.Set(v.key, export.NodeRef{ID: v.id})
	}
	return export.ComponentGroup{Settings: settings, Collection: collection}
}

func colorGroup(settings export.ColorSettings, kv ...string) export.ColorGroup {
	collection := orderedmap.New[string, string]()
	for i := 0; i+1 < len(kv); i += 2 {
		collection.Set(kv[i], kv[i+1])
	}
	return export.ColorGroup{Settings: settings, Collection: collection}
}

type namedComponent struct {
	name  string
	group export.ComponentGroup
}

type namedColor struct {
	name  string
	group export.ColorGroup
}

func newExport(frame export.Frame, components []namedComponent, colors []namedColor) *export.Export {
	e := &export.Export{
		Frame:      frame,
		Components: orderedmap.New[string, export.ComponentGroup](),
		Colors:     orderedmap.New[string, export.ColorGroup](),
	}
	for _, c := range components {
		e.Components.Set(c.name, c.group)
	}
	for _, c := range colors {
		e.Colors.Set(c.name, c.group)
	}
	return e
}
