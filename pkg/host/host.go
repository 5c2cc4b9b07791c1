// Package host defines the design host port: node lookup and structural
// export of a node to raw SVG markup.
package host

import (
	"context"
	"errors"
)

// ErrNodeNotFound is returned, wrapped, when a host has no node for an id.
var ErrNodeNotFound = errors.New("node not found")

// Node is the subset of a design node the definition pipeline reads.
type Node struct {
	ID     string
	Name   string
	Type   string // FRAME, COMPONENT, ...
	Width  float64
	Height float64
}

// Host gives access to the design a definition is built from.
type Host interface {
	// NodeByID returns the node with the given id or an error wrapping
	// ErrNodeNotFound.
	NodeByID(ctx context.Context, id string) (*Node, error)
	// Export renders node as a standalone SVG document with exactly one
	// root element.
	Export(ctx context.Context, node *Node) (string, error)
}
