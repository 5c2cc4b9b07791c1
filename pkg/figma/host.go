package figma

import (
	"context"
	"fmt"

	"github.com/kataras/dicebear-exporter/pkg/host"
)

// Host implements host.Host on top of a Figma file: node metadata comes from the
// nodes endpoint and markup from SVG renderings.
type Host struct {
	client  *Client
	fileKey string
	nodes   map[string]*host.Node
}

var _ host.Host = (*Host)(nil)

// NewHost returns a design host for the file identified by fileKey.
func NewHost(client *Client, fileKey string) *Host {
	return &Host{
		client:  client,
		fileKey: fileKey,
		nodes:   make(map[string]*host.Node),
	}
}

// Preload fetches the metadata of ids in batches so later lookups are served from
// memory. Ids missing from the file are not an error here; NodeByID reports them.
func (h *Host) Preload(ctx context.Context, ids []string) error {
	pending := make([]string, 0, len(ids))
	for _, id := range deduplicateNodeIDs(ids) {
		if _, ok := h.nodes[id]; !ok {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	resp, err := h.client.GetFileNodes(ctx, h.fileKey, pending)
	if err != nil {
		return fmt.Errorf("failed to fetch nodes: %w", err)
	}
	for id, data := range resp.Nodes {
		if data != nil {
			h.nodes[id] = toHostNode(id, &data.Document)
		}
	}
	return nil
}

// NodeByID implements host.Host.
func (h *Host) NodeByID(ctx context.Context, id string) (*host.Node, error) {
	if n, ok := h.nodes[id]; ok {
		cp := *n
		return &cp, nil
	}

	resp, err := h.client.GetFileNodes(ctx, h.fileKey, []string{id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch node %s: %w", id, err)
	}
	data := resp.Nodes[id]
	if data == nil {
		return nil, fmt.Errorf("%w: %s", host.ErrNodeNotFound, id)
	}

	n := toHostNode(id, &data.Document)
	h.nodes[id] = n
	cp := *n
	return &cp, nil
}

// Export implements host.Host by rendering the node as SVG at scale 1.
func (h *Host) Export(ctx context.Context, node *host.Node) (string, error) {
	resp, err := h.client.GetImages(ctx, h.fileKey, []string{node.ID}, "svg", 1)
	if err != nil {
		return "", fmt.Errorf("failed to render node %s: %w", node.ID, err)
	}

	imageURL := resp.Images[node.ID]
	if imageURL == "" {
		return "", fmt.Errorf("no rendering returned for node %s", node.ID)
	}

	data, err := h.client.Download(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to download rendering of node %s: %w", node.ID, err)
	}

	return string(data), nil
}

func toHostNode(id string, doc *Node) *host.Node {
	n := &host.Node{ID: id, Name: doc.Name, Type: doc.Type}
	if box := doc.AbsoluteBoundingBox; box != nil {
		n.Width = box.Width
		n.Height = box.Height
	}
	return n
}
