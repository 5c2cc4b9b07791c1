package dicebearexporter

import (
	"context"
	"errors"
	"fmt"

	"github.com/kataras/dicebear-exporter/pkg/export"
	"github.com/kataras/dicebear-exporter/pkg/figma"
	"github.com/kataras/dicebear-exporter/pkg/scaffold"
)

// ScaffoldOptions configures manifest scaffolding.
type ScaffoldOptions struct {
	// FileURL must name the avatar frame with its node-id. Further node ids
	// name the nodes searched for component sets and color swatches; without
	// them the frame itself is searched.
	FileURL         string
	AccessToken     string
	DicebearVersion string
	Precision       int
	FigmaOptions    []figma.ClientOption
	Logger          Logger
}

// Scaffold reads a Figma file and returns a starting manifest for it.
func Scaffold(ctx context.Context, opts ScaffoldOptions) (*export.Manifest, error) {
	log := progress{opts.Logger}

	if opts.AccessToken == "" {
		return nil, errors.New("an access token is required")
	}

	fileKey, err := figma.ExtractFileKey(opts.FileURL)
	if err != nil {
		return nil, fmt.Errorf("extract file key: %w", err)
	}
	ids, err := figma.ExtractNodeIDs(opts.FileURL)
	if err != nil {
		return nil, fmt.Errorf("extract node IDs from URL: %w", err)
	}
	if len(ids) == 0 {
		return nil, errors.New("the URL names no frame: add a node-id parameter")
	}

	log.Infof("Fetching %d node(s) from Figma...", len(ids))
	client := figma.NewClient(opts.AccessToken, opts.FigmaOptions...)
	resp, err := client.GetFileNodes(ctx, fileKey, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch nodes: %w", err)
	}

	nodes := make([]*figma.Node, 0, len(ids))
	for _, id := range ids {
		data := resp.Nodes[id]
		if data == nil {
			return nil, fmt.Errorf("node %s not found in %s", id, fileKey)
		}
		nodes = append(nodes, &data.Document)
	}

	frame, roots := nodes[0], nodes[1:]
	if len(roots) == 0 {
		roots = nodes[:1]
	}

	m := scaffold.Build(frame, roots, scaffold.Options{
		DicebearVersion: opts.DicebearVersion,
		Precision:       opts.Precision,
	})
	log.Infof("Found %d component group(s) and %d color group(s)", m.Components.Len(), m.Colors.Len())

	return m, nil
}
