package dicebearexporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kataras/dicebear-exporter/internal/logging"
	"github.com/kataras/dicebear-exporter/pkg/definition"
	"github.com/kataras/dicebear-exporter/pkg/export"
	"github.com/kataras/dicebear-exporter/pkg/figma"
	"github.com/kataras/dicebear-exporter/pkg/host"
	"github.com/kataras/dicebear-exporter/pkg/host/local"
	"github.com/kataras/dicebear-exporter/pkg/optimize"
	"github.com/kataras/dicebear-exporter/pkg/template"
)

// Version is the release version of the exporter.
const Version = "0.1.0"

// Options configures a definition build.
type Options struct {
	ManifestPath string           // YAML or JSON manifest file
	Manifest     *export.Manifest // used instead of ManifestPath when set
	FileURL      string           // Figma file URL; together with AccessToken selects the Figma host
	AccessToken  string
	Optimizer    optimize.Optimizer   // nil = optimize.NewMinifier()
	FigmaOptions []figma.ClientOption // extra Figma client options
	Logger       Logger               // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NewSlogLogger adapts a structured logger to Logger.
func NewSlogLogger(l *slog.Logger) Logger {
	return logging.Leveled{Logger: l}
}

// Result contains the build output.
type Result struct {
	Definition string // indented definition JSON
	Title      string
	Mode       template.Mode
	Summary    definition.Summary
}

// progress forwards to an optional Logger.
type progress struct {
	logger Logger
}

func (p progress) Debugf(f string, a ...any) {
	if p.logger != nil {
		p.logger.Debugf(f, a...)
	}
}

func (p progress) Infof(f string, a ...any) {
	if p.logger != nil {
		p.logger.Infof(f, a...)
	}
}

func (p progress) Warnf(f string, a ...any) {
	if p.logger != nil {
		p.logger.Warnf(f, a...)
	}
}

// Run loads the manifest, builds its definition and returns the result.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Optimizer == nil {
		opts.Optimizer = optimize.NewMinifier()
	}
	log := progress{opts.Logger}

	m := opts.Manifest
	if m == nil {
		if opts.ManifestPath == "" {
			return nil, errors.New("no manifest given")
		}
		log.Infof("Loading manifest %s...", opts.ManifestPath)
		loaded, err := export.LoadFile(opts.ManifestPath)
		if err != nil {
			return nil, fmt.Errorf("load manifest: %w", err)
		}
		m = loaded
	}

	h, err := designHost(ctx, opts, log, m)
	if err != nil {
		return nil, err
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	assembler := definition.New(h, opts.Optimizer, definition.WithLogger(log))
	res, err := assembler.Build(ctx, &m.Export)
	if err != nil {
		return nil, fmt.Errorf("build definition: %w", err)
	}

	title := m.Frame.Settings.Title
	if title == "" {
		title = m.Frame.Name
	}

	return &Result{
		Definition: res.JSON,
		Title:      title,
		Mode:       res.Summary.Mode,
		Summary:    res.Summary,
	}, nil
}

// designHost selects the Figma host when a file URL and a token are given and
// the manifest's own nodes otherwise. A missing frame id is taken from the URL.
func designHost(ctx context.Context, opts Options, log progress, m *export.Manifest) (host.Host, error) {
	if opts.FileURL == "" || opts.AccessToken == "" {
		if opts.FileURL != "" {
			log.Warnf("No access token given, ignoring %s and using manifest nodes", opts.FileURL)
		}
		return local.New(m), nil
	}

	log.Infof("Extracting file key from URL...")
	fileKey, err := figma.ExtractFileKey(opts.FileURL)
	if err != nil {
		return nil, fmt.Errorf("extract file key: %w", err)
	}
	log.Infof("File key: %s", fileKey)

	if m.Frame.ID == "" {
		ids, err := figma.ExtractNodeIDs(opts.FileURL)
		if err != nil {
			return nil, fmt.Errorf("extract node IDs from URL: %w", err)
		}
		if len(ids) > 0 {
			m.Frame.ID = ids[0]
			log.Infof("Using frame %s from URL", m.Frame.ID)
		}
		if len(ids) > 1 {
			log.Warnf("URL names %d nodes, ignoring all but %s", len(ids), ids[0])
		}
	}

	log.Infof("Authenticating with Figma API...")
	fh := figma.NewHost(figma.NewClient(opts.AccessToken, opts.FigmaOptions...), fileKey)

	ids := m.NodeIDs()
	log.Infof("Fetching %d node(s) from Figma...", len(ids))
	if err := fh.Preload(ctx, ids); err != nil {
		return nil, err
	}

	return fh, nil
}
