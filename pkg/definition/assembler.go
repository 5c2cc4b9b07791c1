// Package definition assembles a DiceBear avatar definition from an export:
// it compiles the frame and every component variant through the host,
// optimizer and template compiler, folds in the color groups and additional
// options, prunes empty values and serializes the document.
package definition

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/kataras/dicebear-exporter/pkg/export"
	"github.com/kataras/dicebear-exporter/pkg/host"
	"github.com/kataras/dicebear-exporter/pkg/optimize"
	"github.com/kataras/dicebear-exporter/pkg/template"
)

const (
	// SchemaURL is the $schema of every definition.
	SchemaURL = "https://www.dicebear.com/schemas/definition.json"
	// GeneratorComment is the $comment of every definition.
	GeneratorComment = "This file was generated by the DiceBear Exporter for Figma. https://www.figma.com/community/plugin/1005765655729342787"

	// BackgroundColorPattern restricts the values of the backgroundColor option.
	BackgroundColorPattern = "^(transparent|[a-fA-F0-9]{6})$"
)

// Logger receives progress messages.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}

// Assembler builds definitions. Nodes are processed one at a time, in the
// order of the export, and the first failure aborts the build.
type Assembler struct {
	host      host.Host
	optimizer optimize.Optimizer
	logger    Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger. A nil logger discards messages.
func WithLogger(l Logger) Option {
	return func(a *Assembler) {
		if l == nil {
			l = nopLogger{}
		}
		a.logger = l
	}
}

// New returns an Assembler reading nodes from h and optimizing them with o.
func New(h host.Host, o optimize.Optimizer, opts ...Option) *Assembler {
	a := &Assembler{host: h, optimizer: o, logger: nopLogger{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result is a built definition.
type Result struct {
	Document *Object // pruned document
	JSON     string
	Summary  Summary
}

// Assemble builds the definition of e and returns it as indented JSON.
func (a *Assembler) Assemble(ctx context.Context, e *export.Export) (string, error) {
	res, err := a.Build(ctx, e)
	if err != nil {
		return "", err
	}
	return res.JSON, nil
}

// Build builds the definition of e. No partial result is returned on error.
func (a *Assembler) Build(ctx context.Context, e *export.Export) (*Result, error) {
	var summary Summary
	summary.Mode, summary.ModeWarning = a.mode(e)

	settings := e.Frame.Settings

	frame, err := a.host.NodeByID(ctx, e.Frame.ID)
	if err != nil {
		return nil, &BuildError{Section: SectionBody, NodeID: e.Frame.ID, Err: err}
	}
	if frame.Name == "" {
		frame.Name = e.Frame.Name
	}
	summary.Size = frame.Width
	summary.Body.NodeID = frame.ID
	size := strconv.FormatFloat(frame.Width, 'f', -1, 64)

	components, err := a.buildComponents(ctx, e, summary.Mode, &summary)
	if err != nil {
		return nil, err
	}
	colors := buildColors(e, a.logger, &summary)
	additionalOptions := BuildAdditionalOptions(e)
	for pair := additionalOptions.Oldest(); pair != nil; pair = pair.Next() {
		summary.AdditionalOptions = append(summary.AdditionalOptions, pair.Key)
	}

	a.logger.Infof("Compiling frame %q (%s)...", frame.Name, frame.ID)
	body, err := a.compileNode(ctx, frame, summary.Mode, settings.Precision, &summary.Body)
	if err != nil {
		return nil, &BuildError{Section: SectionBody, NodeID: frame.ID, Err: err}
	}

	doc := NewObject(
		"$schema", SchemaURL,
		"$comment", GeneratorComment,
		"meta", NewObject(
			"license", NewObject(
				"name", settings.LicenseName,
				"url", settings.LicenseURL,
				"content", settings.LicenseContent,
			),
			"creator", NewObject(
				"name", settings.Creator,
				"url", settings.Homepage,
			),
			"source", NewObject(
				"name", settings.Title,
				"url", settings.Source,
			),
		),
		"body", body,
		"attributes", NewObject(
			"viewBox", "0 0 "+size+" "+size,
			"fill", "none",
			"shapeRendering", settings.ShapeRendering,
		),
		"components", components,
		"colors", colors,
		"additionalOptions", additionalOptions,
	)

	pruned, _ := Prune(doc).(*Object)
	out, err := Marshal(pruned)
	if err != nil {
		return nil, fmt.Errorf("serialize definition: %w", err)
	}

	return &Result{Document: pruned, JSON: out, Summary: summary}, nil
}

func (a *Assembler) mode(e *export.Export) (template.Mode, string) {
	mode, err := template.ModeForVersion(e.Frame.Settings.DicebearVersion)
	if err != nil {
		a.logger.Warnf("%v, using %s mode", err, mode)
		return mode, err.Error()
	}
	return mode, ""
}

// BuildComponents compiles every variant of every component group of e.
func (a *Assembler) BuildComponents(ctx context.Context, e *export.Export) (*Object, error) {
	mode, _ := a.mode(e)
	return a.buildComponents(ctx, e, mode, &Summary{})
}

func (a *Assembler) buildComponents(ctx context.Context, e *export.Export, mode template.Mode, summary *Summary) (*Object, error) {
	components := NewObject()
	precision := e.Frame.Settings.Precision

	err := export.Each(e.Components, func(group string, g export.ComponentGroup) error {
		s := g.Settings
		entry := NewObject(
			"rotation", truthy(s.Rotation),
			"probability", truthy(s.Probability),
			"offset", NewObject(
				"x", truthy(s.OffsetX),
				"y", truthy(s.OffsetY),
			),
		)
		values := NewObject()
		groupSummary := ComponentSummary{Group: group}

		err := export.Each(g.Collection, func(key string, ref export.NodeRef) error {
			a.logger.Infof("Compiling component %s/%s (%s)...", group, key, ref.ID)

			node, err := a.host.NodeByID(ctx, ref.ID)
			if err != nil {
				return &BuildError{Section: SectionComponents, Group: group, Key: key, NodeID: ref.ID, Err: err}
			}
			if node.Name == "" {
				node.Name = ref.Name
			}

			variant := VariantSummary{Key: key, NodeID: ref.ID, Default: s.Defaults[key]}
			content, err := a.compileNode(ctx, node, mode, precision, &variant)
			if err != nil {
				return &BuildError{Section: SectionComponents, Group: group, Key: key, NodeID: ref.ID, Err: err}
			}

			values.Set(key, NewObject(
				"content", content,
				"default", s.Defaults[key],
			))
			groupSummary.Variants = append(groupSummary.Variants, variant)
			return nil
		})
		if err != nil {
			return err
		}

		entry.Set("values", values)
		components.Set(group, entry)
		summary.Components = append(summary.Components, groupSummary)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return components, nil
}

// compileNode runs one node through export, optimization and template
// compilation.
func (a *Assembler) compileNode(ctx context.Context, node *host.Node, mode template.Mode, precision int, variant *VariantSummary) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	markup, err := a.host.Export(ctx, node)
	if err != nil {
		return "", fmt.Errorf("export node: %w", err)
	}

	optimized, err := a.optimizer.Optimize(ctx, markup, optimize.DefaultConfig(node.Name, precision))
	if err != nil {
		if !errors.Is(err, optimize.ErrOptimization) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", optimize.ErrOptimization, err)
		}
		return "", err
	}

	variant.Colors, variant.Components = template.Placeholders(optimized)

	return template.Compile(optimized, mode)
}

// BuildColors returns the color groups of e that are used by components.
// A differentFromColor or contrastColor relation is kept only when it names
// a group that exists and is used itself; otherwise it is dropped silently.
func BuildColors(e *export.Export) *Object {
	return buildColors(e, nopLogger{}, &Summary{})
}

func buildColors(e *export.Export, logger Logger, summary *Summary) *Object {
	colors := NewObject()

	_ = export.Each(e.Colors, func(group string, g export.ColorGroup) error {
		values := export.Values(g.Collection)
		colorSummary := ColorSummary{Group: group, Values: values, Emitted: g.Settings.IsUsedByComponents}
		defer func() { summary.Colors = append(summary.Colors, colorSummary) }()

		if !g.Settings.IsUsedByComponents {
			return nil
		}

		relation := func(field, target string) string {
			if target == "" {
				return ""
			}
			if ref, ok := export.Lookup(e.Colors, target); ok && ref.Settings.IsUsedByComponents {
				return target
			}
			logger.Debugf("Dropping colors.%s.%s: group %q is missing or unused", group, field, target)
			colorSummary.DroppedRelations = append(colorSummary.DroppedRelations, field)
			return ""
		}

		colors.Set(group, NewObject(
			"differentFromColor", relation("differentFromColor", g.Settings.DifferentFromColor),
			"contrastColor", relation("contrastColor", g.Settings.ContrastColor),
			"values", values,
		))
		return nil
	})

	return colors
}

// BuildAdditionalOptions returns the additional options of e. The
// backgroundColor option is emitted whenever the frame names a background
// color group present in the export, whether or not that group is used by
// components.
func BuildAdditionalOptions(e *export.Export) *Object {
	options := NewObject()

	name := e.Frame.Settings.BackgroundColorGroupName
	if name == "" {
		return options
	}
	group, ok := export.Lookup(e.Colors, name)
	if !ok {
		return options
	}

	items := openapi3.NewStringSchema().WithPattern(BackgroundColorPattern)
	background := openapi3.NewArraySchema().WithItems(items)
	background.Default = export.Values(group.Collection)

	options.Set("backgroundColor", schemaObject(background))
	return options
}

// schemaObject lays s out as type, items, pattern, default, the key order
// DiceBear option descriptors use. openapi3.Schema marshals alphabetically.
func schemaObject(s *openapi3.Schema) *Object {
	o := NewObject()
	if s.Type != nil {
		if types := s.Type.Slice(); len(types) > 0 {
			o.Set("type", types[0])
		}
	}
	if s.Items != nil && s.Items.Value != nil {
		o.Set("items", schemaObject(s.Items.Value))
	}
	if s.Pattern != "" {
		o.Set("pattern", s.Pattern)
	}
	if s.Default != nil {
		o.Set("default", s.Default)
	}
	return o
}

// truthy maps the zero value to nil so that Prune drops it.
func truthy(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}
