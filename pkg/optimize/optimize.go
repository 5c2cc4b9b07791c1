// Package optimize defines the vector optimizer port used by the definition
// pipeline together with a default implementation built on tdewolff/minify.
package optimize

import (
	"context"
	"errors"
)

// ErrOptimization wraps every failure reported by an Optimizer.
var ErrOptimization = errors.New("svg optimization failed")

// Optimizer minifies exported SVG markup. Implementations must be
// deterministic: the same markup and Config always produce the same output.
type Optimizer interface {
	Optimize(ctx context.Context, markup string, cfg Config) (string, error)
}

// Config is the fixed optimizer configuration applied to every node.
type Config struct {
	Multipass bool

	CleanupIDs  bool
	IDPrefix    string // sanitized node name, see NormalizeName
	IDDelimiter string

	RemoveUselessDefs          bool
	RemoveUnknownsAndDefaults  bool
	RemoveUselessStrokeAndFill bool
	CollapseGroups             bool
	MergePaths                 bool

	// Precision is the number of decimal places path data, points and
	// transforms are rounded to. Zero keeps the original precision.
	Precision int
}

// DefaultConfig returns the configuration used for a node with the given
// name and the frame's precision setting.
func DefaultConfig(nodeName string, precision int) Config {
	return Config{
		Multipass:                  true,
		CleanupIDs:                 true,
		IDPrefix:                   NormalizeName(nodeName),
		IDDelimiter:                "-",
		RemoveUselessDefs:          true,
		RemoveUnknownsAndDefaults:  true,
		RemoveUselessStrokeAndFill: true,
		CollapseGroups:             true,
		MergePaths:                 true,
		Precision:                  precision,
	}
}
