package optimize

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/svg"
)

const (
	svgMediaType = "image/svg+xml"
	cssMediaType = "text/css"

	defaultMaxPasses = 10
)

// placeholder tokens are swapped for inert words while the minifier runs so
// that attribute and text minification cannot rewrite them.
var placeholderToken = regexp.MustCompile(`(?i)\{\{\{components\.[a-z0-9]+\}\}\}|\{\{colors\.[a-z0-9]+\}\}`)

const sentinelPrefix = "dicebearplaceholder"

// Minifier is the default Optimizer. It rounds geometry to the configured
// number of decimals, runs the tdewolff SVG minifier without further
// rounding, then cleans up and prefixes ids.
//
// The structural flags of Config (RemoveUselessDefs, CollapseGroups,
// MergePaths, ...) are covered by the minifier's own rules and are not
// individually switchable.
type Minifier struct {
	// MaxPasses bounds Multipass runs. Zero means 10.
	MaxPasses int
}

// NewMinifier returns a Minifier with default settings.
func NewMinifier() *Minifier {
	return &Minifier{}
}

// Optimize implements Optimizer.
func (o *Minifier) Optimize(ctx context.Context, markup string, cfg Config) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	protected, tokens, err := protectPlaceholders(markup)
	if err != nil {
		return "", err
	}
	protected = RoundNumbers(protected, cfg.Precision)

	m := minify.New()
	m.AddFunc(cssMediaType, css.Minify)
	// Precision 0 keeps every significant digit; rounding happened above.
	m.Add(svgMediaType, &svg.Minifier{Precision: 0})

	passes := 1
	if cfg.Multipass {
		passes = o.MaxPasses
		if passes <= 0 {
			passes = defaultMaxPasses
		}
	}

	out := protected
	for i := 0; i < passes; i++ {
		next, err := m.String(svgMediaType, out)
		if err != nil {
			return "", fmt.Errorf("%w: pass %d: %v", ErrOptimization, i+1, err)
		}
		if cfg.CleanupIDs {
			next = CleanupIDs(next)
		}
		if next == out {
			break
		}
		out = next
	}

	if cfg.IDPrefix != "" {
		out = PrefixIDs(out, cfg.IDPrefix, cfg.IDDelimiter)
	}

	return strings.TrimSpace(restorePlaceholders(out, tokens)), nil
}

func protectPlaceholders(markup string) (string, []string, error) {
	if strings.Contains(markup, sentinelPrefix) {
		return "", nil, fmt.Errorf("%w: markup contains reserved word %q", ErrOptimization, sentinelPrefix)
	}

	var tokens []string
	protected := placeholderToken.ReplaceAllStringFunc(markup, func(token string) string {
		tokens = append(tokens, token)
		return sentinel(len(tokens) - 1)
	})

	return protected, tokens, nil
}

func restorePlaceholders(markup string, tokens []string) string {
	for i := range tokens {
		markup = strings.ReplaceAll(markup, sentinel(i), tokens[i])
	}
	return markup
}

func sentinel(i int) string {
	return sentinelPrefix + strconv.Itoa(i) + "x"
}
