// Package formatter renders human readable reports of definition builds.
package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/kataras/dicebear-exporter/pkg/definition"
)

// ToMarkdown transforms a build summary into a markdown report.
// The output lists the compilation mode, the canvas size, every component group with its
// variants and defaults, the color groups with the relations that were dropped, and
// the additional options exposed to the rendering engine.
func ToMarkdown(s definition.Summary, title string) string {
	var sb strings.Builder

	if title == "" {
		title = "Avatar Style"
	}
	sb.WriteString(fmt.Sprintf("# Definition Report - %s\n\n", title))

	sb.WriteString("## Overview\n\n")
	sb.WriteString(fmt.Sprintf("- **Mode**: %s\n", s.Mode))
	if s.ModeWarning != "" {
		sb.WriteString(fmt.Sprintf("- **Warning**: %s\n", s.ModeWarning))
	}
	sb.WriteString(fmt.Sprintf("- **Size**: %s\n", formatNumber(s.Size)))
	sb.WriteString(fmt.Sprintf("- **Body node**: `%s`\n", s.Body.NodeID))
	writeReferences(&sb, "Body colors", s.Body.Colors)
	writeReferences(&sb, "Body components", s.Body.Components)
	sb.WriteString("\n")

	if len(s.Components) > 0 {
		sb.WriteString("## Components\n\n")
		for _, group := range s.Components {
			sb.WriteString(fmt.Sprintf("### %s\n\n", group.Group))
			if len(group.Variants) == 0 {
				sb.WriteString("_No variants._\n\n")
				continue
			}
			sb.WriteString("| Variant | Node | Default | Colors | Components |\n")
			sb.WriteString("|---------|------|---------|--------|------------|\n")
			for _, v := range group.Variants {
				def := ""
				if v.Default {
					def = "yes"
				}
				sb.WriteString(fmt.Sprintf("| %s | `%s` | %s | %s | %s |\n",
					v.Key, v.NodeID, def, joinOrDash(v.Colors), joinOrDash(v.Components)))
			}
			sb.WriteString("\n")
		}
	}

	if len(s.Colors) > 0 {
		sb.WriteString("## Colors\n\n")
		sb.WriteString("| Group | Values | Emitted | Dropped relations |\n")
		sb.WriteString("|-------|--------|---------|-------------------|\n")
		for _, c := range s.Colors {
			emitted := "no"
			if c.Emitted {
				emitted = "yes"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				c.Group, joinOrDash(c.Values), emitted, joinOrDash(c.DroppedRelations)))
		}
		sb.WriteString("\n")
	}

	if len(s.AdditionalOptions) > 0 {
		sb.WriteString("## Additional Options\n\n")
		for _, name := range s.AdditionalOptions {
			sb.WriteString(fmt.Sprintf("- `%s`\n", name))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Render renders markdown for the terminal, detecting a light or dark background.
func Render(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	return r.Render(markdown)
}

func writeReferences(sb *strings.Builder, label string, keys []string) {
	if len(keys) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("- **%s**: %s\n", label, strings.Join(keys, ", ")))
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
