// Package template compiles an optimized SVG fragment into the string that
// is stored in a definition's body or component content.
//
// Two placeholder forms are recognized, case-insensitively, with keys made
// of ASCII letters and digits:
//
//	{{colors.<key>}}          color token
//	{{{components.<key>}}}    component token
//
// Any other text, including stray or malformed braces, is passed through.
//
// In ModeDirect the tokens are kept verbatim. In ModeLegacy the fragment is
// escaped with Escape and the tokens are replaced by interpolation
// expressions, producing a backtick-delimited template literal:
//
//	{{colors.skin}}        -> ${escape.xml(`${colors.skin}`)}
//	{{{components.eyes}}}  -> ${components.eyes?.value(components, colors) ?? ''}
package template

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedMarkup is returned when the wrapping root element of a
// fragment cannot be stripped.
var ErrMalformedMarkup = errors.New("malformed markup")

var (
	colorToken     = regexp.MustCompile(`(?i)\{\{colors\.([a-z0-9]+)\}\}`)
	componentToken = regexp.MustCompile(`(?i)\{\{\{components\.([a-z0-9]+)\}\}\}`)
)

// Compile strips the root element of fragment and renders the remaining
// markup for the given mode.
func Compile(fragment string, mode Mode) (string, error) {
	body, err := StripRoot(fragment)
	if err != nil {
		return "", err
	}

	return Interpolate(body, mode)
}

// Interpolate renders an already stripped body. ModeDirect returns body
// unchanged.
func Interpolate(body string, mode Mode) (string, error) {
	switch mode {
	case ModeDirect:
		return body, nil
	case ModeLegacy:
		out := Escape(body)
		out = replaceTokens(colorToken, out, ColorExpr)
		out = replaceTokens(componentToken, out, ComponentExpr)
		return "`" + out + "`", nil
	default:
		return "", fmt.Errorf("unknown template mode %s", mode)
	}
}

// ColorExpr returns the legacy interpolation for a color key.
func ColorExpr(key string) string {
	return "${escape.xml(`${colors." + key + "}`)}"
}

// ComponentExpr returns the legacy interpolation for a component key. It
// evaluates to an empty string when the component is absent at render time.
func ComponentExpr(key string) string {
	return "${components." + key + "?.value(components, colors) ?? ''}"
}

func replaceTokens(re *regexp.Regexp, s string, expr func(key string) string) string {
	return re.ReplaceAllStringFunc(s, func(token string) string {
		return expr(re.FindStringSubmatch(token)[1])
	})
}

// Placeholders lists the color and component keys referenced by a fragment,
// each in first-seen order and without duplicates.
func Placeholders(fragment string) (colors, components []string) {
	return uniqueKeys(colorToken, fragment), uniqueKeys(componentToken, fragment)
}

func uniqueKeys(re *regexp.Regexp, s string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}

// StripRoot removes the outermost element of fragment and returns its inner
// markup. The fragment, once trimmed, must begin with an opening tag and end
// with the matching closing tag; a self-closing root yields an empty string.
// This is a textual operation: the inner markup is not parsed.
func StripRoot(fragment string) (string, error) {
	s := strings.TrimSpace(fragment)
	if !strings.HasPrefix(s, "<") {
		return "", fmt.Errorf("%w: fragment does not start with an element", ErrMalformedMarkup)
	}

	nameEnd := 1
	for nameEnd < len(s) && isNameByte(s[nameEnd]) {
		nameEnd++
	}
	name := s[1:nameEnd]
	if name == "" {
		return "", fmt.Errorf("%w: missing root element name", ErrMalformedMarkup)
	}

	openEnd := tagEnd(s, nameEnd)
	if openEnd < 0 {
		return "", fmt.Errorf("%w: unterminated <%s> tag", ErrMalformedMarkup, name)
	}

	if s[openEnd-1] == '/' {
		if rest := strings.TrimSpace(s[openEnd+1:]); rest != "" {
			return "", fmt.Errorf("%w: content after self-closing <%s/>", ErrMalformedMarkup, name)
		}
		return "", nil
	}

	closing := "</" + name + ">"
	start := len(s) - len(closing)
	if start <= openEnd || !strings.EqualFold(s[start:], closing) {
		return "", fmt.Errorf("%w: missing closing %s at end of fragment", ErrMalformedMarkup, closing)
	}

	return s[openEnd+1 : start], nil
}

// tagEnd returns the index of the '>' closing the tag whose attributes start
// at from, skipping quoted attribute values. It returns -1 if there is none.
func tagEnd(s string, from int) int {
	var quote byte
	for i := from; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i
		}
	}
	return -1
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == ':' || c == '-' || c == '_' || c == '.'
}
