package template

import "strings"

// Escape prefixes every backslash, dollar sign and backtick in s with a
// backslash, making s safe to embed in a backtick template literal.
func Escape(s string) string {
	if !strings.ContainsAny(s, "\\$`") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		if isEscapable(s[i]) {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// Unescape reverses Escape. A backslash that does not precede an escapable
// character is kept as is, so Unescape(Escape(s)) == s for every s.
func Unescape(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && isEscapable(s[i+1]) {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func isEscapable(c byte) bool {
	return c == '\\' || c == '$' || c == '`'
}
