package optimize

import "strings"

// NormalizeName converts a design node name into an identifier-safe
// kebab-case string usable as an XML id prefix, e.g. "Eyes / Happy_2"
// becomes "eyes-happy-2". Names that would start with a digit are prefixed
// with "n-" and an empty result falls back to "node".
func NormalizeName(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))

	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			dash = false
			sb.WriteRune(r)
			continue
		}
		dash = true
	}

	s := sb.String()
	switch {
	case s == "":
		return "node"
	case s[0] >= '0' && s[0] <= '9':
		return "n-" + s
	default:
		return s
	}
}
