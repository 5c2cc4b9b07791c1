package optimize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	geometryAttr = regexp.MustCompile(`(\s(?:d|points|transform)=)("[^"]*"|'[^']*')`)
	number       = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)
)

// RoundNumbers rounds every number in the d, points and transform attributes
// of markup to precision decimal places, dropping trailing zeros.
// A precision of zero or less leaves markup untouched.
func RoundNumbers(markup string, precision int) string {
	if precision <= 0 {
		return markup
	}

	return geometryAttr.ReplaceAllStringFunc(markup, func(attr string) string {
		m := geometryAttr.FindStringSubmatch(attr)
		q := m[2][:1]
		return m[1] + q + roundAll(unquote(m[2]), precision) + q
	})
}

// roundAll keeps adjacent numbers apart when rounding removes the sign or
// the leading dot that separated them, e.g. "1.5.04" or "1-.04".
func roundAll(value string, precision int) string {
	var b strings.Builder
	last := 0
	for _, loc := range number.FindAllStringIndex(value, -1) {
		b.WriteString(value[last:loc[0]])
		n := value[loc[0]:loc[1]]
		r := roundNumber(n, precision)
		if n[0] == '.' || strings.HasPrefix(n, "-.") {
			r = strings.Replace(r, "0.", ".", 1)
		}

		if s := b.String(); s != "" && r[0] != '-' && r[0] != '.' {
			if c := s[len(s)-1]; c == '.' || (c >= '0' && c <= '9') {
				b.WriteByte(' ')
			}
		}
		b.WriteString(r)
		last = loc[1]
	}
	b.WriteString(value[last:])
	return b.String()
}

func roundNumber(n string, precision int) string {
	v, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return n
	}

	s := strconv.FormatFloat(v, 'f', precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
