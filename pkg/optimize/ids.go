package optimize

import (
	"regexp"
	"strings"
)

var (
	idAttr  = regexp.MustCompile(`(\s)id=("[^"]*"|'[^']*')`)
	urlRef  = regexp.MustCompile(`url\(\s*['"]?#([^)'"\s]+)['"]?\s*\)`)
	hrefRef = regexp.MustCompile(`(href=)("#[^"]*"|'#[^']*')`)
)

// CleanupIDs removes id attributes that are not referenced through url(#id)
// or href="#id" anywhere in markup.
func CleanupIDs(markup string) string {
	refs := references(markup)

	return idAttr.ReplaceAllStringFunc(markup, func(attr string) string {
		m := idAttr.FindStringSubmatch(attr)
		if refs[unquote(m[2])] {
			return attr
		}
		return ""
	})
}

// PrefixIDs rewrites every id defined in markup, and every reference to it,
// as prefix + delim + id. References to ids that are not defined in markup
// are left alone.
func PrefixIDs(markup, prefix, delim string) string {
	if prefix == "" {
		return markup
	}

	defined := make(map[string]bool)
	for _, m := range idAttr.FindAllStringSubmatch(markup, -1) {
		defined[unquote(m[2])] = true
	}
	if len(defined) == 0 {
		return markup
	}

	rename := func(id string) string {
		if !defined[id] {
			return id
		}
		return prefix + delim + id
	}

	markup = idAttr.ReplaceAllStringFunc(markup, func(attr string) string {
		m := idAttr.FindStringSubmatch(attr)
		q := m[2][:1]
		return m[1] + "id=" + q + rename(unquote(m[2])) + q
	})

	markup = urlRef.ReplaceAllStringFunc(markup, func(ref string) string {
		m := urlRef.FindStringSubmatch(ref)
		return "url(#" + rename(m[1]) + ")"
	})

	return hrefRef.ReplaceAllStringFunc(markup, func(ref string) string {
		m := hrefRef.FindStringSubmatch(ref)
		q := m[2][:1]
		return m[1] + q + "#" + rename(strings.TrimPrefix(unquote(m[2]), "#")) + q
	})
}

func references(markup string) map[string]bool {
	refs := make(map[string]bool)
	for _, m := range urlRef.FindAllStringSubmatch(markup, -1) {
		refs[m[1]] = true
	}
	for _, m := range hrefRef.FindAllStringSubmatch(markup, -1) {
		refs[strings.TrimPrefix(unquote(m[2]), "#")] = true
	}
	return refs
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
