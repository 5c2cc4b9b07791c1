package template

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnsupportedVersion is reported by ModeForVersion when the requested
// DiceBear version is not in the version table. The accompanying mode is
// always ModeLegacy.
var ErrUnsupportedVersion = errors.New("unsupported dicebear version")

// Mode selects how placeholder tokens are written into a definition.
type Mode int

const (
	// ModeLegacy pre-compiles the markup into an escaped, interpolable
	// template literal. It is the zero value and the fallback mode.
	ModeLegacy Mode = iota
	// ModeDirect leaves placeholder tokens in place for the rendering
	// engine to resolve.
	ModeDirect
)

func (m Mode) String() string {
	switch m {
	case ModeLegacy:
		return "legacy"
	case ModeDirect:
		return "direct"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// versionModes maps a DiceBear major version to its output mode.
var versionModes = map[int]Mode{
	4: ModeLegacy,
	5: ModeLegacy,
	6: ModeDirect,
	7: ModeDirect,
	8: ModeDirect,
	9: ModeDirect,
}

// ModeForVersion returns the output mode for a DiceBear version such as
// "5.x", "7", "v8" or "9.2.1". Only the major component is considered.
//
// The function is total: an empty or unknown version yields ModeLegacy and
// an error wrapping ErrUnsupportedVersion, which callers are expected to
// report as a warning and continue with the returned mode.
func ModeForVersion(version string) (Mode, error) {
	major, err := parseMajor(version)
	if err != nil {
		return ModeLegacy, fmt.Errorf("%w %q: %v", ErrUnsupportedVersion, version, err)
	}

	mode, ok := versionModes[major]
	if !ok {
		return ModeLegacy, fmt.Errorf("%w %q: supported major versions are %s",
			ErrUnsupportedVersion, version, strings.Join(SupportedVersions(), ", "))
	}

	return mode, nil
}

// SupportedVersions returns the known major versions in ascending order,
// formatted as "N.x".
func SupportedVersions() []string {
	majors := make([]int, 0, len(versionModes))
	for major := range versionModes {
		majors = append(majors, major)
	}
	sort.Ints(majors)

	versions := make([]string, len(majors))
	for i, major := range majors {
		versions[i] = strconv.Itoa(major) + ".x"
	}

	return versions
}

func parseMajor(version string) (int, error) {
	v := strings.TrimSpace(version)
	v = strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V")

	end := 0
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, errors.New("missing major version number")
	}
	if end < len(v) && v[end] != '.' {
		return 0, fmt.Errorf("unexpected character %q after major version", v[end])
	}

	return strconv.Atoi(v[:end])
}
