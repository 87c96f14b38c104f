// Package pkgid implements package identity and version comparison for
// the ecosystem: a package_id is a name paired with a semantic version.
package pkgid

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a decomposed semantic version: major.minor.patch[-pre][+build].
type Version struct {
	Major, Minor, Patch int
	Pre                 string
	Build               string
}

// ParseVersion parses a semantic version string such as "1.2.3-rc.1+git".
// A leading "v" is accepted and ignored.
func ParseVersion(s string) (Version, error) {
	orig := s
	s = strings.TrimPrefix(s, "v")

	if i := strings.IndexByte(s, '+'); i >= 0 {
		build := s[i+1:]
		s = s[:i]
		v, err := parseCore(s)
		if err != nil {
			return Version{}, fmt.Errorf("malformed version %q: %w", orig, err)
		}
		v.Build = build
		return v, nil
	}
	v, err := parseCore(s)
	if err != nil {
		return Version{}, fmt.Errorf("malformed version %q: %w", orig, err)
	}
	return v, nil
}

func parseCore(s string) (Version, error) {
	var pre string
	if i := strings.IndexByte(s, '-'); i >= 0 {
		pre = s[i+1:]
		s = s[:i]
	}
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("expected major.minor.patch, got %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid numeric component %q", p)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Pre: pre}, nil
}

// String renders the version in canonical form.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// semverString renders v as a golang.org/x/mod/semver-compatible string
// ("vMAJOR.MINOR.PATCH[-pre]"), dropping build metadata which semver.Compare
// ignores entirely per the semver precedence rules anyway.
func (v Version) semverString() string {
	s := fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	return s
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// other, following semantic-versioning precedence (pre-release < release).
func (v Version) Compare(other Version) int {
	return semver.Compare(v.semverString(), other.semverString())
}

// Less reports whether v sorts strictly before other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }

// Equal reports whether v and other denote the same precedence.
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

// IsPrerelease reports whether v carries a pre-release component.
func (v Version) IsPrerelease() bool { return v.Pre != "" }
