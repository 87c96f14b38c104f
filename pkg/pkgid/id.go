package pkgid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPackageID is returned by Parse when s does not have the
// "name@version" shape, or when either half fails to parse.
var ErrMalformedPackageID = errors.New("malformed package id")

// ID identifies a single, specific version of a named package.
type ID struct {
	Name    string
	Version Version
}

// Parse splits s on its last '@' into a name and a semantic version.
// Names may themselves contain '/' (e.g. scoped names like "owner/repo"),
// so splitting always happens at the *last* '@' in the string.
func Parse(s string) (ID, error) {
	i := strings.LastIndexByte(s, '@')
	if i <= 0 || i == len(s)-1 {
		return ID{}, fmt.Errorf("%w: %q", ErrMalformedPackageID, s)
	}
	name, verStr := s[:i], s[i+1:]
	if !validName(name) {
		return ID{}, fmt.Errorf("%w: invalid name %q", ErrMalformedPackageID, name)
	}
	v, err := ParseVersion(verStr)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %w", ErrMalformedPackageID, err)
	}
	return ID{Name: name, Version: v}, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == '-' || r == '/':
		default:
			return false
		}
	}
	return true
}

// String renders id as "name@version", the inverse of Parse.
func (id ID) String() string {
	return id.Name + "@" + id.Version.String()
}

// Compare gives the total order used throughout the resolver: name first
// (lexicographic), then version.
func (id ID) Compare(other ID) int {
	if id.Name != other.Name {
		if id.Name < other.Name {
			return -1
		}
		return 1
	}
	return id.Version.Compare(other.Version)
}

// Less reports whether id sorts strictly before other under Compare.
func (id ID) Less(other ID) bool { return id.Compare(other) < 0 }

// Equal reports whether id and other name the same package at the same version.
func (id ID) Equal(other ID) bool { return id.Compare(other) == 0 }
