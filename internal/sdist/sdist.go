package sdist

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrSdistLayoutError is returned when a source distribution directory's
// name does not match its manifest's package id.
var ErrSdistLayoutError = errors.New("sdist layout error")

// Dist is an immutable handle on a single source distribution directory:
// a manifest plus the path to the sources it describes.
type Dist struct {
	Manifest *Manifest
	Path     string
}

// FromDirectory reads path/manifest.toml and validates that the directory's
// base name matches the manifest's package id exactly (the repository
// layout invariant of §4.3).
func FromDirectory(path string) (*Dist, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	want := m.PkgID.String()
	if got := filepath.Base(filepath.Clean(path)); got != want {
		return nil, fmt.Errorf("%w: directory %q does not match package id %q", ErrSdistLayoutError, got, want)
	}
	return &Dist{Manifest: m, Path: path}, nil
}
