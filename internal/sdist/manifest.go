package sdist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/forgepkg/forge/pkg/pkgid"
)

// ManifestFileName is the name of the manifest file at the root of every
// source distribution directory.
const ManifestFileName = "manifest.toml"

// Dependency is one entry of a manifest's dependency list: a package name
// together with the version range this package accepts.
type Dependency struct {
	Name  string
	Range pkgid.Range
}

// Manifest describes a source distribution's identity and dependencies.
type Manifest struct {
	PkgID        pkgid.ID
	Dependencies []Dependency
}

// rawManifest mirrors the on-disk TOML shape:
//
//	name    = "zlib"
//	version = "1.2.13"
//
//	[dependencies]
//	boost = "^1.80.0"
//	fmt   = "~9.1.0"
type rawManifest struct {
	Name         string            `toml:"name"`
	Version      string            `toml:"version"`
	Dependencies map[string]string `toml:"dependencies"`
}

// ReadManifest reads and validates manifest.toml from dir.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFileName)
	var raw rawManifest
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return manifestFromRaw(raw)
}

// ParseManifest decodes manifest data read from any source (a local file, a
// remote catalog fetch, ...), independent of where it came from.
func ParseManifest(data []byte) (*Manifest, error) {
	var raw rawManifest
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return manifestFromRaw(raw)
}

func manifestFromRaw(raw rawManifest) (*Manifest, error) {
	if raw.Name == "" {
		return nil, fmt.Errorf("manifest missing required field %q", "name")
	}
	if raw.Version == "" {
		return nil, fmt.Errorf("manifest missing required field %q", "version")
	}
	v, err := pkgid.ParseVersion(raw.Version)
	if err != nil {
		return nil, fmt.Errorf("manifest version: %w", err)
	}

	deps := make([]Dependency, 0, len(raw.Dependencies))
	for name, rangeStr := range raw.Dependencies {
		r, err := pkgid.ParseRange(rangeStr)
		if err != nil {
			return nil, fmt.Errorf("dependency %q: %w", name, err)
		}
		deps = append(deps, Dependency{Name: name, Range: r})
	}

	return &Manifest{
		PkgID:        pkgid.ID{Name: raw.Name, Version: v},
		Dependencies: deps,
	}, nil
}

// WriteManifest serializes m as manifest.toml into dir, for use by the CLI
// (forge init/get) as well as by tests constructing well-formed fixtures.
func WriteManifest(dir string, m Manifest) error {
	raw := rawManifest{
		Name:         m.PkgID.Name,
		Version:      m.PkgID.Version.String(),
		Dependencies: make(map[string]string, len(m.Dependencies)),
	}
	for _, d := range m.Dependencies {
		raw.Dependencies[d.Name] = d.Range.String()
	}
	f, err := os.Create(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(raw)
}

// writeManifest is the test-local alias kept for brevity in _test.go files.
func writeManifest(dir string, m Manifest) error { return WriteManifest(dir, m) }
