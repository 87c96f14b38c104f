// Package buildsys abstracts over external build systems (CMake,
// Autotools) that can build a source distribution in place of forge's
// own compile/archive/link planner — for vendored third-party sources
// that already bring their own build description. The sdist manifest has
// no field that selects one.
package buildsys

import "github.com/forgepkg/forge/pkg/pkgid"

// Context exposes the install directories of this package's already-built
// dependencies, so an external build system's configure/build step can
// point its own include/library search paths at them.
type Context struct {
	SourceDir string
	Deps      map[pkgid.ID]string // resolved dependency -> its install dir
}

// BuildSystem captures the shared lifecycle of an external build helper:
// source/install directories, environment injection, and the
// configure/build/install sequence forge drives a vendored sdist through.
type BuildSystem interface {
	// Use points the build system's search paths at an already-built
	// dependency's install directory.
	Use(dep pkgid.ID)

	Source(dir string)
	InstallDir(dir string)
	Env(key, val string)

	Configure(args ...string) error
	Build(args ...string) error
	Install(args ...string) error

	OutputDir() string
}
