// Package planner implements the build planner and executor (C7): turning
// a library's classified sources into compile/archive/link plans, then
// running those plans through a two-pass, bounded-parallel executor.
package planner

import (
	"path/filepath"
	"strings"

	"github.com/forgepkg/forge/internal/toolchain"
	"github.com/forgepkg/forge/internal/usage"
)

// SourceKind classifies one source file within a library's source tree.
type SourceKind int

const (
	KindLibrary SourceKind = iota
	KindApp
	KindTest
)

// Source is one file discovered by collecting a library's source directory.
type Source struct {
	Path string // absolute or workspace-relative path to the source file
	Kind SourceKind
}

// Library is the planning input for one resolved package's single library
// (spec.md's lib, with its usage edges already known).
type Library struct {
	Name      string
	SrcRoot   string
	Sources   []Source
	Uses      []usage.Ref
	Links     []usage.Ref
	Includes  []string
	Defines   []string
}

// Params bundles library_plan::create's params struct (spec.md §4.7.1).
type Params struct {
	OutSubdir      string
	BuildApps      bool
	BuildTests     bool
	EnableWarnings bool
	TestUses       []usage.Ref
	TestLinkFiles  []string
}

// CompileFilePlan is one source-file-to-object-file compile step.
type CompileFilePlan struct {
	Source    string
	ObjectOut string
	IsCXX     bool
	Qualifier string // the owning library's name, for diagnostics
}

// ArchivePlan collects the library's own source compiles into a static
// archive.
type ArchivePlan struct {
	Inputs     []CompileFilePlan
	ArchiveOut string
}

// LinkExecutablePlan is one app or test executable: compile its own source,
// then link against the library archive (if any) plus per-executable link
// files and usage edges.
type LinkExecutablePlan struct {
	Compile    CompileFilePlan
	OutSubdir  string
	LinkFiles  []string
	Uses       []usage.Ref
	ExeOut     string
}

// LibraryPlan is the full plan for one library: its archive (if it has
// library sources) and every app/test executable derived from it.
type LibraryPlan struct {
	Library        Library
	EnableWarnings bool
	Archive        *ArchivePlan
	Executables    []LinkExecutablePlan
}

// Create implements library_plan::create of spec.md §4.7.1: classify
// sources, build a compile plan for each, an archive plan if there are
// library sources, and a link plan for every app/test source.
func Create(lib Library, params Params, tc *toolchain.Toolchain) *LibraryPlan {
	objDir := filepath.Join(params.OutSubdir, "obj")

	var libSources, appSources, testSources []Source
	for _, src := range lib.Sources {
		switch src.Kind {
		case KindLibrary:
			libSources = append(libSources, src)
		case KindApp:
			if params.BuildApps {
				appSources = append(appSources, src)
			}
		case KindTest:
			if params.BuildTests {
				testSources = append(testSources, src)
			}
		}
	}

	plan := &LibraryPlan{Library: lib, EnableWarnings: params.EnableWarnings}

	toCompilePlan := func(src Source) CompileFilePlan {
		return CompileFilePlan{
			Source:    src.Path,
			ObjectOut: filepath.Join(objDir, objectName(tc, src.Path)),
			IsCXX:     isCXX(src.Path),
			Qualifier: lib.Name,
		}
	}

	if len(libSources) > 0 {
		var inputs []CompileFilePlan
		for _, src := range libSources {
			inputs = append(inputs, toCompilePlan(src))
		}
		plan.Archive = &ArchivePlan{
			Inputs:     inputs,
			ArchiveOut: filepath.Join(params.OutSubdir, tc.ArchiveName(lib.Name)),
		}
	}

	addExecutables := func(sources []Source, testSubdir bool, isTest bool) {
		for _, src := range sources {
			compile := toCompilePlan(src)
			rel, _ := filepath.Rel(lib.SrcRoot, filepath.Dir(src.Path))
			outSubdir := params.OutSubdir
			if testSubdir {
				outSubdir = filepath.Join(outSubdir, "test")
			}
			outSubdir = filepath.Join(outSubdir, rel)

			var linkFiles []string
			if plan.Archive != nil {
				linkFiles = append(linkFiles, plan.Archive.ArchiveOut)
			}
			if isTest {
				linkFiles = append(linkFiles, params.TestLinkFiles...)
			}

			edges := append(append([]usage.Ref{}, lib.Uses...), lib.Links...)
			if isTest {
				edges = append(edges, params.TestUses...)
			}

			stem := strings.TrimSuffix(filepath.Base(src.Path), filepath.Ext(src.Path))
			plan.Executables = append(plan.Executables, LinkExecutablePlan{
				Compile:   compile,
				OutSubdir: outSubdir,
				LinkFiles: linkFiles,
				Uses:      edges,
				ExeOut:    filepath.Join(outSubdir, tc.ExeName(stem)),
			})
		}
	}

	addExecutables(appSources, false, false)
	addExecutables(testSources, true, true)

	return plan
}

func isCXX(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c":
		return false
	default:
		return true
	}
}

func objectName(tc *toolchain.Toolchain, srcPath string) string {
	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	return tc.ObjectName(stem)
}
