package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgepkg/forge/internal/planner"
	"github.com/forgepkg/forge/internal/repository"
	"github.com/forgepkg/forge/internal/sdist"
	"github.com/forgepkg/forge/internal/toolchain"
	"github.com/forgepkg/forge/internal/usage"
	"github.com/forgepkg/forge/internal/workspace"
	"github.com/forgepkg/forge/pkg/pkgid"
	"github.com/spf13/cobra"
)

var (
	buildToolchainProfile string
	buildJobs             int
	buildApps             bool
	buildTests            bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the package in the current directory",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildToolchainProfile, "toolchain", "gcc", "builtin toolchain profile id")
	buildCmd.Flags().IntVar(&buildJobs, "jobs", 0, "parallel job count (0 = runtime default)")
	buildCmd.Flags().BoolVar(&buildApps, "apps", true, "build app-kind sources")
	buildCmd.Flags().BoolVar(&buildTests, "tests", false, "build test-kind sources")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	m, err := sdist.ReadManifest(".")
	if err != nil {
		return fmt.Errorf("read %s: %w", sdist.ManifestFileName, err)
	}

	repoDir, err := workspace.RepoDir()
	if err != nil {
		return fmt.Errorf("resolve repository directory: %w", err)
	}
	repo, err := repository.Open(repoDir, repository.ReadOnly)
	if err != nil {
		return fmt.Errorf("open repository %s: %w", repoDir, err)
	}
	defer repo.Close()

	resolved, err := repo.Solve(m.Dependencies, nil)
	if err != nil {
		return fmt.Errorf("resolve dependencies: %w", err)
	}

	prep, err := toolchain.BuiltinProfile(buildToolchainProfile)
	if err != nil {
		return fmt.Errorf("toolchain profile %q: %w", buildToolchainProfile, err)
	}
	tc, err := prep.Realize()
	if err != nil {
		return fmt.Errorf("realize toolchain: %w", err)
	}

	usageMap, uses, err := resolveUsage(repo, resolved, m.PkgID, tc)
	if err != nil {
		return fmt.Errorf("build usage map: %w", err)
	}

	srcRoot := "src"
	sources, err := collectSources(srcRoot)
	if err != nil {
		return fmt.Errorf("collect sources under %s: %w", srcRoot, err)
	}

	lib := planner.Library{
		Name:     m.PkgID.Name,
		SrcRoot:  srcRoot,
		Sources:  sources,
		Uses:     uses,
		Includes: []string{srcRoot},
	}
	plan := planner.Create(lib, planner.Params{
		OutSubdir:  filepath.Join("build", m.PkgID.Version.String()),
		BuildApps:  buildApps,
		BuildTests: buildTests,
	}, tc)

	jobs := buildJobs
	if jobs <= 0 {
		jobs = planner.DefaultJobs()
	}
	outDir := filepath.Join("build", m.PkgID.Version.String())
	cache, err := planner.OpenCache(outDir)
	if err != nil {
		return fmt.Errorf("open build cache: %w", err)
	}

	ex := &planner.Executor{Toolchain: tc, UsageMap: usageMap, Jobs: jobs, RunProc: planner.DefaultRunProc, Cache: cache}
	errs := ex.Run(context.Background(), []*planner.LibraryPlan{plan})
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("build failed with %d error(s)", len(errs))
	}

	if err := cache.Save(); err != nil {
		return fmt.Errorf("save build cache: %w", err)
	}

	fmt.Printf("Built %s\n", m.PkgID)
	return nil
}

// resolveUsage turns the solver's resolved package set into a usage map
// (C6) and the list of usage refs the root package itself uses: every
// resolved package other than the root contributes one usage-requirement
// entry, keyed by its own name in both namespace and library name (one
// library per package, per spec.md §3's library model), with its public
// headers found at "<sdist>/src" and its archive at the conventional
// build-output path that runBuild itself uses for the root package.
func resolveUsage(repo *repository.Repository, resolved []pkgid.ID, root pkgid.ID, tc *toolchain.Toolchain) (*usage.Map, []usage.Ref, error) {
	m := usage.NewMap()
	var uses []usage.Ref
	for _, id := range resolved {
		if id.Name == root.Name {
			continue
		}
		dist, ok := repo.Find(id)
		if !ok {
			return nil, nil, fmt.Errorf("resolved dependency %s not found in repository", id)
		}

		ref := usage.Ref{Namespace: id.Name, Name: id.Name}
		if _, err := m.Add(ref.Namespace, ref.Name, usage.Library{
			IncludePaths: []string{filepath.Join(dist.Path, "src")},
			LinkablePath: depArchivePath(dist, tc),
		}); err != nil {
			return nil, nil, err
		}
		uses = append(uses, ref)
	}
	return m, uses, nil
}

// depArchivePath is the archive a dependency's own "forge build" would
// have produced: build/<version>/lib<name>.a alongside its sdist.
func depArchivePath(dist *sdist.Dist, tc *toolchain.Toolchain) string {
	id := dist.Manifest.PkgID
	return filepath.Join(dist.Path, "build", id.Version.String(), tc.ArchiveName(id.Name))
}

// collectSources walks srcRoot and classifies each .c/.cc/.cpp/.cxx file by
// its penultimate name component: "foo.main.cpp" is an app source compiled
// into an executable named "foo.main", "foo.test.cpp" is a test source, and
// everything else ("foo.cpp") is a library source.
func collectSources(srcRoot string) ([]planner.Source, error) {
	var sources []planner.Source
	err := filepath.Walk(srcRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !isSourceExt(path) {
			return nil
		}

		kind := planner.KindLibrary
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		switch {
		case strings.HasSuffix(stem, ".main"):
			kind = planner.KindApp
		case strings.HasSuffix(stem, ".test"):
			kind = planner.KindTest
		}

		sources = append(sources, planner.Source{Path: path, Kind: kind})
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return sources, err
}

func isSourceExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c", ".cc", ".cpp", ".cxx":
		return true
	default:
		return false
	}
}
