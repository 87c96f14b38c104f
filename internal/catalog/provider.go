// Package catalog implements the remote provider surface of the
// dependency solver: a mapping from package names to git-hosted source
// repositories, queried over network by listing tags and fetching
// manifests, giving the solver a second Provider beside the local
// repository.
package catalog

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/forgepkg/forge/internal/sdist"
	"github.com/forgepkg/forge/internal/solver"
	"github.com/forgepkg/forge/pkg/pkgid"
	"github.com/forgepkg/forge/pkgs/gnu"
)

// Index maps package names to the "host/owner/repo" path of the git
// repository that carries their sources, one release tag per version.
type Index map[string]string

// Catalog is a solver.Provider backed by a remote git index: VersionsOf
// lists the target repository's tags and keeps the ones that parse as
// semantic versions; DepsOf fetches that tag's manifest.toml without a
// full clone when possible.
type Catalog struct {
	Index    Index
	CacheDir string

	repos map[string]*Repo
}

// NewCatalog constructs a Catalog over idx, caching fetched sources under
// cacheDir (one subdirectory per package).
func NewCatalog(idx Index, cacheDir string) *Catalog {
	return &Catalog{Index: idx, CacheDir: cacheDir, repos: make(map[string]*Repo)}
}

func (c *Catalog) repoFor(name string) (*Repo, error) {
	if r, ok := c.repos[name]; ok {
		return r, nil
	}
	path, ok := c.Index[name]
	if !ok {
		return nil, fmt.Errorf("catalog: no entry for package %q", name)
	}
	r, err := NewRepo(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", name, err)
	}
	c.repos[name] = r
	return r, nil
}

// VersionsOf lists every tag of name's repository that parses as a
// semantic version, newest first. Tags are first ordered with the
// dpkg-style comparator (gnu.Compare) so that non-semver release
// conventions (plain "1.21", "R68") still produce a deterministic,
// plausibly-newest-first scan before the strict semver filter is applied.
func (c *Catalog) VersionsOf(name string) ([]pkgid.ID, error) {
	r, err := c.repoFor(name)
	if err != nil {
		return nil, err
	}
	tags, err := r.Tags(context.Background())
	if err != nil {
		return nil, fmt.Errorf("catalog: list tags for %q: %w", name, err)
	}

	sort.Slice(tags, func(i, j int) bool { return gnu.Compare(tags[i], tags[j]) > 0 })

	var ids []pkgid.ID
	for _, tag := range tags {
		v, err := pkgid.ParseVersion(tag)
		if err != nil {
			log.Printf("catalog: %s: skipping non-semver tag %q", name, tag)
			continue
		}
		ids = append(ids, pkgid.ID{Name: name, Version: v})
	}
	return ids, nil
}

// DepsOf fetches and parses the manifest at the package's release tag.
func (c *Catalog) DepsOf(id pkgid.ID) ([]solver.Dependency, error) {
	r, err := c.repoFor(id.Name)
	if err != nil {
		return nil, err
	}
	localDir := filepath.Join(c.CacheDir, id.String())
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	fsView := r.At(id.Version.String(), localDir)

	data, err := fsView.ReadFile(sdist.ManifestFileName)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch manifest for %s: %w", id, err)
	}
	m, err := sdist.ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", id, err)
	}

	out := make([]solver.Dependency, len(m.Dependencies))
	for i, d := range m.Dependencies {
		out[i] = solver.Dependency{Name: d.Name, Range: d.Range}
	}
	return out, nil
}

// Fetch downloads the full source tree for id into localDir, returning an
// sdist ready to hand to a repository.AddSdist import.
func (c *Catalog) Fetch(ctx context.Context, id pkgid.ID, localDir string) (*sdist.Dist, error) {
	r, err := c.repoFor(id.Name)
	if err != nil {
		return nil, err
	}
	fsView := r.At(id.Version.String(), localDir)
	if err := fsView.Sync(ctx, "."); err != nil {
		return nil, fmt.Errorf("catalog: fetch %s: %w", id, err)
	}
	return sdist.FromDirectory(localDir)
}
