// Package repository implements the local, filesystem-backed source
// distribution store: the set of sdists forge already has on disk,
// importable and queryable, guarded against concurrent writers from other
// processes.
package repository

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/forgepkg/forge/internal/filelock"
	"github.com/forgepkg/forge/internal/sdist"
	"github.com/forgepkg/forge/internal/solver"
	"github.com/forgepkg/forge/pkg/pkgid"
)

// Mode selects whether a Repository may be mutated.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

// lockFileName is the advisory cross-process lock file created at the
// repository root, taken by Open and held until Close.
const lockFileName = ".forge-repo.lock"

// tmpImportDir is the staging directory AddSdist copies into before the
// atomic rename into place.
const tmpImportDir = ".tmp-import"

// ErrSdistExists is returned by AddSdist under ImportPolicy Throw when the
// package id is already present.
var ErrSdistExists = errors.New("sdist already exists in repository")

// ImportPolicy controls AddSdist's behavior when a package id collides
// with one already in the repository.
type ImportPolicy int

const (
	Throw ImportPolicy = iota
	Ignore
	Replace
)

// Repository is an open handle on a local sdist store rooted at a
// directory. It is not safe for concurrent use from multiple goroutines
// without external synchronization; cross-process exclusion is handled by
// Open itself via an advisory file lock held for the handle's lifetime.
type Repository struct {
	root string
	mode Mode
	lock *filelock.Lock

	dists []*sdist.Dist // kept sorted by PkgID for Find's binary search
}

// Open opens (creating the root directory first if mode is ReadWrite and
// it does not yet exist) the repository at root, taking the cross-process
// lock and loading every sdist found directly under root.
func Open(root string, mode Mode) (*Repository, error) {
	if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
		if mode != ReadWrite {
			return nil, fmt.Errorf("open repository %s: %w", root, err)
		}
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("create repository root %s: %w", root, err)
		}
	}

	acquired := make(chan struct{})
	go func() {
		select {
		case <-acquired:
		case <-time.After(2 * time.Second):
			log.Printf("waiting for the lock on repository %s", root)
		}
	}()
	lock, err := filelock.Acquire(filepath.Join(root, lockFileName))
	close(acquired)
	if err != nil {
		return nil, fmt.Errorf("lock repository %s: %w", root, err)
	}

	r := &Repository{root: root, mode: mode}
	if err := r.pruneStaleImport(); err != nil {
		lock.Close()
		return nil, err
	}
	if err := r.load(); err != nil {
		lock.Close()
		return nil, err
	}
	r.lock = lock
	return r, nil
}

// Close releases the repository's cross-process lock.
func (r *Repository) Close() error {
	if r.lock == nil {
		return nil
	}
	return r.lock.Close()
}

func (r *Repository) pruneStaleImport() error {
	if r.mode != ReadWrite {
		return nil
	}
	tmp := filepath.Join(r.root, tmpImportDir)
	if err := os.RemoveAll(tmp); err != nil {
		return fmt.Errorf("prune stale import directory: %w", err)
	}
	return nil
}

func (r *Repository) load() error {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return fmt.Errorf("read repository root %s: %w", r.root, err)
	}

	var dists []*sdist.Dist
	for _, e := range entries {
		if !e.IsDir() || len(e.Name()) > 0 && e.Name()[0] == '.' {
			continue
		}
		d, err := sdist.FromDirectory(filepath.Join(r.root, e.Name()))
		if err != nil {
			log.Printf("repository %s: skipping %s: %v", r.root, e.Name(), err)
			continue
		}
		dists = append(dists, d)
	}
	sort.Slice(dists, func(i, j int) bool {
		return dists[i].Manifest.PkgID.Less(dists[j].Manifest.PkgID)
	})
	r.dists = dists
	return nil
}

// Find looks up an exact package id via binary search over the sorted
// sdist set.
func (r *Repository) Find(id pkgid.ID) (*sdist.Dist, bool) {
	i := sort.Search(len(r.dists), func(i int) bool {
		return !r.dists[i].Manifest.PkgID.Less(id)
	})
	if i < len(r.dists) && r.dists[i].Manifest.PkgID.Equal(id) {
		return r.dists[i], true
	}
	return nil, false
}

// ListByName returns every id in the repository with the given name, in
// ascending version order.
func (r *Repository) ListByName(name string) []pkgid.ID {
	var out []pkgid.ID
	for _, d := range r.dists {
		if d.Manifest.PkgID.Name == name {
			out = append(out, d.Manifest.PkgID)
		}
	}
	return out
}

// DependenciesOf returns the declared dependencies of id, or an error if
// id is not present.
func (r *Repository) DependenciesOf(id pkgid.ID) ([]sdist.Dependency, error) {
	d, ok := r.Find(id)
	if !ok {
		return nil, fmt.Errorf("dependencies of %s: %w", id, os.ErrNotExist)
	}
	return d.Manifest.Dependencies, nil
}

// VersionsOf and DepsOf let a Repository act directly as a solver.Provider
// representing the local store, ready to be merged with a remote catalog
// provider via solver.MergeProviders.
func (r *Repository) VersionsOf(name string) ([]pkgid.ID, error) {
	return r.ListByName(name), nil
}

func (r *Repository) DepsOf(id pkgid.ID) ([]solver.Dependency, error) {
	deps, err := r.DependenciesOf(id)
	if err != nil {
		return nil, err
	}
	out := make([]solver.Dependency, len(deps))
	for i, d := range deps {
		out[i] = solver.Dependency{Name: d.Name, Range: d.Range}
	}
	return out, nil
}

// AddSdist imports sd into the repository by copying its directory tree
// into a staging area and atomically renaming it into place.
func (r *Repository) AddSdist(sd *sdist.Dist, policy ImportPolicy) error {
	if r.mode != ReadWrite {
		panic("repository: AddSdist called on a read-only handle")
	}

	dest := filepath.Join(r.root, sd.Manifest.PkgID.String())
	if _, err := os.Stat(dest); err == nil {
		switch policy {
		case Throw:
			return fmt.Errorf("%w: %s", ErrSdistExists, sd.Manifest.PkgID)
		case Ignore:
			log.Printf("repository: %s already present, skipping import", sd.Manifest.PkgID)
			return nil
		case Replace:
			if err := os.RemoveAll(dest); err != nil {
				return fmt.Errorf("replace existing sdist %s: %w", sd.Manifest.PkgID, err)
			}
		}
	}

	tmp := filepath.Join(r.root, tmpImportDir)
	if err := os.RemoveAll(tmp); err != nil {
		return fmt.Errorf("clear stale import staging: %w", err)
	}
	if err := copyTree(sd.Path, tmp); err != nil {
		os.RemoveAll(tmp)
		return fmt.Errorf("stage import of %s: %w", sd.Manifest.PkgID, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("finalize import of %s: %w", sd.Manifest.PkgID, err)
	}

	imported, err := sdist.FromDirectory(dest)
	if err != nil {
		return fmt.Errorf("reload imported sdist %s: %w", sd.Manifest.PkgID, err)
	}
	r.insert(imported)
	return nil
}

func (r *Repository) insert(d *sdist.Dist) {
	i := sort.Search(len(r.dists), func(i int) bool {
		return !r.dists[i].Manifest.PkgID.Less(d.Manifest.PkgID)
	})
	if i < len(r.dists) && r.dists[i].Manifest.PkgID.Equal(d.Manifest.PkgID) {
		r.dists[i] = d
		return
	}
	r.dists = append(r.dists, nil)
	copy(r.dists[i+1:], r.dists[i:])
	r.dists[i] = d
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
