package repository

import (
	"github.com/forgepkg/forge/internal/sdist"
	"github.com/forgepkg/forge/internal/solver"
	"github.com/forgepkg/forge/pkg/pkgid"
)

// Solve resolves deps against this repository merged with an optional
// remote catalog provider, with the repository winning ties for a given
// package id (see solver.MergeProviders). Pass a nil catalog to resolve
// against the local store alone.
func (r *Repository) Solve(deps []sdist.Dependency, catalog solver.Provider) ([]pkgid.ID, error) {
	roots := make([]solver.Dependency, len(deps))
	for i, d := range deps {
		roots[i] = solver.Dependency{Name: d.Name, Range: d.Range}
	}

	provider := solver.Provider(r)
	if catalog != nil {
		provider = solver.MergeProviders(r, catalog)
	}
	return solver.Solve(roots, provider)
}
