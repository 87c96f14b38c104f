// Package solver implements dependency resolution: given a set of root
// dependencies and one or more version/dependency providers, it finds a
// consistent package set via backtracking search.
package solver

import (
	"sort"

	"github.com/forgepkg/forge/pkg/pkgid"
)

// Dependency is a named package together with the version range a
// requirer accepts for it.
type Dependency struct {
	Name  string
	Range pkgid.Range
}

// Provider answers the two questions the solver needs about a package
// name: which versions exist, and what a given version depends on. The
// local repository and a remote catalog both implement Provider; this is
// the "provider-callback injection" seam that lets the solver stay
// agnostic of where packages actually come from.
type Provider interface {
	VersionsOf(name string) ([]pkgid.ID, error)
	DepsOf(id pkgid.ID) ([]Dependency, error)
}

// MergeProviders combines several providers into one: VersionsOf returns
// the union of every provider's candidates (sorted descending, deduplicated
// by id, with earlier providers in argument order winning ties so that a
// local repository takes precedence over a remote catalog for the same
// id). DepsOf asks each provider in turn and returns the first hit.
func MergeProviders(providers ...Provider) Provider {
	return mergedProvider{providers: providers}
}

type mergedProvider struct {
	providers []Provider
}

func (m mergedProvider) VersionsOf(name string) ([]pkgid.ID, error) {
	seen := make(map[pkgid.ID]bool)
	var all []pkgid.ID
	for _, p := range m.providers {
		ids, err := p.VersionsOf(name)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			all = append(all, id)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[j].Less(all[i]) })
	return all, nil
}

func (m mergedProvider) DepsOf(id pkgid.ID) ([]Dependency, error) {
	for _, p := range m.providers {
		ids, err := p.VersionsOf(id.Name)
		if err != nil {
			return nil, err
		}
		for _, candidate := range ids {
			if candidate.Equal(id) {
				return p.DepsOf(id)
			}
		}
	}
	return nil, nil
}
