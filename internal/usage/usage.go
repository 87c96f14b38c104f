// Package usage implements the usage-requirement map (C6): a registry of
// per-library include paths, linkable paths, and transitive uses/links,
// queried via deterministic pre-order traversals that guard against cycles.
package usage

import "fmt"

// Ref names one library within the map: a namespace (the owning package
// name) plus a library name local to that namespace.
type Ref struct {
	Namespace string
	Name      string
}

func (r Ref) String() string { return r.Namespace + "/" + r.Name }

// Library holds the raw usage requirements contributed by one library, as
// declared by its owning package's manifest.
type Library struct {
	LinkablePath string // "" if this library contributes no artifact to link
	IncludePaths []string
	Uses         []Ref // other libraries whose usage requirements apply transitively
	Links        []Ref // libraries this one links but does not expose headers from
}

// ErrDuplicateLibrary is raised by Add when Ref is already registered.
type ErrDuplicateLibrary struct{ Ref Ref }

func (e *ErrDuplicateLibrary) Error() string {
	return fmt.Sprintf("more than one library is registered as '%s'", e.Ref)
}

// ErrUnknownUsage is raised by LinkPaths/IncludePaths for a Ref not present
// in the map.
type ErrUnknownUsage struct {
	Ref  Ref
	Verb string // "linking" | "include"
}

func (e *ErrUnknownUsage) Error() string {
	return fmt.Sprintf("unable to find %s requirement '%s'", e.Verb, e.Ref)
}

// Map is the usage-requirement registry for a full dependency graph: every
// library in every resolved package, keyed by Ref.
type Map struct {
	libs map[Ref]Library
}

// NewMap returns an empty Map ready for Add calls.
func NewMap() *Map {
	return &Map{libs: make(map[Ref]Library)}
}

// Add registers lib under the Ref{ns, name}. It is an error to register
// the same Ref twice. Returns a pointer to the stored copy.
func (m *Map) Add(ns, name string, lib Library) (*Library, error) {
	ref := Ref{Namespace: ns, Name: name}
	if _, exists := m.libs[ref]; exists {
		return nil, &ErrDuplicateLibrary{Ref: ref}
	}
	m.libs[ref] = lib
	stored := m.libs[ref]
	return &stored, nil
}

// Get returns the raw Library registered under ref, or false if absent.
func (m *Map) Get(ref Ref) (Library, bool) {
	lib, ok := m.libs[ref]
	return lib, ok
}

// LinkPaths computes the full transitive set of linkable artifact paths
// reachable from ref via uses and links edges, in deterministic pre-order,
// each path appearing once (first occurrence wins). Unlike the original
// recursive walk this guards against cycles in the uses/links graph.
func (m *Map) LinkPaths(ref Ref) ([]string, error) {
	var out []string
	seen := make(map[Ref]bool)
	if err := m.linkPaths(ref, seen, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Map) linkPaths(ref Ref, seen map[Ref]bool, out *[]string) error {
	if seen[ref] {
		return nil
	}
	seen[ref] = true

	lib, ok := m.libs[ref]
	if !ok {
		return &ErrUnknownUsage{Ref: ref, Verb: "linking"}
	}
	if lib.LinkablePath != "" {
		*out = append(*out, lib.LinkablePath)
	}
	for _, dep := range lib.Uses {
		if err := m.linkPaths(dep, seen, out); err != nil {
			return err
		}
	}
	for _, dep := range lib.Links {
		if err := m.linkPaths(dep, seen, out); err != nil {
			return err
		}
	}
	return nil
}

// IncludePaths computes the transitive set of include directories reachable
// from ref via uses edges only (links contributes no headers), in
// deterministic pre-order with first-seen dedup and cycle protection.
func (m *Map) IncludePaths(ref Ref) ([]string, error) {
	var out []string
	seen := make(map[Ref]bool)
	if err := m.includePaths(ref, seen, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Map) includePaths(ref Ref, seen map[Ref]bool, out *[]string) error {
	if seen[ref] {
		return nil
	}
	seen[ref] = true

	lib, ok := m.libs[ref]
	if !ok {
		return &ErrUnknownUsage{Ref: ref, Verb: "include"}
	}
	*out = append(*out, lib.IncludePaths...)
	for _, dep := range lib.Uses {
		if err := m.includePaths(dep, seen, out); err != nil {
			return err
		}
	}
	return nil
}
