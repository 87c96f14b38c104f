package solver

import (
	"fmt"
	"sort"

	"github.com/forgepkg/forge/pkg/pkgid"
)

// SolveError reports that no consistent package set could be found. It
// carries the constraint set active at the point of failure, and the
// candidates that were considered and rejected for the most-constrained
// name, so a caller can render a useful diagnostic.
type SolveError struct {
	Name        string
	Constraints []Dependency
	Candidates  []pkgid.ID
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("no solution: no candidate of %q satisfies all %d active constraint(s)",
		e.Name, len(e.Constraints))
}

// state is the mutable search state threaded through the backtracking
// recursion: the requirements active on each name (from roots plus every
// selected package's own dependencies so far), and the selections made.
type state struct {
	provider Provider
	// reqs maps a package name to every Dependency constraint currently
	// imposed on it, across the whole partial selection.
	reqs map[string][]Dependency
	// chosen maps a resolved name to the id selected for it.
	chosen map[string]pkgid.ID
	// order preserves the sequence names were first required in, purely
	// so that results are deterministic when constraint counts tie.
	order []string
}

// Solve finds a set of package ids, one per distinct name reachable from
// roots, such that every active version range is satisfied. It performs a
// backtracking search: at each step, the name with the fewest remaining
// candidates is chosen next; its candidates are tried newest-first; a
// contradiction (a later dependency with no satisfying candidate) unwinds
// to the previous choice point.
func Solve(roots []Dependency, provider Provider) ([]pkgid.ID, error) {
	st := &state{
		provider: provider,
		reqs:     make(map[string][]Dependency),
		chosen:   make(map[string]pkgid.ID),
	}
	for _, d := range roots {
		st.addRequirement(d)
	}
	if !solve(st) {
		name, cons, cands := st.mostConstrainedUnresolved()
		return nil, &SolveError{Name: name, Constraints: cons, Candidates: cands}
	}

	result := make([]pkgid.ID, 0, len(st.chosen))
	for _, name := range st.order {
		if id, ok := st.chosen[name]; ok {
			result = append(result, id)
		}
	}
	return result, nil
}

func (st *state) addRequirement(d Dependency) {
	if _, ok := st.reqs[d.Name]; !ok {
		st.order = append(st.order, d.Name)
	}
	st.reqs[d.Name] = append(st.reqs[d.Name], d)
}

// unresolvedNames returns every name with an active requirement that has
// not yet been assigned a version, in first-required order.
func (st *state) unresolvedNames() []string {
	var names []string
	for _, name := range st.order {
		if _, done := st.chosen[name]; !done && len(st.reqs[name]) > 0 {
			names = append(names, name)
		}
	}
	return names
}

func (st *state) candidatesFor(name string) ([]pkgid.ID, error) {
	all, err := st.provider.VersionsOf(name)
	if err != nil {
		return nil, err
	}
	var out []pkgid.ID
	for _, id := range all {
		if satisfiesAll(id, st.reqs[name]) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Less(out[i]) })
	return out, nil
}

func satisfiesAll(id pkgid.ID, deps []Dependency) bool {
	for _, d := range deps {
		if !d.Range.Contains(id.Version) {
			return false
		}
	}
	return true
}

// mostConstrainedUnresolved picks the unresolved name with the fewest
// satisfying candidates (ties broken by first-required order), for use
// both as the solver's next pick and as the diagnostic target on failure.
func (st *state) mostConstrainedUnresolved() (string, []Dependency, []pkgid.ID) {
	var bestName string
	var bestCands []pkgid.ID
	best := -1
	for _, name := range st.unresolvedNames() {
		cands, err := st.candidatesFor(name)
		if err != nil {
			continue
		}
		if best == -1 || len(cands) < best {
			best = len(cands)
			bestName = name
			bestCands = cands
		}
	}
	return bestName, st.reqs[bestName], bestCands
}

// solve recursively assigns a version to the most-constrained unresolved
// name, trying candidates newest-first, and reports whether a fully
// consistent assignment was found.
func solve(st *state) bool {
	unresolved := st.unresolvedNames()
	if len(unresolved) == 0 {
		return true
	}

	name, _, candidates := st.mostConstrainedUnresolved()
	if name == "" {
		name = unresolved[0]
	}

	for _, id := range candidates {
		deps, err := st.provider.DepsOf(id)
		if err != nil {
			continue
		}

		st.chosen[name] = id
		addedReqs := make([]Dependency, 0, len(deps))
		for _, d := range deps {
			st.addRequirement(d)
			addedReqs = append(addedReqs, d)
		}

		if consistentWithChoices(st) && solve(st) {
			return true
		}

		// Unwind: drop this choice and the requirements it introduced.
		delete(st.chosen, name)
		st.removeRequirements(name, addedReqs)
	}

	return false
}

// consistentWithChoices verifies every already-chosen id still satisfies
// all requirements now active on its name (a newly added dependency may
// have tightened a range past an earlier pick).
func consistentWithChoices(st *state) bool {
	for name, id := range st.chosen {
		if !satisfiesAll(id, st.reqs[name]) {
			return false
		}
	}
	return true
}

// removeRequirements undoes addRequirement for exactly the dependencies
// added during a rejected branch. order is left untouched (a name that
// briefly had requirements keeps its position so diagnostics stay stable);
// entries with no remaining requirements are simply empty slices.
func (st *state) removeRequirements(_ string, added []Dependency) {
	for i := len(added) - 1; i >= 0; i-- {
		d := added[i]
		cur := st.reqs[d.Name]
		if len(cur) > 0 {
			st.reqs[d.Name] = cur[:len(cur)-1]
		}
	}
}
