package solver

import (
	"testing"

	"github.com/forgepkg/forge/pkg/pkgid"
)

// fakeProvider is an in-memory Provider fixture for tests.
type fakeProvider struct {
	versions map[string][]pkgid.ID
	deps     map[pkgid.ID][]Dependency
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		versions: make(map[string][]pkgid.ID),
		deps:     make(map[pkgid.ID][]Dependency),
	}
}

func (f *fakeProvider) add(t *testing.T, idStr string, deps ...Dependency) {
	t.Helper()
	id, err := pkgid.Parse(idStr)
	if err != nil {
		t.Fatalf("pkgid.Parse(%q): %v", idStr, err)
	}
	f.versions[id.Name] = append(f.versions[id.Name], id)
	f.deps[id] = deps
}

func (f *fakeProvider) VersionsOf(name string) ([]pkgid.ID, error) {
	return f.versions[name], nil
}

func (f *fakeProvider) DepsOf(id pkgid.ID) ([]Dependency, error) {
	return f.deps[id], nil
}

func dep(t *testing.T, name, rangeStr string) Dependency {
	t.Helper()
	r, err := pkgid.ParseRange(rangeStr)
	if err != nil {
		t.Fatalf("ParseRange(%q): %v", rangeStr, err)
	}
	return Dependency{Name: name, Range: r}
}

func TestSolveSimple(t *testing.T) {
	p := newFakeProvider()
	p.add(t, "zlib@1.2.11")
	p.add(t, "zlib@1.2.13")
	p.add(t, "app@1.0.0", dep(t, "zlib", "^1.2.0"))

	got, err := Solve([]Dependency{dep(t, "zlib", "^1.2.0")}, p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(got) != 1 || got[0].String() != "zlib@1.2.13" {
		t.Fatalf("got %v, want [zlib@1.2.13] (newest satisfying candidate)", got)
	}
}

func TestSolveTransitive(t *testing.T) {
	p := newFakeProvider()
	p.add(t, "zlib@1.2.11")
	p.add(t, "zlib@1.2.13")
	p.add(t, "boost@1.80.0", dep(t, "zlib", "^1.2.0"))

	got, err := Solve([]Dependency{dep(t, "boost", "^1.80.0")}, p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	names := map[string]string{}
	for _, id := range got {
		names[id.Name] = id.Version.String()
	}
	if names["boost"] != "1.80.0" || names["zlib"] != "1.2.13" {
		t.Fatalf("got %v", got)
	}
}

func TestSolveConflictBacktracks(t *testing.T) {
	p := newFakeProvider()
	// b@2.0.0 requires zlib ^2.0.0 (unavailable); b@1.0.0 requires ^1.2.0.
	p.add(t, "zlib@1.2.13")
	p.add(t, "b@2.0.0", dep(t, "zlib", "^2.0.0"))
	p.add(t, "b@1.0.0", dep(t, "zlib", "^1.2.0"))

	got, err := Solve([]Dependency{dep(t, "b", "*")}, p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	names := map[string]string{}
	for _, id := range got {
		names[id.Name] = id.Version.String()
	}
	if names["b"] != "1.0.0" {
		t.Fatalf("expected solver to backtrack to b@1.0.0, got %v", got)
	}
}

func TestSolveNoSolution(t *testing.T) {
	p := newFakeProvider()
	p.add(t, "zlib@1.0.0")

	_, err := Solve([]Dependency{dep(t, "zlib", "^2.0.0")}, p)
	if err == nil {
		t.Fatal("expected SolveError")
	}
	var solveErr *SolveError
	if !asSolveError(err, &solveErr) {
		t.Fatalf("expected *SolveError, got %T: %v", err, err)
	}
}

func asSolveError(err error, target **SolveError) bool {
	se, ok := err.(*SolveError)
	if !ok {
		return false
	}
	*target = se
	return true
}
