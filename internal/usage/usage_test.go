package usage

import (
	"reflect"
	"testing"
)

func TestLinkPathsTransitive(t *testing.T) {
	m := NewMap()
	app := Ref{Namespace: "app", Name: "app"}
	zlib := Ref{Namespace: "zlib", Name: "zlib"}
	boost := Ref{Namespace: "boost", Name: "boost"}

	mustAdd(t, m, zlib, Library{LinkablePath: "libz.a"})
	mustAdd(t, m, boost, Library{LinkablePath: "libboost.a", Uses: []Ref{zlib}})
	mustAdd(t, m, app, Library{LinkablePath: "app.o", Uses: []Ref{boost}})

	got, err := m.LinkPaths(app)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"app.o", "libboost.a", "libz.a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LinkPaths = %v, want %v", got, want)
	}
}

func TestLinkPathsCycleDoesNotHang(t *testing.T) {
	m := NewMap()
	a := Ref{Namespace: "a", Name: "a"}
	b := Ref{Namespace: "b", Name: "b"}
	mustAdd(t, m, a, Library{LinkablePath: "a.a", Uses: []Ref{b}})
	mustAdd(t, m, b, Library{LinkablePath: "b.a", Uses: []Ref{a}})

	got, err := m.LinkPaths(a)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.a", "b.a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LinkPaths = %v, want %v", got, want)
	}
}

func TestIncludePathsIgnoresLinks(t *testing.T) {
	m := NewMap()
	app := Ref{Namespace: "app", Name: "app"}
	priv := Ref{Namespace: "priv", Name: "priv"}
	pub := Ref{Namespace: "pub", Name: "pub"}

	mustAdd(t, m, pub, Library{IncludePaths: []string{"pub/include"}})
	mustAdd(t, m, priv, Library{IncludePaths: []string{"priv/include"}})
	mustAdd(t, m, app, Library{IncludePaths: []string{"app/include"}, Uses: []Ref{pub}, Links: []Ref{priv}})

	got, err := m.IncludePaths(app)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"app/include", "pub/include"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("IncludePaths = %v, want %v", got, want)
	}
}

func TestAddDuplicateErrors(t *testing.T) {
	m := NewMap()
	ref := Ref{Namespace: "a", Name: "a"}
	mustAdd(t, m, ref, Library{})
	if _, err := m.Add(ref.Namespace, ref.Name, Library{}); err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestLinkPathsUnknownRefErrors(t *testing.T) {
	m := NewMap()
	if _, err := m.LinkPaths(Ref{Namespace: "missing", Name: "missing"}); err == nil {
		t.Fatal("expected unknown usage error")
	}
}

func mustAdd(t *testing.T, m *Map, ref Ref, lib Library) {
	t.Helper()
	if _, err := m.Add(ref.Namespace, ref.Name, lib); err != nil {
		t.Fatal(err)
	}
}
