package toolchain

import "testing"

type fakeReader struct {
	pairs []KV
}

func (f *fakeReader) Pairs() ([]KV, error) { return f.pairs, nil }

func TestLoadPrepAccumulatesFlags(t *testing.T) {
	r := &fakeReader{pairs: []KV{
		{"Compiler-ID", "GNU"},
		{"Flags", "-Wall"},
		{"Flags", "-Wextra"},
	}}
	p, err := LoadPrep(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Flags) != 2 || p.Flags[0] != "-Wall" || p.Flags[1] != "-Wextra" {
		t.Errorf("Flags = %v", p.Flags)
	}
}

func TestLoadPrepDuplicateSingleValueErrors(t *testing.T) {
	r := &fakeReader{pairs: []KV{
		{"Compiler-ID", "GNU"},
		{"Compiler-ID", "Clang"},
	}}
	if _, err := LoadPrep(r); err == nil {
		t.Fatal("expected error on duplicate single-value key")
	}
}

func TestLoadPrepUnknownKeySuggests(t *testing.T) {
	r := &fakeReader{pairs: []KV{{"Compiler-Id", "GNU"}}}
	_, err := LoadPrep(r)
	if err == nil {
		t.Fatal("expected error")
	}
	uk, ok := err.(*ErrUnknownToolchainKey)
	if !ok {
		t.Fatalf("got %T, want *ErrUnknownToolchainKey", err)
	}
	if uk.Suggestion != "Compiler-ID" {
		t.Errorf("suggestion = %q, want Compiler-ID", uk.Suggestion)
	}
}

func TestLoadPrepShellSplitsFlags(t *testing.T) {
	r := &fakeReader{pairs: []KV{
		{"Compiler-ID", "GNU"},
		{"C-Flags", `-DFOO="bar baz"`},
	}}
	p, err := LoadPrep(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.CFlags) != 1 || p.CFlags[0] != `-DFOO=bar baz` {
		t.Errorf("CFlags = %v", p.CFlags)
	}
}
