package toolchain

import "testing"

func TestRealizeGNUDefaults(t *testing.T) {
	p := &Prep{CompilerID: "GNU", CXXVersion: "C++17", Optimize: true}
	tc, err := p.Realize()
	if err != nil {
		t.Fatal(err)
	}
	if tc.archiveSuffix != ".a" || tc.objectSuffix != ".o" {
		t.Errorf("affixes = %q %q", tc.archiveSuffix, tc.objectSuffix)
	}
	found := false
	for _, tok := range tc.cxxCompile {
		if tok == "-std=c++17" {
			found = true
		}
	}
	if !found {
		t.Errorf("cxxCompile missing -std=c++17: %v", tc.cxxCompile)
	}
}

func TestRealizeUnknownStandardErrors(t *testing.T) {
	p := &Prep{CompilerID: "GNU", CXXVersion: "C++23"}
	if _, err := p.Realize(); err == nil {
		t.Fatal("expected error for unsupported standard")
	}
}

func TestRealizeRequiresCompilerID(t *testing.T) {
	p := &Prep{}
	if _, err := p.Realize(); err == nil {
		t.Fatal("expected error without Compiler-ID")
	}
}

func TestRealizeMSVCAffixes(t *testing.T) {
	p := &Prep{CompilerID: "MSVC"}
	tc, err := p.Realize()
	if err != nil {
		t.Fatal(err)
	}
	if tc.archiveSuffix != ".lib" || tc.objectSuffix != ".obj" {
		t.Errorf("affixes = %q %q", tc.archiveSuffix, tc.objectSuffix)
	}
}
