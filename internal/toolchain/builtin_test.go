package toolchain

import "testing"

func TestBuiltinProfileSimple(t *testing.T) {
	p, err := BuiltinProfile("clang")
	if err != nil {
		t.Fatal(err)
	}
	if p.CompilerID != "Clang" {
		t.Errorf("CompilerID = %q", p.CompilerID)
	}
}

func TestBuiltinProfileFull(t *testing.T) {
	p, err := BuiltinProfile("debug:ccache:c++17:gcc-11")
	if err != nil {
		t.Fatal(err)
	}
	if p.CompilerID != "GNU" || !p.Debug || p.CXXVersion != "C++17" {
		t.Errorf("p = %+v", p)
	}
	if len(p.CompilerLauncher) != 1 || p.CompilerLauncher[0] != "ccache" {
		t.Errorf("CompilerLauncher = %v", p.CompilerLauncher)
	}
	if p.CCompiler != "gcc-11" || p.CXXCompiler != "g++-11" {
		t.Errorf("compilers = %q %q", p.CCompiler, p.CXXCompiler)
	}
}

func TestBuiltinProfileUnsupportedVersion(t *testing.T) {
	if _, err := BuiltinProfile("gcc-99"); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestBuiltinProfileInvalid(t *testing.T) {
	if _, err := BuiltinProfile("not-a-compiler"); err == nil {
		t.Fatal("expected error for unrecognized id")
	}
}
