package toolchain

import (
	"fmt"
	"regexp"
)

// builtinGrammar matches "[debug:][ccache:][<std>:]<compiler>[-<ver>]" per
// spec.md §4.5.1, e.g. "debug:c++17:gcc-11" or "clang".
var builtinGrammar = regexp.MustCompile(
	`^(?:debug:)?(?:ccache:)?(?:(c\+\+\d\d|c\d\d):)?(gcc|clang|msvc)(?:-(\d+))?$`,
)

var builtinRoots = map[string]string{
	"gcc":   "GNU",
	"clang": "Clang",
	"msvc":  "MSVC",
}

// BuiltinProfile parses a builtin profile id and produces the Prep it
// denotes, grounded directly on the builtin-id grammar parsed by
// get_builtin in the original toolchain driver.
func BuiltinProfile(id string) (*Prep, error) {
	m := builtinGrammar.FindStringSubmatch(id)
	if m == nil {
		return nil, fmt.Errorf("toolchain: %q is not a recognized builtin profile id", id)
	}
	std, root, ver := m[1], m[2], m[3]

	if ver != "" {
		n := 0
		fmt.Sscanf(ver, "%d", &n)
		if n < 7 || n > 13 {
			return nil, fmt.Errorf("toolchain: %q names an unsupported compiler version (recognized: 7-13)", id)
		}
	}

	p := &Prep{
		CompilerID: builtinRoots[root],
		DepsMode:   DepsGNU,
	}
	if p.CompilerID == "MSVC" {
		p.DepsMode = DepsMSVC
	}

	if len(id) >= 6 && id[:6] == "debug:" {
		p.Debug = true
	}
	if containsToken(id, "ccache:") {
		p.CompilerLauncher = []string{"ccache"}
	}

	switch std {
	case "c++98", "c++03", "c++11", "c++14", "c++17", "c++20":
		p.CXXVersion = "C++" + std[3:]
	case "c89", "c99", "c11", "c18":
		p.CVersion = "C" + std[1:]
	}

	if ver != "" {
		p.CCompiler, p.CXXCompiler = versionedExecutables(root, ver)
	}

	return p, nil
}

func containsToken(id, tok string) bool {
	for i := 0; i+len(tok) <= len(id); i++ {
		if id[i:i+len(tok)] == tok {
			return true
		}
	}
	return false
}

func versionedExecutables(root, ver string) (cCompiler, cxxCompiler string) {
	switch root {
	case "gcc":
		return "gcc-" + ver, "g++-" + ver
	case "clang":
		return "clang-" + ver, "clang++-" + ver
	default:
		return "", ""
	}
}
