package toolchain

import (
	"fmt"
	"runtime"
)

// Toolchain is the immutable, goroutine-shareable result of realizing a
// Prep: fully-deduced command templates and filename affixes.
type Toolchain struct {
	cCompile, cxxCompile               []string
	incTemplate, externIncTemplate     []string
	defTemplate                        []string
	linkArchive, linkExe               []string
	warningFlags                       []string
	archivePrefix, archiveSuffix       string
	objectPrefix, objectSuffix         string
	exePrefix, exeSuffix               string
	depsMode                           DepsMode
}

// cStandardFlag and cxxStandardFlag implement the (compiler_id,
// language_version) deduction table of spec.md §4.5.1.
func cStandardFlag(compilerID, version string) (string, error) {
	if version == "" {
		return "", nil
	}
	switch compilerID {
	case "GNU", "Clang":
		switch version {
		case "C89":
			return "-std=c89", nil
		case "C99":
			return "-std=c99", nil
		case "C11":
			return "-std=c11", nil
		case "C18":
			return "-std=c18", nil
		}
	case "MSVC":
		switch version {
		case "C11":
			return "/std:c11", nil
		case "C18":
			return "/std:c17", nil
		}
	}
	return "", fmt.Errorf("cannot deduce C standard flag for compiler %q version %q", compilerID, version)
}

func cxxStandardFlag(compilerID, version string) (string, error) {
	if version == "" {
		return "", nil
	}
	switch compilerID {
	case "GNU", "Clang":
		switch version {
		case "C++98":
			return "-std=c++98", nil
		case "C++03":
			return "-std=c++03", nil
		case "C++11":
			return "-std=c++11", nil
		case "C++14":
			return "-std=c++14", nil
		case "C++17":
			return "-std=c++17", nil
		case "C++20":
			return "-std=c++20", nil
		}
	case "MSVC":
		switch version {
		case "C++14":
			return "/std:c++14", nil
		case "C++17":
			return "/std:c++17", nil
		case "C++20":
			return "/std:c++20", nil
		}
	}
	return "", fmt.Errorf("cannot deduce C++ standard flag for compiler %q version %q", compilerID, version)
}

// Realize applies the deduction table to p and produces an immutable
// Toolchain. Any field explicitly set on p overrides its deduced default.
func (p *Prep) Realize() (*Toolchain, error) {
	if len(p.CCompileFile) > 0 || len(p.CXXCompileFile) > 0 || len(p.CreateArchive) > 0 || len(p.LinkExecutable) > 0 {
		// Full override path: still requires every command template to be
		// present, since create_compile_command needs both languages.
		if len(p.CCompileFile) == 0 || len(p.CXXCompileFile) == 0 || len(p.CreateArchive) == 0 || len(p.LinkExecutable) == 0 {
			return nil, fmt.Errorf("toolchain: partial command-template override; all of C-Compile-File, C++-Compile-File, Create-Archive, Link-Executable must be given together")
		}
	}

	if p.CompilerID == "" && !p.fullyOverridden() {
		return nil, fmt.Errorf("cannot deduce toolchain defaults without Compiler-ID")
	}

	depsMode := p.DepsMode
	if depsMode == "" {
		depsMode = DepsNone
	}
	tc := &Toolchain{depsMode: depsMode}

	cStd, err := cStandardFlag(p.CompilerID, p.CVersion)
	if err != nil {
		return nil, err
	}
	cxxStd, err := cxxStandardFlag(p.CompilerID, p.CXXVersion)
	if err != nil {
		return nil, err
	}

	tc.cCompile = p.compileTemplate(p.CCompileFile, p.CCompiler, cStd, false)
	tc.cxxCompile = p.compileTemplate(p.CXXCompileFile, p.CXXCompiler, cxxStd, true)

	tc.incTemplate = firstNonEmpty(p.IncludeTemplate, defaultIncludeTemplate(p.CompilerID))
	tc.externIncTemplate = firstNonEmpty(p.ExternalIncludeTemplate, defaultExternalIncludeTemplate(p.CompilerID))
	tc.defTemplate = firstNonEmpty(p.DefineTemplate, defaultDefineTemplate(p.CompilerID))

	tc.warningFlags = firstNonEmpty(p.WarningFlags, defaultWarningFlags(p.CompilerID))

	tc.linkArchive = firstNonEmpty(p.CreateArchive, defaultArchiveTemplate(p.CompilerID))
	tc.linkExe = firstNonEmpty(p.LinkExecutable, defaultLinkTemplate(p.CompilerID))

	tc.archivePrefix = orDefault(p.ArchivePrefix, "lib")
	tc.archiveSuffix = orDefault(p.ArchiveSuffix, defaultArchiveSuffix(p.CompilerID))
	tc.objectPrefix = p.ObjectPrefix
	tc.objectSuffix = orDefault(p.ObjectSuffix, defaultObjectSuffix(p.CompilerID))
	tc.exePrefix = p.ExecutablePrefix
	tc.exeSuffix = orDefault(p.ExecutableSuffix, defaultExeSuffix())

	return tc, nil
}

func (p *Prep) fullyOverridden() bool {
	return len(p.CCompileFile) > 0 && len(p.CXXCompileFile) > 0 && len(p.CreateArchive) > 0 && len(p.LinkExecutable) > 0
}

// compileTemplate builds the compile command template for one language
// when no full override is given: launcher prefix, compiler executable,
// standard flag, optimize/debug flags, <FLAGS>, "-c" <IN> "-o" <OUT>.
func (p *Prep) compileTemplate(override []string, compiler, stdFlag string, cxx bool) []string {
	if len(override) > 0 {
		return override
	}

	compiler = orDefault(compiler, defaultCompiler(p.CompilerID, cxx))

	var cmd []string
	cmd = append(cmd, p.CompilerLauncher...)
	cmd = append(cmd, compiler)
	if stdFlag != "" {
		cmd = append(cmd, stdFlag)
	}
	cmd = append(cmd, optimizeDebugFlags(p.CompilerID, p.Optimize, p.Debug)...)
	if cxx {
		cmd = append(cmd, p.Flags...)
		cmd = append(cmd, p.CXXFlags...)
	} else {
		cmd = append(cmd, p.Flags...)
		cmd = append(cmd, p.CFlags...)
	}
	cmd = append(cmd, "<FLAGS>")

	switch p.CompilerID {
	case "MSVC":
		cmd = append(cmd, "/c", "<IN>", "/Fo<OUT>")
	default:
		cmd = append(cmd, "-c", "<IN>", "-o", "<OUT>")
	}
	return cmd
}

func defaultCompiler(compilerID string, cxx bool) string {
	switch compilerID {
	case "GNU":
		if cxx {
			return "g++"
		}
		return "gcc"
	case "Clang":
		if cxx {
			return "clang++"
		}
		return "clang"
	case "MSVC":
		return "cl.exe"
	default:
		return ""
	}
}

func optimizeDebugFlags(compilerID string, optimize, debug bool) []string {
	var flags []string
	switch compilerID {
	case "MSVC":
		if optimize {
			flags = append(flags, "/O2")
		}
		if debug {
			flags = append(flags, "/Zi")
		}
	default:
		if optimize {
			flags = append(flags, "-O2")
		}
		if debug {
			flags = append(flags, "-g")
		}
	}
	return flags
}

func defaultIncludeTemplate(compilerID string) []string {
	if compilerID == "MSVC" {
		return []string{"/I<PATH>"}
	}
	return []string{"-I<PATH>"}
}

func defaultExternalIncludeTemplate(compilerID string) []string {
	if compilerID == "MSVC" {
		return []string{"/I<PATH>"}
	}
	// GCC/Clang treat -isystem paths as not warning-producing, matching
	// the "external" (third-party, not-our-problem) distinction.
	return []string{"-isystem", "<PATH>"}
}

func defaultDefineTemplate(compilerID string) []string {
	if compilerID == "MSVC" {
		return []string{"/D<DEF>"}
	}
	return []string{"-D<DEF>"}
}

func defaultWarningFlags(compilerID string) []string {
	switch compilerID {
	case "MSVC":
		return []string{"/W4"}
	case "Clang":
		return []string{"-Wall", "-Wextra", "-Wpedantic"}
	default:
		return []string{"-Wall", "-Wextra"}
	}
}

func defaultArchiveTemplate(compilerID string) []string {
	if compilerID == "MSVC" {
		return []string{"lib.exe", "/OUT:<OUT>", "<IN>"}
	}
	return []string{"ar", "rcs", "<OUT>", "<IN>"}
}

func defaultLinkTemplate(compilerID string) []string {
	if compilerID == "MSVC" {
		return []string{"link.exe", "/OUT:<OUT>", "<IN>"}
	}
	return []string{"c++", "<IN>", "-o", "<OUT>"}
}

func defaultArchiveSuffix(compilerID string) string {
	if compilerID == "MSVC" {
		return ".lib"
	}
	return ".a"
}

func defaultObjectSuffix(compilerID string) string {
	if compilerID == "MSVC" {
		return ".obj"
	}
	return ".o"
}

func defaultExeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

func firstNonEmpty(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}

func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
