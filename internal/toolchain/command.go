package toolchain

import (
	"strings"
)

// CompileFileSpec describes a single source file to be compiled.
type CompileFileSpec struct {
	Source           string
	ObjectOut        string
	IsCXX            bool
	Includes         []string // our own, warning-producing
	ExternalIncludes []string // third-party, not warning-producing
	Defines          []string
	EnableWarnings   bool
	DepfileOut       string // set by the caller when DepsMode != None
}

// Command is a synthesized argv plus the depfile path the invoker should
// read back after running it, if any.
type Command struct {
	Argv       []string
	DepfilePath string
}

// CreateCompileCommand implements spec.md §4.5.2: expand the selected
// language's compile template, splicing a <FLAGS> vector built from the
// include/define templates, warning flags, and depfile-mode extras.
func (tc *Toolchain) CreateCompileCommand(spec CompileFileSpec) Command {
	template := tc.cCompile
	if spec.IsCXX {
		template = tc.cxxCompile
	}

	var flags []string
	for _, dir := range spec.Includes {
		flags = append(flags, bindPath(tc.incTemplate, dir)...)
	}
	for _, dir := range spec.ExternalIncludes {
		flags = append(flags, bindPath(tc.externIncTemplate, dir)...)
	}
	for _, def := range spec.Defines {
		flags = append(flags, bindDefine(tc.defTemplate, def)...)
	}
	if spec.EnableWarnings {
		flags = append(flags, tc.warningFlags...)
	}

	depfile := ""
	switch tc.depsMode {
	case DepsGNU:
		depfile = spec.DepfileOut
		if depfile == "" {
			depfile = depfileSibling(spec.ObjectOut)
		}
		flags = append(flags, "-MD", "-MF", depfile, "-MT", spec.ObjectOut)
	case DepsMSVC:
		flags = append(flags, "/showIncludes")
		depfile = "" // extracted from compiler stdout by the caller, not a file
	}

	argv := expand(template, spec.Source, spec.ObjectOut, flags)
	return Command{Argv: argv, DepfilePath: depfile}
}

// ArchiveSpec describes the inputs to a static-archive link step.
type ArchiveSpec struct {
	Objects   []string
	ArchiveOut string
}

func (tc *Toolchain) CreateArchiveCommand(spec ArchiveSpec) Command {
	return Command{Argv: expandMulti(tc.linkArchive, spec.Objects, spec.ArchiveOut)}
}

// LinkExeSpec describes the inputs to an executable link step.
type LinkExeSpec struct {
	Objects    []string
	LinkFlags  []string
	ExeOut     string
}

func (tc *Toolchain) CreateLinkExecutableCommand(spec LinkExeSpec) Command {
	ins := append(append([]string{}, spec.Objects...), spec.LinkFlags...)
	return Command{Argv: expandMulti(tc.linkExe, ins, spec.ExeOut)}
}

// DepsMode reports the toolchain's configured dependency-tracking mode, so
// the planner can decide whether to expect a sidecar depfile.
func (tc *Toolchain) DepsMode() DepsMode { return tc.depsMode }

// ArchiveName, ObjectName, and ExeName apply the toolchain's configured
// filename affixes (spec.md §4.5.1 Archive-Prefix/-Suffix etc.).
func (tc *Toolchain) ArchiveName(base string) string {
	return tc.archivePrefix + base + tc.archiveSuffix
}

func (tc *Toolchain) ObjectName(base string) string {
	return tc.objectPrefix + base + tc.objectSuffix
}

func (tc *Toolchain) ExeName(base string) string {
	return tc.exePrefix + base + tc.exeSuffix
}

func bindPath(template []string, path string) []string {
	return expandTokens(template, map[string]string{"<PATH>": path})
}

func bindDefine(template []string, def string) []string {
	return expandTokens(template, map[string]string{"<DEF>": def})
}

// expand substitutes <IN>, <OUT>, and splices <FLAGS> into template, in
// place, token-by-token, matching create_compile_command's expansion rule:
// <FLAGS> splices the whole vector, <IN>/<OUT> substitute inside tokens.
func expand(template []string, in, out string, flags []string) []string {
	var argv []string
	for _, tok := range template {
		if tok == "<FLAGS>" {
			argv = append(argv, flags...)
			continue
		}
		tok = strings.ReplaceAll(tok, "<IN>", in)
		tok = strings.ReplaceAll(tok, "<OUT>", out)
		argv = append(argv, tok)
	}
	return argv
}

// expandMulti splices a whole list of inputs where <IN> appears as its own
// token (archive/link commands take many object files, not one).
func expandMulti(template []string, ins []string, out string) []string {
	var argv []string
	for _, tok := range template {
		if tok == "<IN>" {
			argv = append(argv, ins...)
			continue
		}
		tok = strings.ReplaceAll(tok, "<OUT>", out)
		argv = append(argv, tok)
	}
	return argv
}

func expandTokens(template []string, subs map[string]string) []string {
	var out []string
	for _, tok := range template {
		for k, v := range subs {
			tok = strings.ReplaceAll(tok, k, v)
		}
		out = append(out, tok)
	}
	return out
}

// depfileSibling implements spec.md §4.5.2's default depfile path:
// out_path + ".d", e.g. "build/a.o" -> "build/a.o.d".
func depfileSibling(objectOut string) string {
	return objectOut + ".d"
}
