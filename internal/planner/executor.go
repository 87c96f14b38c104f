package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/forgepkg/forge/internal/parwork"
	"github.com/forgepkg/forge/internal/procrun"
	"github.com/forgepkg/forge/internal/toolchain"
	"github.com/forgepkg/forge/internal/usage"
)

// ProcessResult is what the host's subprocess runner reports back, per
// spec.md §6's "Subprocess contract".
type ProcessResult = procrun.Result

// RunProc is the subprocess-execution hook the executor is parameterized
// over, so tests can substitute a fake without spawning real compilers.
type RunProc func(ctx context.Context, argv []string) (ProcessResult, error)

// DefaultRunProc spawns real subprocesses via internal/procrun.
func DefaultRunProc(ctx context.Context, argv []string) (ProcessResult, error) {
	return procrun.Run(ctx, argv)
}

// FailureKind distinguishes the three user-visible failure categories of
// spec.md §4.7.2.
type FailureKind string

const (
	CompileFailed FailureKind = "compile_failed"
	ArchiveFailed FailureKind = "archive_failed"
	LinkFailed    FailureKind = "link_failed"
)

// StepFailure carries the offending command, its output, and the
// library+source context for one failed build step.
type StepFailure struct {
	Kind     FailureKind
	Library  string
	Source   string
	Argv     []string
	Output   []byte
	ExitCode int
}

func (e *StepFailure) Error() string {
	return fmt.Sprintf("%s: %s (%s): exit %d", e.Kind, e.Library, e.Source, e.ExitCode)
}

// Executor runs a set of LibraryPlans to completion: a compile pass over
// every compile step (bounded parallel, fail-fast), then an archive pass,
// then a link pass, per spec.md §4.7.2. UsageMap supplies the
// usage-derived include paths (compile pass) and link paths (link pass)
// gathered from each library's Uses/Links edges, per spec.md §2's data
// flow ("C7 drives execution using C6 to gather usage-derived flags").
type Executor struct {
	Toolchain *toolchain.Toolchain
	UsageMap  *usage.Map
	RunProc   RunProc
	Jobs      int // 0 selects runtime.NumCPU()+2, per spec.md §5
	Cache     *Cache
}

// DefaultJobs implements spec.md §5's default worker count.
func DefaultJobs() int {
	return runtime.NumCPU() + 2
}

// compileJob bundles one compile step with the library-wide context
// (its own include/define flags, whether warnings are enabled, and the
// usage-derived external include paths gathered from the owning
// library's Uses edges) needed to synthesize its compile command.
type compileJob struct {
	plan             CompileFilePlan
	lib              string
	includes         []string
	externalIncludes []string
	defines          []string
	enableWarnings   bool
}

// Run executes every plan's compile, archive, and link steps and returns
// every StepFailure encountered (the pass continues after the first
// failure until all in-flight work completes).
func (ex *Executor) Run(ctx context.Context, plans []*LibraryPlan) []error {
	jobs := ex.Jobs
	if jobs <= 0 {
		jobs = DefaultJobs()
	}

	var compiles []compileJob
	for _, lp := range plans {
		externalIncludes, err := ex.includePathsFor(lp.Library.Uses)
		if err != nil {
			return []error{err}
		}

		toJob := func(c CompileFilePlan) compileJob {
			return compileJob{
				plan:             c,
				lib:              lp.Library.Name,
				includes:         lp.Library.Includes,
				externalIncludes: externalIncludes,
				defines:          lp.Library.Defines,
				enableWarnings:   lp.EnableWarnings,
			}
		}

		if lp.Archive != nil {
			for _, c := range lp.Archive.Inputs {
				compiles = append(compiles, toJob(c))
			}
		}
		for _, exe := range lp.Executables {
			compiles = append(compiles, toJob(exe.Compile))
		}
	}

	runner := parwork.NewRunner(compiles)
	errs := runner.Run(jobs, func(job compileJob) error {
		return ex.compile(ctx, job)
	})
	if len(errs) > 0 {
		return errs
	}

	for _, lp := range plans {
		if lp.Archive == nil {
			continue
		}
		if err := ex.archive(ctx, lp.Archive, lp.Library.Name); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs
	}

	for _, lp := range plans {
		for _, exe := range lp.Executables {
			if err := ex.link(ctx, exe, lp.Library.Name); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errs
}

// includePathsFor gathers the deterministic, cycle-safe transitive
// include paths for every usage edge in refs via the usage map (C6). A
// nil UsageMap (no dependencies resolved) yields no external includes.
func (ex *Executor) includePathsFor(refs []usage.Ref) ([]string, error) {
	if ex.UsageMap == nil {
		return nil, nil
	}
	var out []string
	for _, ref := range refs {
		paths, err := ex.UsageMap.IncludePaths(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, paths...)
	}
	return out, nil
}

// linkPathsFor gathers the transitive linkable artifact paths for every
// usage edge in refs via the usage map (C6).
func (ex *Executor) linkPathsFor(refs []usage.Ref) ([]string, error) {
	if ex.UsageMap == nil {
		return nil, nil
	}
	var out []string
	for _, ref := range refs {
		paths, err := ex.UsageMap.LinkPaths(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, paths...)
	}
	return out, nil
}

func (ex *Executor) compile(ctx context.Context, job compileJob) error {
	c := job.plan
	if err := os.MkdirAll(filepath.Dir(c.ObjectOut), 0o755); err != nil {
		return err
	}

	cmd := ex.Toolchain.CreateCompileCommand(toolchain.CompileFileSpec{
		Source:           c.Source,
		ObjectOut:        c.ObjectOut,
		IsCXX:            c.IsCXX,
		Includes:         job.includes,
		ExternalIncludes: job.externalIncludes,
		Defines:          job.defines,
		EnableWarnings:   job.enableWarnings,
	})

	res, err := ex.RunProc(ctx, cmd.Argv)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &StepFailure{Kind: CompileFailed, Library: job.lib, Source: c.Source, Argv: cmd.Argv, Output: res.Output, ExitCode: res.ExitCode}
	}

	if err := ex.writeDeps(cmd, res, c.ObjectOut); err != nil {
		return err
	}

	if ex.Cache != nil {
		ex.Cache.RecordObject(c.ObjectOut, res.Duration)
	}
	return nil
}

// writeDeps parses the dependency information the compiler reported for
// this compile (a GNU depfile, or MSVC's "Note: including file:" stdout
// stream) into a per-object .deps.json sidecar, per spec.md §4.7.2.
func (ex *Executor) writeDeps(cmd toolchain.Command, res ProcessResult, objectOut string) error {
	var headers []string
	switch ex.Toolchain.DepsMode() {
	case toolchain.DepsNone:
		return nil
	case toolchain.DepsGNU:
		if cmd.DepfilePath == "" {
			return nil
		}
		parsed, err := parseGNUDepfile(cmd.DepfilePath)
		if err != nil {
			return err
		}
		headers = parsed
	case toolchain.DepsMSVC:
		headers = parseMSVCIncludes(res.Output)
	}
	return writeDepsSidecar(objectOut, headers)
}

func (ex *Executor) archive(ctx context.Context, a *ArchivePlan, lib string) error {
	if err := os.MkdirAll(filepath.Dir(a.ArchiveOut), 0o755); err != nil {
		return err
	}
	var objs []string
	for _, in := range a.Inputs {
		objs = append(objs, in.ObjectOut)
	}
	cmd := ex.Toolchain.CreateArchiveCommand(toolchain.ArchiveSpec{Objects: objs, ArchiveOut: a.ArchiveOut})

	res, err := ex.RunProc(ctx, cmd.Argv)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &StepFailure{Kind: ArchiveFailed, Library: lib, Argv: cmd.Argv, Output: res.Output, ExitCode: res.ExitCode}
	}
	return nil
}

func (ex *Executor) link(ctx context.Context, exe LinkExecutablePlan, lib string) error {
	if err := os.MkdirAll(filepath.Dir(exe.ExeOut), 0o755); err != nil {
		return err
	}

	usageLinkPaths, err := ex.linkPathsFor(exe.Uses)
	if err != nil {
		return err
	}
	linkFlags := append(append([]string{}, exe.LinkFiles...), usageLinkPaths...)

	objs := []string{exe.Compile.ObjectOut}
	cmd := ex.Toolchain.CreateLinkExecutableCommand(toolchain.LinkExeSpec{
		Objects:   objs,
		LinkFlags: linkFlags,
		ExeOut:    exe.ExeOut,
	})

	res, err := ex.RunProc(ctx, cmd.Argv)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &StepFailure{Kind: LinkFailed, Library: lib, Source: exe.Compile.Source, Argv: cmd.Argv, Output: res.Output, ExitCode: res.ExitCode}
	}
	return nil
}
