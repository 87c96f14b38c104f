package planner

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/forgepkg/forge/internal/toolchain"
	"github.com/forgepkg/forge/internal/usage"
)

func TestExecutorRunsCompileArchiveLink(t *testing.T) {
	tc := mustToolchain(t)
	dir := t.TempDir()

	lib := Library{
		Name:    "widgets",
		SrcRoot: dir,
		Sources: []Source{
			{Path: dir + "/widget.cpp", Kind: KindLibrary},
			{Path: dir + "/main.cpp", Kind: KindApp},
		},
	}
	plan := Create(lib, Params{OutSubdir: dir + "/out", BuildApps: true}, tc)

	var ran []string
	ex := &Executor{
		Toolchain: tc,
		Jobs:      2,
		RunProc: func(ctx context.Context, argv []string) (ProcessResult, error) {
			ran = append(ran, argv[0])
			return ProcessResult{ExitCode: 0}, nil
		},
	}

	errs := ex.Run(context.Background(), []*LibraryPlan{plan})
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	// 2 compiles (widget.cpp, main.cpp) + 1 archive + 1 link.
	if len(ran) != 4 {
		t.Fatalf("ran %d commands, want 4: %v", len(ran), ran)
	}
}

func TestExecutorStopsOnCompileFailure(t *testing.T) {
	tc := mustToolchain(t)
	dir := t.TempDir()

	lib := Library{
		Name:    "widgets",
		SrcRoot: dir,
		Sources: []Source{
			{Path: dir + "/widget.cpp", Kind: KindLibrary},
		},
	}
	plan := Create(lib, Params{OutSubdir: dir + "/out"}, tc)

	var archived bool
	ex := &Executor{
		Toolchain: tc,
		Jobs:      1,
		RunProc: func(ctx context.Context, argv []string) (ProcessResult, error) {
			if argv[0] == "ar" {
				archived = true
			}
			return ProcessResult{ExitCode: 1, Output: []byte("compile error")}, nil
		},
	}

	errs := ex.Run(context.Background(), []*LibraryPlan{plan})
	if len(errs) == 0 {
		t.Fatal("expected a compile failure")
	}
	sf, ok := errs[0].(*StepFailure)
	if !ok {
		t.Fatalf("got %T, want *StepFailure", errs[0])
	}
	if sf.Kind != CompileFailed {
		t.Errorf("Kind = %v, want compile_failed", sf.Kind)
	}
	if archived {
		t.Error("archive pass should not run after compile failure")
	}
}

func TestExecutorWiresUsageMapIntoCompile(t *testing.T) {
	tc := mustToolchain(t)
	dir := t.TempDir()

	m := usage.NewMap()
	if _, err := m.Add("zlib", "zlib", usage.Library{
		IncludePaths: []string{"/deps/zlib/include"},
	}); err != nil {
		t.Fatal(err)
	}
	zlibRef := usage.Ref{Namespace: "zlib", Name: "zlib"}

	lib := Library{
		Name:    "widgets",
		SrcRoot: dir,
		Sources: []Source{{Path: dir + "/widget.cpp", Kind: KindLibrary}},
		Uses:    []usage.Ref{zlibRef},
	}
	plan := Create(lib, Params{OutSubdir: dir + "/out"}, tc)

	var compileArgv []string
	ex := &Executor{
		Toolchain: tc,
		UsageMap:  m,
		Jobs:      1,
		RunProc: func(ctx context.Context, argv []string) (ProcessResult, error) {
			if argv[0] == "g++" {
				compileArgv = argv
			}
			return ProcessResult{ExitCode: 0}, nil
		},
	}

	errs := ex.Run(context.Background(), []*LibraryPlan{plan})
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	if !containsAll(compileArgv, "-isystem", "/deps/zlib/include") {
		t.Errorf("compile argv = %v, want -isystem /deps/zlib/include", compileArgv)
	}
}

func TestExecutorWiresUsageMapIntoLink(t *testing.T) {
	tc := mustToolchain(t)
	dir := t.TempDir()

	m := usage.NewMap()
	if _, err := m.Add("zlib", "zlib", usage.Library{LinkablePath: "/deps/zlib/libz.a"}); err != nil {
		t.Fatal(err)
	}
	zlibRef := usage.Ref{Namespace: "zlib", Name: "zlib"}

	lib := Library{
		Name:    "app",
		SrcRoot: dir,
		Sources: []Source{{Path: dir + "/main.cpp", Kind: KindApp}},
		Uses:    []usage.Ref{zlibRef},
	}
	plan := Create(lib, Params{OutSubdir: dir + "/out", BuildApps: true}, tc)

	var linkArgv []string
	ex := &Executor{
		Toolchain: tc,
		UsageMap:  m,
		Jobs:      1,
		RunProc: func(ctx context.Context, argv []string) (ProcessResult, error) {
			if argv[0] == "c++" {
				linkArgv = argv
			}
			return ProcessResult{ExitCode: 0}, nil
		},
	}

	errs := ex.Run(context.Background(), []*LibraryPlan{plan})
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	if !containsAll(linkArgv, "/deps/zlib/libz.a") {
		t.Errorf("link argv = %v, want /deps/zlib/libz.a", linkArgv)
	}
}

func TestWriteDepsSidecarGNU(t *testing.T) {
	tc, err := (&toolchain.Prep{CompilerID: "GNU", DepsMode: toolchain.DepsGNU}).Realize()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()

	ex := &Executor{
		Toolchain: tc,
		Jobs:      1,
		RunProc: func(ctx context.Context, argv []string) (ProcessResult, error) {
			// Simulate the compiler writing the depfile the toolchain asked for.
			for i, a := range argv {
				if a == "-MF" {
					depfile := argv[i+1]
					if err := os.WriteFile(depfile, []byte(dir+"/out/obj/widget.o: "+dir+"/widget.cpp "+dir+"/widget.h\n"), 0o644); err != nil {
						t.Fatal(err)
					}
				}
			}
			return ProcessResult{ExitCode: 0}, nil
		},
	}

	job := compileJob{plan: CompileFilePlan{Source: dir + "/widget.cpp", ObjectOut: dir + "/out/obj/widget.o"}}
	if err := ex.compile(context.Background(), job); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(dir + "/out/obj/widget.o.deps.json")
	if err != nil {
		t.Fatalf("sidecar not written: %v", err)
	}
	if !strings.Contains(string(data), "widget.h") {
		t.Errorf("sidecar = %s, want it to mention widget.h", data)
	}
}

func containsAll(argv []string, want ...string) bool {
	for _, w := range want {
		found := false
		for _, a := range argv {
			if a == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
