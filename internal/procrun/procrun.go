// Package procrun implements spec.md §6's subprocess contract:
// run_proc(argv) -> { exit_code, output, duration }, wrapping os/exec the
// same direct way the external-build-system helpers invoke cmake/configure.
package procrun

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// Result is one subprocess invocation's outcome.
type Result struct {
	ExitCode int
	Output   []byte
	Duration time.Duration
}

// Run executes argv[0] with argv[1:], capturing combined stdout+stderr. A
// non-zero exit code is reported in Result, not as an error: only failures
// to even start the process (missing binary, broken pipe) are returned as
// err, matching spec.md §6 ("a non-zero exit_code is a failure" handled by
// the caller, not the transport).
func Run(ctx context.Context, argv []string) (Result, error) {
	start := now()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	duration := now().Sub(start)

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return Result{}, err
		}
	}

	return Result{ExitCode: exitCode, Output: buf.Bytes(), Duration: duration}, nil
}

var now = time.Now
