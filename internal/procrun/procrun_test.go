package procrun

import (
	"context"
	"runtime"
	"testing"
)

func TestRunSuccess(t *testing.T) {
	argv := []string{"true"}
	if runtime.GOOS == "windows" {
		t.Skip("true(1) is not available on windows")
	}
	res, err := Run(context.Background(), argv)
	if err != nil {
		t.Fatal(err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("false(1) is not available on windows")
	}
	res, err := Run(context.Background(), []string{"false"})
	if err != nil {
		t.Fatal(err)
	}
	if res.ExitCode == 0 {
		t.Error("expected non-zero exit code")
	}
}

func TestRunMissingBinary(t *testing.T) {
	_, err := Run(context.Background(), []string{"forge-definitely-not-a-real-binary"})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}
