package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ImportPolicy != "throw" || !cfg.EnableWarnings {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.yaml")
	data := "jobs: 4\nimport_policy: replace\nenable_warnings: false\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Jobs != 4 || cfg.ImportPolicy != "replace" || cfg.EnableWarnings {
		t.Errorf("cfg = %+v", cfg)
	}
}
