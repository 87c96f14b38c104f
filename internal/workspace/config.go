package workspace

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the operator-facing workspace.yaml surface: the handful of
// knobs that govern a build invocation but don't belong in a package
// manifest (spec.md §4.7's params, §5's job count, the repository import
// policy, the remote catalog location).
type Config struct {
	Jobs           int    `yaml:"jobs"`
	ImportPolicy   string `yaml:"import_policy"` // "throw" | "ignore" | "replace"
	CatalogIndex   string `yaml:"catalog_index"` // path to a name->repo index file
	RepoDir        string `yaml:"repo_dir"`
	EnableWarnings bool   `yaml:"enable_warnings"`
}

// DefaultConfig returns the zero-configuration defaults: jobs = 0 (meaning
// "let the executor pick runtime.NumCPU()+2"), throw on sdist collision,
// warnings enabled.
func DefaultConfig() Config {
	return Config{ImportPolicy: "throw", EnableWarnings: true}
}

// LoadConfig reads path as a workspace.yaml document, falling back to
// DefaultConfig if the file does not exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
