package internal

import (
	"fmt"

	"github.com/forgepkg/forge/internal/sdist"
	"github.com/forgepkg/forge/pkg/pkgid"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get [name@range]",
	Short: "Add or update a dependency in manifest.toml",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	name, rangeStr := parsePackageArg(args[0])
	if rangeStr == "" {
		rangeStr = "*"
	}

	r, err := pkgid.ParseRange(rangeStr)
	if err != nil {
		return fmt.Errorf("%q is not a valid version range: %w", rangeStr, err)
	}

	m, err := sdist.ReadManifest(".")
	if err != nil {
		return fmt.Errorf("read %s (run 'forge init' first): %w", sdist.ManifestFileName, err)
	}

	replaced := false
	for i, dep := range m.Dependencies {
		if dep.Name == name {
			m.Dependencies[i].Range = r
			replaced = true
			break
		}
	}
	if !replaced {
		m.Dependencies = append(m.Dependencies, sdist.Dependency{Name: name, Range: r})
	}

	if err := sdist.WriteManifest(".", *m); err != nil {
		return fmt.Errorf("write %s: %w", sdist.ManifestFileName, err)
	}

	fmt.Printf("Added dependency %s %s\n", name, r)
	return nil
}
