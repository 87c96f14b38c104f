package internal

import (
	"fmt"
	"os"

	"github.com/forgepkg/forge/internal/sdist"
	"github.com/forgepkg/forge/pkg/pkgid"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [name@version]",
	Short: "Create a new manifest.toml in the current directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(sdist.ManifestFileName); err == nil {
		return fmt.Errorf("%s already exists", sdist.ManifestFileName)
	}

	id, err := pkgid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("%q is not a valid name@version: %w", args[0], err)
	}

	m := sdist.Manifest{PkgID: id}
	if err := sdist.WriteManifest(".", m); err != nil {
		return fmt.Errorf("write %s: %w", sdist.ManifestFileName, err)
	}

	fmt.Printf("Initialized %s\n", id)
	return nil
}
