package internal

import (
	"fmt"

	"github.com/forgepkg/forge/internal/repository"
	"github.com/forgepkg/forge/internal/sdist"
	"github.com/forgepkg/forge/internal/workspace"
	"github.com/spf13/cobra"
)

var tidyCmd = &cobra.Command{
	Use:   "tidy",
	Short: "Resolve manifest.toml's dependencies against the local repository and print the solution",
	Args:  cobra.NoArgs,
	RunE:  runTidy,
}

func init() {
	rootCmd.AddCommand(tidyCmd)
}

func runTidy(cmd *cobra.Command, args []string) error {
	m, err := sdist.ReadManifest(".")
	if err != nil {
		return fmt.Errorf("read %s: %w", sdist.ManifestFileName, err)
	}

	repoDir, err := workspace.RepoDir()
	if err != nil {
		return fmt.Errorf("resolve repository directory: %w", err)
	}

	repo, err := repository.Open(repoDir, repository.ReadOnly)
	if err != nil {
		return fmt.Errorf("open repository %s: %w", repoDir, err)
	}
	defer repo.Close()

	solution, err := repo.Solve(m.Dependencies, nil)
	if err != nil {
		return fmt.Errorf("resolve dependencies: %w", err)
	}

	fmt.Printf("%s resolves to:\n", m.PkgID)
	for _, id := range solution {
		fmt.Printf("  %s\n", id)
	}
	return nil
}
