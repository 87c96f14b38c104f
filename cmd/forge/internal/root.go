package internal

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "forge is a package manager and build driver for compiled-language projects",
	Long: `forge resolves dependencies against a local repository and a remote
catalog, then drives a compiler toolchain through a bounded-parallel
compile/archive/link plan.`,
}

// Execute adds all child commands to the root command and runs it. It is
// called once by main.main.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			log.Fatalf("internal invariant violated: %v", r)
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func parsePackageArg(arg string) (name, versionOrRange string) {
	for i := len(arg) - 1; i >= 0; i-- {
		if arg[i] == '@' {
			return arg[:i], arg[i+1:]
		}
	}
	return arg, ""
}
