// Command forge is the package-manager and build-driver CLI: a thin
// cobra front-end over the core packages in internal/.
package main

import "github.com/forgepkg/forge/cmd/forge/internal"

func main() {
	internal.Execute()
}
