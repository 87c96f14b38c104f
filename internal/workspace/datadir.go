// Package workspace owns the operator-facing filesystem layout and
// configuration surface: where forge keeps its local repository and
// catalog cache, and the workspace.yaml file that configures them.
package workspace

import "os"

// DataDir returns the root directory forge uses for its own state (the
// local repository, the remote-catalog cache, lock files), honoring the
// user's OS cache-directory convention.
func DataDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir := userCacheDir + string(os.PathSeparator) + "forge"
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// subdir returns a named, lazily-created subdirectory of DataDir.
func subdir(name string) (string, error) {
	base, err := DataDir()
	if err != nil {
		return "", err
	}
	dir := base + string(os.PathSeparator) + name
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// RepoDir returns the default local repository root (spec.md §6).
func RepoDir() (string, error) { return subdir("repo") }

// CatalogCacheDir returns the directory the remote catalog provider uses
// to cache fetched manifests (internal/catalog.Catalog.CacheDir).
func CatalogCacheDir() (string, error) { return subdir("catalog-cache") }
