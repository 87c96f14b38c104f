// Package autotools drives an external Autotools (configure/make) build
// for a source distribution. No manifest field selects it; callers
// construct it directly.
package autotools

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/forgepkg/forge/internal/extbuild"
	"github.com/forgepkg/forge/pkg/pkgid"
)

// AutoTools wraps common Autotools build steps with chainable configuration.
type AutoTools struct {
	ctx        *buildsys.Context
	SourceDir  string
	buildDir   string
	installDir string
	env        map[string]string
}

var _ buildsys.BuildSystem = (*AutoTools)(nil)

// New creates an AutoTools helper for ctx; ctx may be nil for ad-hoc use.
func New(ctx *buildsys.Context) *AutoTools {
	sourceDir := ""
	if ctx != nil {
		sourceDir = ctx.SourceDir
	}
	buildDir, err := os.MkdirTemp("", "forge-build-")
	if err != nil {
		buildDir = filepath.Join(sourceDir, "build")
	}
	return &AutoTools{
		ctx:        ctx,
		SourceDir:  sourceDir,
		buildDir:   buildDir,
		installDir: filepath.Join(sourceDir, "build"),
		env:        map[string]string{},
	}
}

func (a *AutoTools) Source(dir string)     { a.SourceDir = dir }
func (a *AutoTools) InstallDir(dir string) { a.installDir = dir }

func (a *AutoTools) Env(key, value string) {
	a.env[key] = value
	_ = os.Setenv(key, value)
}

// Use configures the environment to pick up dep's installed headers,
// libraries, and pkg-config files.
func (a *AutoTools) Use(dep pkgid.ID) {
	if a.ctx == nil || a.ctx.Deps == nil {
		panic("autotools: context has no dependency install directories")
	}
	installDir, ok := a.ctx.Deps[dep]
	if !ok {
		panic("autotools: dependency not found in context: " + dep.String())
	}

	includeDir := filepath.Join(installDir, "include")
	libDir := filepath.Join(installDir, "lib")
	pkgconfigDir := filepath.Join(libDir, "pkgconfig")

	if dirExists(pkgconfigDir) {
		prependEnv("PKG_CONFIG_PATH", pkgconfigDir)
	}

	if runtime.GOOS == "windows" {
		if dirExists(includeDir) {
			prependEnv("INCLUDE", includeDir)
		}
		if dirExists(libDir) {
			prependEnv("LIB", libDir)
		}
	} else {
		if dirExists(includeDir) {
			appendFlag("CPPFLAGS", "-I"+includeDir)
		}
		if dirExists(libDir) {
			appendFlag("LDFLAGS", "-L"+libDir)
		}
	}
}

// Configure runs ./configure with standard flags.
func (a *AutoTools) Configure(args ...string) error {
	buildDir := orDefault(a.buildDir, ".")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}

	exe := "./configure"
	if buildDir != "." {
		exe = filepath.Join(a.SourceDir, "configure")
	}

	var configArgs []string
	if a.installDir != "" {
		configArgs = append(configArgs, "--prefix="+a.installDir)
	}
	configArgs = append(configArgs, args...)

	return run(exe, configArgs, a.env, buildDir)
}

// Build runs make (or provided args) in the build directory.
func (a *AutoTools) Build(args ...string) error {
	buildDir := orDefault(a.buildDir, ".")
	cmdArgs := args
	if len(cmdArgs) == 0 {
		cmdArgs = []string{"make"}
	}
	return run(cmdArgs[0], cmdArgs[1:], a.env, buildDir)
}

// Install runs make install (or provided args) in the build directory.
func (a *AutoTools) Install(args ...string) error {
	buildDir := orDefault(a.buildDir, ".")
	cmdArgs := []string{"make", "install"}
	if len(args) > 0 {
		cmdArgs = args
	}
	return run(cmdArgs[0], cmdArgs[1:], a.env, buildDir)
}

// OutputDir returns the install dir if set, otherwise the build dir.
func (a *AutoTools) OutputDir() string {
	if a.installDir != "" {
		return a.installDir
	}
	return a.buildDir
}

func run(bin string, args []string, env map[string]string, workdir string) error {
	cmd := exec.Command(bin, args...)
	if workdir != "" {
		cmd.Dir = workdir
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), env)
	}
	return cmd.Run()
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}

func prependEnv(key, value string) {
	sep := ":"
	if runtime.GOOS == "windows" {
		sep = ";"
	}
	if current := os.Getenv(key); current != "" {
		os.Setenv(key, value+sep+current)
	} else {
		os.Setenv(key, value)
	}
}

func appendFlag(key, flag string) {
	if current := os.Getenv(key); current != "" {
		os.Setenv(key, strings.TrimSpace(current+" "+flag))
	} else {
		os.Setenv(key, flag)
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
