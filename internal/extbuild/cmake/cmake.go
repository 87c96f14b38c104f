// Package cmake drives an external CMake-based build for a source
// distribution. No manifest field selects it; callers construct it directly.
package cmake

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

type defineValue struct {
	value    string
	typeName string
}

// CMake wraps common CMake build steps with chainable configuration.
type CMake struct {
	ctx        *buildsys.Context
	SourceDir  string
	buildDir   string
	installDir string
	generator  string
	buildType  string
	toolchain  string
	Defines    map[string]defineValue
	env        map[string]string
}

var _ buildsys.BuildSystem = (*CMake)(nil)

// New creates a CMake helper for ctx; ctx may be nil for ad-hoc use.
func New(ctx *buildsys.Context) *CMake {
	sourceDir := ""
	if ctx != nil {
		sourceDir = ctx.SourceDir
	}
	buildDir, err := os.MkdirTemp("", "forge-build-")
	if err != nil {
		buildDir = filepath.Join(sourceDir, "build")
	}
	return &CMake{
		ctx:        ctx,
		SourceDir:  sourceDir,
		buildDir:   buildDir,
		installDir: filepath.Join(sourceDir, "build"),
		Defines:    map[string]defineValue{},
		env:        map[string]string{},
	}
}

func (c *CMake) Source(dir string)     { c.SourceDir = dir }
func (c *CMake) InstallDir(dir string) { c.installDir = dir }

func (c *CMake) Generator(name string) *CMake { c.generator = name; return c }
func (c *CMake) BuildType(name string) *CMake { c.buildType = name; return c }
func (c *CMake) Toolchain(path string) *CMake { c.toolchain = path; return c }

func (c *CMake) Define(key, value string) *CMake {
	c.Defines[key] = defineValue{value: value, typeName: "STRING"}
	return c
}

func (c *CMake) DefineBool(key string, value bool) *CMake {
	if value {
		c.Defines[key] = defineValue{value: "ON", typeName: "BOOL"}
	} else {
		c.Defines[key] = defineValue{value: "OFF", typeName: "BOOL"}
	}
	return c
}

func (c *CMake) Env(key, value string) {
	c.env[key] = value
	_ = os.Setenv(key, value)
}

// Use points CMake's prefix/include/library search paths, and the
// platform's pkg-config/compiler environment variables, at dep's install
// directory.
func (c *CMake) Use(dep pkgid.ID) {
	if c.ctx == nil || c.ctx.Deps == nil {
		panic("cmake: context has no dependency install directories")
	}
	installDir, ok := c.ctx.Deps[dep]
	if !ok {
		panic("cmake: dependency not found in context: " + dep.String())
	}

	includeDir := filepath.Join(installDir, "include")
	libDir := filepath.Join(installDir, "lib")
	pkgconfigDir := filepath.Join(libDir, "pkgconfig")

	if dirExists(pkgconfigDir) {
		prependEnv("PKG_CONFIG_PATH", pkgconfigDir)
	}
	if dirExists(installDir) {
		prependEnv("CMAKE_PREFIX_PATH", installDir)
	}
	if dirExists(includeDir) {
		prependEnv("CMAKE_INCLUDE_PATH", includeDir)
	}
	if dirExists(libDir) {
		prependEnv("CMAKE_LIBRARY_PATH", libDir)
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

func (c *CMake) Configure(args ...string) error {
	buildDir := orDefault(c.buildDir, "build")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}
	cmakeArgs := []string{"-S", c.SourceDir, "-B", buildDir}
	if c.generator != "" {
		cmakeArgs = append(cmakeArgs, "-G", c.generator)
	}
	if c.installDir != "" {
		c.Define("CMAKE_INSTALL_PREFIX", c.installDir)
	}
	if c.toolchain != "" {
		c.Define("CMAKE_TOOLCHAIN_FILE", c.toolchain)
	}
	if c.buildType != "" {
		c.Define("CMAKE_BUILD_TYPE", c.buildType)
	}
	cmakeArgs = append(cmakeArgs, c.definesArgs()...)
	cmakeArgs = append(cmakeArgs, args...)
	return run("cmake", cmakeArgs, c.env)
}

func (c *CMake) Build(args ...string) error {
	buildDir := orDefault(c.buildDir, "build")
	cmdArgs := []string{"--build", buildDir}
	if c.buildType != "" {
		cmdArgs = append(cmdArgs, "--config", c.buildType)
	}
	cmdArgs = append(cmdArgs, args...)
	return run("cmake", cmdArgs, c.env)
}

func (c *CMake) Install(args ...string) error {
	buildDir := orDefault(c.buildDir, "build")
	cmdArgs := []string{"--install", buildDir}
	if c.installDir != "" {
		cmdArgs = append(cmdArgs, "--prefix", c.installDir)
	}
	cmdArgs = append(cmdArgs, args...)
	return run("cmake", cmdArgs, c.env)
}

func (c *CMake) OutputDir() string {
	if c.installDir != "" {
		return c.installDir
	}
	return c.buildDir
}

func (c *CMake) definesArgs() []string {
	if len(c.Defines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Defines))
	for k := range c.Defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		def := c.Defines[k]
		if def.typeName != "" {
			args = append(args, "-D"+k+":"+def.typeName+"="+def.value)
			continue
		}
		args = append(args, "-D"+k+"="+def.value)
	}
	return args
}

func run(bin string, args []string, env map[string]string) error {
	cmd := exec.Command(bin, args...)
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
