// Package toolchain implements the compiler-abstraction layer: a
// toolchain_prep configuration surface (loaded from an INI-shaped file or
// synthesized from a builtin profile id) realized into an immutable
// Toolchain that synthesizes compile/archive/link argv.
package toolchain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/forgepkg/forge/internal/shellwords"
)

// DepsMode selects how per-object dependency information is produced.
type DepsMode string

const (
	DepsNone DepsMode = "None"
	DepsGNU  DepsMode = "GNU"
	DepsMSVC DepsMode = "MSVC"
)

// Prep is the raw, not-yet-deduced toolchain configuration surface of
// spec.md §4.5.1, populated either from a config file or a builtin profile.
type Prep struct {
	CompilerID string // "MSVC" | "GNU" | "Clang"

	CCompiler   string
	CXXCompiler string
	CVersion    string // "C89"|"C99"|"C11"|"C18"
	CXXVersion  string // "C++98"|"03"|"11"|"14"|"17"|"20"

	IncludeTemplate         []string
	ExternalIncludeTemplate []string
	DefineTemplate          []string

	WarningFlags []string
	Flags        []string
	CFlags       []string
	CXXFlags     []string
	LinkFlags    []string

	Optimize bool
	Debug    bool

	CompilerLauncher []string
	DepsMode         DepsMode

	CCompileFile   []string
	CXXCompileFile []string
	CreateArchive  []string
	LinkExecutable []string

	ArchivePrefix, ArchiveSuffix       string
	ObjectPrefix, ObjectSuffix         string
	ExecutablePrefix, ExecutableSuffix string
}

// knownKeys is the enumerated option set of spec.md §4.5.1, used both to
// validate input and to source "did you mean?" suggestions.
var knownKeys = []string{
	"Compiler-ID",
	"C-Compiler", "C++-Compiler",
	"C-Version", "C++-Version",
	"Include-Template", "External-Include-Template", "Define-Template",
	"Warning-Flags", "Flags", "C-Flags", "C++-Flags", "Link-Flags",
	"Optimize", "Debug",
	"Compiler-Launcher",
	"Deps-Mode",
	"C-Compile-File", "C++-Compile-File", "Create-Archive", "Link-Executable",
	"Archive-Prefix", "Archive-Suffix",
	"Object-Prefix", "Object-Suffix",
	"Executable-Prefix", "Executable-Suffix",
}

// ErrUnknownToolchainKey is raised by LoadPrep for a key outside knownKeys.
type ErrUnknownToolchainKey struct {
	Key        string
	Suggestion string
}

func (e *ErrUnknownToolchainKey) Error() string {
	if e.Suggestion == "" {
		return fmt.Sprintf("unknown toolchain key %q", e.Key)
	}
	return fmt.Sprintf("unknown toolchain key %q (did you mean %q?)", e.Key, e.Suggestion)
}

// suggestKey finds the known key closest to key by edit distance, used to
// populate ErrUnknownToolchainKey.Suggestion.
func suggestKey(key string) string {
	best := ""
	bestDist := -1
	for _, k := range knownKeys {
		d := levenshtein.Distance(key, k, nil)
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = k
		}
	}
	// Only offer a suggestion close enough to be plausibly a typo.
	if bestDist > len(best)/2+2 {
		return ""
	}
	return best
}

// ConfigReader is the abstract "line-oriented key/value document" of
// spec.md §6: something that yields every key/value pair in declaration
// order, regardless of the concrete file format backing it.
type ConfigReader interface {
	// Pairs returns every (key, value) pair in the document, in the order
	// they were declared. Accumulating keys may repeat.
	Pairs() ([]KV, error)
}

// KV is a single key/value pair read from a ConfigReader.
type KV struct {
	Key   string
	Value string
}

var accumulatingKeys = map[string]bool{
	"Warning-Flags": true, "Flags": true, "C-Flags": true, "C++-Flags": true, "Link-Flags": true,
}

// LoadPrep reads every pair from r and builds a Prep, validating keys
// against knownKeys and applying the accumulate-vs-single-value rule of
// spec.md §4.5.1.
func LoadPrep(r ConfigReader) (*Prep, error) {
	pairs, err := r.Pairs()
	if err != nil {
		return nil, fmt.Errorf("read toolchain config: %w", err)
	}

	p := &Prep{DepsMode: DepsNone}
	seen := make(map[string]bool)

	for _, kv := range pairs {
		if !isKnownKey(kv.Key) {
			return nil, &ErrUnknownToolchainKey{Key: kv.Key, Suggestion: suggestKey(kv.Key)}
		}
		if seen[kv.Key] && !accumulatingKeys[kv.Key] {
			return nil, fmt.Errorf("toolchain key %q specified more than once", kv.Key)
		}
		seen[kv.Key] = true

		if err := p.apply(kv); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func isKnownKey(key string) bool {
	for _, k := range knownKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (p *Prep) apply(kv KV) error {
	switch kv.Key {
	case "Compiler-ID":
		p.CompilerID = kv.Value
	case "C-Compiler":
		p.CCompiler = kv.Value
	case "C++-Compiler":
		p.CXXCompiler = kv.Value
	case "C-Version":
		p.CVersion = kv.Value
	case "C++-Version":
		p.CXXVersion = kv.Value
	case "Optimize":
		p.Optimize = parseBool(kv.Value)
	case "Debug":
		p.Debug = parseBool(kv.Value)
	case "Deps-Mode":
		p.DepsMode = DepsMode(kv.Value)
	case "Archive-Prefix":
		p.ArchivePrefix = kv.Value
	case "Archive-Suffix":
		p.ArchiveSuffix = kv.Value
	case "Object-Prefix":
		p.ObjectPrefix = kv.Value
	case "Object-Suffix":
		p.ObjectSuffix = kv.Value
	case "Executable-Prefix":
		p.ExecutablePrefix = kv.Value
	case "Executable-Suffix":
		p.ExecutableSuffix = kv.Value
	default:
		toks, err := shellwords.Split(kv.Value)
		if err != nil {
			return fmt.Errorf("toolchain key %q: %w", kv.Key, err)
		}
		return p.applyTokens(kv.Key, toks)
	}
	return nil
}

func (p *Prep) applyTokens(key string, toks []string) error {
	switch key {
	case "Include-Template":
		p.IncludeTemplate = toks
	case "External-Include-Template":
		p.ExternalIncludeTemplate = toks
	case "Define-Template":
		p.DefineTemplate = toks
	case "Warning-Flags":
		p.WarningFlags = append(p.WarningFlags, toks...)
	case "Flags":
		p.Flags = append(p.Flags, toks...)
	case "C-Flags":
		p.CFlags = append(p.CFlags, toks...)
	case "C++-Flags":
		p.CXXFlags = append(p.CXXFlags, toks...)
	case "Link-Flags":
		p.LinkFlags = append(p.LinkFlags, toks...)
	case "Compiler-Launcher":
		p.CompilerLauncher = toks
	case "C-Compile-File":
		p.CCompileFile = toks
	case "C++-Compile-File":
		p.CXXCompileFile = toks
	case "Create-Archive":
		p.CreateArchive = toks
	case "Link-Executable":
		p.LinkExecutable = toks
	default:
		return fmt.Errorf("toolchain key %q: unexpected value shape", key)
	}
	return nil
}

func parseBool(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "yes") || s == "1"
}

// knownKeysSorted returns a sorted copy of the known-key table.
func knownKeysSorted() []string {
	out := append([]string(nil), knownKeys...)
	sort.Strings(out)
	return out
}
