package planner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const cacheFileName = ".forge-build-cache.json"

// objectEntry records when one object file was last successfully compiled,
// so a later run can skip recompiling an object whose source hasn't
// changed since (compared by the caller against the source's mtime).
type objectEntry struct {
	BuildTime time.Time     `json:"build_time"`
	Duration  time.Duration `json:"duration_ns"`
}

// Cache is the per-build-output-directory record of what was last built,
// keyed by object path. It is adapted from a per-module version+matrix
// cache into a per-object record, since the planner's unit of incremental
// work is the object file, not the module.
type Cache struct {
	path    string
	entries map[string]*objectEntry
	dirty   bool
}

// OpenCache loads (or initializes) the build cache for outDir.
func OpenCache(outDir string) (*Cache, error) {
	path := filepath.Join(outDir, cacheFileName)
	c := &Cache{path: path, entries: make(map[string]*objectEntry)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, err
	}
	return c, nil
}

// RecordObject notes that objectOut was successfully built just now.
func (c *Cache) RecordObject(objectOut string, duration time.Duration) {
	c.entries[key(objectOut)] = &objectEntry{BuildTime: now(), Duration: duration}
	c.dirty = true
}

// UpToDate reports whether objectOut was recorded built at or after
// sourceModTime, meaning its compile step can be skipped.
func (c *Cache) UpToDate(objectOut string, sourceModTime time.Time) bool {
	entry, ok := c.entries[key(objectOut)]
	if !ok {
		return false
	}
	return !entry.BuildTime.Before(sourceModTime)
}

// Save persists the cache to disk if it has pending changes.
func (c *Cache) Save() error {
	if !c.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

func key(objectOut string) string {
	return strings.ReplaceAll(filepath.Clean(objectOut), string(filepath.Separator), "/")
}

// now is a var so tests can stub the clock.
var now = time.Now
