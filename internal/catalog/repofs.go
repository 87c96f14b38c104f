// Copyright 2024 The forge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catalog

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// RepoFS is a lazily-loading filesystem view of a Repo at a fixed ref,
// caching everything it fetches under localDir so repeated reads (and
// repeated forge invocations) avoid re-downloading unchanged files.
type RepoFS struct {
	repo     *Repo
	ref      string
	localDir string
}

// Sync eagerly downloads the subtree at path into localDir, for callers
// that want an on-disk directory (e.g. to hand to sdist.FromDirectory)
// rather than lazy per-file fetches.
func (r *RepoFS) Sync(ctx context.Context, path string) error {
	return r.repo.client.SyncDir(ctx, r.repo.owner, r.repo.repo, r.ref, path, r.localDir)
}

// Open opens the named file for lazy reading: the first Read fetches and
// caches it locally.
func (r *RepoFS) Open(name string) (fs.File, error) {
	return &repoFile{
		name:   name,
		local:  filepath.Join(r.localDir, name),
		client: r.repo.client,
		owner:  r.repo.owner,
		repo:   r.repo.repo,
		ref:    r.ref,
	}, nil
}

// ReadFile reads the content of a file, preferring a local cached copy.
func (r *RepoFS) ReadFile(name string) ([]byte, error) {
	f, err := r.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// ReadDir reads the contents of a directory, downloading it first if it
// is not already present locally.
func (r *RepoFS) ReadDir(name string) ([]fs.DirEntry, error) {
	local := filepath.Join(r.localDir, name)

	if entries, err := os.ReadDir(local); err == nil && len(entries) > 0 {
		return entries, nil
	}

	ctx := context.Background()
	if err := r.repo.client.SyncDir(ctx, r.repo.owner, r.repo.repo, r.ref, name, r.localDir); err != nil {
		return nil, err
	}
	return os.ReadDir(local)
}

// repoFile implements fs.File with lazy, cache-on-first-read loading.
type repoFile struct {
	name   string
	local  string
	client client
	owner  string
	repo   string
	ref    string

	once   sync.Once
	reader *bytes.Reader
	err    error
}

func (f *repoFile) load() {
	if data, err := os.ReadFile(f.local); err == nil {
		f.reader = bytes.NewReader(data)
		return
	}

	ctx := context.Background()
	data, err := f.client.ReadFile(ctx, f.owner, f.repo, f.ref, f.name)
	if err != nil {
		f.err = err
		return
	}

	if err := os.MkdirAll(filepath.Dir(f.local), 0o755); err != nil {
		f.err = err
		return
	}
	if err := os.WriteFile(f.local, data, 0o644); err != nil {
		f.err = err
		return
	}
	f.reader = bytes.NewReader(data)
}

func (f *repoFile) Read(p []byte) (int, error) {
	f.once.Do(f.load)
	if f.err != nil {
		return 0, f.err
	}
	return f.reader.Read(p)
}

func (f *repoFile) Stat() (fs.FileInfo, error) {
	if info, err := os.Stat(f.local); err == nil {
		return info, nil
	}
	ctx := context.Background()
	return f.client.Stat(ctx, f.owner, f.repo, f.ref, f.name)
}

func (f *repoFile) Close() error { return nil }
