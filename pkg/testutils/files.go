// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package testutils holds helpers shared by the package tests.
package testutils

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/greprc/pkg/files"
)

// ErrInjected is returned by FaultyFileManager for every injected failure
var ErrInjected = errors.Base("injected failure")

// 💥 FaultyFileManager wraps a real file manager and fails chosen operations
type FaultyFileManager struct {
	files.FileManager

	mu sync.Mutex

	failWriteAfter map[string]int             // path -> bytes accepted before failing
	failOps        map[string]map[string]bool // op -> path -> fail
	created        []string                   // every path passed to Create
}

var _ files.FileManager = (*FaultyFileManager)(nil)

// NewFaultyFileManager wraps files.New()
func NewFaultyFileManager() *FaultyFileManager {
	return &FaultyFileManager{
		FileManager:    files.New(),
		failWriteAfter: map[string]int{},
		failOps:        map[string]map[string]bool{},
	}
}

// FailWriteAfter breaks writes to path after n bytes
func (f *FaultyFileManager) FailWriteAfter(path string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWriteAfter[path] = n
}

// FailOp fails op ("open", "create", "remove", "copy") for path
func (f *FaultyFileManager) FailOp(op, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOps[op] == nil {
		f.failOps[op] = map[string]bool{}
	}
	f.failOps[op][path] = true
}

// Created returns every path that was opened for writing
func (f *FaultyFileManager) Created() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.created...)
}

func (f *FaultyFileManager) shouldFail(op, path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failOps[op][path]
}

func (f *FaultyFileManager) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if f.shouldFail("open", path) {
		return nil, errors.Errorf("opening %s: %w", path, ErrInjected)
	}
	return f.FileManager.Open(ctx, path)
}

func (f *FaultyFileManager) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	if f.shouldFail("create", path) {
		return nil, errors.Errorf("creating %s: %w", path, ErrInjected)
	}

	w, err := f.FileManager.Create(ctx, path)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, path)
	if limit, ok := f.failWriteAfter[path]; ok {
		return &limitedWriter{WriteCloser: w, remaining: limit}, nil
	}
	return w, nil
}

func (f *FaultyFileManager) Remove(ctx context.Context, path string) error {
	if f.shouldFail("remove", path) {
		return errors.Errorf("deleting %s: %w", path, ErrInjected)
	}
	return f.FileManager.Remove(ctx, path)
}

func (f *FaultyFileManager) CopyFile(ctx context.Context, src, dst string) error {
	if f.shouldFail("copy", src) {
		return errors.Errorf("copying %s: %w", src, ErrInjected)
	}
	return f.FileManager.CopyFile(ctx, src, dst)
}

type limitedWriter struct {
	io.WriteCloser
	remaining int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if len(p) > w.remaining {
		n, _ := w.WriteCloser.Write(p[:w.remaining])
		w.remaining = 0
		return n, errors.Errorf("writing: %w", ErrInjected)
	}
	n, err := w.WriteCloser.Write(p)
	w.remaining -= n
	return n, err
}

// WriteTree writes files (relative path to content) under root
func WriteTree(t *testing.T, root string, tree map[string]string) {
	t.Helper()
	for rel, content := range tree {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// ReadTree reads every regular file under root, keyed by slash separated
// relative path
func ReadTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	require.NoError(t, err)
	return out
}

// Paths joins each relative path onto root, in the given order
func Paths(root string, rel ...string) []string {
	out := make([]string, len(rel))
	for i, r := range rel {
		out[i] = filepath.Join(root, filepath.FromSlash(r))
	}
	return out
}

// SortedKeys returns the keys of m in order
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
