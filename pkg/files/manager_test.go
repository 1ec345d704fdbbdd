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

package files

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestManager_CopyFile(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	mgr := New()

	src := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello\nworld\n"), 0o640))
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	dst := filepath.Join(dir, "nested", "deeper", "dst.txt")
	require.NoError(t, mgr.CopyFile(ctx, src, dst))

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(content))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	assert.True(t, mtime.Equal(info.ModTime()), "modification time should be copied")
}

func TestManager_CopyFileReplacesReadOnlyDestination(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	mgr := New()

	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("old content"), 0o444))

	require.NoError(t, mgr.CopyFile(ctx, src, dst))

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}

func TestManager_CopyFileMissingSource(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()

	err := New().CopyFile(ctx, filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NoFileExists(t, filepath.Join(dir, "dst"))
}

func TestManager_CreateTruncates(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("a long previous body"), 0o644))

	w, err := New().Create(ctx, path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "short")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short", string(content))
}

func TestManager_WalkStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644))

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	visited := 0
	err := New().Walk(ctx, dir, func(path string, d fs.DirEntry, err error) error {
		visited++
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, visited)
}
