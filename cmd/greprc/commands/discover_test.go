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

package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.go", "b.txt", "sub/c.go", "sub/deep/d.go", "vendor/x/e.go", ".git/config"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))
	}
	require.NoError(t, os.Symlink(filepath.Join(dir, "a.go"), filepath.Join(dir, "link.go")))

	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{
			name:    "everything",
			include: []string{"**"},
			want:    []string{".git/config", "a.go", "b.txt", "sub/c.go", "sub/deep/d.go", "vendor/x/e.go"},
		},
		{
			name:    "go_files_without_vendor",
			include: []string{"**/*.go"},
			exclude: []string{"vendor/**"},
			want:    []string{"a.go", "sub/c.go", "sub/deep/d.go"},
		},
		{
			name:    "overlapping_includes_dedupe",
			include: []string{"*.go", "**/*.go"},
			exclude: []string{".git/**", "vendor/**", "sub/deep/**"},
			want:    []string{"a.go", "sub/c.go"},
		},
		{
			name:    "no_match",
			include: []string{"**/*.rs"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Discover(testContext(t), dir, tt.include, tt.exclude)
			require.NoError(t, err)

			rels := make([]string, len(got))
			for i, path := range got {
				assert.True(t, filepath.IsAbs(path), "paths are absolute")
				rels[i] = relPath(dir, path)
			}
			assert.Equal(t, tt.want, rels)
		})
	}
}

func TestDiscover_Cancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x\n"), 0o644))

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	_, err := Discover(ctx, dir, []string{"**"}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
