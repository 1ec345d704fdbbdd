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
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔍 Discover lists the regular files under root matching any include glob
// and no exclude glob. Globs use slash separated paths relative to root.
// The result is sorted and holds absolute paths.
func Discover(ctx context.Context, root string, include, exclude []string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Errorf("resolving %s: %w", root, err)
	}

	fsys := os.DirFS(root)
	seen := make(map[string]struct{})

	for _, pattern := range include {
		err := doublestar.GlobWalk(fsys, pattern, func(path string, d fs.DirEntry) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !d.Type().IsRegular() || excluded(path, exclude) {
				return nil
			}
			seen[path] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, errors.Errorf("expanding %q in %s: %w", pattern, root, err)
		}
	}

	rels := make([]string, 0, len(seen))
	for rel := range seen {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	paths := make([]string, len(rels))
	for i, rel := range rels {
		paths[i] = filepath.Join(root, filepath.FromSlash(rel))
	}

	zerolog.Ctx(ctx).Debug().Str("root", root).Int("files", len(paths)).Msg("discovered files")
	return paths, nil
}

func excluded(rel string, exclude []string) bool {
	for _, pattern := range exclude {
		// patterns were validated with the config
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
