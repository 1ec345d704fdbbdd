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

package match

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"gitlab.com/tozd/go/errors"
)

// DefaultCacheSize is the number of compiled matchers kept by NewCache(0)
const DefaultCacheSize = 64

type cacheKey struct {
	pattern string
	mode    Mode
	fold    FoldPolicy
}

// 🗃️ Cache keeps recently compiled matchers so repeated calls with the same
// pattern compile once. Pattern errors are never cached.
type Cache struct {
	entries *lru.Cache[cacheKey, Matcher]
}

// NewCache creates a cache holding up to size matchers
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[cacheKey, Matcher](size)
	if err != nil {
		return nil, errors.Errorf("creating matcher cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Compile returns a cached matcher or compiles and stores a new one
func (c *Cache) Compile(pattern string, mode Mode, opts Options) (Matcher, error) {
	key := cacheKey{pattern: pattern, mode: mode, fold: opts.Fold}
	if m, ok := c.entries.Get(key); ok {
		return m, nil
	}

	m, err := Compile(pattern, mode, opts)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, m)
	return m, nil
}

// Len returns the number of cached matchers
func (c *Cache) Len() int {
	return c.entries.Len()
}
