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

package scan

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 📂 Opener yields the text of a file. Plain files are opened as is; format
// adapters (PDF to text and the like) implement Opener to hand the scanner
// extracted text instead.
type Opener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(ctx context.Context, path string) (io.ReadCloser, error)

func (f OpenerFunc) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return f(ctx, path)
}

// 🔀 Route sends paths matching Glob to Opener
type Route struct {
	Glob   string
	Opener Opener
}

// SourceRouter picks the first route whose glob matches the path and falls
// back to a default opener. A glob without "/" is matched against the base
// name only.
type SourceRouter struct {
	routes   []Route
	fallback Opener
}

var _ Opener = (*SourceRouter)(nil)

// NewSourceRouter validates every glob up front
func NewSourceRouter(fallback Opener, routes ...Route) (*SourceRouter, error) {
	if fallback == nil {
		return nil, errors.Errorf("fallback opener is required")
	}
	for i, r := range routes {
		if r.Opener == nil {
			return nil, errors.Errorf("route %d: opener is required", i)
		}
		if !doublestar.ValidatePattern(r.Glob) {
			return nil, errors.Errorf("route %d: invalid glob %q", i, r.Glob)
		}
	}
	return &SourceRouter{routes: routes, fallback: fallback}, nil
}

// Open opens path through the matching route
func (r *SourceRouter) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return r.openerFor(path).Open(ctx, path)
}

func (r *SourceRouter) openerFor(path string) Opener {
	name := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, route := range r.routes {
		target := name
		if !strings.Contains(route.Glob, "/") {
			target = base
		}
		// patterns were validated, Match cannot fail
		if ok, _ := doublestar.Match(route.Glob, target); ok {
			return route.Opener
		}
	}
	return r.fallback
}
