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

package operation

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/greprc/pkg/backup"
	"github.com/walteh/greprc/pkg/files"
	"github.com/walteh/greprc/pkg/match"
	"github.com/walteh/greprc/pkg/replace"
	"github.com/walteh/greprc/pkg/scan"
	"github.com/walteh/greprc/pkg/status"
)

// 🔧 Options configures an Engine. Every field is optional.
type Options struct {
	// Fold is the case folding used by case-insensitive text mode
	Fold match.FoldPolicy
	// Files performs all file system access
	Files files.FileManager
	// Opener reads files for search; defaults to Files
	Opener scan.Opener
	// Backups is the backup tree; defaults to backup.DefaultRoot()
	Backups *backup.Store
	// Reporter gets one ProgressStatus per finished file
	Reporter status.Reporter
	// Newline is written after every rewritten line
	Newline replace.Newline
	// MaxLineBytes bounds a single line, see scan.DefaultMaxLineBytes
	MaxLineBytes int
	// Cache holds compiled matchers; a private cache is created when nil
	Cache *match.Cache
}

// 🎯 Engine is the entry point for search, replace and undo.
//
// Operations run one file at a time on the calling goroutine. Cancel stops
// every operation running at that moment; calls started afterwards are not
// affected.
type Engine struct {
	fold    match.FoldPolicy
	cache   *match.Cache
	backups *backup.Store
	scanner *scan.Scanner
	tx      *replace.Transaction

	mu      sync.Mutex
	nextID  uint64
	cancels map[uint64]context.CancelFunc
}

// 🏭 New creates a new engine
func New(opts Options) (*Engine, error) {
	fm := opts.Files
	if fm == nil {
		fm = files.New()
	}
	opener := opts.Opener
	if opener == nil {
		opener = fm
	}
	backups := opts.Backups
	if backups == nil {
		backups = backup.New("", fm)
	}
	cache := opts.Cache
	if cache == nil {
		var err error
		if cache, err = match.NewCache(0); err != nil {
			return nil, err
		}
	}

	return &Engine{
		fold:    opts.Fold,
		cache:   cache,
		backups: backups,
		scanner: scan.New(scan.Options{
			Opener:       opener,
			Reporter:     opts.Reporter,
			MaxLineBytes: opts.MaxLineBytes,
		}),
		tx: replace.New(replace.Options{
			Files:        fm,
			Backups:      backups,
			Reporter:     opts.Reporter,
			Newline:      opts.Newline,
			MaxLineBytes: opts.MaxLineBytes,
		}),
		cancels: map[uint64]context.CancelFunc{},
	}, nil
}

// Backups returns the backup tree used by Replace and Undo
func (e *Engine) Backups() *backup.Store {
	return e.backups
}

// Compile compiles pattern with the engine's fold policy
func (e *Engine) Compile(pattern string, mode match.Mode) (match.Matcher, error) {
	return e.cache.Compile(pattern, mode, match.Options{Fold: e.fold})
}

// begin derives a context that Cancel can stop
func (e *Engine) begin(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.cancels[id] = cancel
	e.mu.Unlock()

	return ctx, func() {
		e.mu.Lock()
		delete(e.cancels, id)
		e.mu.Unlock()
		cancel()
	}
}

// Cancel stops every operation currently running. Replace rolls back the
// file it was rewriting and keeps the files it already finished.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, cancel := range e.cancels {
		cancel()
	}
}

// 🔍 Search returns the matching lines of every file in paths. The only
// error is a *match.PatternError, raised before any file is opened.
func (e *Engine) Search(ctx context.Context, paths []string, pattern string, mode match.Mode) ([]scan.SearchResult, error) {
	m, err := e.Compile(pattern, mode)
	if err != nil {
		return nil, err
	}

	ctx, done := e.begin(ctx)
	defer done()

	return e.scanner.Search(ctx, paths, m), nil
}

// ReplaceArgs describes one replace
type ReplaceArgs struct {
	Files       []string
	BaseFolder  string
	Pattern     string
	Replacement string
	Mode        match.Mode
}

// 🔁 ReplaceOutcome runs a replace and reports what happened to every file.
// A *match.PatternError is returned before the backup tree is touched. An
// empty text pattern is one: it matches every line but replaces nothing.
func (e *Engine) ReplaceOutcome(ctx context.Context, args ReplaceArgs) (*replace.Outcome, error) {
	if args.Pattern == "" && args.Mode != match.ModeRegex {
		return nil, &match.PatternError{Pattern: args.Pattern, Mode: args.Mode, Err: match.ErrEmptyPattern}
	}

	m, err := e.Compile(args.Pattern, args.Mode)
	if err != nil {
		return nil, err
	}

	ctx, done := e.begin(ctx)
	defer done()

	return e.tx.Run(ctx, replace.Request{
		Files:       args.Files,
		BaseFolder:  args.BaseFolder,
		Matcher:     m,
		Replacement: args.Replacement,
	})
}

// 🔁 Replace rewrites every line matching pattern. It returns the number of
// files fully processed, which is short of len(files) after a Cancel, or
// replace.Aborted with the error when a file failed.
func (e *Engine) Replace(ctx context.Context, paths []string, baseFolder, pattern, replacement string, mode match.Mode) (int, error) {
	out, err := e.ReplaceOutcome(ctx, ReplaceArgs{
		Files:       paths,
		BaseFolder:  baseFolder,
		Pattern:     pattern,
		Replacement: replacement,
		Mode:        mode,
	})
	if out == nil {
		return 0, err
	}
	return out.Count(), err
}

// ⏪ Restore copies the backup tree of the last replace onto target and
// returns the restored paths. An empty target means the base folder of
// that replace.
func (e *Engine) Restore(ctx context.Context, target string) ([]string, error) {
	if target == "" {
		m, err := e.backups.ReadManifest(ctx)
		if err != nil {
			return nil, errors.Errorf("finding base folder of last replace: %w", err)
		}
		target = m.BaseFolder
	}

	ctx, done := e.begin(ctx)
	defer done()

	return e.backups.RestoreAll(ctx, target)
}

// ⏪ Undo is Restore reduced to success or failure; failures are logged
func (e *Engine) Undo(ctx context.Context, target string) bool {
	logger := zerolog.Ctx(ctx)

	restored, err := e.Restore(ctx, target)
	if err != nil {
		logger.Error().Err(err).Str("target", target).Msg("undo failed")
		return false
	}

	logger.Info().Int("files", len(restored)).Str("target", target).Msg("undo complete")
	return true
}

// 📋 LastReplace describes the replace that Undo would revert
func (e *Engine) LastReplace(ctx context.Context) (*backup.Manifest, error) {
	return e.backups.ReadManifest(ctx)
}
