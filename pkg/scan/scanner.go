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

// Package scan streams files line by line and collects the lines a matcher
// accepts.
package scan

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/greprc/pkg/files"
	"github.com/walteh/greprc/pkg/match"
	"github.com/walteh/greprc/pkg/status"
)

// 📄 SearchResult lists the matching lines of one file. Only files with at
// least one match get a result.
type SearchResult struct {
	FilePath string
	Lines    []LineMatch
}

// 📍 LineMatch is one matching line, as read from the file
type LineMatch struct {
	LineNumber int // 1-based
	Text       string
}

// 🔧 Options configures a Scanner
type Options struct {
	// Opener reads files; defaults to files.New()
	Opener Opener
	// Reporter receives one ProgressStatus per file read
	Reporter status.Reporter
	// MaxLineBytes bounds a line; see DefaultMaxLineBytes
	MaxLineBytes int
}

// 🔍 Scanner searches an explicit list of files
type Scanner struct {
	opener       Opener
	reporter     status.Reporter
	maxLineBytes int
}

// 🏭 New creates a new scanner
func New(opts Options) *Scanner {
	opener := opts.Opener
	if opener == nil {
		opener = files.New()
	}
	return &Scanner{
		opener:       opener,
		reporter:     status.OrNop(opts.Reporter),
		maxLineBytes: opts.MaxLineBytes,
	}
}

// Search reads paths in order and returns a result for every file with a
// matching line, in input order. Unreadable files are logged and skipped.
// When ctx is cancelled the scan stops at the next line and returns what was
// collected from the files already finished. Search never fails.
func (s *Scanner) Search(ctx context.Context, paths []string, m match.Matcher) []SearchResult {
	results := []SearchResult{}
	if len(paths) == 0 {
		return results
	}

	logger := zerolog.Ctx(ctx)
	total := len(paths)

	s.reporter.StartOperation(ctx, total)
	defer s.reporter.FinishOperation(ctx)

	for i, path := range paths {
		if ctx.Err() != nil {
			logger.Debug().Int("processed", i).Msg("search cancelled")
			return results
		}

		lines, cancelled, err := s.searchFile(ctx, path, m)
		if cancelled {
			logger.Debug().Str("file", path).Int("processed", i).Msg("search cancelled")
			return results
		}
		if err != nil && lines == nil {
			logger.Error().Err(err).Str("file", path).Msg("skipping file")
			continue
		}
		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("reading file stopped early")
		}

		if len(lines) > 0 {
			results = append(results, SearchResult{FilePath: path, Lines: lines})
		}
		s.reporter.UpdateProgress(ctx, status.ProgressStatus{TotalFiles: total, ProcessedFiles: i + 1})
	}

	logger.Debug().Int("files", total).Int("results", len(results)).Msg("search complete")
	return results
}

// searchFile returns the matches of one file. A nil slice with an error means
// the file could not be opened; a non-nil slice with an error means reading
// stopped part way.
func (s *Scanner) searchFile(ctx context.Context, path string, m match.Matcher) ([]LineMatch, bool, error) {
	rc, err := s.opener.Open(ctx, path)
	if err != nil {
		return nil, false, err
	}
	defer rc.Close()

	lines := []LineMatch{}
	reader := NewLineReader(rc, s.maxLineBytes)
	for n := 1; ; n++ {
		line, ok := reader.Next()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			return nil, true, nil
		}
		if m.Matches(line) {
			lines = append(lines, LineMatch{LineNumber: n, Text: line})
		}
	}

	return lines, false, reader.Err()
}
