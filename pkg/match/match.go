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
	"fmt"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🎯 Mode selects how a pattern is compared against a line
type Mode int

const (
	ModeTextCaseSensitive   Mode = iota // literal, exact case
	ModeTextCaseInsensitive             // literal, folded case
	ModeRegex                           // regular expression
)

// String returns the config/CLI name of the mode
func (m Mode) String() string {
	switch m {
	case ModeTextCaseSensitive:
		return "text"
	case ModeTextCaseInsensitive:
		return "text-insensitive"
	case ModeRegex:
		return "regex"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// 🔍 ParseMode parses a mode name as written in config files and flags
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "text-case-sensitive", "literal":
		return ModeTextCaseSensitive, nil
	case "text-insensitive", "text-case-insensitive", "itext", "ignore-case":
		return ModeTextCaseInsensitive, nil
	case "regex", "regexp", "re":
		return ModeRegex, nil
	default:
		return 0, errors.Errorf("unknown match mode %q", s)
	}
}

// ErrEmptyPattern is wrapped by a PatternError when a text replace is asked
// for an empty pattern, which has no sensible substitution.
var ErrEmptyPattern = errors.Base("pattern is empty")

// ❌ PatternError reports a pattern that cannot be compiled
type PatternError struct {
	Pattern string
	Mode    Mode
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid %s pattern %q: %v", e.Mode, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// 🧩 Matcher is a compiled pattern bound to one mode.
//
// Matches and Transform are pure and safe for concurrent use.
type Matcher interface {
	// Matches reports whether the line contains the pattern
	Matches(line string) bool
	// Transform replaces every non-overlapping occurrence of the pattern
	Transform(line, replacement string) string
	// Mode returns the mode the matcher was compiled for
	Mode() Mode
	// Pattern returns the pattern as supplied
	Pattern() string
}

// 🔧 Options tunes compilation
type Options struct {
	// Fold selects the case folding used by ModeTextCaseInsensitive
	Fold FoldPolicy
}

// 🏭 Compile validates the pattern and returns a matcher for the mode.
// Every failure is a *PatternError. An empty pattern matches every line; a
// text matcher built from it leaves lines unchanged on Transform.
func Compile(pattern string, mode Mode, opts Options) (Matcher, error) {
	switch mode {
	case ModeTextCaseSensitive:
		return &literalMatcher{pattern: pattern}, nil
	case ModeTextCaseInsensitive:
		folder, err := newFolder(opts.Fold)
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Mode: mode, Err: err}
		}
		return &foldedMatcher{
			pattern: pattern,
			folded:  folder.fold(pattern),
			folder:  folder,
		}, nil
	case ModeRegex:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Mode: mode, Err: err}
		}
		return &regexMatcher{re: re}, nil
	default:
		return nil, &PatternError{Pattern: pattern, Mode: mode, Err: errors.Errorf("unsupported mode")}
	}
}

// literalMatcher is exact substring containment
type literalMatcher struct {
	pattern string
}

func (m *literalMatcher) Matches(line string) bool {
	return strings.Contains(line, m.pattern)
}

func (m *literalMatcher) Transform(line, replacement string) string {
	if m.pattern == "" {
		return line
	}
	return strings.ReplaceAll(line, m.pattern, replacement)
}

func (m *literalMatcher) Mode() Mode      { return ModeTextCaseSensitive }
func (m *literalMatcher) Pattern() string { return m.pattern }

// foldedMatcher compares folded text but rebuilds lines from the original
type foldedMatcher struct {
	pattern string
	folded  string
	folder  folder
}

func (m *foldedMatcher) Matches(line string) bool {
	if m.folded == "" {
		return true
	}
	return len(m.spans(line, 1)) > 0
}

// Transform copies the original text between matched spans and inserts the
// replacement exactly as supplied at each span. A line without a match is
// returned as is.
func (m *foldedMatcher) Transform(line, replacement string) string {
	spans := m.spans(line, -1)
	if len(spans) == 0 {
		return line
	}

	var b strings.Builder
	b.Grow(len(line) + len(spans)*len(replacement))
	prev := 0
	for _, s := range spans {
		b.WriteString(line[prev:s.start])
		b.WriteString(replacement)
		prev = s.end
	}
	b.WriteString(line[prev:])
	return b.String()
}

// spans returns up to limit (all when limit < 0) non-overlapping occurrences
// of the folded pattern, as byte offsets into the original line
func (m *foldedMatcher) spans(line string, limit int) []span {
	if m.folded == "" {
		return nil
	}
	ft := m.folder.foldText(line)

	var out []span
	pos := 0
	for pos+len(m.folded) <= len(ft.text) {
		i := strings.Index(ft.text[pos:], m.folded)
		if i < 0 {
			break
		}
		start := pos + i
		end := start + len(m.folded)

		origStart, origEnd := ft.origin[start], ft.origin[end]
		if origStart < 0 || origEnd < 0 {
			// occurrence splits a folded rune, not a real match
			pos = start + 1
			continue
		}

		out = append(out, span{start: origStart, end: origEnd})
		if limit > 0 && len(out) >= limit {
			break
		}
		pos = end
	}
	return out
}

func (m *foldedMatcher) Mode() Mode      { return ModeTextCaseInsensitive }
func (m *foldedMatcher) Pattern() string { return m.pattern }

// regexMatcher is unanchored RE2 matching with template replacement
type regexMatcher struct {
	re *regexp.Regexp
}

func (m *regexMatcher) Matches(line string) bool {
	return m.re.MatchString(line)
}

// Transform expands $1, ${1}, ${name} and $$ in the replacement.
func (m *regexMatcher) Transform(line, replacement string) string {
	return m.re.ReplaceAllString(line, replacement)
}

func (m *regexMatcher) Mode() Mode      { return ModeRegex }
func (m *regexMatcher) Pattern() string { return m.re.String() }

type span struct {
	start, end int
}
