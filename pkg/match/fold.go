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
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/cases"
)

// 🔤 FoldPolicy selects how case-insensitive literals are folded
type FoldPolicy int

const (
	// FoldSimple maps each rune to its upper case with unicode.ToUpper.
	// One rune always folds to one rune, some locale specific pairs do not meet.
	FoldSimple FoldPolicy = iota
	// FoldUnicode applies full Unicode case folding (ß matches SS).
	FoldUnicode
)

func (p FoldPolicy) String() string {
	switch p {
	case FoldSimple:
		return "simple"
	case FoldUnicode:
		return "unicode"
	default:
		return fmt.Sprintf("fold(%d)", int(p))
	}
}

// ParseFoldPolicy parses "simple" or "unicode"; empty means simple
func ParseFoldPolicy(s string) (FoldPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "simple", "ordinal":
		return FoldSimple, nil
	case "unicode", "full":
		return FoldUnicode, nil
	default:
		return 0, errors.Errorf("unknown case folding %q", s)
	}
}

// foldedText is a folded line plus, for every byte offset of the folded
// text, the matching offset in the original line or -1 when the offset falls
// inside the fold of a single rune
type foldedText struct {
	text   string
	origin []int
}

type folder interface {
	fold(s string) string
	foldText(s string) foldedText
}

func newFolder(p FoldPolicy) (folder, error) {
	switch p {
	case FoldSimple:
		return runeFolder{foldRune: simpleFoldRune}, nil
	case FoldUnicode:
		return runeFolder{foldRune: unicodeFoldRune}, nil
	default:
		return nil, errors.Errorf("unsupported fold policy %s", p)
	}
}

// runeFolder folds rune by rune so offsets can be mapped back
type runeFolder struct {
	foldRune func(dst *strings.Builder, r rune, raw string)
}

func (f runeFolder) fold(s string) string {
	return f.foldText(s).text
}

func (f runeFolder) foldText(s string) foldedText {
	var b strings.Builder
	b.Grow(len(s))
	origin := make([]int, 0, len(s)+1)

	for i := 0; i < len(s); {
		r, w := utf8.DecodeRuneInString(s[i:])
		before := b.Len()
		f.foldRune(&b, r, s[i:i+w])
		if b.Len() > before {
			origin = append(origin, i)
			for j := before + 1; j < b.Len(); j++ {
				origin = append(origin, -1)
			}
		}
		i += w
	}
	origin = append(origin, len(s))

	return foldedText{text: b.String(), origin: origin}
}

func simpleFoldRune(dst *strings.Builder, r rune, raw string) {
	if r == utf8.RuneError && len(raw) == 1 {
		dst.WriteString(raw)
		return
	}
	dst.WriteRune(unicode.ToUpper(r))
}

func unicodeFoldRune(dst *strings.Builder, r rune, raw string) {
	if r == utf8.RuneError && len(raw) == 1 {
		dst.WriteString(raw)
		return
	}
	if r < utf8.RuneSelf {
		dst.WriteByte(byte(unicode.ToLower(r)))
		return
	}
	// a Caser keeps state, so never share one across calls
	dst.WriteString(cases.Fold().String(raw))
}
