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

package replace

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Newline picks the terminator written after each rewritten line
type Newline int

const (
	// NewlineAuto reuses the first terminator found in the file, "\n" when
	// the file has none
	NewlineAuto Newline = iota
	NewlineLF
	NewlineCRLF
)

func (n Newline) String() string {
	switch n {
	case NewlineAuto:
		return "auto"
	case NewlineLF:
		return "lf"
	case NewlineCRLF:
		return "crlf"
	default:
		return fmt.Sprintf("newline(%d)", int(n))
	}
}

// ParseNewline parses "auto", "lf" or "crlf"; empty means auto
func ParseNewline(s string) (Newline, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return NewlineAuto, nil
	case "lf", "\n":
		return NewlineLF, nil
	case "crlf", "\r\n":
		return NewlineCRLF, nil
	default:
		return 0, errors.Errorf("unknown newline %q", s)
	}
}

func (n Newline) terminator(seen string) string {
	switch n {
	case NewlineLF:
		return "\n"
	case NewlineCRLF:
		return "\r\n"
	default:
		if seen == "" {
			return "\n"
		}
		return seen
	}
}
