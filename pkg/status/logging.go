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

package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent   = 4  // spaces to indent file entries
	nameWidth    = 35 // Base width for filename
	outcomeWidth = 12 // Width for outcome text
)

// 🎯 FormatFileLine formats a file outcome as an aligned, colored console line
func FormatFileLine(path string, outcome FileOutcome, lines int) string {
	var prefix string
	switch outcome {
	case OutcomeReplaced:
		prefix = color.YellowString("⟳")
	case OutcomeMatched, OutcomeRestored:
		prefix = color.GreenString("✓")
	case OutcomeRolledBack, OutcomeSkipped:
		prefix = color.RedString("✗")
	default:
		prefix = color.HiBlackString("-")
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, path)
	outcomePart := fmt.Sprintf("%-*s", outcomeWidth, outcome.String())

	line := fmt.Sprintf("%s%s %s %s",
		strings.Repeat(" ", fileIndent),
		prefix,
		namePart,
		outcomePart,
	)
	if lines > 0 {
		line += color.HiBlackString(pluralLines(lines))
	}
	return line
}
