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
)

// FileFormatter defines how file outcomes and progress are formatted
type FileFormatter interface {
	// FormatFileOperation formats the outcome of one file
	FormatFileOperation(path string, outcome FileOutcome, lines int) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOperation formats a file outcome with emojis
func (f *DefaultFileFormatter) FormatFileOperation(path string, outcome FileOutcome, lines int) string {
	switch outcome {
	case OutcomeMatched:
		return fmt.Sprintf("🔍 Matched %s (%s)", path, pluralLines(lines))
	case OutcomeReplaced:
		return fmt.Sprintf("📝 Replaced %s (%s)", path, pluralLines(lines))
	case OutcomeRolledBack:
		return fmt.Sprintf("⏪ Rolled back %s", path)
	case OutcomeSkipped:
		return fmt.Sprintf("⏭️  Skipped %s", path)
	case OutcomeRestored:
		return fmt.Sprintf("♻️  Restored %s", path)
	case OutcomeUnchanged:
		return fmt.Sprintf("👍 Unchanged %s", path)
	default:
		return fmt.Sprintf("❔ %s", path)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

func pluralLines(n int) string {
	if n == 1 {
		return "1 line"
	}
	return fmt.Sprintf("%d lines", n)
}
