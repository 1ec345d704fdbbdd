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

// 📊 FileOutcome is how a single file ended up after an operation
type FileOutcome int

const (
	OutcomeUnknown    FileOutcome = iota
	OutcomeMatched                // search found at least one line
	OutcomeReplaced               // rewritten and committed
	OutcomeUnchanged              // rewritten, no line matched
	OutcomeRolledBack             // restored from backup after cancel or error
	OutcomeSkipped                // could not be read
	OutcomeRestored               // copied back by undo
)

// String returns a string representation of FileOutcome
func (o FileOutcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeReplaced:
		return "replaced"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeRolledBack:
		return "rolled back"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeRestored:
		return "restored"
	default:
		return "unknown"
	}
}
