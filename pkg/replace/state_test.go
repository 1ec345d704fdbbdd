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

package replace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/greprc/pkg/replace"
)

func TestOutcome_Count(t *testing.T) {
	tests := []struct {
		name      string
		outcome   replace.Outcome
		wantCount int
		wantLines int
	}{
		{
			name:      "empty",
			outcome:   replace.Outcome{State: replace.BatchCompleted},
			wantCount: 0,
		},
		{
			name: "only_committed_count",
			outcome: replace.Outcome{State: replace.BatchCancelled, Files: []replace.FileResult{
				{State: replace.FileCommitted, ReplacedLines: 3},
				{State: replace.FileCommitted, ReplacedLines: 1},
				{State: replace.FileRolledBack, ReplacedLines: 7},
			}},
			wantCount: 2,
			wantLines: 4,
		},
		{
			name: "aborted",
			outcome: replace.Outcome{State: replace.BatchAborted, Files: []replace.FileResult{
				{State: replace.FileCommitted, ReplacedLines: 2},
				{State: replace.FileRolledBack},
			}},
			wantCount: replace.Aborted,
			wantLines: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCount, tt.outcome.Count())
			assert.Equal(t, tt.wantLines, tt.outcome.ReplacedLines())
		})
	}
}

func TestStates_String(t *testing.T) {
	assert.Equal(t, "rolled back", replace.FileRolledBack.String())
	assert.Equal(t, "committed", replace.FileCommitted.String())
	assert.Equal(t, "cancelled", replace.BatchCancelled.String())
	assert.Equal(t, "aborted", replace.BatchAborted.String())
	assert.Equal(t, "file-state(42)", replace.FileState(42).String())
}

func TestParseNewline(t *testing.T) {
	tests := []struct {
		in      string
		want    replace.Newline
		wantErr bool
	}{
		{in: "", want: replace.NewlineAuto},
		{in: "auto", want: replace.NewlineAuto},
		{in: "LF", want: replace.NewlineLF},
		{in: " crlf ", want: replace.NewlineCRLF},
		{in: "cr", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := replace.ParseNewline(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
