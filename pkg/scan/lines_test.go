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
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, lr *LineReader) []string {
	t.Helper()
	lines := []string{}
	for {
		line, ok := lr.Next()
		if !ok {
			break
		}
		lines = append(lines, line)
	}
	return lines
}

func TestLineReader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     []string
		wantTerm string
	}{
		{name: "empty", input: "", want: []string{}},
		{name: "no_terminator", input: "one", want: []string{"one"}},
		{name: "lf", input: "one\ntwo\n", want: []string{"one", "two"}, wantTerm: "\n"},
		{name: "lf_no_trailing", input: "one\ntwo", want: []string{"one", "two"}, wantTerm: "\n"},
		{name: "crlf", input: "one\r\ntwo\r\n", want: []string{"one", "two"}, wantTerm: "\r\n"},
		{name: "lone_cr", input: "one\rtwo", want: []string{"one", "two"}, wantTerm: "\r"},
		{name: "trailing_cr", input: "one\r", want: []string{"one"}, wantTerm: "\r"},
		{name: "blank_lines", input: "\n\nx\n", want: []string{"", "", "x"}, wantTerm: "\n"},
		{name: "mixed", input: "a\r\nb\nc\rd", want: []string{"a", "b", "c", "d"}, wantTerm: "\r\n"},
		{name: "cr_then_blank", input: "a\r\rb", want: []string{"a", "", "b"}, wantTerm: "\r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewLineReader(strings.NewReader(tt.input), 0)
			assert.Equal(t, tt.want, readAll(t, lr))
			require.NoError(t, lr.Err())
			assert.Equal(t, tt.wantTerm, lr.Terminator())

			// one byte at a time puts every "\r" at a buffer boundary
			slow := NewLineReader(iotest.OneByteReader(strings.NewReader(tt.input)), 0)
			assert.Equal(t, tt.want, readAll(t, slow), "byte-at-a-time reads should split the same way")
			assert.Equal(t, tt.wantTerm, slow.Terminator())
		})
	}
}

func TestLineReader_LineTooLong(t *testing.T) {
	lr := NewLineReader(strings.NewReader("short\n"+strings.Repeat("x", 100)+"\n"), 32)

	line, ok := lr.Next()
	require.True(t, ok)
	assert.Equal(t, "short", line)

	_, ok = lr.Next()
	assert.False(t, ok)
	require.Error(t, lr.Err())
}
