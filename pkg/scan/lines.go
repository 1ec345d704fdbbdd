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
	"bufio"
	"bytes"
	"io"
)

// DefaultMaxLineBytes bounds a single line; longer lines fail the read
const DefaultMaxLineBytes = 16 << 20

// 📜 LineReader splits a stream on "\n", "\r\n" or a lone "\r". A final line
// without terminator is still returned, a trailing terminator does not add an
// empty line.
type LineReader struct {
	sc   *bufio.Scanner
	term string
}

// NewLineReader wraps r; maxLineBytes <= 0 means DefaultMaxLineBytes
func NewLineReader(r io.Reader, maxLineBytes int) *LineReader {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}

	lr := &LineReader{sc: bufio.NewScanner(r)}
	initial := 64 * 1024
	if initial > maxLineBytes {
		initial = maxLineBytes
	}
	lr.sc.Buffer(make([]byte, 0, initial), maxLineBytes)
	lr.sc.Split(lr.split)
	return lr
}

// Next returns the next line without its terminator
func (lr *LineReader) Next() (string, bool) {
	if !lr.sc.Scan() {
		return "", false
	}
	return lr.sc.Text(), true
}

// Err returns the first read error, nil at a clean end of stream
func (lr *LineReader) Err() error {
	return lr.sc.Err()
}

// Terminator returns the first line terminator seen so far, or ""
func (lr *LineReader) Terminator() string {
	return lr.term
}

func (lr *LineReader) note(term string) {
	if lr.term == "" {
		lr.term = term
	}
}

func (lr *LineReader) split(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			lr.note("\n")
			return i + 1, data[:i], nil
		}
		switch {
		case i+1 < len(data) && data[i+1] == '\n':
			lr.note("\r\n")
			return i + 2, data[:i], nil
		case i+1 < len(data) || atEOF:
			lr.note("\r")
			return i + 1, data[:i], nil
		default:
			// a "\r" at the end of the buffer may still be followed by "\n"
			return 0, nil, nil
		}
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
