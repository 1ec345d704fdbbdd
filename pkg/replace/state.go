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

import "fmt"

// Aborted is the file count reported when a batch fails
const Aborted = -1

// 🚦 FileState tracks one file through a replace
//
//	Idle -> BackedUp -> Rewriting -> Committed
//	                             \-> RolledBack
type FileState int

const (
	FileIdle FileState = iota
	FileBackedUp
	FileRewriting
	FileCommitted
	FileRolledBack
)

func (s FileState) String() string {
	switch s {
	case FileIdle:
		return "idle"
	case FileBackedUp:
		return "backed up"
	case FileRewriting:
		return "rewriting"
	case FileCommitted:
		return "committed"
	case FileRolledBack:
		return "rolled back"
	default:
		return fmt.Sprintf("file-state(%d)", int(s))
	}
}

// 🚦 BatchState tracks a whole replace
type BatchState int

const (
	BatchRunning BatchState = iota
	BatchCompleted
	// BatchCancelled means the batch stopped on request; files committed
	// before that stay committed
	BatchCancelled
	// BatchAborted means a file failed; it was rolled back and the rest of
	// the list was never touched
	BatchAborted
)

func (s BatchState) String() string {
	switch s {
	case BatchRunning:
		return "running"
	case BatchCompleted:
		return "completed"
	case BatchCancelled:
		return "cancelled"
	case BatchAborted:
		return "aborted"
	default:
		return fmt.Sprintf("batch-state(%d)", int(s))
	}
}

// FileResult is what happened to one file
type FileResult struct {
	Path          string
	BackupPath    string
	State         FileState
	ReplacedLines int
	Err           error
}

// 📦 Outcome summarizes a replace
type Outcome struct {
	State BatchState
	Files []FileResult
}

// Count returns the number of committed files, or Aborted
func (o *Outcome) Count() int {
	if o.State == BatchAborted {
		return Aborted
	}
	n := 0
	for _, f := range o.Files {
		if f.State == FileCommitted {
			n++
		}
	}
	return n
}

// ReplacedLines totals the replaced lines of committed files
func (o *Outcome) ReplacedLines() int {
	n := 0
	for _, f := range o.Files {
		if f.State == FileCommitted {
			n += f.ReplacedLines
		}
	}
	return n
}
