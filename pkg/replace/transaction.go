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

// Package replace rewrites matching lines of a list of files in place. Every
// file is copied into the backup tree before it is touched, so a failure or
// a cancellation puts the file back exactly as it was and a finished replace
// can be undone.
package replace

import (
	"bufio"
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/greprc/pkg/backup"
	"github.com/walteh/greprc/pkg/files"
	"github.com/walteh/greprc/pkg/match"
	"github.com/walteh/greprc/pkg/scan"
	"github.com/walteh/greprc/pkg/status"
)

// Request is one replace over an explicit file list
type Request struct {
	Files []string
	// BaseFolder is the common root of Files; it decides where each file
	// lands in the backup tree
	BaseFolder  string
	Matcher     match.Matcher
	Replacement string
}

// 🔧 Options configures a Transaction
type Options struct {
	Files        files.FileManager
	Backups      *backup.Store
	Reporter     status.Reporter
	Newline      Newline
	MaxLineBytes int
}

// 🔁 Transaction runs replaces one file at a time
type Transaction struct {
	fm           files.FileManager
	backups      *backup.Store
	reporter     status.Reporter
	newline      Newline
	maxLineBytes int
}

// 🏭 New creates a new transaction runner
func New(opts Options) *Transaction {
	fm := opts.Files
	if fm == nil {
		fm = files.New()
	}
	backups := opts.Backups
	if backups == nil {
		backups = backup.New("", fm)
	}
	return &Transaction{
		fm:           fm,
		backups:      backups,
		reporter:     status.OrNop(opts.Reporter),
		newline:      opts.Newline,
		maxLineBytes: opts.MaxLineBytes,
	}
}

// Run replaces req.Matcher with req.Replacement in every file of req.Files.
//
// An empty list or a missing base folder does nothing. Otherwise the backup
// tree is reset first, which drops whatever an earlier replace left to undo.
// A cancelled ctx stops the batch: the file being rewritten is rolled back
// and the outcome is BatchCancelled with a nil error. Any failure on a file
// rolls that file back, leaves the rest untouched and returns BatchAborted
// with the error.
func (t *Transaction) Run(ctx context.Context, req Request) (*Outcome, error) {
	logger := zerolog.Ctx(ctx)
	out := &Outcome{State: BatchRunning, Files: []FileResult{}}

	if len(req.Files) == 0 {
		out.State = BatchCompleted
		return out, nil
	}
	if info, err := t.fm.Stat(ctx, req.BaseFolder); err != nil || !info.IsDir() {
		logger.Debug().Str("base", req.BaseFolder).Msg("base folder missing, nothing to replace")
		out.State = BatchCompleted
		return out, nil
	}

	if err := t.backups.Reset(ctx); err != nil {
		out.State = BatchAborted
		return out, errors.Errorf("preparing backup: %w", err)
	}

	paths := uniquePaths(req.Files)
	if dropped := len(req.Files) - len(paths); dropped > 0 {
		logger.Debug().Int("duplicates", dropped).Msg("skipping repeated files")
	}

	manifest := backup.NewManifest(req.BaseFolder, req.Matcher.Pattern(), req.Replacement, req.Matcher.Mode().String())
	manifest.State = out.State.String()
	t.saveManifest(ctx, manifest)

	total := len(paths)
	t.reporter.StartOperation(ctx, total)
	defer t.reporter.FinishOperation(ctx)

	var runErr error
	for i, path := range paths {
		if ctx.Err() != nil {
			out.State = BatchCancelled
			break
		}

		res, err := t.replaceFile(ctx, req, path)
		out.Files = append(out.Files, res)
		manifest.Files = append(manifest.Files, backup.ManifestFile{
			Path:          res.Path,
			Backup:        res.BackupPath,
			State:         res.State.String(),
			ReplacedLines: res.ReplacedLines,
		})

		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("replace failed, batch aborted")
			out.State = BatchAborted
			runErr = errors.Errorf("replacing %s: %w", path, err)
			break
		}
		if res.State != FileCommitted {
			out.State = BatchCancelled
			break
		}

		t.reporter.UpdateProgress(ctx, status.ProgressStatus{TotalFiles: total, ProcessedFiles: i + 1})
	}
	if out.State == BatchRunning {
		out.State = BatchCompleted
	}

	finished := time.Now().UTC()
	manifest.FinishedAt = &finished
	manifest.State = out.State.String()
	t.saveManifest(ctx, manifest)

	logger.Info().
		Str("state", out.State.String()).
		Int("files", out.Count()).
		Int("lines", out.ReplacedLines()).
		Msg("replace finished")

	return out, runErr
}

// uniquePaths keeps the first occurrence of every file. A second pass over
// the same file would back up already replaced content over the original.
func uniquePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		key, err := filepath.Abs(path)
		if err != nil {
			key = filepath.Clean(path)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, path)
	}
	return out
}

// replaceFile runs the per file state machine. A nil error with a
// FileRolledBack result means ctx was cancelled mid file.
func (t *Transaction) replaceFile(ctx context.Context, req Request, path string) (FileResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("file", path).Logger()
	res := FileResult{Path: path, State: FileIdle}

	backupPath, err := t.backups.Backup(ctx, req.BaseFolder, path)
	if err != nil {
		res.Err = err
		return res, err
	}
	res.BackupPath = backupPath
	res.State = FileBackedUp

	if err := t.fm.Remove(ctx, path); err != nil {
		return t.rollback(ctx, res, errors.Errorf("deleting original: %w", err))
	}
	res.State = FileRewriting
	logger.Debug().Str("backup", backupPath).Msg("rewriting")

	replaced, cancelled, err := t.rewrite(ctx, req, backupPath, path)
	if err != nil {
		return t.rollback(ctx, res, err)
	}
	if cancelled {
		logger.Debug().Msg("cancelled while rewriting")
		return t.rollback(ctx, res, nil)
	}

	if err := t.fm.CopyAttributes(ctx, backupPath, path); err != nil {
		return t.rollback(ctx, res, err)
	}

	res.State = FileCommitted
	res.ReplacedLines = replaced
	return res, nil
}

// rollback puts the backup back over path; cause is nil for a cancellation
func (t *Transaction) rollback(ctx context.Context, res FileResult, cause error) (FileResult, error) {
	if err := t.backups.Restore(ctx, res.BackupPath, res.Path); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("file", res.Path).Str("backup", res.BackupPath).Msg("rollback failed, backup kept")
		if cause == nil {
			cause = errors.New("cancelled")
		}
		res.Err = errors.Errorf("rolling back after %v: %w", cause, err)
		return res, res.Err
	}

	res.State = FileRolledBack
	res.Err = cause
	return res, cause
}

// rewrite streams src into a fresh dst line by line
func (t *Transaction) rewrite(ctx context.Context, req Request, src, dst string) (int, bool, error) {
	r, err := t.fm.Open(ctx, src)
	if err != nil {
		return 0, false, errors.Errorf("reading backup: %w", err)
	}
	defer r.Close()

	w, err := t.fm.Create(ctx, dst)
	if err != nil {
		return 0, false, errors.Errorf("recreating file: %w", err)
	}
	defer w.Close()

	bw := bufio.NewWriter(w)
	reader := scan.NewLineReader(r, t.maxLineBytes)
	newline := ""
	replaced := 0

	for {
		line, ok := reader.Next()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			return replaced, true, nil
		}
		if newline == "" {
			newline = t.newline.terminator(reader.Terminator())
		}

		if req.Matcher.Matches(line) {
			line = req.Matcher.Transform(line, req.Replacement)
			replaced++
		}
		if _, err := bw.WriteString(line); err != nil {
			return replaced, false, errors.Errorf("writing: %w", err)
		}
		if _, err := bw.WriteString(newline); err != nil {
			return replaced, false, errors.Errorf("writing: %w", err)
		}
	}
	if err := reader.Err(); err != nil {
		return replaced, false, errors.Errorf("reading backup: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return replaced, false, errors.Errorf("writing: %w", err)
	}
	if err := w.Close(); err != nil {
		return replaced, false, errors.Errorf("closing file: %w", err)
	}
	return replaced, false, nil
}

func (t *Transaction) saveManifest(ctx context.Context, m *backup.Manifest) {
	if err := t.backups.WriteManifest(ctx, m); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("writing backup manifest")
	}
}
