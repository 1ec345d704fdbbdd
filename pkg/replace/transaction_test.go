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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/greprc/pkg/backup"
	"github.com/walteh/greprc/pkg/files"
	"github.com/walteh/greprc/pkg/match"
	"github.com/walteh/greprc/pkg/replace"
	"github.com/walteh/greprc/pkg/status"
	"github.com/walteh/greprc/pkg/testutils"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func mustCompile(t *testing.T, pattern string, mode match.Mode) match.Matcher {
	t.Helper()
	m, err := match.Compile(pattern, mode, match.Options{})
	require.NoError(t, err)
	return m
}

type fixture struct {
	base     string
	store    *backup.Store
	fm       *testutils.FaultyFileManager
	progress []status.ProgressStatus
	tx       *replace.Transaction
}

func newFixture(t *testing.T, newline replace.Newline, tree map[string]string) *fixture {
	t.Helper()
	f := &fixture{
		base: t.TempDir(),
		fm:   testutils.NewFaultyFileManager(),
	}
	f.store = backup.New(filepath.Join(t.TempDir(), "backup"), f.fm)
	testutils.WriteTree(t, f.base, tree)
	f.tx = replace.New(replace.Options{
		Files:   f.fm,
		Backups: f.store,
		Newline: newline,
		Reporter: status.ReporterFunc(func(_ context.Context, p status.ProgressStatus) {
			f.progress = append(f.progress, p)
		}),
	})
	return f
}

// cancelOnLine cancels the run when it is asked about a given line
type cancelOnLine struct {
	match.Matcher
	line   string
	cancel context.CancelFunc
}

func (c cancelOnLine) Matches(line string) bool {
	if line == c.line {
		c.cancel()
	}
	return c.Matcher.Matches(line)
}

func TestTransaction_Run_Rewrites(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		pattern     string
		replacement string
		mode        match.Mode
		newline     replace.Newline
		want        string
		wantLines   int
	}{
		{
			name:        "case_sensitive_all_occurrences",
			content:     "foo bar foo\n",
			pattern:     "foo",
			replacement: "baz",
			mode:        match.ModeTextCaseSensitive,
			want:        "baz bar baz\n",
			wantLines:   1,
		},
		{
			name:        "unmatched_lines_identical",
			content:     "keep\nfoo\n  keep too\t\n",
			pattern:     "foo",
			replacement: "x",
			mode:        match.ModeTextCaseSensitive,
			want:        "keep\nx\n  keep too\t\n",
			wantLines:   1,
		},
		{
			name:        "case_insensitive_keeps_replacement_case",
			content:     "Foo\nfOO bar\nnone\n",
			pattern:     "foo",
			replacement: "Baz",
			mode:        match.ModeTextCaseInsensitive,
			want:        "Baz\nBaz bar\nnone\n",
			wantLines:   2,
		},
		{
			name:        "regex_capture_groups",
			content:     "name=alice\nname=bob\nother\n",
			pattern:     `^name=(\w+)$`,
			replacement: "user: $1",
			mode:        match.ModeRegex,
			want:        "user: alice\nuser: bob\nother\n",
			wantLines:   2,
		},
		{
			name:        "missing_final_newline_gets_one",
			content:     "a\nfoo",
			pattern:     "foo",
			replacement: "bar",
			mode:        match.ModeTextCaseSensitive,
			want:        "a\nbar\n",
			wantLines:   1,
		},
		{
			name:        "auto_keeps_crlf",
			content:     "foo\r\nbar\r\n",
			pattern:     "foo",
			replacement: "baz",
			mode:        match.ModeTextCaseSensitive,
			want:        "baz\r\nbar\r\n",
			wantLines:   1,
		},
		{
			name:        "lf_policy_normalizes",
			content:     "foo\r\nbar\rbaz\n",
			pattern:     "foo",
			replacement: "qux",
			mode:        match.ModeTextCaseSensitive,
			newline:     replace.NewlineLF,
			want:        "qux\nbar\nbaz\n",
			wantLines:   1,
		},
		{
			name:        "crlf_policy",
			content:     "foo\nbar\n",
			pattern:     "bar",
			replacement: "baz",
			mode:        match.ModeTextCaseSensitive,
			newline:     replace.NewlineCRLF,
			want:        "foo\r\nbaz\r\n",
			wantLines:   1,
		},
		{
			name:        "no_match_still_rewritten",
			content:     "nothing\n",
			pattern:     "foo",
			replacement: "bar",
			mode:        match.ModeTextCaseSensitive,
			want:        "nothing\n",
			wantLines:   0,
		},
		{
			name:        "empty_file",
			content:     "",
			pattern:     "foo",
			replacement: "bar",
			mode:        match.ModeTextCaseSensitive,
			want:        "",
			wantLines:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			f := newFixture(t, tt.newline, map[string]string{"file.txt": tt.content})

			out, err := f.tx.Run(ctx, replace.Request{
				Files:       testutils.Paths(f.base, "file.txt"),
				BaseFolder:  f.base,
				Matcher:     mustCompile(t, tt.pattern, tt.mode),
				Replacement: tt.replacement,
			})
			require.NoError(t, err)
			assert.Equal(t, replace.BatchCompleted, out.State)
			assert.Equal(t, 1, out.Count())
			assert.Equal(t, tt.wantLines, out.ReplacedLines())
			assert.Equal(t, map[string]string{"file.txt": tt.want}, testutils.ReadTree(t, f.base))

			backedUp := testutils.ReadTree(t, f.store.Root())
			assert.Equal(t, tt.content, backedUp["file.txt"])
		})
	}
}

func TestTransaction_Run_ThenUndo(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, replace.NewlineAuto, map[string]string{
		"a.txt":     "foo bar foo",
		"sub/b.txt": "one foo\ntwo\r\n",
		"c.txt":     "untouched\n",
	})
	before := testutils.ReadTree(t, f.base)

	out, err := f.tx.Run(ctx, replace.Request{
		Files:       testutils.Paths(f.base, "a.txt", "sub/b.txt"),
		BaseFolder:  f.base,
		Matcher:     mustCompile(t, "foo", match.ModeTextCaseSensitive),
		Replacement: "baz",
	})
	require.NoError(t, err)
	require.Equal(t, 2, out.Count())

	after := testutils.ReadTree(t, f.base)
	assert.Equal(t, "baz bar baz\n", after["a.txt"])
	assert.Equal(t, "one baz\ntwo\n", after["sub/b.txt"])
	assert.Equal(t, "untouched\n", after["c.txt"])

	_, err = f.store.RestoreAll(ctx, f.base)
	require.NoError(t, err)
	assert.Equal(t, before, testutils.ReadTree(t, f.base))
}

func TestTransaction_Run_AbortsOnWriteError(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, replace.NewlineAuto, map[string]string{
		"1.txt": "foo\n",
		"2.txt": "foo one\nfoo two\nfoo three\n",
		"3.txt": "foo\n",
	})
	paths := testutils.Paths(f.base, "1.txt", "2.txt", "3.txt")
	f.fm.FailWriteAfter(paths[1], 5)

	out, err := f.tx.Run(ctx, replace.Request{
		Files:       paths,
		BaseFolder:  f.base,
		Matcher:     mustCompile(t, "foo", match.ModeTextCaseSensitive),
		Replacement: "bar",
	})
	require.ErrorIs(t, err, testutils.ErrInjected)
	assert.Contains(t, err.Error(), paths[1])
	assert.Equal(t, replace.BatchAborted, out.State)
	assert.Equal(t, replace.Aborted, out.Count())

	require.Len(t, out.Files, 2)
	assert.Equal(t, replace.FileCommitted, out.Files[0].State)
	assert.Equal(t, replace.FileRolledBack, out.Files[1].State)
	assert.ErrorIs(t, out.Files[1].Err, testutils.ErrInjected)

	assert.Equal(t, map[string]string{
		"1.txt": "bar\n",
		"2.txt": "foo one\nfoo two\nfoo three\n",
		"3.txt": "foo\n",
	}, testutils.ReadTree(t, f.base))
	assert.NotContains(t, f.fm.Created(), paths[2])
	assert.Equal(t, []status.ProgressStatus{{TotalFiles: 3, ProcessedFiles: 1}}, f.progress)
}

func TestTransaction_Run_CancelMidFile(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t))
	defer cancel()

	original := "foo 1\nfoo 2\nstop here\nfoo 4\n"
	f := newFixture(t, replace.NewlineAuto, map[string]string{
		"1.txt": "foo\n",
		"2.txt": original,
		"3.txt": "foo\n",
	})
	paths := testutils.Paths(f.base, "1.txt", "2.txt", "3.txt")

	out, err := f.tx.Run(ctx, replace.Request{
		Files:       paths,
		BaseFolder:  f.base,
		Matcher:     cancelOnLine{Matcher: mustCompile(t, "foo", match.ModeTextCaseSensitive), line: "stop here", cancel: cancel},
		Replacement: "bar",
	})
	require.NoError(t, err)
	assert.Equal(t, replace.BatchCancelled, out.State)
	assert.Equal(t, 1, out.Count())

	require.Len(t, out.Files, 2)
	assert.Equal(t, replace.FileRolledBack, out.Files[1].State)
	assert.NoError(t, out.Files[1].Err)

	tree := testutils.ReadTree(t, f.base)
	assert.Equal(t, "bar\n", tree["1.txt"])
	assert.Equal(t, original, tree["2.txt"])
	assert.Equal(t, "foo\n", tree["3.txt"])

	backedUp := testutils.ReadTree(t, f.store.Root())
	assert.Equal(t, backedUp["2.txt"], tree["2.txt"])
	assert.Len(t, f.progress, 1)
}

func TestTransaction_Run_CancelBetweenFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t))
	defer cancel()

	base := t.TempDir()
	testutils.WriteTree(t, base, map[string]string{"1.txt": "foo\n", "2.txt": "foo\n"})
	store := backup.New(filepath.Join(t.TempDir(), "backup"), files.New())

	tx := replace.New(replace.Options{
		Backups: store,
		Reporter: status.ReporterFunc(func(context.Context, status.ProgressStatus) {
			cancel()
		}),
	})

	out, err := tx.Run(ctx, replace.Request{
		Files:       testutils.Paths(base, "1.txt", "2.txt"),
		BaseFolder:  base,
		Matcher:     mustCompile(t, "foo", match.ModeTextCaseSensitive),
		Replacement: "bar",
	})
	require.NoError(t, err)
	assert.Equal(t, replace.BatchCancelled, out.State)
	assert.Equal(t, 1, out.Count())
	assert.Len(t, out.Files, 1)
	assert.Equal(t, map[string]string{"1.txt": "bar\n", "2.txt": "foo\n"}, testutils.ReadTree(t, base))
}

func TestTransaction_Run_NoOps(t *testing.T) {
	ctx := testContext(t)
	root := filepath.Join(t.TempDir(), "backup")
	testutils.WriteTree(t, root, map[string]string{"previous.txt": "earlier replace"})
	store := backup.New(root, files.New())
	tx := replace.New(replace.Options{Backups: store})
	m := mustCompile(t, "foo", match.ModeTextCaseSensitive)

	tests := []struct {
		name string
		req  replace.Request
	}{
		{
			name: "empty_file_list",
			req:  replace.Request{BaseFolder: t.TempDir(), Matcher: m},
		},
		{
			name: "missing_base_folder",
			req: replace.Request{
				Files:      []string{filepath.Join(t.TempDir(), "x.txt")},
				BaseFolder: filepath.Join(t.TempDir(), "does-not-exist"),
				Matcher:    m,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tx.Run(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, replace.BatchCompleted, out.State)
			assert.Equal(t, 0, out.Count())
			assert.Equal(t, map[string]string{"previous.txt": "earlier replace"}, testutils.ReadTree(t, root), "pending undo must survive")
		})
	}
}

func TestTransaction_Run_FileOutsideBase(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, replace.NewlineAuto, map[string]string{"in.txt": "foo\n"})
	outside := t.TempDir()
	testutils.WriteTree(t, outside, map[string]string{"out.txt": "foo\n"})

	out, err := f.tx.Run(ctx, replace.Request{
		Files:       []string{filepath.Join(outside, "out.txt"), filepath.Join(f.base, "in.txt")},
		BaseFolder:  f.base,
		Matcher:     mustCompile(t, "foo", match.ModeTextCaseSensitive),
		Replacement: "bar",
	})
	require.ErrorIs(t, err, backup.ErrOutsideBase)
	assert.Equal(t, replace.Aborted, out.Count())
	assert.Equal(t, replace.FileIdle, out.Files[0].State)
	assert.Equal(t, "foo\n", testutils.ReadTree(t, outside)["out.txt"])
	assert.Equal(t, "foo\n", testutils.ReadTree(t, f.base)["in.txt"])
}

func TestTransaction_Run_DeleteFailureRestores(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, replace.NewlineAuto, map[string]string{"a.txt": "foo\n"})
	path := filepath.Join(f.base, "a.txt")
	f.fm.FailOp("remove", path)

	out, err := f.tx.Run(ctx, replace.Request{
		Files:       []string{path},
		BaseFolder:  f.base,
		Matcher:     mustCompile(t, "foo", match.ModeTextCaseSensitive),
		Replacement: "bar",
	})
	require.ErrorIs(t, err, testutils.ErrInjected)
	assert.Equal(t, replace.Aborted, out.Count())
	assert.Equal(t, replace.FileRolledBack, out.Files[0].State)
	assert.Equal(t, "foo\n", testutils.ReadTree(t, f.base)["a.txt"])
}

func TestTransaction_Run_KeepsAttributes(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, replace.NewlineAuto, map[string]string{"a.sh": "echo foo\n"})
	path := filepath.Join(f.base, "a.sh")
	mtime := time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chmod(path, 0o751))
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	_, err := f.tx.Run(ctx, replace.Request{
		Files:       []string{path},
		BaseFolder:  f.base,
		Matcher:     mustCompile(t, "foo", match.ModeTextCaseSensitive),
		Replacement: "bar",
	})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o751), info.Mode().Perm())
	assert.True(t, mtime.Equal(info.ModTime()), "got %s", info.ModTime())
}

func TestTransaction_Run_WritesManifest(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, replace.NewlineAuto, map[string]string{"a.txt": "foo\nfoo\n", "b.txt": "x\n"})

	_, err := f.tx.Run(ctx, replace.Request{
		Files:       testutils.Paths(f.base, "a.txt", "b.txt"),
		BaseFolder:  f.base,
		Matcher:     mustCompile(t, "foo", match.ModeTextCaseInsensitive),
		Replacement: "bar",
	})
	require.NoError(t, err)

	m, err := f.store.ReadManifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.base, m.BaseFolder)
	assert.Equal(t, "foo", m.Pattern)
	assert.Equal(t, "bar", m.Replacement)
	assert.Equal(t, "text-insensitive", m.Mode)
	assert.Equal(t, "completed", m.State)
	require.NotNil(t, m.FinishedAt)
	require.Len(t, m.Files, 2)
	assert.Equal(t, 2, m.Files[0].ReplacedLines)
	assert.Equal(t, "committed", m.Files[1].State)

	// the manifest is never restored into the folder
	_, err = f.store.RestoreAll(ctx, f.base)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.txt": "foo\nfoo\n", "b.txt": "x\n"}, testutils.ReadTree(t, f.base))
}

func TestTransaction_Run_ManifestLookalikeFile(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, replace.NewlineAuto, map[string]string{".greprc-manifest.json": "{\"foo\": 1}\n"})

	out, err := f.tx.Run(ctx, replace.Request{
		Files:       testutils.Paths(f.base, ".greprc-manifest.json"),
		BaseFolder:  f.base,
		Matcher:     mustCompile(t, "foo", match.ModeTextCaseSensitive),
		Replacement: "bar",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count())
	assert.Equal(t, "{\"bar\": 1}\n", testutils.ReadTree(t, f.base)[".greprc-manifest.json"])

	_, err = f.store.RestoreAll(ctx, f.base)
	require.NoError(t, err)
	assert.Equal(t, "{\"foo\": 1}\n", testutils.ReadTree(t, f.base)[".greprc-manifest.json"])
}

func TestTransaction_Run_DuplicatePathsKeepOriginalBackup(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, replace.NewlineAuto, map[string]string{"a.txt": "foo\n"})
	path := filepath.Join(f.base, "a.txt")
	sep := string(filepath.Separator)

	out, err := f.tx.Run(ctx, replace.Request{
		Files:       []string{path, path, f.base + sep + "." + sep + "a.txt"},
		BaseFolder:  f.base,
		Matcher:     mustCompile(t, "foo", match.ModeTextCaseSensitive),
		Replacement: "foofoo",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count(), "a file listed twice is replaced once")
	assert.Len(t, out.Files, 1)
	assert.Equal(t, []status.ProgressStatus{{TotalFiles: 1, ProcessedFiles: 1}}, f.progress)
	assert.Equal(t, "foofoo\n", testutils.ReadTree(t, f.base)["a.txt"])

	_, err = f.store.RestoreAll(ctx, f.base)
	require.NoError(t, err)
	assert.Equal(t, "foo\n", testutils.ReadTree(t, f.base)["a.txt"])
}

func TestTransaction_Run_NewReplaceDropsOldBackup(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, replace.NewlineAuto, map[string]string{"a.txt": "foo\n", "b.txt": "foo\n"})
	m := mustCompile(t, "foo", match.ModeTextCaseSensitive)

	_, err := f.tx.Run(ctx, replace.Request{Files: testutils.Paths(f.base, "a.txt"), BaseFolder: f.base, Matcher: m, Replacement: "bar"})
	require.NoError(t, err)
	_, err = f.tx.Run(ctx, replace.Request{Files: testutils.Paths(f.base, "b.txt"), BaseFolder: f.base, Matcher: m, Replacement: "bar"})
	require.NoError(t, err)

	_, err = f.store.RestoreAll(ctx, f.base)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.txt": "bar\n", "b.txt": "foo\n"}, testutils.ReadTree(t, f.base))
}
