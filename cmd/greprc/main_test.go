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

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name string
		info VersionInfo
		want string
	}{
		{
			name: "release",
			info: VersionInfo{Version: "v1.2.0", GoVersion: "go1.23.5", Platform: "linux/amd64", Revision: "abc123"},
			want: "🚀 greprc version info:\nVersion:   v1.2.0\nRevision:  abc123\nGo:        go1.23.5\nPlatform:  linux/amd64\n",
		},
		{
			name: "dirty_tree",
			info: VersionInfo{Version: "dev", GoVersion: "go1.23.5", Platform: "darwin/arm64", Modified: true},
			want: "🚀 greprc version info:\nVersion:   dev\nRevision:  unknown (modified)\nGo:        go1.23.5\nPlatform:  darwin/arm64\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatVersion(&tt.info))
		})
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version", "--json"})

	require.NoError(t, cmd.Execute())

	var info VersionInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Version)
}

func TestRootCmd_ReplaceAndUndo(t *testing.T) {
	color.NoColor = true
	pterm.DisableStyling()
	defer func() {
		color.NoColor = false
		pterm.EnableStyling()
	}()

	dir := t.TempDir()
	work := filepath.Join(dir, "work")
	require.NoError(t, os.MkdirAll(work, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(work, "a.txt"), []byte("hello world\n"), 0o644))

	configPath := filepath.Join(dir, "greprc.yaml")
	configYAML := "backup_dir: " + filepath.Join(dir, "undo") + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0o644))

	run := func(args ...string) string {
		t.Helper()
		out := &bytes.Buffer{}
		cmd := newRootCmd()
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append([]string{"--config", configPath}, args...))
		require.NoError(t, cmd.Execute(), "greprc %v", args)
		return out.String()
	}

	run("replace", "world", "gopher", work)
	got, err := os.ReadFile(filepath.Join(work, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello gopher\n", string(got))

	assert.Equal(t, "a.txt:1: hello gopher\n", run("search", "gopher", work))

	run("undo")
	got, err = os.ReadFile(filepath.Join(work, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", string(got))
}
