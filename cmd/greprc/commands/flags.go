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

package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/greprc/pkg/config"
	"github.com/walteh/greprc/pkg/match"
	"github.com/walteh/greprc/pkg/replace"
	"github.com/walteh/greprc/pkg/status"
)

// matchFlags are the pattern flags shared by search and replace
type matchFlags struct {
	mode       string
	ignoreCase bool
}

func (f *matchFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "match mode: text, text-insensitive or regex (default from config)")
	cmd.Flags().BoolVarP(&f.ignoreCase, "ignore-case", "i", false, "match text patterns case-insensitively")
}

// resolve combines the flags with the configured mode
func (f *matchFlags) resolve(cfg *config.Config) (match.Mode, error) {
	mode := cfg.MatchMode()
	if f.mode != "" {
		m, err := match.ParseMode(f.mode)
		if err != nil {
			return 0, errors.Errorf("--mode: %w", err)
		}
		mode = m
	}

	if f.ignoreCase {
		switch mode {
		case match.ModeTextCaseSensitive:
			mode = match.ModeTextCaseInsensitive
		case match.ModeRegex:
			return 0, errors.New("--ignore-case does not apply to regex mode, use (?i) in the pattern")
		}
	}

	return mode, nil
}

// folderArg returns args[i] as an absolute folder, "." when absent
func folderArg(args []string, i int) (string, error) {
	folder := "."
	if len(args) > i {
		folder = args[i]
	}

	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", folder, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.Errorf("checking folder: %w", err)
	}
	if !info.IsDir() {
		return "", errors.Errorf("%s is not a folder", folder)
	}

	return abs, nil
}

// relPath shortens path for display, falling back to path itself
func relPath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// outcomeOf maps a replace result onto the console outcome
func outcomeOf(f replace.FileResult) status.FileOutcome {
	switch f.State {
	case replace.FileCommitted:
		if f.ReplacedLines > 0 {
			return status.OutcomeReplaced
		}
		return status.OutcomeUnchanged
	case replace.FileRolledBack:
		return status.OutcomeRolledBack
	default:
		return status.OutcomeSkipped
	}
}
