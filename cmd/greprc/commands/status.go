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
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/greprc/cmd/greprc/opts"
	"github.com/walteh/greprc/pkg/backup"
)

// NewStatusCmd creates the status command
func NewStatusCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what undo would restore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := opts.Engine.LastReplace(ctx)
			if errors.Is(err, backup.ErrNoBackup) {
				opts.UserLogger.LogStateChange("Nothing to undo")
				return nil
			}
			if err != nil {
				return errors.Errorf("reading last replace: %w", err)
			}

			opts.UserLogger.LogStateChange(fmt.Sprintf("Last replace %q → %q (%s) in %s, %s",
				m.Pattern, m.Replacement, m.Mode, m.BaseFolder, m.State))

			data := pterm.TableData{{"File", "State", "Lines"}}
			for _, f := range m.Files {
				data = append(data, []string{relPath(m.BaseFolder, f.Path), f.State, strconv.Itoa(f.ReplacedLines)})
			}
			return pterm.DefaultTable.WithHasHeader().WithWriter(opts.Out).WithData(data).Render()
		},
	}

	return cmd
}
