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

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/greprc/cmd/greprc/opts"
	"github.com/walteh/greprc/pkg/backup"
	"github.com/walteh/greprc/pkg/log"
	"github.com/walteh/greprc/pkg/operation"
	"github.com/walteh/greprc/pkg/status"
)

// NewUndoCmd creates the undo command
func NewUndoCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo [FOLDER]",
		Short: "Restore the files changed by the last replace",
		Long: `Undo copies every backed up file of the last replace back into FOLDER,
which defaults to the folder that replace ran in. The backups are kept, so
undo can be repeated until the next replace.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			target := ""
			if len(args) == 1 {
				folder, err := folderArg(args, 0)
				if err != nil {
					return err
				}
				target = folder
			}

			op := &operation.UndoOperation{Engine: opts.Engine, Target: target}
			err := opts.Runner.Run(ctx, op)
			if errors.Is(err, backup.ErrNoBackup) {
				opts.UserLogger.LogValidation(false, "Nothing to undo", nil)
				return nil
			}
			if err != nil {
				return err
			}

			for _, path := range op.Restored {
				opts.Console.LogFileOperation(ctx, log.FileOperation{Path: path, Outcome: status.OutcomeRestored})
			}
			opts.UserLogger.LogValidation(true, fmt.Sprintf("Restored %d files", len(op.Restored)), nil)

			return nil
		},
	}

	return cmd
}
