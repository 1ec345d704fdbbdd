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
	"github.com/walteh/greprc/pkg/log"
	"github.com/walteh/greprc/pkg/operation"
	"github.com/walteh/greprc/pkg/replace"
	"github.com/walteh/greprc/pkg/status"
)

// NewReplaceCmd creates the replace command
func NewReplaceCmd(opts *opts.RootOpts) *cobra.Command {
	var flags matchFlags

	cmd := &cobra.Command{
		Use:   "replace PATTERN REPLACEMENT [FOLDER]",
		Short: "Rewrite every line matching PATTERN",
		Long: `Replace rewrites the matching lines of every file in FOLDER (default ".")
that has at least one match, after backing each of them up. Files without a
match are never touched. The backups of the previous replace are dropped
first. On error the failing file is restored and the replace stops.
Interrupting keeps the files already finished, "greprc undo" reverts them.

In regex mode REPLACEMENT may reference groups as $1 or ${name}.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			mode, err := flags.resolve(opts.Config)
			if err != nil {
				return err
			}
			folder, err := folderArg(args, 2)
			if err != nil {
				return err
			}
			paths, err := Discover(ctx, folder, opts.Config.Include, opts.Config.Exclude)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				opts.UserLogger.LogStateChange("No files to replace in")
				return nil
			}

			// only files with a matching line are backed up and rewritten
			search := &operation.SearchOperation{
				Engine:  opts.Engine,
				Files:   paths,
				Pattern: args[0],
				Mode:    mode,
			}
			if err := opts.Runner.Run(ctx, search); err != nil {
				return err
			}
			if ctx.Err() != nil {
				opts.UserLogger.LogValidation(false, "Replace cancelled before any file was changed", nil)
				return nil
			}
			matched := make([]string, len(search.Results))
			for i, res := range search.Results {
				matched[i] = res.FilePath
			}
			if len(matched) == 0 {
				opts.UserLogger.LogStateChange(fmt.Sprintf("No matching lines in %d files, nothing to replace", len(paths)))
				return nil
			}

			opts.Console.StartRun(ctx, log.RunOperation{
				Name:        "replace",
				Folder:      folder,
				Pattern:     args[0],
				Replacement: args[1],
				Mode:        mode.String(),
			})

			op := &operation.ReplaceOperation{
				Engine: opts.Engine,
				Args: operation.ReplaceArgs{
					Files:       matched,
					BaseFolder:  folder,
					Pattern:     args[0],
					Replacement: args[1],
					Mode:        mode,
				},
			}
			runErr := opts.Runner.Run(ctx, op)

			if op.Outcome != nil {
				for _, f := range op.Outcome.Files {
					outcome := outcomeOf(f)
					if outcome == status.OutcomeUnchanged {
						continue
					}
					opts.Console.LogFileOperation(ctx, log.FileOperation{
						Path:    relPath(folder, f.Path),
						Outcome: outcome,
						Lines:   f.ReplacedLines,
						Err:     f.Err,
					})
				}
			}
			counts := opts.Console.EndRun(ctx)

			if runErr != nil && op.Outcome == nil {
				// the pattern was rejected before any file was touched
				return runErr
			}
			if runErr != nil {
				return errors.Errorf("replace aborted, the failing file was restored: %w", runErr)
			}

			switch op.Outcome.State {
			case replace.BatchCancelled:
				opts.Console.Warningf("cancelled after %d of %d files, run greprc undo to revert them", op.Outcome.Count(), len(matched))
			default:
				opts.Console.Successf("replaced %d lines in %d files (%d files searched)",
					op.Outcome.ReplacedLines(), counts[status.OutcomeReplaced], len(paths))
			}

			return nil
		},
	}

	flags.add(cmd)
	return cmd
}
