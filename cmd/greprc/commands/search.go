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

	"github.com/walteh/greprc/cmd/greprc/opts"
	"github.com/walteh/greprc/cmd/greprc/ui"
	"github.com/walteh/greprc/pkg/operation"
)

// NewSearchCmd creates the search command
func NewSearchCmd(opts *opts.RootOpts) *cobra.Command {
	var flags matchFlags

	cmd := &cobra.Command{
		Use:   "search PATTERN [FOLDER]",
		Short: "Print every line matching PATTERN",
		Long: `Search reads the files of FOLDER (default ".") selected by the include
and exclude globs of the config and prints each matching line as
path:line: text. Files that cannot be read are skipped.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			mode, err := flags.resolve(opts.Config)
			if err != nil {
				return err
			}
			folder, err := folderArg(args, 1)
			if err != nil {
				return err
			}
			paths, err := Discover(ctx, folder, opts.Config.Include, opts.Config.Exclude)
			if err != nil {
				return err
			}

			op := &operation.SearchOperation{
				Engine:  opts.Engine,
				Files:   paths,
				Pattern: args[0],
				Mode:    mode,
			}
			if err := opts.Runner.Run(ctx, op); err != nil {
				return err
			}

			lines := 0
			for _, res := range op.Results {
				rel := relPath(folder, res.FilePath)
				for _, m := range res.Lines {
					fmt.Fprintln(opts.Out, ui.FormatMatch(rel, m))
					lines++
				}
			}

			if ctx.Err() != nil {
				opts.UserLogger.LogValidation(false, "Search cancelled, results are partial", nil)
			}
			opts.UserLogger.LogStateChange(fmt.Sprintf("%d matching lines in %d of %d files", lines, len(op.Results), len(paths)))

			return nil
		},
	}

	flags.add(cmd)
	return cmd
}
