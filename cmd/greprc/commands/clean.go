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
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/greprc/cmd/greprc/opts"
	"github.com/walteh/greprc/pkg/operation"
)

// NewCleanCmd creates the clean command
func NewCleanCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Discard the backups of the last replace",
		Long:  `Clean removes the backup folder. Nothing can be undone afterwards.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := opts.Runner.Run(ctx, &operation.CleanOperation{Engine: opts.Engine}); err != nil {
				return errors.Errorf("cleaning backups: %w", err)
			}

			opts.UserLogger.LogStateChange("Backups discarded, nothing left to undo")
			return nil
		},
	}

	return cmd
}
