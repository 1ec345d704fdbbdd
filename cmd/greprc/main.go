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
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/walteh/greprc/cmd/greprc/commands"
	"github.com/walteh/greprc/cmd/greprc/opts"
	"github.com/walteh/greprc/cmd/greprc/ui"
)

func main() {
	// SIGINT cancels the running command, replace keeps what it committed
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		ui.NewUserLogger(ctx, os.Stderr).LogValidation(false, "Command failed", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "greprc",
		Short: "Search and replace lines across the files of a folder",
		Long: `greprc searches or rewrites every matching line in the files of a folder.
A replace keeps a backup of each file it touches, so the last replace can be
undone with "greprc undo" until the next replace starts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging()
			ctx := logger.WithContext(cmd.Context())

			ctx, ro, err := newRootOpts(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			*rootOpts = *ro

			cmd.SetContext(ctx)
			return nil
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewSearchCmd(rootOpts),
		commands.NewReplaceCmd(rootOpts),
		commands.NewUndoCmd(rootOpts),
		commands.NewStatusCmd(rootOpts),
		commands.NewCleanCmd(rootOpts),
		newVersionCmd(),
	)

	return rootCmd
}
