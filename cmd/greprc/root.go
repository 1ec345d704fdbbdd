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
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/greprc/cmd/greprc/opts"
	"github.com/walteh/greprc/cmd/greprc/ui"
	"github.com/walteh/greprc/pkg/backup"
	"github.com/walteh/greprc/pkg/config"
	"github.com/walteh/greprc/pkg/log"
	"github.com/walteh/greprc/pkg/operation"
)

var (
	// Flags
	configFile string
	debugLogs  bool
)

// newRootOpts loads the config and builds the engine every command shares.
// Results go to out, progress and messages to msgs. The returned context
// carries a logger at the configured level.
func newRootOpts(ctx context.Context, out, msgs io.Writer) (context.Context, *opts.RootOpts, error) {
	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return nil, nil, errors.Errorf("loading config: %w", err)
	}

	level := cfg.Level()
	if debugLogs {
		level = zerolog.DebugLevel
	}
	logger := zerolog.Ctx(ctx).Level(level)
	ctx = logger.WithContext(ctx)

	engine, err := operation.New(operation.Options{
		Fold:         cfg.FoldPolicy(),
		Backups:      backup.New(cfg.BackupDir, nil),
		Reporter:     ui.NewProgressReporter("greprc", msgs),
		Newline:      cfg.NewlinePolicy(),
		MaxLineBytes: cfg.MaxLineBytes,
	})
	if err != nil {
		return nil, nil, errors.Errorf("creating engine: %w", err)
	}

	return ctx, &opts.RootOpts{
		Config:     cfg,
		Engine:     engine,
		Runner:     operation.NewRunner(&logger, cfg.Async).OnCancel(engine.Cancel),
		UserLogger: ui.NewUserLogger(ctx, msgs),
		Console:    log.New(msgs, level),
		Out:        out,
	}, nil
}

func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultPath, "config file path")
	cmd.PersistentFlags().BoolVarP(&debugLogs, "debug", "d", false, "enable debug logging")
}

func setupLogging() zerolog.Logger {
	level := zerolog.InfoLevel
	if debugLogs {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger
}
