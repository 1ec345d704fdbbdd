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

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🏃 OperationRunner executes operations
type OperationRunner struct {
	logger   *zerolog.Logger
	async    bool
	onCancel func()
}

// 🏗️ NewRunner creates a new runner
func NewRunner(logger *zerolog.Logger, async bool) *OperationRunner {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &OperationRunner{
		logger: logger,
		async:  async,
	}
}

// OnCancel registers fn to run once when the context of an async run is
// cancelled while the operation is still going
func (r *OperationRunner) OnCancel(fn func()) *OperationRunner {
	r.onCancel = fn
	return r
}

// 🏃 Run executes an operation. It always waits for the operation to return,
// even after ctx is cancelled, so a replace can finish its rollback.
func (r *OperationRunner) Run(ctx context.Context, op Operation) error {
	if r.async {
		return r.runAsync(ctx, op)
	}
	return r.runSync(ctx, op)
}

// 🔄 runSync runs an operation synchronously
func (r *OperationRunner) runSync(ctx context.Context, op Operation) error {
	if err := op.Execute(ctx); err != nil {
		return errors.Errorf("executing %s: %w", op.Name(), err)
	}
	return nil
}

// ⚡ runAsync runs the operation next to a watcher that fires onCancel
func (r *OperationRunner) runAsync(ctx context.Context, op Operation) error {
	var g errgroup.Group
	done := make(chan struct{})

	g.Go(func() error {
		defer close(done)
		if err := op.Execute(ctx); err != nil {
			return errors.Errorf("executing %s: %w", op.Name(), err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-done:
		case <-ctx.Done():
			r.logger.Warn().Str("operation", op.Name()).Msg("cancelling, waiting for the operation to stop")
			if r.onCancel != nil {
				r.onCancel()
			}
		}
		return nil
	})

	return g.Wait()
}
