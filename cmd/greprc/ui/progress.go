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

package ui

import (
	"context"
	"io"
	"sync"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/walteh/greprc/pkg/status"
)

// 📊 ProgressReporter drives a pterm progress bar from engine progress
type ProgressReporter struct {
	title string
	out   io.Writer

	mu  sync.Mutex
	bar *pterm.ProgressbarPrinter
}

var _ status.Reporter = (*ProgressReporter)(nil)

// 🏭 NewProgressReporter creates a reporter drawing to out
func NewProgressReporter(title string, out io.Writer) *ProgressReporter {
	return &ProgressReporter{title: title, out: out}
}

func (r *ProgressReporter) StartOperation(ctx context.Context, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if total <= 0 {
		return
	}
	// redrawn on every file; the elapsed time ticker would redraw concurrently
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(r.title).
		WithWriter(r.out).
		WithShowElapsedTime(false).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("starting progress bar")
		return
	}
	r.bar = bar
}

func (r *ProgressReporter) UpdateProgress(ctx context.Context, progress status.ProgressStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil {
		return
	}
	if delta := progress.ProcessedFiles - r.bar.Current; delta > 0 {
		r.bar.Add(delta)
	}
}

func (r *ProgressReporter) FinishOperation(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil {
		return
	}
	if _, err := r.bar.Stop(); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("stopping progress bar")
	}
	r.bar = nil
}

// Current returns the bar position, 0 when no operation is running
func (r *ProgressReporter) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar == nil {
		return 0
	}
	return r.bar.Current
}
