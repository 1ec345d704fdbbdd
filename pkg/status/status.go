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

package status

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// 📊 ProgressStatus is emitted after each file is fully handled
type ProgressStatus struct {
	TotalFiles     int
	ProcessedFiles int
}

// Done reports whether every file of the batch was handled
func (p ProgressStatus) Done() bool {
	return p.ProcessedFiles >= p.TotalFiles
}

// 📈 Reporter receives progress notifications
type Reporter interface {
	StartOperation(ctx context.Context, total int)
	UpdateProgress(ctx context.Context, progress ProgressStatus)
	FinishOperation(ctx context.Context)
}

// 🔇 Nop discards every notification
type Nop struct{}

func (Nop) StartOperation(context.Context, int)            {}
func (Nop) UpdateProgress(context.Context, ProgressStatus) {}
func (Nop) FinishOperation(context.Context)                {}

// 🪝 ReporterFunc adapts a plain callback to Reporter. Only UpdateProgress
// reaches the callback.
type ReporterFunc func(ctx context.Context, progress ProgressStatus)

func (f ReporterFunc) StartOperation(context.Context, int) {}

func (f ReporterFunc) UpdateProgress(ctx context.Context, progress ProgressStatus) {
	f(ctx, progress)
}

func (f ReporterFunc) FinishOperation(context.Context) {}

// 📝 LogReporter writes progress to the context logger
type LogReporter struct {
	formatter FileFormatter

	mu        sync.Mutex
	total     int
	processed int
}

// NewLogReporter creates a reporter logging through zerolog.Ctx
func NewLogReporter(formatter FileFormatter) *LogReporter {
	if formatter == nil {
		formatter = NewDefaultFileFormatter()
	}
	return &LogReporter{formatter: formatter}
}

func (r *LogReporter) StartOperation(ctx context.Context, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = total
	r.processed = 0
	zerolog.Ctx(ctx).Info().Int("total", total).Msg(r.formatter.FormatProgress(0, total))
}

func (r *LogReporter) UpdateProgress(ctx context.Context, progress ProgressStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = progress.TotalFiles
	r.processed = progress.ProcessedFiles
	zerolog.Ctx(ctx).Debug().
		Int("processed", progress.ProcessedFiles).
		Int("total", progress.TotalFiles).
		Msg(r.formatter.FormatProgress(progress.ProcessedFiles, progress.TotalFiles))
}

func (r *LogReporter) FinishOperation(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	zerolog.Ctx(ctx).Info().
		Int("processed", r.processed).
		Int("total", r.total).
		Msg(r.formatter.FormatProgress(r.processed, r.total))
}

// Last returns the most recent progress seen
func (r *LogReporter) Last() ProgressStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ProgressStatus{TotalFiles: r.total, ProcessedFiles: r.processed}
}

// 🔀 Multi fans notifications out to several reporters in order
type Multi []Reporter

func (m Multi) StartOperation(ctx context.Context, total int) {
	for _, r := range m {
		r.StartOperation(ctx, total)
	}
}

func (m Multi) UpdateProgress(ctx context.Context, progress ProgressStatus) {
	for _, r := range m {
		r.UpdateProgress(ctx, progress)
	}
}

func (m Multi) FinishOperation(ctx context.Context) {
	for _, r := range m {
		r.FinishOperation(ctx)
	}
}

// OrNop returns r, or Nop when r is nil
func OrNop(r Reporter) Reporter {
	if r == nil {
		return Nop{}
	}
	return r
}
