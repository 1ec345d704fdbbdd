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

	"github.com/walteh/greprc/pkg/match"
	"github.com/walteh/greprc/pkg/replace"
	"github.com/walteh/greprc/pkg/scan"
)

// 🎯 Operation is one unit of work handed to an OperationRunner
type Operation interface {
	Name() string
	Execute(ctx context.Context) error
}

// 🔍 SearchOperation runs Engine.Search and keeps the results
type SearchOperation struct {
	Engine  *Engine
	Files   []string
	Pattern string
	Mode    match.Mode

	Results []scan.SearchResult
}

func (op *SearchOperation) Name() string { return "search" }

func (op *SearchOperation) Execute(ctx context.Context) error {
	results, err := op.Engine.Search(ctx, op.Files, op.Pattern, op.Mode)
	op.Results = results
	return err
}

// 🔁 ReplaceOperation runs Engine.ReplaceOutcome and keeps the outcome
type ReplaceOperation struct {
	Engine *Engine
	Args   ReplaceArgs

	Outcome *replace.Outcome
}

func (op *ReplaceOperation) Name() string { return "replace" }

func (op *ReplaceOperation) Execute(ctx context.Context) error {
	out, err := op.Engine.ReplaceOutcome(ctx, op.Args)
	op.Outcome = out
	return err
}

// ⏪ UndoOperation runs Engine.Restore and keeps the restored paths
type UndoOperation struct {
	Engine *Engine
	// Target defaults to the base folder of the last replace
	Target string

	Restored []string
}

func (op *UndoOperation) Name() string { return "undo" }

func (op *UndoOperation) Execute(ctx context.Context) error {
	restored, err := op.Engine.Restore(ctx, op.Target)
	op.Restored = restored
	return err
}
