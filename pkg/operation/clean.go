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
)

// 🧹 Discard drops the backup tree of the last replace. Undo fails afterwards.
func (e *Engine) Discard(ctx context.Context) error {
	if err := e.backups.Discard(ctx); err != nil {
		return errors.Errorf("discarding backup: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("root", e.backups.Root()).Msg("backup discarded")
	return nil
}

// 🧹 CleanOperation runs Engine.Discard
type CleanOperation struct {
	Engine *Engine
}

func (op *CleanOperation) Name() string { return "clean" }

func (op *CleanOperation) Execute(ctx context.Context) error {
	return op.Engine.Discard(ctx)
}
