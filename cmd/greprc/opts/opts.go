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

package opts

import (
	"io"

	"github.com/walteh/greprc/cmd/greprc/ui"
	"github.com/walteh/greprc/pkg/config"
	"github.com/walteh/greprc/pkg/log"
	"github.com/walteh/greprc/pkg/operation"
)

// RootOpts holds the shared dependencies of every command. It is filled
// once the persistent flags are parsed.
type RootOpts struct {
	Config     *config.Config
	Engine     *operation.Engine
	Runner     *operation.OperationRunner
	UserLogger *ui.UserLogger
	Console    *log.Logger
	// Out receives command results, messages go to UserLogger
	Out io.Writer
}
