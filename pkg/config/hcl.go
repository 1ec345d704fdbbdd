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

package config

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files. Expressions
// can read the environment through env, as in "${env.HOME}/.undo".
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return hasExt(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "greprc.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": environment(),
		},
	}

	type hclConfig struct {
		Mode         string   `hcl:"mode,optional"`
		CaseFolding  string   `hcl:"case_folding,optional"`
		Newline      string   `hcl:"newline,optional"`
		BackupDir    string   `hcl:"backup_dir,optional"`
		MaxLineBytes int      `hcl:"max_line_bytes,optional"`
		Include      []string `hcl:"include,optional"`
		Exclude      []string `hcl:"exclude,optional"`
		LogLevel     string   `hcl:"log_level,optional"`
		Async        bool     `hcl:"async,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &Config{
		Mode:         hclCfg.Mode,
		CaseFolding:  hclCfg.CaseFolding,
		Newline:      hclCfg.Newline,
		BackupDir:    hclCfg.BackupDir,
		MaxLineBytes: hclCfg.MaxLineBytes,
		Include:      hclCfg.Include,
		Exclude:      hclCfg.Exclude,
		LogLevel:     hclCfg.LogLevel,
		Async:        hclCfg.Async,
	}, nil
}

// environment exposes the process environment as a map of strings
func environment() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	if len(vars) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	return cty.MapVal(vars)
}
