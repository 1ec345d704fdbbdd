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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/greprc/pkg/backup"
	"github.com/walteh/greprc/pkg/match"
	"github.com/walteh/greprc/pkg/replace"
	"github.com/walteh/greprc/pkg/scan"
)

// DefaultPath is the config file looked up when none is given
const DefaultPath = ".greprc.yaml"

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// 📚 Config holds the settings shared by every command. All fields are
// optional; Validate fills in defaults.
type Config struct {
	Mode         string   `json:"mode,omitempty" yaml:"mode,omitempty"`                     // text, text-insensitive or regex
	CaseFolding  string   `json:"case_folding,omitempty" yaml:"case_folding,omitempty"`     // simple or unicode
	Newline      string   `json:"newline,omitempty" yaml:"newline,omitempty"`               // auto, lf or crlf
	BackupDir    string   `json:"backup_dir,omitempty" yaml:"backup_dir,omitempty"`         // where the undo tree lives
	MaxLineBytes int      `json:"max_line_bytes,omitempty" yaml:"max_line_bytes,omitempty"` // longest readable line
	Include      []string `json:"include,omitempty" yaml:"include,omitempty"`               // globs of files to visit
	Exclude      []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`               // globs of files to skip
	LogLevel     string   `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	Async        bool     `json:"async,omitempty" yaml:"async,omitempty"` // run operations next to a cancel watcher

	location string
}

// Default returns a validated config with every default applied
func Default() *Config {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// 🎯 Load loads the configuration from a file. A missing file is not an
// error: the defaults are returned.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug().Str("path", path).Msg("no config file, using defaults")
		return Default(), nil
	}
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks every field and normalizes it in place
func (cfg *Config) Validate() error {
	mode, err := match.ParseMode(cfg.Mode)
	if err != nil {
		return errors.Errorf("mode: %w", err)
	}
	cfg.Mode = mode.String()

	fold, err := match.ParseFoldPolicy(cfg.CaseFolding)
	if err != nil {
		return errors.Errorf("case_folding: %w", err)
	}
	cfg.CaseFolding = fold.String()

	newline, err := replace.ParseNewline(cfg.Newline)
	if err != nil {
		return errors.Errorf("newline: %w", err)
	}
	cfg.Newline = newline.String()

	if cfg.BackupDir == "" {
		cfg.BackupDir = backup.DefaultRoot()
	}
	cfg.BackupDir = filepath.Clean(cfg.BackupDir)

	switch {
	case cfg.MaxLineBytes < 0:
		return errors.Errorf("max_line_bytes must not be negative, got %d", cfg.MaxLineBytes)
	case cfg.MaxLineBytes == 0:
		cfg.MaxLineBytes = scan.DefaultMaxLineBytes
	}

	if len(cfg.Include) == 0 {
		cfg.Include = []string{"**"}
	}
	// an explicit empty list keeps .git in scope
	if cfg.Exclude == nil {
		cfg.Exclude = []string{".git/**"}
	}
	for _, glob := range append(append([]string{}, cfg.Include...), cfg.Exclude...) {
		if !doublestar.ValidatePattern(glob) {
			return errors.Errorf("invalid glob %q", glob)
		}
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = zerolog.InfoLevel.String()
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return errors.Errorf("log_level: %w", err)
	}
	cfg.LogLevel = level.String()

	return nil
}

// MatchMode returns the parsed mode, ModeTextCaseSensitive when unset
func (cfg *Config) MatchMode() match.Mode {
	mode, _ := match.ParseMode(cfg.Mode)
	return mode
}

// FoldPolicy returns the parsed case folding policy
func (cfg *Config) FoldPolicy() match.FoldPolicy {
	fold, _ := match.ParseFoldPolicy(cfg.CaseFolding)
	return fold
}

// NewlinePolicy returns the parsed newline policy
func (cfg *Config) NewlinePolicy() replace.Newline {
	newline, _ := replace.ParseNewline(cfg.Newline)
	return newline
}

// Level returns the parsed log level, info when unset or invalid
func (cfg *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return level
}

// Location returns the file the config was loaded from, "" for defaults
func (cfg *Config) Location() string {
	return cfg.location
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("mode=%s folding=%s newline=%s backup=%s include=%v exclude=%v",
		cfg.Mode, cfg.CaseFolding, cfg.Newline, cfg.BackupDir, cfg.Include, cfg.Exclude)
}
