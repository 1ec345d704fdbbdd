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

// Package backup owns the single backup tree that makes a replace undoable.
//
// The tree mirrors the replace's base folder under one fixed directory in the
// system temp location. Starting a new replace wipes it, so only the most
// recent replace can be undone, and two replaces running at once share it.
package backup

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/greprc/pkg/files"
)

// DirName is the backup directory created under os.TempDir()
const DirName = "greprc"

var (
	// ErrNoBackup means there is no backup tree to restore from
	ErrNoBackup = errors.Base("no backup to restore")
	// ErrOutsideBase means a file cannot be mapped into the backup tree
	ErrOutsideBase = errors.Base("file is outside the base folder")
)

// DefaultRoot returns the fixed backup location
func DefaultRoot() string {
	return filepath.Join(os.TempDir(), DirName)
}

// 🗄️ Store manages the backup tree
type Store struct {
	root string
	fm   files.FileManager
}

// 🏭 New creates a store rooted at root (DefaultRoot when empty)
func New(root string, fm files.FileManager) *Store {
	if root == "" {
		root = DefaultRoot()
	}
	if fm == nil {
		fm = files.New()
	}
	return &Store{root: filepath.Clean(root), fm: fm}
}

// Root returns the backup tree directory
func (s *Store) Root() string {
	return s.root
}

// Exists reports whether a backup tree is present
func (s *Store) Exists(ctx context.Context) bool {
	info, err := s.fm.Stat(ctx, s.root)
	return err == nil && info.IsDir()
}

// Reset destroys any existing tree and creates an empty one. Whatever was
// undoable before is gone afterwards.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.Discard(ctx); err != nil {
		return errors.Errorf("removing previous backup: %w", err)
	}
	if err := s.fm.MkdirAll(ctx, s.root); err != nil {
		return errors.Errorf("creating backup directory: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("root", s.root).Msg("backup tree reset")
	return nil
}

// Discard removes the tree; nothing can be undone afterwards
func (s *Store) Discard(ctx context.Context) error {
	if err := s.fm.RemoveAll(ctx, s.root); err != nil {
		return errors.Errorf("removing backup: %w", err)
	}
	if err := s.fm.RemoveAll(ctx, s.ManifestPath()); err != nil {
		return errors.Errorf("removing manifest: %w", err)
	}
	return nil
}

// PathFor maps file, which must live under base, into the tree
func (s *Store) PathFor(base, file string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", errors.Errorf("resolving base folder: %w", err)
	}
	absFile, err := filepath.Abs(file)
	if err != nil {
		return "", errors.Errorf("resolving file: %w", err)
	}

	rel, err := filepath.Rel(absBase, absFile)
	if err != nil {
		return "", errors.Errorf("%s: %w", file, ErrOutsideBase)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", errors.Errorf("%s: %w", file, ErrOutsideBase)
	}

	return filepath.Join(s.root, rel), nil
}

// Backup copies file into the tree, overwriting an older copy, and returns
// the backup path
func (s *Store) Backup(ctx context.Context, base, file string) (string, error) {
	backupPath, err := s.PathFor(base, file)
	if err != nil {
		return "", err
	}
	if err := s.fm.CopyFile(ctx, file, backupPath); err != nil {
		return "", errors.Errorf("backing up %s: %w", file, err)
	}
	return backupPath, nil
}

// Restore replaces whatever is at file with its backup
func (s *Store) Restore(ctx context.Context, backupPath, file string) error {
	if err := s.fm.CopyFile(ctx, backupPath, file); err != nil {
		return errors.Errorf("restoring %s: %w", file, err)
	}
	return nil
}

// RestoreAll copies every backed up file onto the same relative path under
// target. Files that were never backed up are left alone. The first failure
// stops the restore and nothing already restored is undone; the paths
// restored so far are returned either way.
func (s *Store) RestoreAll(ctx context.Context, target string) ([]string, error) {
	if !s.Exists(ctx) {
		return nil, ErrNoBackup
	}

	logger := zerolog.Ctx(ctx)
	var restored []string

	err := s.fm.Walk(ctx, s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return errors.Errorf("resolving backup path: %w", err)
		}
		dst := filepath.Join(target, rel)
		if err := s.fm.CopyFile(ctx, path, dst); err != nil {
			return errors.Errorf("restoring %s: %w", dst, err)
		}

		logger.Debug().Str("file", dst).Msg("restored")
		restored = append(restored, dst)
		return nil
	})
	if err != nil {
		return restored, err
	}

	return restored, nil
}
