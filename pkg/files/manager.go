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

// Package files is the file system seam used by the search and replace
// engine. Everything that touches disk goes through FileManager so tests can
// inject failures at any step.
package files

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 💾 FileManager handles all file system operations
type FileManager interface {
	// Core operations
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Create(ctx context.Context, path string) (io.WriteCloser, error)
	Remove(ctx context.Context, path string) error
	Stat(ctx context.Context, path string) (fs.FileInfo, error)

	// Directory operations
	MkdirAll(ctx context.Context, path string) error
	RemoveAll(ctx context.Context, path string) error
	Walk(ctx context.Context, root string, fn fs.WalkDirFunc) error

	// Copy operations
	CopyFile(ctx context.Context, src, dst string) error
	CopyAttributes(ctx context.Context, src, dst string) error
}

// 🔧 Manager implements FileManager on the local file system
type Manager struct{}

var _ FileManager = (*Manager)(nil)

// 🏭 New creates a new file manager
func New() *Manager {
	return &Manager{}
}

func (m *Manager) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening file: %w", err)
	}
	return f, nil
}

// Create truncates or creates path for writing. The mode is owner-only until
// CopyAttributes runs.
func (m *Manager) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, errors.Errorf("creating file: %w", err)
	}
	return f, nil
}

func (m *Manager) Remove(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil {
		return errors.Errorf("deleting file: %w", err)
	}
	return nil
}

func (m *Manager) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Errorf("checking file: %w", err)
	}
	return info, nil
}

func (m *Manager) MkdirAll(ctx context.Context, path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errors.Errorf("creating directory: %w", err)
	}
	return nil
}

func (m *Manager) RemoveAll(ctx context.Context, path string) error {
	if err := os.RemoveAll(path); err != nil {
		return errors.Errorf("removing directory: %w", err)
	}
	return nil
}

func (m *Manager) Walk(ctx context.Context, root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		return fn(path, d, err)
	})
}

// CopyFile copies src to dst, creating parent directories and replacing any
// existing dst (read-only included), then copies src's attributes onto dst.
func (m *Manager) CopyFile(ctx context.Context, src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer srcFile.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Errorf("replacing destination file: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return errors.Errorf("copying file content: %w", err)
	}

	if err := dstFile.Close(); err != nil {
		return errors.Errorf("closing destination file: %w", err)
	}

	return m.CopyAttributes(ctx, src, dst)
}

// CopyAttributes copies permission bits and modification time from src to dst
func (m *Manager) CopyAttributes(ctx context.Context, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Errorf("reading attributes: %w", err)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.Errorf("setting permissions: %w", err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		// not every file system keeps times
		zerolog.Ctx(ctx).Debug().Err(err).Str("file", dst).Msg("could not copy timestamps")
	}

	return nil
}
