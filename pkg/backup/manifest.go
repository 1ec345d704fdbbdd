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

package backup

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"
)

// ManifestSuffix is appended to the tree root to name the manifest file.
// The manifest sits next to the tree, so no user file can collide with it.
const ManifestSuffix = ".manifest.json"

// 📋 Manifest describes the replace that produced the backup tree
type Manifest struct {
	ID          uuid.UUID      `json:"id"`
	BaseFolder  string         `json:"base_folder"`
	Pattern     string         `json:"pattern"`
	Replacement string         `json:"replacement"`
	Mode        string         `json:"mode"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`
	State       string         `json:"state"`
	Files       []ManifestFile `json:"files"`
}

// ManifestFile is one file touched by the replace
type ManifestFile struct {
	Path          string `json:"path"`
	Backup        string `json:"backup"`
	State         string `json:"state"`
	ReplacedLines int    `json:"replaced_lines"`
}

// NewManifest starts a manifest with a fresh id
func NewManifest(baseFolder, pattern, replacement, mode string) *Manifest {
	return &Manifest{
		ID:          uuid.New(),
		BaseFolder:  baseFolder,
		Pattern:     pattern,
		Replacement: replacement,
		Mode:        mode,
		StartedAt:   time.Now().UTC(),
		Files:       []ManifestFile{},
	}
}

// ManifestPath returns where the manifest of the tree is stored
func (s *Store) ManifestPath() string {
	return s.root + ManifestSuffix
}

// WriteManifest stores m next to the tree
func (s *Store) WriteManifest(ctx context.Context, m *Manifest) error {
	w, err := s.fm.Create(ctx, s.ManifestPath())
	if err != nil {
		return errors.Errorf("creating manifest: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		w.Close()
		return errors.Errorf("encoding manifest: %w", err)
	}
	if err := w.Close(); err != nil {
		return errors.Errorf("closing manifest: %w", err)
	}
	return nil
}

// ReadManifest loads the manifest; ErrNoBackup when there is no tree
func (s *Store) ReadManifest(ctx context.Context) (*Manifest, error) {
	if !s.Exists(ctx) {
		return nil, ErrNoBackup
	}

	r, err := s.fm.Open(ctx, s.ManifestPath())
	if err != nil {
		return nil, errors.Errorf("opening manifest: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
