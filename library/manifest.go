// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package library

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Manifest records what the last build produced. It is written next to the
// store after every build and read back for the library summary.
type Manifest struct {
	BuildID      uuid.UUID `json:"build_id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Files        int       `json:"files"`
	FilesSkipped int       `json:"files_skipped"`
	FilesEmpty   int       `json:"files_empty"`
	Rows         int64     `json:"rows"`
	ShortLines   int64     `json:"short_lines"`
	Securities   int       `json:"securities"`
	StorePath    string    `json:"store_path"`
}

// NewManifest starts a manifest for a build beginning now.
func NewManifest() *Manifest {
	return &Manifest{
		BuildID:   uuid.New(),
		StartedAt: time.Now(),
	}
}

// SaveManifest writes the manifest artifact.
func (myLibrary *Library) SaveManifest(manifest *Manifest) error {
	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	if err := os.WriteFile(myLibrary.ManifestPath(), raw, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", myLibrary.ManifestPath(), err)
	}

	return nil
}

// LoadManifest reads the manifest of the last build. A library that has
// never been built has no manifest, which is reported as nil without error.
func (myLibrary *Library) LoadManifest() (*Manifest, error) {
	raw, err := os.ReadFile(myLibrary.ManifestPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading manifest %s: %w", myLibrary.ManifestPath(), err)
	}

	manifest := &Manifest{}
	if err := json.Unmarshal(raw, manifest); err != nil {
		return nil, fmt.Errorf("decoding manifest %s: %w", myLibrary.ManifestPath(), err)
	}

	return manifest, nil
}
