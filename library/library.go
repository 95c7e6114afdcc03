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

// Package library lays out and keeps the books of a local market data
// library: where raw archives, extracted texts, the columnar store and the
// derived artifacts live under one data directory.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrMissingArtifact reports that an artifact another operation depends on
// has not been built yet. It is always wrapped with the artifact path.
var ErrMissingArtifact = errors.New("required artifact is missing")

// Artifact file names inside the library. They match the names other tools
// in the B3 ecosystem expect, so the Portuguese stays.
const (
	StoreFile          = "dados_b3.parquet"
	MasterFile         = "dicionario_ativos.parquet"
	MasterCSVFile      = "dicionario_ativos.csv"
	BDIDictFile        = "dicionario_codbdi.csv"
	MarketTypeDictFile = "dicionario_tpmerc.csv"
	ManifestFile       = "manifest.json"
)

// Library is a local quote history library rooted at DataDir.
type Library struct {
	Name    string `json:"name" toml:"name"`
	Owner   string `json:"owner" toml:"owner"`
	DataDir string `json:"data_dir" toml:"data_dir"`
}

// New returns a library rooted at dataDir.
func New(name, owner, dataDir string) *Library {
	return &Library{
		Name:    name,
		Owner:   owner,
		DataDir: dataDir,
	}
}

// RawPath is where downloaded COTAHIST zip archives go.
func (myLibrary *Library) RawPath() string {
	return filepath.Join(myLibrary.DataDir, "raw")
}

// TextsPath is where extracted COTAHIST text files go.
func (myLibrary *Library) TextsPath() string {
	return filepath.Join(myLibrary.DataDir, "texts")
}

// ProcessedPath is where the columnar store lives.
func (myLibrary *Library) ProcessedPath() string {
	return filepath.Join(myLibrary.DataDir, "processed")
}

// OutputsPath is where derived, human-facing artifacts live.
func (myLibrary *Library) OutputsPath() string {
	return filepath.Join(myLibrary.DataDir, "outputs")
}

func (myLibrary *Library) StorePath() string {
	return filepath.Join(myLibrary.ProcessedPath(), StoreFile)
}

func (myLibrary *Library) ManifestPath() string {
	return filepath.Join(myLibrary.ProcessedPath(), ManifestFile)
}

func (myLibrary *Library) MasterPath() string {
	return filepath.Join(myLibrary.OutputsPath(), MasterFile)
}

func (myLibrary *Library) MasterCSVPath() string {
	return filepath.Join(myLibrary.OutputsPath(), MasterCSVFile)
}

func (myLibrary *Library) BDIDictPath() string {
	return filepath.Join(myLibrary.OutputsPath(), BDIDictFile)
}

func (myLibrary *Library) MarketTypeDictPath() string {
	return filepath.Join(myLibrary.OutputsPath(), MarketTypeDictFile)
}

// EnsureDirs creates the library directory tree.
func (myLibrary *Library) EnsureDirs() error {
	dirs := []string{
		myLibrary.RawPath(),
		myLibrary.TextsPath(),
		myLibrary.ProcessedPath(),
		myLibrary.OutputsPath(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating library directory %s: %w", dir, err)
		}
	}

	return nil
}
