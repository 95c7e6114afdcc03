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

// Package archive unpacks the downloaded COTAHIST bundles. B3 ships one
// zip per year or month with a single text file inside, but member names
// vary across decades, so extraction flattens paths and normalizes the
// text extension.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Stats counts what one extraction pass did.
type Stats struct {
	Archives int
	Skipped  int
	Files    int
}

// Extract unpacks every zip archive in rawDir into textsDir. Members are
// written flat under their base name, gaining a .TXT suffix when they do
// not already carry one. An unreadable or non-zip archive is reported and
// skipped, never fatal to the pass.
func Extract(rawDir, textsDir string, log zerolog.Logger) (Stats, error) {
	var stats Stats

	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return stats, fmt.Errorf("listing raw directory %s: %w", rawDir, err)
	}

	var archives []string

	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".zip") {
			archives = append(archives, entry.Name())
		}
	}

	if len(archives) == 0 {
		log.Warn().Str("RawDir", rawDir).Msg("no archives to extract")

		return stats, nil
	}

	if err := os.MkdirAll(textsDir, 0o755); err != nil {
		return stats, fmt.Errorf("creating texts directory %s: %w", textsDir, err)
	}

	for _, name := range archives {
		path := filepath.Join(rawDir, name)

		files, err := extractArchive(path, textsDir)
		stats.Files += files

		if err != nil {
			stats.Skipped++

			log.Error().Err(err).Str("FileName", name).Msg("failed to extract archive, skipping")

			continue
		}

		stats.Archives++

		log.Info().Str("FileName", name).Int("NumFiles", files).Msg("extracted archive")
	}

	log.Info().Int("NumArchives", stats.Archives).
		Int("NumSkipped", stats.Skipped).
		Int("NumFiles", stats.Files).
		Msg("archive extraction finished")

	return stats, nil
}

func extractArchive(path, textsDir string) (int, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return 0, fmt.Errorf("opening archive: %w", err)
	}
	defer zr.Close()

	files := 0

	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}

		if err := extractMember(member, textsDir); err != nil {
			return files, fmt.Errorf("member %s: %w", member.Name, err)
		}

		files++
	}

	return files, nil
}

func extractMember(member *zip.File, textsDir string) error {
	name := filepath.Base(member.Name)
	if !strings.HasSuffix(strings.ToLower(name), ".txt") {
		name += ".TXT"
	}

	src, err := member.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(textsDir, name))
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()

		return err
	}

	return dst.Close()
}
