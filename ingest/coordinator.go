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

// Package ingest rebuilds the columnar quote store from the COTAHIST text
// files of a library. Builds are wholesale: the previous store is removed
// up front and every text file is decoded again, in lexicographic name
// order so that repeated builds lay rows down identically.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/quantbr/b3data/cotahist"
	"github.com/quantbr/b3data/library"
	"github.com/quantbr/b3data/store"
)

// writeError marks a store write failure so it is not mistaken for a
// readable-file problem: bad files are skipped, a broken store build is
// fatal.
type writeError struct {
	err error
}

func (w *writeError) Error() string {
	return w.err.Error()
}

func (w *writeError) Unwrap() error {
	return w.err
}

// Stats totals one build of the store.
type Stats struct {
	Files        int
	FilesSkipped int
	FilesEmpty   int
	Rows         int64
	ShortLines   int64
}

// Coordinator drives a store build. One coordinator runs one build at a
// time; the store is read-only for everyone else once Run returns.
type Coordinator struct {
	myLibrary *library.Library
	batchSize int64
	log       zerolog.Logger
}

func NewCoordinator(myLibrary *library.Library, batchSize int64, log zerolog.Logger) *Coordinator {
	if batchSize <= 0 {
		batchSize = store.DefaultBatchSize
	}

	return &Coordinator{
		myLibrary: myLibrary,
		batchSize: batchSize,
		log:       log,
	}
}

// Run rebuilds the store. Files that cannot be read are reported and
// skipped; decoding never fails a build. Run only returns an error when
// writing the store itself fails or the context is canceled. When no text
// file yields any row, no store file is left behind.
func (coordinator *Coordinator) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	storePath := coordinator.myLibrary.StorePath()

	if err := os.Remove(storePath); err == nil {
		coordinator.log.Info().Str("StoreFile", storePath).Msg("removed existing store")
	} else if !os.IsNotExist(err) {
		return stats, fmt.Errorf("removing existing store %s: %w", storePath, err)
	}

	files, err := listTextFiles(coordinator.myLibrary.TextsPath())
	if err != nil {
		return stats, err
	}

	if len(files) == 0 {
		coordinator.log.Warn().Str("TextsDir", coordinator.myLibrary.TextsPath()).
			Msg("no COTAHIST text files found")

		return stats, nil
	}

	writer := store.NewWriter(storePath, coordinator.batchSize)

	builder := store.NewBatchBuilder()
	defer builder.Release()

	for _, path := range files {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		start := time.Now()

		lines, short, err := coordinator.ingestFile(path, builder, writer)
		if err != nil {
			var wErr *writeError
			if errors.As(err, &wErr) {
				return stats, wErr.err
			}

			coordinator.log.Error().Err(err).Str("FileName", filepath.Base(path)).
				Msg("failed to read file, skipping")

			stats.FilesSkipped++

			continue
		}

		if lines == 0 {
			coordinator.log.Warn().Str("FileName", filepath.Base(path)).
				Msg("skipping file without content lines")

			stats.FilesEmpty++

			continue
		}

		stats.Files++
		stats.ShortLines += short

		coordinator.log.Info().Str("FileName", filepath.Base(path)).
			Int64("NumRecords", lines).
			Dur("Elapsed", time.Since(start)).
			Msg("ingested file")
	}

	if builder.Len() > 0 {
		if err := flush(builder, writer); err != nil {
			return stats, err
		}
	}

	rows, created, err := writer.Close()
	if err != nil {
		return stats, err
	}

	stats.Rows = rows

	if !created {
		coordinator.log.Warn().Msg("no rows decoded, store not written")

		return stats, nil
	}

	coordinator.log.Info().Int64("TotalRecords", rows).Int("NumFiles", stats.Files).
		Int("NumSkipped", stats.FilesSkipped).Int("NumEmpty", stats.FilesEmpty).
		Str("StoreFile", storePath).Msg("store build finished")

	return stats, nil
}

// ingestFile decodes one COTAHIST file into the shared batch builder,
// flushing whole batches as the bound is reached. Batches may span file
// boundaries. It reports content lines read and how many were shorter
// than a full record.
func (coordinator *Coordinator) ingestFile(path string, builder *store.BatchBuilder, writer *store.Writer) (int64, int64, error) {
	fh, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer fh.Close()

	var lines, short int64

	reader := cotahist.NewReader(fh)
	for reader.Next() {
		line := reader.Line()
		if utf8.RuneCountInString(line) < cotahist.LineLength {
			short++
		}

		builder.Append(cotahist.Decode(line))

		lines++

		if int64(builder.Len()) >= coordinator.batchSize {
			if err := flush(builder, writer); err != nil {
				return lines, short, &writeError{err: err}
			}
		}
	}

	if err := reader.Err(); err != nil {
		return lines, short, err
	}

	return lines, short, nil
}

func flush(builder *store.BatchBuilder, writer *store.Writer) error {
	rec := builder.NewRecord()
	defer rec.Release()

	return writer.Append(rec)
}

// listTextFiles returns the full paths of the library's COTAHIST text
// files in lexicographic name order.
func listTextFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing texts directory %s: %w", dir, err)
	}

	var files []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}
