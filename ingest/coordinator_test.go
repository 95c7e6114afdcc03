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
package ingest_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbr/b3data/data"
	"github.com/quantbr/b3data/ingest"
	"github.com/quantbr/b3data/library"
	"github.com/quantbr/b3data/store"
)

// contentLine lays a minimal record into the fixed COTAHIST positions:
// date at 3-10, BDI at 11-12, ticker at 13-24, market at 25-27 and ISIN at
// 231-242.
func contentLine(yyyymmdd, bdi, ticker, market, isin string) string {
	line := []byte(strings.Repeat(" ", 245))

	place := func(start int, value string) {
		copy(line[start-1:], value)
	}

	place(1, "01")
	place(3, yyyymmdd)
	place(11, bdi)
	place(13, ticker)
	place(25, market)
	place(231, isin)

	return string(line)
}

func writeTextFile(t *testing.T, dir, name string, lines ...string) {
	t.Helper()

	content := "00COTAHIST HEADER\n"
	for _, line := range lines {
		content += line + "\n"
	}
	content += "99COTAHIST TRAILER\n"

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestLibrary(t *testing.T) *library.Library {
	t.Helper()

	myLibrary := library.New("test", "tester", t.TempDir())
	require.NoError(t, myLibrary.EnsureDirs())

	return myLibrary
}

func scanTickers(t *testing.T, path string) []string {
	t.Helper()

	quotes, err := store.Scan(context.Background(), path, []string{data.ColTicker}, nil)
	require.NoError(t, err)

	tickers := make([]string, 0, len(quotes))
	for _, quote := range quotes {
		tickers = append(tickers, quote.TickerValue())
	}

	return tickers
}

func TestRunIngestsFilesInNameOrder(t *testing.T) {
	myLibrary := newTestLibrary(t)

	// written out of order on purpose; the build must sort by name
	writeTextFile(t, myLibrary.TextsPath(), "COTAHIST_A2024.TXT",
		contentLine("20240102", "02", "VALE3", "010", "BRVALEACNOR0"))
	writeTextFile(t, myLibrary.TextsPath(), "COTAHIST_A2023.TXT",
		contentLine("20230102", "02", "PETR4", "010", "BRPETRACNPR6"),
		contentLine("20230103", "02", "PETR4", "010", "BRPETRACNPR6"))

	coordinator := ingest.NewCoordinator(myLibrary, 100, zerolog.Nop())

	stats, err := coordinator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, int64(3), stats.Rows)
	assert.Zero(t, stats.FilesSkipped)

	tickers := scanTickers(t, myLibrary.StorePath())
	assert.Equal(t, []string{"PETR4", "PETR4", "VALE3"}, tickers,
		"2023 rows must land before 2024 rows")
}

func TestRunIsIdempotent(t *testing.T) {
	myLibrary := newTestLibrary(t)

	writeTextFile(t, myLibrary.TextsPath(), "COTAHIST_A2024.TXT",
		contentLine("20240102", "02", "PETR4", "010", "BRPETRACNPR6"),
		contentLine("20240102", "02", "VALE3", "010", "BRVALEACNOR0"))

	coordinator := ingest.NewCoordinator(myLibrary, 100, zerolog.Nop())

	_, err := coordinator.Run(context.Background())
	require.NoError(t, err)
	first := scanTickers(t, myLibrary.StorePath())

	_, err = coordinator.Run(context.Background())
	require.NoError(t, err)
	second := scanTickers(t, myLibrary.StorePath())

	assert.Equal(t, first, second)
}

func TestRunSkipsEmptyFiles(t *testing.T) {
	myLibrary := newTestLibrary(t)

	writeTextFile(t, myLibrary.TextsPath(), "COTAHIST_A2023.TXT")
	writeTextFile(t, myLibrary.TextsPath(), "COTAHIST_A2024.TXT",
		contentLine("20240102", "02", "PETR4", "010", "BRPETRACNPR6"))

	var buf bytes.Buffer
	coordinator := ingest.NewCoordinator(myLibrary, 100, zerolog.New(&buf))

	stats, err := coordinator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 1, stats.FilesEmpty)
	assert.Equal(t, int64(1), stats.Rows)

	var sawSkip bool
	for _, raw := range bytes.Split(buf.Bytes(), []byte("\n")) {
		if len(raw) == 0 {
			continue
		}

		event := map[string]any{}
		require.NoError(t, json.Unmarshal(raw, &event))

		if event["message"] == "skipping file without content lines" {
			sawSkip = true
			assert.Equal(t, "COTAHIST_A2023.TXT", event["FileName"])
			assert.Equal(t, "warn", event["level"])
		}
	}

	assert.True(t, sawSkip, "the empty file must be reported")
}

func TestRunWithoutFilesLeavesNoStore(t *testing.T) {
	myLibrary := newTestLibrary(t)

	// a stale store from an earlier build must go away even when there is
	// nothing to ingest
	require.NoError(t, os.WriteFile(myLibrary.StorePath(), []byte("stale"), 0o644))

	coordinator := ingest.NewCoordinator(myLibrary, 100, zerolog.Nop())

	stats, err := coordinator.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.Rows)

	_, statErr := os.Stat(myLibrary.StorePath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunBatchesSpanFiles(t *testing.T) {
	myLibrary := newTestLibrary(t)

	writeTextFile(t, myLibrary.TextsPath(), "COTAHIST_A2023.TXT",
		contentLine("20230102", "02", "PETR4", "010", "BRPETRACNPR6"),
		contentLine("20230103", "02", "PETR4", "010", "BRPETRACNPR6"),
		contentLine("20230104", "02", "PETR4", "010", "BRPETRACNPR6"))
	writeTextFile(t, myLibrary.TextsPath(), "COTAHIST_A2024.TXT",
		contentLine("20240102", "02", "PETR4", "010", "BRPETRACNPR6"),
		contentLine("20240103", "02", "PETR4", "010", "BRPETRACNPR6"))

	coordinator := ingest.NewCoordinator(myLibrary, 2, zerolog.Nop())

	stats, err := coordinator.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(5), stats.Rows)

	rdr, err := file.OpenParquetFile(myLibrary.StorePath(), false)
	require.NoError(t, err)
	defer rdr.Close()

	// 5 rows at batch size 2: two full batches, one final flush
	assert.Equal(t, 3, rdr.NumRowGroups())
	assert.Equal(t, int64(5), rdr.NumRows())
}

func TestRunCountsShortLines(t *testing.T) {
	myLibrary := newTestLibrary(t)

	full := contentLine("20240102", "02", "PETR4", "010", "BRPETRACNPR6")
	writeTextFile(t, myLibrary.TextsPath(), "COTAHIST_A2024.TXT", full, full[:100])

	coordinator := ingest.NewCoordinator(myLibrary, 100, zerolog.Nop())

	stats, err := coordinator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Rows, "short lines are still ingested")
	assert.Equal(t, int64(1), stats.ShortLines)
}
