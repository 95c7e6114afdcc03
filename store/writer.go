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
package store

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// DefaultBatchSize bounds how many quotes are held in memory before a batch
// is flushed into a parquet row group.
const DefaultBatchSize = 500_000

// Writer streams record batches into the store file. The file is created
// lazily on the first batch, so a build that produces no rows leaves no
// artifact behind. The schema of the first batch becomes the schema of the
// file and every later batch is coerced to it.
type Writer struct {
	path      string
	batchSize int64
	mem       memory.Allocator
	fw        *pqarrow.FileWriter
	schema    *arrow.Schema
	rows      int64
}

// NewWriter prepares a writer for the store file at path. Nothing touches
// the filesystem until the first Append.
func NewWriter(path string, batchSize int64) *Writer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Writer{
		path:      path,
		batchSize: batchSize,
		mem:       memory.NewGoAllocator(),
	}
}

// Append writes one record batch. Each batch lands in its own row group so
// the batch size bounds both memory use and row group length. An empty
// batch is a no-op.
func (writer *Writer) Append(rec arrow.Record) error {
	if rec.NumRows() == 0 {
		return nil
	}

	if writer.fw == nil {
		if err := writer.create(rec.Schema()); err != nil {
			return err
		}
	}

	out, cast, err := coerceRecord(rec, writer.schema, writer.mem)
	if err != nil {
		return err
	}

	if cast {
		defer out.Release()
	}

	if err := writer.fw.Write(out); err != nil {
		return fmt.Errorf("writing row group to %s: %w", writer.path, err)
	}

	writer.rows += rec.NumRows()

	return nil
}

// create opens the store file and pins the canonical schema.
func (writer *Writer) create(schema *arrow.Schema) error {
	fh, err := os.Create(writer.path)
	if err != nil {
		return fmt.Errorf("creating store file %s: %w", writer.path, err)
	}

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithDictionaryDefault(true),
		parquet.WithMaxRowGroupLength(writer.batchSize),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(writer.mem),
		pqarrow.WithStoreSchema(),
	)

	fw, err := pqarrow.NewFileWriter(schema, fh, props, arrowProps)
	if err != nil {
		fh.Close()

		return fmt.Errorf("creating parquet writer for %s: %w", writer.path, err)
	}

	writer.fw = fw
	writer.schema = schema

	return nil
}

// Rows reports how many rows have been appended so far.
func (writer *Writer) Rows() int64 {
	return writer.rows
}

// Close finalizes the store file. It reports the number of rows written and
// whether a file was created at all; closing the parquet writer also closes
// the underlying file.
func (writer *Writer) Close() (int64, bool, error) {
	if writer.fw == nil {
		return 0, false, nil
	}

	if err := writer.fw.Close(); err != nil {
		return writer.rows, true, fmt.Errorf("finalizing store file %s: %w", writer.path, err)
	}

	return writer.rows, true, nil
}
