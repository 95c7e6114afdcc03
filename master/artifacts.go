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
package master

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/gocarina/gocsv"

	"github.com/quantbr/b3data/data"
	"github.com/quantbr/b3data/library"
)

func masterSchema() *arrow.Schema {
	names := []string{colISIN, colLastTicker, colLastName, colLastSpec, colTickerHistory, colNameHistory}

	fields := make([]arrow.Field, len(names))
	for idx, name := range names {
		fields[idx] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}

	return arrow.NewSchema(fields, nil)
}

func writeParquet(path string, securities []*data.Security) error {
	mem := memory.NewGoAllocator()
	schema := masterSchema()

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for _, security := range securities {
		builder.Field(0).(*array.StringBuilder).Append(security.ISIN)
		builder.Field(1).(*array.StringBuilder).Append(security.LastTicker)
		builder.Field(2).(*array.StringBuilder).Append(security.LastName)
		builder.Field(3).(*array.StringBuilder).Append(security.LastSpec)
		builder.Field(4).(*array.StringBuilder).Append(security.TickerHistory)
		builder.Field(5).(*array.StringBuilder).Append(security.NameHistory)
	}

	rec := builder.NewRecord()
	defer rec.Release()

	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating master file %s: %w", path, err)
	}

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithDictionaryDefault(true),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(mem),
		pqarrow.WithStoreSchema(),
	)

	fw, err := pqarrow.NewFileWriter(schema, fh, props, arrowProps)
	if err != nil {
		fh.Close()

		return fmt.Errorf("creating master writer for %s: %w", path, err)
	}

	if err := fw.Write(rec); err != nil {
		fw.Close()

		return fmt.Errorf("writing master %s: %w", path, err)
	}

	if err := fw.Close(); err != nil {
		return fmt.Errorf("finalizing master %s: %w", path, err)
	}

	return nil
}

func writeCSV(path string, securities []*data.Security) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating master spreadsheet %s: %w", path, err)
	}
	defer fh.Close()

	if err := gocsv.MarshalFile(&securities, fh); err != nil {
		return fmt.Errorf("writing master spreadsheet %s: %w", path, err)
	}

	return nil
}

// Load reads the compact master artifact back for the query engine. A
// master that has not been built is a missing precondition.
func Load(ctx context.Context, myLibrary *library.Library) ([]*data.Security, error) {
	path := myLibrary.MasterPath()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", library.ErrMissingArtifact, path)
		}

		return nil, fmt.Errorf("checking master %s: %w", path, err)
	}

	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening master %s: %w", path, err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("reading master %s: %w", path, err)
	}

	rr, err := fr.GetRecordReader(ctx, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("reading master %s: %w", path, err)
	}
	defer rr.Release()

	var securities []*data.Security

	for rr.Next() {
		rec := rr.Record()

		cols := make(map[string]*array.String, rec.NumCols())
		for idx, field := range rec.Schema().Fields() {
			if col, ok := rec.Column(idx).(*array.String); ok {
				cols[field.Name] = col
			}
		}

		cell := func(name string, row int) string {
			col, ok := cols[name]
			if !ok || col.IsNull(row) {
				return ""
			}

			return col.Value(row)
		}

		for row := 0; row < int(rec.NumRows()); row++ {
			securities = append(securities, &data.Security{
				ISIN:          cell(colISIN, row),
				LastTicker:    cell(colLastTicker, row),
				LastName:      cell(colLastName, row),
				LastSpec:      cell(colLastSpec, row),
				TickerHistory: cell(colTickerHistory, row),
				NameHistory:   cell(colNameHistory, row),
			})
		}
	}

	if err := rr.Err(); err != nil {
		return nil, fmt.Errorf("decoding master %s: %w", path, err)
	}

	return securities, nil
}
