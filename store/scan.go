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
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/quantbr/b3data/data"
)

// Scan reads the store at path and returns every row that satisfies all
// predicates. Only the requested columns are materialized on the returned
// quotes; every other field stays nil. Predicate columns are read for
// evaluation but not materialized unless requested. Row groups whose
// column statistics exclude a predicate are skipped without being read,
// and an empty columns slice materializes the full record.
func Scan(ctx context.Context, path string, columns []string, preds []Predicate) ([]*data.Quote, error) {
	schema := Schema()

	if len(columns) == 0 {
		for _, field := range schema.Fields() {
			columns = append(columns, field.Name)
		}
	}

	projection, err := resolveProjection(schema, columns, preds)
	if err != nil {
		return nil, err
	}

	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("reading store %s: %w", path, err)
	}

	groups := pruneRowGroups(rdr, preds)
	if len(groups) == 0 {
		return nil, nil
	}

	rr, err := fr.GetRecordReader(ctx, projection, groups)
	if err != nil {
		return nil, fmt.Errorf("projecting store %s: %w", path, err)
	}
	defer rr.Release()

	var quotes []*data.Quote

	for rr.Next() {
		rec := rr.Record()

		predCols := make([]arrow.Array, len(preds))
		for idx, pred := range preds {
			predCols[idx] = recordColumn(rec, pred.Column)
		}

		outCols := make([]arrow.Array, len(columns))
		for idx, name := range columns {
			outCols[idx] = recordColumn(rec, name)
		}

		for row := 0; row < int(rec.NumRows()); row++ {
			if !rowMatches(preds, predCols, row) {
				continue
			}

			quote := &data.Quote{}
			for idx, name := range columns {
				setQuoteColumn(quote, name, outCols[idx], row)
			}

			quotes = append(quotes, quote)
		}
	}

	if err := rr.Err(); err != nil {
		return nil, fmt.Errorf("scanning store %s: %w", path, err)
	}

	return quotes, nil
}

// resolveProjection validates columns and predicates against the store
// schema and returns the sorted leaf indices to read: the requested
// columns plus every predicate column.
func resolveProjection(schema *arrow.Schema, columns []string, preds []Predicate) ([]int, error) {
	seen := make(map[int]bool)

	var indices []int

	add := func(name string) error {
		idx, err := ColumnIndex(name)
		if err != nil {
			return err
		}

		if !seen[idx] {
			seen[idx] = true
			indices = append(indices, idx)
		}

		return nil
	}

	for _, name := range columns {
		if err := add(name); err != nil {
			return nil, err
		}
	}

	for _, pred := range preds {
		idx, err := ColumnIndex(pred.Column)
		if err != nil {
			return nil, err
		}

		if err := pred.validate(schema.Field(idx).Type); err != nil {
			return nil, err
		}

		if err := add(pred.Column); err != nil {
			return nil, err
		}
	}

	sort.Ints(indices)

	return indices, nil
}

// pruneRowGroups keeps the row groups whose statistics admit every
// predicate. Columns without statistics keep their groups.
func pruneRowGroups(rdr *file.Reader, preds []Predicate) []int {
	md := rdr.MetaData()

	var groups []int

	for g := 0; g < rdr.NumRowGroups(); g++ {
		keep := true

		for _, pred := range preds {
			idx, err := ColumnIndex(pred.Column)
			if err != nil {
				continue
			}

			if !pred.mayMatch(chunkBounds(md.RowGroup(g), idx)) {
				keep = false

				break
			}
		}

		if keep {
			groups = append(groups, g)
		}
	}

	return groups
}

func rowMatches(preds []Predicate, cols []arrow.Array, row int) bool {
	for idx, pred := range preds {
		col := cols[idx]
		if col == nil || col.IsNull(row) {
			return false
		}

		if !predHolds(pred, col, row) {
			return false
		}
	}

	return true
}

func predHolds(pred Predicate, col arrow.Array, row int) bool {
	switch c := col.(type) {
	case *array.Int64:
		return pred.matchInt(c.Value(row))
	case *array.Float64:
		return pred.matchFloat(c.Value(row))
	case *array.String:
		return pred.matchString(c.Value(row))
	case *array.Date32:
		return pred.matchDate(c.Value(row))
	}

	return false
}

func recordColumn(rec arrow.Record, name string) arrow.Array {
	indices := rec.Schema().FieldIndices(name)
	if len(indices) != 1 {
		return nil
	}

	return rec.Column(indices[0])
}

// setQuoteColumn copies one cell onto the quote. Null cells leave the
// field missing.
func setQuoteColumn(quote *data.Quote, name string, col arrow.Array, row int) {
	if col == nil || col.IsNull(row) {
		return
	}

	switch name {
	case data.ColRecordType:
		quote.RecordType = int64At(col, row)
	case data.ColTradeDate:
		quote.TradeDate = dateAt(col, row)
	case data.ColBDICode:
		quote.BDICode = int64At(col, row)
	case data.ColTicker:
		quote.Ticker = stringAt(col, row)
	case data.ColMarketType:
		quote.MarketType = int64At(col, row)
	case data.ColShortName:
		quote.ShortName = stringAt(col, row)
	case data.ColSpec:
		quote.Spec = stringAt(col, row)
	case data.ColTerm:
		quote.Term = int64At(col, row)
	case data.ColCurrency:
		quote.Currency = stringAt(col, row)
	case data.ColOpen:
		quote.Open = float64At(col, row)
	case data.ColHigh:
		quote.High = float64At(col, row)
	case data.ColLow:
		quote.Low = float64At(col, row)
	case data.ColAverage:
		quote.Average = float64At(col, row)
	case data.ColClose:
		quote.Close = float64At(col, row)
	case data.ColBid:
		quote.Bid = float64At(col, row)
	case data.ColAsk:
		quote.Ask = float64At(col, row)
	case data.ColTrades:
		quote.Trades = int64At(col, row)
	case data.ColQuantity:
		quote.Quantity = int64At(col, row)
	case data.ColVolume:
		quote.Volume = float64At(col, row)
	case data.ColStrikePrice:
		quote.StrikePrice = float64At(col, row)
	case data.ColOptionStyle:
		quote.OptionStyle = int64At(col, row)
	case data.ColExpireDate:
		quote.ExpireDate = dateAt(col, row)
	case data.ColQuoteFactor:
		quote.QuoteFactor = int64At(col, row)
	case data.ColStrikePoints:
		quote.StrikePoints = int64At(col, row)
	case data.ColISIN:
		quote.ISIN = stringAt(col, row)
	case data.ColDistributionNumber:
		quote.DistributionNumber = int64At(col, row)
	}
}

func int64At(col arrow.Array, row int) *int64 {
	v := col.(*array.Int64).Value(row)

	return &v
}

func float64At(col arrow.Array, row int) *float64 {
	v := col.(*array.Float64).Value(row)

	return &v
}

func stringAt(col arrow.Array, row int) *string {
	v := col.(*array.String).Value(row)

	return &v
}

func dateAt(col arrow.Array, row int) *time.Time {
	v := col.(*array.Date32).Value(row).ToTime()

	return &v
}
