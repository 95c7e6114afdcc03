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

// Package store maintains the columnar quote store: a single parquet file
// holding every decoded COTAHIST record, written once per build and scanned
// with column projection and row group pruning afterwards.
package store

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/quantbr/b3data/data"
)

var (
	// ErrUnknownColumn reports a projection or predicate over a column the
	// store schema does not carry.
	ErrUnknownColumn = errors.New("unknown store column")

	// ErrSchemaMismatch reports a batch whose schema cannot be coerced to
	// the schema captured from the first batch.
	ErrSchemaMismatch = errors.New("batch schema incompatible with store schema")

	// ErrBadPredicate reports a predicate whose literal type does not match
	// its column.
	ErrBadPredicate = errors.New("predicate value does not match column type")
)

// storeFields lists the store columns in COTAHIST record order. Every field
// is nullable because any source field can fail to decode.
func storeFields() []arrow.Field {
	return []arrow.Field{
		{Name: data.ColRecordType, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: data.ColTradeDate, Type: arrow.FixedWidthTypes.Date32, Nullable: true},
		{Name: data.ColBDICode, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: data.ColTicker, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: data.ColMarketType, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: data.ColShortName, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: data.ColSpec, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: data.ColTerm, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: data.ColCurrency, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: data.ColOpen, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: data.ColHigh, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: data.ColLow, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: data.ColAverage, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: data.ColClose, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: data.ColBid, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: data.ColAsk, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: data.ColTrades, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: data.ColQuantity, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: data.ColVolume, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: data.ColStrikePrice, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: data.ColOptionStyle, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: data.ColExpireDate, Type: arrow.FixedWidthTypes.Date32, Nullable: true},
		{Name: data.ColQuoteFactor, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: data.ColStrikePoints, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: data.ColISIN, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: data.ColDistributionNumber, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}
}

// Schema returns the arrow schema of the quote store.
func Schema() *arrow.Schema {
	return arrow.NewSchema(storeFields(), nil)
}

// ColumnIndex resolves a store column name to its position in the schema,
// which is also its parquet leaf index because the schema is flat.
func ColumnIndex(name string) (int, error) {
	for idx, field := range storeFields() {
		if field.Name == name {
			return idx, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
}
