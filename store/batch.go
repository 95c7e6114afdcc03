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
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/quantbr/b3data/data"
)

// BatchBuilder accumulates decoded quotes into an arrow record batch. Nil
// quote fields become nulls in the batch.
type BatchBuilder struct {
	builder *array.RecordBuilder
	rows    int
}

func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{
		builder: array.NewRecordBuilder(memory.NewGoAllocator(), Schema()),
	}
}

// Append adds one quote to the batch. Append order of the typed builders
// must track the field order of the store schema.
func (batch *BatchBuilder) Append(quote *data.Quote) {
	appendInt(batch.builder.Field(0), quote.RecordType)
	appendDate(batch.builder.Field(1), quote.TradeDate)
	appendInt(batch.builder.Field(2), quote.BDICode)
	appendText(batch.builder.Field(3), quote.Ticker)
	appendInt(batch.builder.Field(4), quote.MarketType)
	appendText(batch.builder.Field(5), quote.ShortName)
	appendText(batch.builder.Field(6), quote.Spec)
	appendInt(batch.builder.Field(7), quote.Term)
	appendText(batch.builder.Field(8), quote.Currency)
	appendFloat(batch.builder.Field(9), quote.Open)
	appendFloat(batch.builder.Field(10), quote.High)
	appendFloat(batch.builder.Field(11), quote.Low)
	appendFloat(batch.builder.Field(12), quote.Average)
	appendFloat(batch.builder.Field(13), quote.Close)
	appendFloat(batch.builder.Field(14), quote.Bid)
	appendFloat(batch.builder.Field(15), quote.Ask)
	appendInt(batch.builder.Field(16), quote.Trades)
	appendInt(batch.builder.Field(17), quote.Quantity)
	appendFloat(batch.builder.Field(18), quote.Volume)
	appendFloat(batch.builder.Field(19), quote.StrikePrice)
	appendInt(batch.builder.Field(20), quote.OptionStyle)
	appendDate(batch.builder.Field(21), quote.ExpireDate)
	appendInt(batch.builder.Field(22), quote.QuoteFactor)
	appendInt(batch.builder.Field(23), quote.StrikePoints)
	appendText(batch.builder.Field(24), quote.ISIN)
	appendInt(batch.builder.Field(25), quote.DistributionNumber)

	batch.rows++
}

// Len reports the number of quotes accumulated since the last NewRecord.
func (batch *BatchBuilder) Len() int {
	return batch.rows
}

// NewRecord drains the accumulated quotes into a record. The caller owns
// the record and must Release it.
func (batch *BatchBuilder) NewRecord() arrow.Record {
	batch.rows = 0

	return batch.builder.NewRecord()
}

// Release frees the underlying builders.
func (batch *BatchBuilder) Release() {
	batch.builder.Release()
}

func appendInt(builder array.Builder, val *int64) {
	b := builder.(*array.Int64Builder)
	if val == nil {
		b.AppendNull()

		return
	}

	b.Append(*val)
}

func appendFloat(builder array.Builder, val *float64) {
	b := builder.(*array.Float64Builder)
	if val == nil {
		b.AppendNull()

		return
	}

	b.Append(*val)
}

func appendText(builder array.Builder, val *string) {
	b := builder.(*array.StringBuilder)
	if val == nil {
		b.AppendNull()

		return
	}

	b.Append(*val)
}

func appendDate(builder array.Builder, val *time.Time) {
	b := builder.(*array.Date32Builder)
	if val == nil {
		b.AppendNull()

		return
	}

	b.Append(arrow.Date32FromTime(*val))
}
