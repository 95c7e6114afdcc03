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

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// coerceRecord casts rec to the target schema. A record already carrying
// the target schema is returned untouched with cast=false; otherwise a new
// record is built (cast=true) and the caller must release it. Only widening
// casts and null columns are coercible; any other drift is a mismatch. The
// widening set covers the drift a batch can legitimately show: a column
// that decoded to a narrower numeric type, or a column that never decoded
// at all.
func coerceRecord(rec arrow.Record, target *arrow.Schema, mem memory.Allocator) (arrow.Record, bool, error) {
	if rec.Schema().Equal(target) {
		return rec, false, nil
	}

	if rec.NumCols() != int64(target.NumFields()) {
		return nil, false, fmt.Errorf("%w: batch has %d columns, store has %d",
			ErrSchemaMismatch, rec.NumCols(), target.NumFields())
	}

	cols := make([]arrow.Array, target.NumFields())

	release := func() {
		for _, col := range cols {
			if col != nil {
				col.Release()
			}
		}
	}

	for idx, field := range target.Fields() {
		indices := rec.Schema().FieldIndices(field.Name)
		if len(indices) != 1 {
			release()

			return nil, false, fmt.Errorf("%w: batch is missing column %s", ErrSchemaMismatch, field.Name)
		}

		col, err := coerceColumn(rec.Column(indices[0]), field, mem)
		if err != nil {
			release()

			return nil, false, err
		}

		cols[idx] = col
	}

	out := array.NewRecord(target, cols, rec.NumRows())

	return out, true, nil
}

func coerceColumn(col arrow.Array, field arrow.Field, mem memory.Allocator) (arrow.Array, error) {
	if arrow.TypeEqual(col.DataType(), field.Type) {
		col.Retain()

		return col, nil
	}

	// a column with no decoded values at all carries the null type and
	// becomes a fully null column of the target type
	if col.DataType().ID() == arrow.NULL {
		builder := array.NewBuilder(mem, field.Type)
		defer builder.Release()

		builder.AppendNulls(col.Len())

		return builder.NewArray(), nil
	}

	switch src := col.(type) {
	case *array.Int64:
		if field.Type.ID() == arrow.FLOAT64 {
			return int64ToFloat64(src, mem), nil
		}
	case *array.Int32:
		if field.Type.ID() == arrow.INT64 {
			return int32ToInt64(src, mem), nil
		}

		if field.Type.ID() == arrow.FLOAT64 {
			return int32ToFloat64(src, mem), nil
		}
	case *array.Float32:
		if field.Type.ID() == arrow.FLOAT64 {
			return float32ToFloat64(src, mem), nil
		}
	}

	return nil, fmt.Errorf("%w: column %s is %s, store wants %s",
		ErrSchemaMismatch, field.Name, col.DataType(), field.Type)
}

func int64ToFloat64(src *array.Int64, mem memory.Allocator) arrow.Array {
	builder := array.NewFloat64Builder(mem)
	defer builder.Release()

	builder.Reserve(src.Len())
	for i := 0; i < src.Len(); i++ {
		if src.IsNull(i) {
			builder.AppendNull()

			continue
		}

		builder.Append(float64(src.Value(i)))
	}

	return builder.NewArray()
}

func int32ToInt64(src *array.Int32, mem memory.Allocator) arrow.Array {
	builder := array.NewInt64Builder(mem)
	defer builder.Release()

	builder.Reserve(src.Len())
	for i := 0; i < src.Len(); i++ {
		if src.IsNull(i) {
			builder.AppendNull()

			continue
		}

		builder.Append(int64(src.Value(i)))
	}

	return builder.NewArray()
}

func int32ToFloat64(src *array.Int32, mem memory.Allocator) arrow.Array {
	builder := array.NewFloat64Builder(mem)
	defer builder.Release()

	builder.Reserve(src.Len())
	for i := 0; i < src.Len(); i++ {
		if src.IsNull(i) {
			builder.AppendNull()

			continue
		}

		builder.Append(float64(src.Value(i)))
	}

	return builder.NewArray()
}

func float32ToFloat64(src *array.Float32, mem memory.Allocator) arrow.Array {
	builder := array.NewFloat64Builder(mem)
	defer builder.Release()

	builder.Reserve(src.Len())
	for i := 0; i < src.Len(); i++ {
		if src.IsNull(i) {
			builder.AppendNull()

			continue
		}

		builder.Append(float64(src.Value(i)))
	}

	return builder.NewArray()
}
