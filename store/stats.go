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
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/parquet/metadata"
)

// columnBounds holds the min/max statistics of one column chunk. ok is
// false when the file carries no usable statistics for the chunk, in which
// case the row group must be scanned.
type columnBounds struct {
	ok   bool
	kind valueKind
	minI int64
	maxI int64
	minF float64
	maxF float64
	minS string
	maxS string
	minD arrow.Date32
	maxD arrow.Date32
}

// chunkBounds pulls typed min/max statistics out of a column chunk. Any
// statistics error degrades to "no bounds" so pruning stays conservative.
func chunkBounds(rg *metadata.RowGroupMetaData, col int) columnBounds {
	chunk, err := rg.ColumnChunk(col)
	if err != nil {
		return columnBounds{}
	}

	set, err := chunk.StatsSet()
	if err != nil || !set {
		return columnBounds{}
	}

	stats, err := chunk.Statistics()
	if err != nil || stats == nil || !stats.HasMinMax() {
		return columnBounds{}
	}

	switch s := stats.(type) {
	case *metadata.Int64Statistics:
		return columnBounds{ok: true, kind: kindInt, minI: s.Min(), maxI: s.Max()}
	case *metadata.Int32Statistics:
		// date columns are stored as int32 days
		return columnBounds{ok: true, kind: kindDate, minD: arrow.Date32(s.Min()), maxD: arrow.Date32(s.Max())}
	case *metadata.Float64Statistics:
		return columnBounds{ok: true, kind: kindFloat, minF: s.Min(), maxF: s.Max()}
	case *metadata.ByteArrayStatistics:
		return columnBounds{ok: true, kind: kindString, minS: string(s.Min()), maxS: string(s.Max())}
	}

	return columnBounds{}
}

// mayMatch reports whether any row of a group could satisfy the predicate
// given the chunk bounds. Absent or mismatched bounds keep the group.
func (pred Predicate) mayMatch(bounds columnBounds) bool {
	if !bounds.ok {
		return true
	}

	switch bounds.kind {
	case kindInt:
		switch pred.Op {
		case OpEq, OpIn:
			for _, val := range pred.Values {
				if val.i >= bounds.minI && val.i <= bounds.maxI {
					return true
				}
			}

			return false
		case OpGtEq:
			return bounds.maxI >= pred.Values[0].i
		case OpLtEq:
			return bounds.minI <= pred.Values[0].i
		}
	case kindFloat:
		switch pred.Op {
		case OpEq, OpIn:
			for _, val := range pred.Values {
				if val.f >= bounds.minF && val.f <= bounds.maxF {
					return true
				}
			}

			return false
		case OpGtEq:
			return bounds.maxF >= pred.Values[0].f
		case OpLtEq:
			return bounds.minF <= pred.Values[0].f
		}
	case kindString:
		switch pred.Op {
		case OpEq, OpIn:
			for _, val := range pred.Values {
				if val.s >= bounds.minS && val.s <= bounds.maxS {
					return true
				}
			}

			return false
		case OpGtEq:
			return bounds.maxS >= pred.Values[0].s
		case OpLtEq:
			return bounds.minS <= pred.Values[0].s
		}
	case kindDate:
		switch pred.Op {
		case OpEq, OpIn:
			for _, val := range pred.Values {
				if val.d >= bounds.minD && val.d <= bounds.maxD {
					return true
				}
			}

			return false
		case OpGtEq:
			return bounds.maxD >= pred.Values[0].d
		case OpLtEq:
			return bounds.minD <= pred.Values[0].d
		}
	}

	return true
}
