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
	"time"

	"github.com/apache/arrow-go/v18/arrow"
)

// Op is a predicate operator. The store understands exactly this closed
// set; anything richer belongs to the post-filter stage of the caller.
type Op int

const (
	OpEq Op = iota
	OpIn
	OpGtEq
	OpLtEq
)

type valueKind int

const (
	kindInt valueKind = iota
	kindFloat
	kindString
	kindDate
)

// Value is a typed literal for a predicate.
type Value struct {
	kind valueKind
	i    int64
	f    float64
	s    string
	d    arrow.Date32
}

func Int64(v int64) Value {
	return Value{kind: kindInt, i: v}
}

func Float64(v float64) Value {
	return Value{kind: kindFloat, f: v}
}

func String(v string) Value {
	return Value{kind: kindString, s: v}
}

func Date(v time.Time) Value {
	return Value{kind: kindDate, d: arrow.Date32FromTime(v)}
}

// Predicate restricts a scan on a single column. All predicates of a scan
// combine with AND semantics, and a null cell never satisfies any of them.
type Predicate struct {
	Column string
	Op     Op
	Values []Value
}

// Eq matches rows whose column equals value.
func Eq(column string, value Value) Predicate {
	return Predicate{Column: column, Op: OpEq, Values: []Value{value}}
}

// In matches rows whose column equals any of the values.
func In(column string, values ...Value) Predicate {
	return Predicate{Column: column, Op: OpIn, Values: values}
}

// GtEq matches rows whose column is at or above value.
func GtEq(column string, value Value) Predicate {
	return Predicate{Column: column, Op: OpGtEq, Values: []Value{value}}
}

// LtEq matches rows whose column is at or below value.
func LtEq(column string, value Value) Predicate {
	return Predicate{Column: column, Op: OpLtEq, Values: []Value{value}}
}

// validate checks the predicate shape and that every literal carries the
// column's type.
func (pred Predicate) validate(colType arrow.DataType) error {
	if len(pred.Values) == 0 {
		return fmt.Errorf("%w: no values for column %s", ErrBadPredicate, pred.Column)
	}

	if pred.Op != OpEq && pred.Op != OpIn && len(pred.Values) != 1 {
		return fmt.Errorf("%w: range predicate on %s takes one value", ErrBadPredicate, pred.Column)
	}

	want, err := kindForType(colType)
	if err != nil {
		return fmt.Errorf("column %s: %w", pred.Column, err)
	}

	for _, val := range pred.Values {
		if val.kind != want {
			return fmt.Errorf("%w: column %s", ErrBadPredicate, pred.Column)
		}
	}

	return nil
}

func kindForType(colType arrow.DataType) (valueKind, error) {
	switch colType.ID() {
	case arrow.INT64:
		return kindInt, nil
	case arrow.FLOAT64:
		return kindFloat, nil
	case arrow.STRING:
		return kindString, nil
	case arrow.DATE32:
		return kindDate, nil
	}

	return 0, fmt.Errorf("%w: unsupported column type %s", ErrBadPredicate, colType)
}

func (pred Predicate) matchInt(v int64) bool {
	switch pred.Op {
	case OpEq, OpIn:
		for _, val := range pred.Values {
			if val.i == v {
				return true
			}
		}

		return false
	case OpGtEq:
		return v >= pred.Values[0].i
	case OpLtEq:
		return v <= pred.Values[0].i
	}

	return false
}

func (pred Predicate) matchFloat(v float64) bool {
	switch pred.Op {
	case OpEq, OpIn:
		for _, val := range pred.Values {
			if val.f == v {
				return true
			}
		}

		return false
	case OpGtEq:
		return v >= pred.Values[0].f
	case OpLtEq:
		return v <= pred.Values[0].f
	}

	return false
}

func (pred Predicate) matchString(v string) bool {
	switch pred.Op {
	case OpEq, OpIn:
		for _, val := range pred.Values {
			if val.s == v {
				return true
			}
		}

		return false
	case OpGtEq:
		return v >= pred.Values[0].s
	case OpLtEq:
		return v <= pred.Values[0].s
	}

	return false
}

func (pred Predicate) matchDate(v arrow.Date32) bool {
	switch pred.Op {
	case OpEq, OpIn:
		for _, val := range pred.Values {
			if val.d == v {
				return true
			}
		}

		return false
	case OpGtEq:
		return v >= pred.Values[0].d
	case OpLtEq:
		return v <= pred.Values[0].d
	}

	return false
}
