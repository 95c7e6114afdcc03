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
package query

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoCriteria rejects a quote query that names no starter criterion;
	// such a query would otherwise scan the entire store.
	ErrNoCriteria = errors.New("at least one of tickers, entity, isins, bdi, market types, class, or ticker root is required")

	// ErrUnknownAssetClass rejects an asset class outside the closed set.
	ErrUnknownAssetClass = errors.New("unknown asset class")

	// ErrUnknownCode rejects a dictionary filter value that is neither a
	// numeric code nor a known description.
	ErrUnknownCode = errors.New("unknown code or description")

	// ErrAssetNotFound reports a lookup that matched nothing.
	ErrAssetNotFound = errors.New("asset not found")
)

// AssetClass is a high-level shorthand that expands to classification and
// market type filters.
type AssetClass string

const (
	ClassNone    AssetClass = ""
	ClassEquity  AssetClass = "equity"
	ClassFII     AssetClass = "fii"
	ClassBDR     AssetClass = "bdr"
	ClassOptions AssetClass = "options"
)

// ParseAssetClass reads an asset class from user input. The empty string is
// valid and means no class filter.
func ParseAssetClass(raw string) (AssetClass, error) {
	class := AssetClass(strings.ToLower(strings.TrimSpace(raw)))

	switch class {
	case ClassNone, ClassEquity, ClassFII, ClassBDR, ClassOptions:
		return class, nil
	}

	return ClassNone, fmt.Errorf("%w: %q", ErrUnknownAssetClass, raw)
}

// Criteria is the closed set of quote filters. Every populated field must
// hold for a row to be returned. Dictionary filters accept numeric codes or
// their descriptions interchangeably.
type Criteria struct {
	// Tickers restricts to an explicit ticker set.
	Tickers []string

	// Entity is free text resolved against the security master before the
	// scan; the matched entities' tickers become the effective ticker set.
	Entity string

	// Class is an asset class shorthand, or ClassNone.
	Class AssetClass

	// TickerRoot keeps only tickers starting with this 4-letter root. This
	// is how all options over one underlying are selected.
	TickerRoot string

	// StartDate and EndDate bound the trade date, inclusive.
	StartDate *time.Time
	EndDate   *time.Time

	// ExpireAfter and ExpireBefore bound the derivative expiration date,
	// inclusive.
	ExpireAfter  *time.Time
	ExpireBefore *time.Time

	// BDICodes and MarketTypes hold numeric codes or descriptions.
	BDICodes    []string
	MarketTypes []string

	// ISINs restricts to an explicit ISIN set.
	ISINs []string

	// SpecContains keeps rows whose specification contains any of these
	// fragments, ignoring case.
	SpecContains []string

	// Columns names the value columns to return. Empty means the default
	// price and volume set. Key columns are always included.
	Columns []string
}

// validate rejects a criteria set that no scan should ever see: an unknown
// asset class, or no starter criterion at all.
func (criteria Criteria) validate() error {
	switch criteria.Class {
	case ClassNone, ClassEquity, ClassFII, ClassBDR, ClassOptions:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAssetClass, criteria.Class)
	}

	started := len(criteria.Tickers) > 0 ||
		strings.TrimSpace(criteria.Entity) != "" ||
		criteria.Class != ClassNone ||
		strings.TrimSpace(criteria.TickerRoot) != "" ||
		len(criteria.BDICodes) > 0 ||
		len(criteria.MarketTypes) > 0 ||
		len(criteria.ISINs) > 0

	if !started {
		return ErrNoCriteria
	}

	return nil
}

// cleanSet trims, upper-cases, and drops empty entries.
func cleanSet(values []string) []string {
	out := make([]string, 0, len(values))

	for _, value := range values {
		value = strings.ToUpper(strings.TrimSpace(value))
		if value != "" {
			out = append(out, value)
		}
	}

	return out
}
