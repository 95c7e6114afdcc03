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
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/quantbr/b3data/data"
	"github.com/quantbr/b3data/store"
)

// tickerShape is the shape of a tradable ticker: a 4-letter root plus a
// one or two digit suffix. Trail entries outside this shape are dropped
// during entity expansion.
var tickerShape = regexp.MustCompile(`^[A-Z]{4}[0-9]{1,2}$`)

var tickerRoot = regexp.MustCompile(`^[A-Z]{4}`)

// equitySuffixes are the ticker suffixes denoting common, preferred, and
// unit share classes.
var equitySuffixes = []string{"3", "4", "5", "6", "11"}

// defaultValueColumns are returned when the caller names no columns.
var defaultValueColumns = []string{
	data.ColOpen, data.ColHigh, data.ColLow,
	data.ColClose, data.ColVolume, data.ColQuantity,
}

// GetQuotes runs one filtered pass over the store. Criteria combine with
// AND semantics; recognized filters are pushed into the scan where the
// store can evaluate them against row group statistics, the rest run in
// memory afterwards. A failed scan degrades to an empty result so a
// long-lived engine survives a corrupt or unreadable store.
func (engine *Engine) GetQuotes(ctx context.Context, criteria Criteria) ([]*data.Quote, error) {
	if err := criteria.validate(); err != nil {
		return nil, err
	}

	tickers := cleanSet(criteria.Tickers)
	root := strings.ToUpper(strings.TrimSpace(criteria.TickerRoot))
	entity := strings.TrimSpace(criteria.Entity)

	switch {
	case entity != "" && criteria.Class == ClassOptions:
		// Options trade under the underlying's 4-letter root, not its
		// ticker, so the entity reduces to a root criterion.
		matches := engine.FindAssets(entity)
		if len(matches) == 0 {
			engine.log.Info().Str("Entity", entity).Msg("entity matched no assets")

			return nil, nil
		}

		entityRoot := tickerRoot.FindString(matches[0].LastTicker)
		if entityRoot == "" {
			engine.log.Warn().Str("Entity", entity).Str("Ticker", matches[0].LastTicker).
				Msg("latest ticker has no 4-letter root, no options to find")

			return nil, nil
		}

		root = entityRoot
	case entity != "" && len(tickers) == 0:
		matches := engine.FindAssets(entity)
		if len(matches) == 0 {
			engine.log.Info().Str("Entity", entity).Msg("entity matched no assets")

			return nil, nil
		}

		tickers = entityTickers(matches, criteria.Class)
		if len(tickers) == 0 {
			engine.log.Info().Str("Entity", entity).Msg("entity has no tickers in the requested class")

			return nil, nil
		}
	}

	preds, err := engine.buildPredicates(criteria, tickers)
	if err != nil {
		return nil, err
	}

	columns, err := projection(criteria)
	if err != nil {
		return nil, err
	}

	quotes, err := store.Scan(ctx, engine.myLibrary.StorePath(), columns, preds)
	if err != nil {
		engine.log.Error().Err(err).Str("StoreFile", engine.myLibrary.StorePath()).
			Msg("store scan failed, returning no quotes")

		return nil, nil
	}

	quotes = postFilter(quotes, criteria, root)
	if len(quotes) == 0 {
		return nil, nil
	}

	sort.SliceStable(quotes, func(i, j int) bool { return quoteBefore(quotes[i], quotes[j]) })

	return quotes, nil
}

// entityTickers expands master matches to the distinct tradable tickers
// they ever used. The equity class narrows to share-class suffixes so an
// entity query does not drag in rights, receipts, and debentures.
func entityTickers(matches []*data.Security, class AssetClass) []string {
	seen := make(map[string]bool)

	var tickers []string

	for _, security := range matches {
		for _, ticker := range security.Tickers() {
			if seen[ticker] || !tickerShape.MatchString(ticker) {
				continue
			}

			if class == ClassEquity && !hasEquitySuffix(ticker) {
				continue
			}

			seen[ticker] = true
			tickers = append(tickers, ticker)
		}
	}

	sort.Strings(tickers)

	return tickers
}

func hasEquitySuffix(ticker string) bool {
	for _, suffix := range equitySuffixes {
		if strings.HasSuffix(ticker, suffix) {
			return true
		}
	}

	return false
}

// buildPredicates translates criteria into store predicates. Only filters
// the store can evaluate as equality, membership, or range end up here.
func (engine *Engine) buildPredicates(criteria Criteria, tickers []string) ([]store.Predicate, error) {
	var preds []store.Predicate

	switch criteria.Class {
	case ClassEquity:
		preds = append(preds,
			store.In(data.ColBDICode, store.Int64(2), store.Int64(96)),
			store.In(data.ColMarketType, store.Int64(10), store.Int64(20)),
		)
	case ClassFII:
		preds = append(preds, store.Eq(data.ColBDICode, store.Int64(12)))
	case ClassOptions:
		preds = append(preds, store.In(data.ColMarketType,
			store.Int64(70), store.Int64(80), store.Int64(12), store.Int64(13)))
	}

	if criteria.StartDate != nil {
		preds = append(preds, store.GtEq(data.ColTradeDate, store.Date(*criteria.StartDate)))
	}

	if criteria.EndDate != nil {
		preds = append(preds, store.LtEq(data.ColTradeDate, store.Date(*criteria.EndDate)))
	}

	if criteria.ExpireAfter != nil {
		preds = append(preds, store.GtEq(data.ColExpireDate, store.Date(*criteria.ExpireAfter)))
	}

	if criteria.ExpireBefore != nil {
		preds = append(preds, store.LtEq(data.ColExpireDate, store.Date(*criteria.ExpireBefore)))
	}

	if len(tickers) > 0 {
		preds = append(preds, store.In(data.ColTicker, stringValues(tickers)...))
	}

	if isins := cleanSet(criteria.ISINs); len(isins) > 0 {
		preds = append(preds, store.In(data.ColISIN, stringValues(isins)...))
	}

	bdiCodes, err := translateCodes(criteria.BDICodes, "bdi", engine.dicts.BDICodes)
	if err != nil {
		return nil, err
	}

	if len(bdiCodes) > 0 {
		preds = append(preds, store.In(data.ColBDICode, int64Values(bdiCodes)...))
	}

	marketCodes, err := translateCodes(criteria.MarketTypes, "market type", engine.dicts.MarketTypeCodes)
	if err != nil {
		return nil, err
	}

	if len(marketCodes) > 0 {
		preds = append(preds, store.In(data.ColMarketType, int64Values(marketCodes)...))
	}

	return preds, nil
}

// translateCodes resolves a mixed list of numeric codes and descriptions
// to codes. A description resolves to every code carrying it. Anything
// that is neither fails the query before any scan happens.
func translateCodes(items []string, dictionary string, lookup func(string) []int64) ([]int64, error) {
	seen := make(map[int64]bool)

	var codes []int64

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		matched := lookup(item)
		if len(matched) == 0 {
			code, err := strconv.ParseInt(item, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s %q", ErrUnknownCode, dictionary, item)
			}

			matched = []int64{code}
		}

		for _, code := range matched {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}

	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	return codes, nil
}

// projection widens the caller's columns with the key columns, and with
// the specification column whenever a post-filter reads it. Unknown
// columns are an invalid query, rejected before the scan.
func projection(criteria Criteria) ([]string, error) {
	include := map[string]bool{
		data.ColTradeDate: true,
		data.ColTicker:    true,
		data.ColISIN:      true,
	}

	if len(criteria.Columns) == 0 {
		for _, column := range defaultValueColumns {
			include[column] = true
		}
	} else {
		for _, column := range criteria.Columns {
			column = strings.ToUpper(strings.TrimSpace(column))
			if column == "" {
				continue
			}

			if _, err := store.ColumnIndex(column); err != nil {
				return nil, err
			}

			include[column] = true
		}
	}

	if len(cleanSet(criteria.SpecContains)) > 0 || criteria.Class == ClassBDR {
		include[data.ColSpec] = true
	}

	columns := make([]string, 0, len(include))
	for column := range include {
		columns = append(columns, column)
	}

	sort.Strings(columns)

	return columns, nil
}

// postFilter applies the criteria the store cannot push down: root prefix
// matching and specification substrings. A row with no specification never
// matches a specification filter.
func postFilter(quotes []*data.Quote, criteria Criteria, root string) []*data.Quote {
	specNeedles := cleanSet(criteria.SpecContains)
	bdr := criteria.Class == ClassBDR

	if root == "" && !bdr && len(specNeedles) == 0 {
		return quotes
	}

	kept := make([]*data.Quote, 0, len(quotes))

	for _, quote := range quotes {
		if root != "" && !strings.HasPrefix(quote.TickerValue(), root) {
			continue
		}

		spec := ""
		if quote.Spec != nil {
			spec = strings.ToUpper(*quote.Spec)
		}

		if bdr && !strings.Contains(spec, "DR") {
			continue
		}

		if len(specNeedles) > 0 && !containsAny(spec, specNeedles) {
			continue
		}

		kept = append(kept, quote)
	}

	return kept
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}

	return false
}

// quoteBefore orders results by ticker then trade date. Rows missing a key
// sort after rows that have it.
func quoteBefore(a, b *data.Quote) bool {
	switch {
	case a.Ticker == nil:
		return false
	case b.Ticker == nil:
		return true
	case *a.Ticker != *b.Ticker:
		return *a.Ticker < *b.Ticker
	}

	switch {
	case a.TradeDate == nil:
		return false
	case b.TradeDate == nil:
		return true
	}

	return a.TradeDate.Before(*b.TradeDate)
}

func stringValues(values []string) []store.Value {
	out := make([]store.Value, len(values))
	for idx, value := range values {
		out[idx] = store.String(value)
	}

	return out
}

func int64Values(values []int64) []store.Value {
	out := make([]store.Value, len(values))
	for idx, value := range values {
		out[idx] = store.Int64(value)
	}

	return out
}
