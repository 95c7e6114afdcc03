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

// Package query answers quote and asset lookups against a built library.
// The engine keeps the security master and the code dictionaries in memory
// and scans the columnar store fresh on every quote query, so its footprint
// stays small no matter how many years of history the store holds.
package query

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quantbr/b3data/data"
	"github.com/quantbr/b3data/library"
	"github.com/quantbr/b3data/master"
	"github.com/quantbr/b3data/refdata"
)

// TickerKind selects which master entries ListTickers reports.
type TickerKind string

const (
	AllTickers   TickerKind = "all"
	CommonShares TickerKind = "common"
)

// Engine answers queries against one library. The master and dictionaries
// are immutable after construction, so an Engine is safe for concurrent
// readers.
type Engine struct {
	myLibrary *library.Library
	master    []*data.Security
	dicts     *refdata.Dictionaries
	log       zerolog.Logger
}

// NewEngine loads the artifacts every query depends on and fails fast when
// one is missing, naming it, so a half-built library is caught before the
// first query rather than during one.
func NewEngine(ctx context.Context, myLibrary *library.Library, log zerolog.Logger) (*Engine, error) {
	storePath := myLibrary.StorePath()
	if _, err := os.Stat(storePath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", library.ErrMissingArtifact, storePath)
		}

		return nil, fmt.Errorf("checking store %s: %w", storePath, err)
	}

	securities, err := master.Load(ctx, myLibrary)
	if err != nil {
		return nil, err
	}

	dicts, err := refdata.Load(myLibrary.BDIDictPath(), myLibrary.MarketTypeDictPath())
	if err != nil {
		return nil, err
	}

	log.Debug().Int("NumSecurities", len(securities)).Msg("query engine ready")

	return &Engine{
		myLibrary: myLibrary,
		master:    securities,
		dicts:     dicts,
		log:       log,
	}, nil
}

// FindAssets is the universal master lookup: exact ISIN match, whole-token
// match anywhere in the ticker trail, or substring match anywhere in the
// name trail, all ignoring case. An empty result is an answer, not an
// error.
func (engine *Engine) FindAssets(q string) []*data.Security {
	needle := strings.ToUpper(strings.TrimSpace(q))
	if needle == "" {
		return nil
	}

	tickerToken := regexp.MustCompile(`\b` + regexp.QuoteMeta(needle) + `\b`)

	var matches []*data.Security

	for _, security := range engine.master {
		switch {
		case security.ISIN == needle:
		case tickerToken.MatchString(security.TickerHistory):
		case strings.Contains(strings.ToUpper(security.NameHistory), needle):
		default:
			continue
		}

		matches = append(matches, security)
	}

	return matches
}

// AssetInfo returns the best master entry for a ticker or search term. An
// ambiguous term resolves to the first match with a warning rather than an
// error.
func (engine *Engine) AssetInfo(q string) (*data.Security, error) {
	matches := engine.FindAssets(q)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrAssetNotFound, q)
	}

	if len(matches) > 1 {
		engine.log.Warn().Str("Query", q).Int("NumMatches", len(matches)).
			Msg("multiple assets match, returning the first")
	}

	return matches[0], nil
}

// ListTickers returns the sorted distinct latest tickers from the master.
// CommonShares keeps only entries whose latest specification marks a
// common share.
func (engine *Engine) ListTickers(kind TickerKind) []string {
	seen := make(map[string]bool)

	var tickers []string

	for _, security := range engine.master {
		if security.LastTicker == "" || seen[security.LastTicker] {
			continue
		}

		if kind == CommonShares && !strings.Contains(strings.ToUpper(security.LastSpec), "ON") {
			continue
		}

		seen[security.LastTicker] = true
		tickers = append(tickers, security.LastTicker)
	}

	sort.Strings(tickers)

	return tickers
}
