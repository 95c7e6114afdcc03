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

// Package master derives the security master from the quote store: one
// entry per ISIN carrying the instrument's latest identity and the trail
// of every ticker and short name it ever traded under.
package master

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantbr/b3data/data"
	"github.com/quantbr/b3data/library"
	"github.com/quantbr/b3data/store"
)

// Master artifact column names, in artifact order.
const (
	colISIN          = "CODISI"
	colLastTicker    = "ULTIMO_TICKER"
	colLastName      = "ULTIMO_NOME"
	colLastSpec      = "ULTIMA_ESPECIFICACAO"
	colTickerHistory = "TICKERS_HISTORICOS"
	colNameHistory   = "NOMES_HISTORICOS"
)

type accumulator struct {
	hasDate    bool
	latestDate time.Time
	lastTicker string
	lastName   string
	lastSpec   string
	tickers    map[string]bool
	names      map[string]bool
}

// Build scans the store and writes the security master, both the compact
// parquet the query engine loads and the spreadsheet-form CSV. A library
// whose store has not been built yet is a missing precondition, distinct
// from any processing failure. Build returns the number of securities.
func Build(ctx context.Context, myLibrary *library.Library, log zerolog.Logger) (int, error) {
	storePath := myLibrary.StorePath()

	if _, err := os.Stat(storePath); err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", library.ErrMissingArtifact, storePath)
		}

		return 0, fmt.Errorf("checking store %s: %w", storePath, err)
	}

	start := time.Now()

	log.Info().Str("StoreFile", storePath).Msg("building security master")

	quotes, err := store.Scan(ctx, storePath, []string{
		data.ColTradeDate, data.ColISIN, data.ColTicker, data.ColShortName, data.ColSpec,
	}, nil)
	if err != nil {
		return 0, fmt.Errorf("scanning store for master build: %w", err)
	}

	securities := fold(quotes)

	if err := writeParquet(myLibrary.MasterPath(), securities); err != nil {
		return 0, err
	}

	if err := writeCSV(myLibrary.MasterCSVPath(), securities); err != nil {
		return 0, err
	}

	log.Info().Int("NumSecurities", len(securities)).
		Dur("Elapsed", time.Since(start)).
		Str("MasterFile", myLibrary.MasterPath()).
		Msg("security master written")

	return len(securities), nil
}

// fold reduces store rows to one security per ISIN. Rows without an ISIN
// carry no identity and are dropped. The latest row wins the identity
// fields; on equal trade dates the row laid down later in the store wins,
// which is deterministic because store order is. Rows without a trade date
// only win while no dated row has been seen.
func fold(quotes []*data.Quote) []*data.Security {
	accs := make(map[string]*accumulator)

	var order []string

	for _, quote := range quotes {
		isin := quote.ISINValue()
		if isin == "" {
			continue
		}

		acc, ok := accs[isin]
		if !ok {
			acc = &accumulator{
				tickers: make(map[string]bool),
				names:   make(map[string]bool),
			}
			accs[isin] = acc
			order = append(order, isin)
		}

		if ticker := quote.TickerValue(); ticker != "" {
			acc.tickers[ticker] = true
		}

		if quote.ShortName != nil && *quote.ShortName != "" {
			acc.names[*quote.ShortName] = true
		}

		latest := false

		switch {
		case quote.TradeDate != nil && (!acc.hasDate || !quote.TradeDate.Before(acc.latestDate)):
			acc.hasDate = true
			acc.latestDate = *quote.TradeDate
			latest = true
		case quote.TradeDate == nil && !acc.hasDate:
			latest = true
		}

		if latest {
			acc.lastTicker = quote.TickerValue()
			acc.lastSpec = stringValue(quote.Spec)
			acc.lastName = stringValue(quote.ShortName)
		}
	}

	securities := make([]*data.Security, 0, len(order))

	for _, isin := range order {
		acc := accs[isin]
		securities = append(securities, &data.Security{
			ISIN:          isin,
			LastTicker:    acc.lastTicker,
			LastName:      acc.lastName,
			LastSpec:      acc.lastSpec,
			TickerHistory: joinTrail(acc.tickers),
			NameHistory:   joinTrail(acc.names),
		})
	}

	sort.Slice(securities, func(i, j int) bool {
		if securities[i].LastTicker != securities[j].LastTicker {
			return securities[i].LastTicker < securities[j].LastTicker
		}

		return securities[i].ISIN < securities[j].ISIN
	})

	return securities
}

func stringValue(val *string) string {
	if val == nil {
		return ""
	}

	return *val
}

// joinTrail renders a distinct value set sorted and joined, so trails read
// the same on every rebuild.
func joinTrail(values map[string]bool) string {
	sorted := make([]string, 0, len(values))
	for value := range values {
		sorted = append(sorted, value)
	}

	sort.Strings(sorted)

	return strings.Join(sorted, data.TrailSeparator)
}
