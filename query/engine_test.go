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
package query_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbr/b3data/data"
	"github.com/quantbr/b3data/library"
	"github.com/quantbr/b3data/master"
	"github.com/quantbr/b3data/query"
	"github.com/quantbr/b3data/refdata"
	"github.com/quantbr/b3data/store"
)

type row struct {
	ticker string
	isin   string
	name   string
	spec   string
	date   time.Time
	bdi    int64
	market int64
	price  float64
	expire *time.Time
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(v time.Time) *time.Time { return &v }

func (r row) quote() *data.Quote {
	quote := &data.Quote{
		TradeDate:  datePtr(r.date),
		BDICode:    &r.bdi,
		Ticker:     &r.ticker,
		MarketType: &r.market,
		ShortName:  &r.name,
		ISIN:       &r.isin,
		Close:      &r.price,
		ExpireDate: r.expire,
	}

	if r.spec != "" {
		quote.Spec = &r.spec
	}

	return quote
}

// fixtureRows is a miniature market: two Petrobras share classes plus a
// fractional line, Vale and two of its options, two Gerdau entities, a
// BDR, and a real estate fund.
func fixtureRows() []row {
	return []row{
		{ticker: "PETR3", isin: "BRPETRACNOR9", name: "PETROBRAS", spec: "ON", date: day(2020, time.June, 1), bdi: 2, market: 10, price: 18.77},
		{ticker: "PETR4", isin: "BRPETRACNPR6", name: "PETROBRAS", spec: "PN", date: day(2021, time.January, 5), bdi: 2, market: 10, price: 28.50},
		{ticker: "PETR4", isin: "BRPETRACNPR6", name: "PETROBRAS", spec: "PN", date: day(2021, time.January, 6), bdi: 2, market: 10, price: 29.00},
		{ticker: "PETR4", isin: "BRPETRACNPR6", name: "PETROBRAS", spec: "PN", date: day(2021, time.February, 10), bdi: 2, market: 10, price: 30.10},
		{ticker: "PETR4F", isin: "BRPETRACNPR6", name: "PETROBRAS", spec: "PN", date: day(2021, time.January, 5), bdi: 96, market: 20, price: 28.55},
		{ticker: "VALE3", isin: "BRVALEACNOR0", name: "VALE", spec: "ON", date: day(2021, time.January, 5), bdi: 2, market: 10, price: 90.00},
		{ticker: "VALEB128", isin: "BRVALEB12801", name: "VALE", date: day(2021, time.January, 5), bdi: 78, market: 70, price: 2.50, expire: datePtr(day(2021, time.February, 17))},
		{ticker: "VALEN115", isin: "BRVALEN11501", name: "VALE", date: day(2021, time.January, 5), bdi: 82, market: 80, price: 1.20, expire: datePtr(day(2021, time.March, 17))},
		{ticker: "GGBR4", isin: "BRGGBRACNPR8", name: "GERDAU", spec: "PN N1", date: day(2021, time.January, 5), bdi: 2, market: 10, price: 24.30},
		{ticker: "GOAU4", isin: "BRGOAUACNPR4", name: "GERDAU MET", spec: "PN", date: day(2021, time.January, 5), bdi: 2, market: 10, price: 11.15},
		{ticker: "AAPL34", isin: "BRAAPLBDR004", name: "APPLE", spec: "DRN", date: day(2021, time.January, 5), bdi: 2, market: 10, price: 75.40},
		{ticker: "HGLG11", isin: "BRHGLGCTF004", name: "CSHG LOG", spec: "CI", date: day(2021, time.January, 5), bdi: 12, market: 10, price: 170.00},
	}
}

func buildFixtureLibrary(t *testing.T) *library.Library {
	t.Helper()

	myLibrary := library.New("B3 History", "tester", t.TempDir())
	require.NoError(t, myLibrary.EnsureDirs())

	writer := store.NewWriter(myLibrary.StorePath(), store.DefaultBatchSize)

	builder := store.NewBatchBuilder()
	defer builder.Release()

	for _, r := range fixtureRows() {
		builder.Append(r.quote())
	}

	rec := builder.NewRecord()
	err := writer.Append(rec)
	rec.Release()
	require.NoError(t, err)

	_, _, err = writer.Close()
	require.NoError(t, err)

	_, err = master.Build(context.Background(), myLibrary, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, refdata.Write(myLibrary.BDIDictPath(), myLibrary.MarketTypeDictPath()))

	return myLibrary
}

func newFixtureEngine(t *testing.T) *query.Engine {
	t.Helper()

	engine, err := query.NewEngine(context.Background(), buildFixtureLibrary(t), zerolog.Nop())
	require.NoError(t, err)

	return engine
}

func tickersOf(quotes []*data.Quote) []string {
	out := make([]string, len(quotes))
	for idx, quote := range quotes {
		out[idx] = quote.TickerValue()
	}

	return out
}

func TestNewEngineFailsFastOnMissingArtifacts(t *testing.T) {
	t.Run("no store", func(t *testing.T) {
		myLibrary := library.New("B3 History", "tester", t.TempDir())
		require.NoError(t, myLibrary.EnsureDirs())

		_, err := query.NewEngine(context.Background(), myLibrary, zerolog.Nop())
		require.Error(t, err)
		assert.ErrorIs(t, err, library.ErrMissingArtifact)
		assert.Contains(t, err.Error(), library.StoreFile)
	})

	t.Run("no master", func(t *testing.T) {
		myLibrary := buildFixtureLibrary(t)
		require.NoError(t, os.Remove(myLibrary.MasterPath()))

		_, err := query.NewEngine(context.Background(), myLibrary, zerolog.Nop())
		require.Error(t, err)
		assert.ErrorIs(t, err, library.ErrMissingArtifact)
		assert.Contains(t, err.Error(), library.MasterFile)
	})

	t.Run("no dictionaries", func(t *testing.T) {
		myLibrary := buildFixtureLibrary(t)
		require.NoError(t, os.Remove(myLibrary.BDIDictPath()))

		_, err := query.NewEngine(context.Background(), myLibrary, zerolog.Nop())
		require.Error(t, err)
		assert.ErrorIs(t, err, library.ErrMissingArtifact)
	})
}

func TestFindAssets(t *testing.T) {
	engine := newFixtureEngine(t)

	t.Run("name substring matches every entity", func(t *testing.T) {
		matches := engine.FindAssets("Gerdau")
		require.Len(t, matches, 2)
		assert.Equal(t, "GGBR4", matches[0].LastTicker)
		assert.Equal(t, "GOAU4", matches[1].LastTicker)
	})

	t.Run("ticker matches whole tokens only", func(t *testing.T) {
		matches := engine.FindAssets("ggbr4")
		require.Len(t, matches, 1)
		assert.Equal(t, "BRGGBRACNPR8", matches[0].ISIN)

		assert.Empty(t, engine.FindAssets("GGBR"))
	})

	t.Run("isin matches exactly", func(t *testing.T) {
		matches := engine.FindAssets("BRPETRACNPR6")
		require.Len(t, matches, 1)
		assert.Equal(t, "PETR4", matches[0].LastTicker)
	})

	t.Run("no match is empty, not an error", func(t *testing.T) {
		assert.Empty(t, engine.FindAssets("NONEXISTENT COMPANY"))
		assert.Empty(t, engine.FindAssets("  "))
	})
}

func TestAssetInfo(t *testing.T) {
	engine := newFixtureEngine(t)

	security, err := engine.AssetInfo("PETR4")
	require.NoError(t, err)
	assert.Equal(t, "BRPETRACNPR6", security.ISIN)

	// Ambiguity resolves to the first match rather than failing.
	security, err = engine.AssetInfo("GERDAU")
	require.NoError(t, err)
	assert.Equal(t, "GGBR4", security.LastTicker)

	_, err = engine.AssetInfo("ZZZZ99")
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrAssetNotFound)
}

func TestListTickers(t *testing.T) {
	engine := newFixtureEngine(t)

	all := engine.ListTickers(query.AllTickers)
	assert.Equal(t, []string{
		"AAPL34", "GGBR4", "GOAU4", "HGLG11", "PETR3",
		"PETR4", "VALE3", "VALEB128", "VALEN115",
	}, all)

	common := engine.ListTickers(query.CommonShares)
	assert.Equal(t, []string{"PETR3", "VALE3"}, common)
}

func TestGetQuotesTickerAndDateRange(t *testing.T) {
	engine := newFixtureEngine(t)

	quotes, err := engine.GetQuotes(context.Background(), query.Criteria{
		Tickers:   []string{"petr4"},
		StartDate: datePtr(day(2021, time.January, 1)),
		EndDate:   datePtr(day(2021, time.January, 31)),
	})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, day(2021, time.January, 5), *quotes[0].TradeDate)
	assert.Equal(t, day(2021, time.January, 6), *quotes[1].TradeDate)
	assert.Equal(t, 28.50, *quotes[0].Close)
	assert.Equal(t, 29.00, *quotes[1].Close)
	assert.Equal(t, "BRPETRACNPR6", quotes[0].ISINValue())

	// Default projection carries the price and volume set, nothing more.
	assert.Nil(t, quotes[0].BDICode)
	assert.Nil(t, quotes[0].Spec)
}

func TestGetQuotesEntityExpandsEquityTickers(t *testing.T) {
	engine := newFixtureEngine(t)

	quotes, err := engine.GetQuotes(context.Background(), query.Criteria{
		Entity: "Petrobras",
		Class:  query.ClassEquity,
	})
	require.NoError(t, err)

	// The fractional line is not a share-class ticker and stays out even
	// though its rows would pass the equity code filters.
	assert.Equal(t, []string{"PETR3", "PETR4", "PETR4", "PETR4"}, tickersOf(quotes))
}

func TestGetQuotesEntityOptionsReduceToRoot(t *testing.T) {
	engine := newFixtureEngine(t)

	quotes, err := engine.GetQuotes(context.Background(), query.Criteria{
		Entity: "vale",
		Class:  query.ClassOptions,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"VALEB128", "VALEN115"}, tickersOf(quotes))
}

func TestGetQuotesEntityWithoutMatchShortCircuits(t *testing.T) {
	engine := newFixtureEngine(t)

	quotes, err := engine.GetQuotes(context.Background(), query.Criteria{
		Entity: "NONEXISTENT COMPANY",
		Class:  query.ClassEquity,
	})
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestGetQuotesTickerRoot(t *testing.T) {
	engine := newFixtureEngine(t)

	quotes, err := engine.GetQuotes(context.Background(), query.Criteria{
		TickerRoot: "vale",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"VALE3", "VALEB128", "VALEN115"}, tickersOf(quotes))
}

func TestGetQuotesExpiryRange(t *testing.T) {
	engine := newFixtureEngine(t)

	quotes, err := engine.GetQuotes(context.Background(), query.Criteria{
		Class:        query.ClassOptions,
		ExpireAfter:  datePtr(day(2021, time.February, 1)),
		ExpireBefore: datePtr(day(2021, time.February, 28)),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"VALEB128"}, tickersOf(quotes))
}

func TestGetQuotesByISIN(t *testing.T) {
	engine := newFixtureEngine(t)

	quotes, err := engine.GetQuotes(context.Background(), query.Criteria{
		ISINs: []string{"BRHGLGCTF004"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"HGLG11"}, tickersOf(quotes))
}

func TestGetQuotesTranslatesDescriptions(t *testing.T) {
	engine := newFixtureEngine(t)

	t.Run("market type description", func(t *testing.T) {
		quotes, err := engine.GetQuotes(context.Background(), query.Criteria{
			Tickers:     []string{"VALE3"},
			MarketTypes: []string{"vista"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"VALE3"}, tickersOf(quotes))
	})

	t.Run("bdi description", func(t *testing.T) {
		quotes, err := engine.GetQuotes(context.Background(), query.Criteria{
			BDICodes: []string{"FUNDOS IMOBILIÁRIOS"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"HGLG11"}, tickersOf(quotes))
	})

	t.Run("numeric code passes through", func(t *testing.T) {
		quotes, err := engine.GetQuotes(context.Background(), query.Criteria{
			BDICodes: []string{"12"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"HGLG11"}, tickersOf(quotes))
	})

	t.Run("unknown description fails before scanning", func(t *testing.T) {
		_, err := engine.GetQuotes(context.Background(), query.Criteria{
			MarketTypes: []string{"MERCADO INVENTADO"},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, query.ErrUnknownCode)
	})
}

func TestGetQuotesBDRNeedsSpecPostFilter(t *testing.T) {
	engine := newFixtureEngine(t)

	quotes, err := engine.GetQuotes(context.Background(), query.Criteria{
		Class: query.ClassBDR,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL34"}, tickersOf(quotes))
}

func TestGetQuotesSpecContains(t *testing.T) {
	engine := newFixtureEngine(t)

	quotes, err := engine.GetQuotes(context.Background(), query.Criteria{
		Tickers:      []string{"PETR4", "VALE3", "GGBR4"},
		EndDate:      datePtr(day(2021, time.January, 5)),
		SpecContains: []string{"pn"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"GGBR4", "PETR4"}, tickersOf(quotes))
}

func TestGetQuotesProjection(t *testing.T) {
	engine := newFixtureEngine(t)

	quotes, err := engine.GetQuotes(context.Background(), query.Criteria{
		Tickers: []string{"VALE3"},
		Columns: []string{"preult"},
	})
	require.NoError(t, err)
	require.Len(t, quotes, 1)

	quote := quotes[0]
	assert.NotNil(t, quote.TradeDate)
	assert.Equal(t, "VALE3", quote.TickerValue())
	assert.Equal(t, "BRVALEACNOR0", quote.ISINValue())
	assert.Equal(t, 90.00, *quote.Close)
	assert.Nil(t, quote.Open)
	assert.Nil(t, quote.Volume)
}

func TestGetQuotesRejectsUnknownColumn(t *testing.T) {
	engine := newFixtureEngine(t)

	_, err := engine.GetQuotes(context.Background(), query.Criteria{
		Tickers: []string{"VALE3"},
		Columns: []string{"NOPE"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnknownColumn)
}

func TestGetQuotesRequiresStarterCriterion(t *testing.T) {
	engine := newFixtureEngine(t)

	_, err := engine.GetQuotes(context.Background(), query.Criteria{})
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrNoCriteria)

	// A bare date range would scan the whole store and is rejected too.
	_, err = engine.GetQuotes(context.Background(), query.Criteria{
		StartDate: datePtr(day(2021, time.January, 1)),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrNoCriteria)
}

func TestGetQuotesRejectsUnknownAssetClass(t *testing.T) {
	engine := newFixtureEngine(t)

	_, err := engine.GetQuotes(context.Background(), query.Criteria{
		Class: query.AssetClass("stocks"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrUnknownAssetClass)
}

func TestGetQuotesScanFailureDegradesToEmpty(t *testing.T) {
	myLibrary := buildFixtureLibrary(t)

	engine, err := query.NewEngine(context.Background(), myLibrary, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(myLibrary.StorePath(), []byte("not parquet"), 0o644))

	quotes, err := engine.GetQuotes(context.Background(), query.Criteria{
		Tickers: []string{"PETR4"},
	})
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestParseAssetClass(t *testing.T) {
	class, err := query.ParseAssetClass(" Equity ")
	require.NoError(t, err)
	assert.Equal(t, query.ClassEquity, class)

	class, err = query.ParseAssetClass("")
	require.NoError(t, err)
	assert.Equal(t, query.ClassNone, class)

	_, err = query.ParseAssetClass("bonds")
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrUnknownAssetClass)
}
