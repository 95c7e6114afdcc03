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
package cotahist_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbr/b3data/cotahist"
)

// columnRanges is an independent copy of the published layout so the tests
// can build lines without leaning on the decoder under test.
var columnRanges = map[string][2]int{
	"TIPREG":      {1, 2},
	"DATA_PREGAO": {3, 10},
	"CODBDI":      {11, 12},
	"CODNEG":      {13, 24},
	"TPMERC":      {25, 27},
	"NOMRES":      {28, 39},
	"ESPECI":      {40, 49},
	"PRAZOT":      {50, 52},
	"MODREF":      {53, 56},
	"PREABE":      {57, 69},
	"PREMAX":      {70, 82},
	"PREMIN":      {83, 95},
	"PREMED":      {96, 108},
	"PREULT":      {109, 121},
	"PREOFC":      {122, 134},
	"PREOFV":      {135, 147},
	"TOTNEG":      {148, 152},
	"QUATOT":      {153, 170},
	"VOLTOT":      {171, 188},
	"PREEXE":      {189, 201},
	"INDOPC":      {202, 202},
	"DATVEN":      {203, 210},
	"FATCOT":      {211, 217},
	"PTOEXE":      {218, 230},
	"CODISI":      {231, 242},
	"DISMES":      {243, 245},
}

func buildLine(t *testing.T, fields map[string]string) string {
	t.Helper()

	line := []rune(strings.Repeat(" ", cotahist.LineLength))

	for name, value := range fields {
		pos, ok := columnRanges[name]
		require.True(t, ok, "unknown field %s", name)
		require.LessOrEqual(t, len(value), pos[1]-pos[0]+1, "value too wide for %s", name)

		for i, r := range value {
			line[pos[0]-1+i] = r
		}
	}

	return string(line)
}

func petr4Line(t *testing.T) string {
	t.Helper()

	return buildLine(t, map[string]string{
		"TIPREG":      "01",
		"DATA_PREGAO": "20240119",
		"CODBDI":      "02",
		"CODNEG":      "PETR4",
		"TPMERC":      "010",
		"NOMRES":      "PETROBRAS",
		"ESPECI":      "PN",
		"MODREF":      "R$",
		"PREABE":      "0000000003785",
		"PREMAX":      "0000000003818",
		"PREMIN":      "0000000003771",
		"PREMED":      "0000000003797",
		"PREULT":      "0000000003783",
		"PREOFC":      "0000000003782",
		"PREOFV":      "0000000003783",
		"TOTNEG":      "42390",
		"QUATOT":      "000000000075577800",
		"VOLTOT":      "000000286753042000",
		"PREEXE":      "0000000000000",
		"INDOPC":      "0",
		"DATVEN":      "99991231",
		"FATCOT":      "0000001",
		"PTOEXE":      "0000000000000",
		"CODISI":      "BRPETRACNPR6",
		"DISMES":      "189",
	})
}

func TestDecode(t *testing.T) {
	quote := cotahist.Decode(petr4Line(t))

	require.NotNil(t, quote.RecordType)
	assert.Equal(t, int64(1), *quote.RecordType)

	require.NotNil(t, quote.TradeDate)
	assert.Equal(t, time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC), *quote.TradeDate)

	require.NotNil(t, quote.BDICode)
	assert.Equal(t, int64(2), *quote.BDICode)

	require.NotNil(t, quote.Ticker)
	assert.Equal(t, "PETR4", *quote.Ticker)

	require.NotNil(t, quote.MarketType)
	assert.Equal(t, int64(10), *quote.MarketType)

	require.NotNil(t, quote.ShortName)
	assert.Equal(t, "PETROBRAS", *quote.ShortName)

	require.NotNil(t, quote.Spec)
	assert.Equal(t, "PN", *quote.Spec)

	assert.Nil(t, quote.Term, "blank term must stay missing")

	require.NotNil(t, quote.Currency)
	assert.Equal(t, "R$", *quote.Currency)

	require.NotNil(t, quote.Open)
	assert.InDelta(t, 37.85, *quote.Open, 1e-9)

	require.NotNil(t, quote.High)
	assert.InDelta(t, 38.18, *quote.High, 1e-9)

	require.NotNil(t, quote.Low)
	assert.InDelta(t, 37.71, *quote.Low, 1e-9)

	require.NotNil(t, quote.Average)
	assert.InDelta(t, 37.97, *quote.Average, 1e-9)

	require.NotNil(t, quote.Close)
	assert.InDelta(t, 37.83, *quote.Close, 1e-9)

	require.NotNil(t, quote.Bid)
	assert.InDelta(t, 37.82, *quote.Bid, 1e-9)

	require.NotNil(t, quote.Ask)
	assert.InDelta(t, 37.83, *quote.Ask, 1e-9)

	require.NotNil(t, quote.Trades)
	assert.Equal(t, int64(42390), *quote.Trades)

	require.NotNil(t, quote.Quantity)
	assert.Equal(t, int64(75577800), *quote.Quantity)

	require.NotNil(t, quote.Volume)
	assert.InDelta(t, 2867530420.0, *quote.Volume, 1e-6)

	require.NotNil(t, quote.StrikePrice)
	assert.Zero(t, *quote.StrikePrice, "zero-filled strike parses to zero, not missing")

	require.NotNil(t, quote.OptionStyle)
	assert.Equal(t, int64(0), *quote.OptionStyle)

	require.NotNil(t, quote.ExpireDate)
	assert.Equal(t, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC), *quote.ExpireDate)

	require.NotNil(t, quote.QuoteFactor)
	assert.Equal(t, int64(1), *quote.QuoteFactor)

	require.NotNil(t, quote.StrikePoints)
	assert.Equal(t, int64(0), *quote.StrikePoints)

	require.NotNil(t, quote.ISIN)
	assert.Equal(t, "BRPETRACNPR6", *quote.ISIN)

	require.NotNil(t, quote.DistributionNumber)
	assert.Equal(t, int64(189), *quote.DistributionNumber)
}

func TestDecodePriceScaling(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want float64
	}{
		{"integer real", "0000000012300", 123.0},
		{"two decimal places", "0000000012345", 123.45},
		{"single cent", "0000000000001", 0.01},
		{"large volume", "9999999999999", 99999999999.99},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote := cotahist.Decode(buildLine(t, map[string]string{"PREULT": tc.raw}))
			require.NotNil(t, quote.Close)
			assert.InDelta(t, tc.want, *quote.Close, 1e-9)
		})
	}
}

func TestDecodeMalformedFields(t *testing.T) {
	t.Run("unparsable price is missing not zero", func(t *testing.T) {
		quote := cotahist.Decode(buildLine(t, map[string]string{
			"CODNEG": "PETR4",
			"PREULT": "00000000XX345",
		}))

		assert.Nil(t, quote.Close)
		require.NotNil(t, quote.Ticker, "the rest of the record must survive")
		assert.Equal(t, "PETR4", *quote.Ticker)
	})

	t.Run("zero-filled date is missing", func(t *testing.T) {
		quote := cotahist.Decode(buildLine(t, map[string]string{"DATVEN": "00000000"}))
		assert.Nil(t, quote.ExpireDate)
	})

	t.Run("blank numeric is missing", func(t *testing.T) {
		quote := cotahist.Decode(buildLine(t, map[string]string{"CODNEG": "VALE3"}))
		assert.Nil(t, quote.BDICode)
		assert.Nil(t, quote.Trades)
		assert.Nil(t, quote.Open)
	})

	t.Run("blank text is missing", func(t *testing.T) {
		quote := cotahist.Decode(buildLine(t, map[string]string{"TIPREG": "01"}))
		assert.Nil(t, quote.Ticker)
		assert.Nil(t, quote.ISIN)
	})
}

func TestDecodeShortLine(t *testing.T) {
	full := buildLine(t, map[string]string{
		"TIPREG":      "01",
		"DATA_PREGAO": "20240119",
		"CODBDI":      "02",
		"CODNEG":      "PETR4",
	})

	// cut inside CODNEG: everything before it decodes, everything at or
	// past the cut is missing
	quote := cotahist.Decode(full[:15])

	require.NotNil(t, quote.RecordType)
	require.NotNil(t, quote.TradeDate)
	require.NotNil(t, quote.BDICode)
	require.NotNil(t, quote.Ticker)
	assert.Equal(t, "PET", *quote.Ticker)
	assert.Nil(t, quote.MarketType)
	assert.Nil(t, quote.ISIN)
}

func TestDecodeEmptyLine(t *testing.T) {
	quote := cotahist.Decode("")

	assert.Nil(t, quote.RecordType)
	assert.Nil(t, quote.TradeDate)
	assert.Nil(t, quote.Ticker)
	assert.Nil(t, quote.Close)
	assert.Nil(t, quote.ISIN)
}
