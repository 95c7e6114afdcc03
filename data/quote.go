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
package data

import "time"

// Column names as they appear in the quote store. These follow the field
// names of the B3 COTAHIST layout so the store stays readable with any
// off-the-shelf parquet tool.
const (
	ColRecordType         = "TIPREG"
	ColTradeDate          = "DATA_PREGAO"
	ColBDICode            = "CODBDI"
	ColTicker             = "CODNEG"
	ColMarketType         = "TPMERC"
	ColShortName          = "NOMRES"
	ColSpec               = "ESPECI"
	ColTerm               = "PRAZOT"
	ColCurrency           = "MODREF"
	ColOpen               = "PREABE"
	ColHigh               = "PREMAX"
	ColLow                = "PREMIN"
	ColAverage            = "PREMED"
	ColClose              = "PREULT"
	ColBid                = "PREOFC"
	ColAsk                = "PREOFV"
	ColTrades             = "TOTNEG"
	ColQuantity           = "QUATOT"
	ColVolume             = "VOLTOT"
	ColStrikePrice        = "PREEXE"
	ColOptionStyle        = "INDOPC"
	ColExpireDate         = "DATVEN"
	ColQuoteFactor        = "FATCOT"
	ColStrikePoints       = "PTOEXE"
	ColISIN               = "CODISI"
	ColDistributionNumber = "DISMES"
)

// Quote is a single daily quote record from a COTAHIST file. Every field is
// a pointer: a nil field means the source record did not carry a usable
// value for it, which is different from zero. Prices arrive from B3 as
// integers scaled by 100 and are stored here already divided.
type Quote struct {
	RecordType         *int64     `json:"tipreg"`
	TradeDate          *time.Time `json:"data_pregao"`
	BDICode            *int64     `json:"codbdi"`
	Ticker             *string    `json:"codneg"`
	MarketType         *int64     `json:"tpmerc"`
	ShortName          *string    `json:"nomres"`
	Spec               *string    `json:"especi"`
	Term               *int64     `json:"prazot"`
	Currency           *string    `json:"modref"`
	Open               *float64   `json:"preabe"`
	High               *float64   `json:"premax"`
	Low                *float64   `json:"premin"`
	Average            *float64   `json:"premed"`
	Close              *float64   `json:"preult"`
	Bid                *float64   `json:"preofc"`
	Ask                *float64   `json:"preofv"`
	Trades             *int64     `json:"totneg"`
	Quantity           *int64     `json:"quatot"`
	Volume             *float64   `json:"voltot"`
	StrikePrice        *float64   `json:"preexe"`
	OptionStyle        *int64     `json:"indopc"`
	ExpireDate         *time.Time `json:"datven"`
	QuoteFactor        *int64     `json:"fatcot"`
	StrikePoints       *int64     `json:"ptoexe"`
	ISIN               *string    `json:"codisi"`
	DistributionNumber *int64     `json:"dismes"`
}

// TickerValue returns the ticker or "" when missing.
func (quote *Quote) TickerValue() string {
	if quote.Ticker == nil {
		return ""
	}

	return *quote.Ticker
}

// ISINValue returns the ISIN or "" when missing.
func (quote *Quote) ISINValue() string {
	if quote.ISIN == nil {
		return ""
	}

	return *quote.ISIN
}
