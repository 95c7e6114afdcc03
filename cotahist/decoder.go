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

// Package cotahist decodes the fixed-width COTAHIST quote history files
// published by B3. Column positions follow the official layout manual and
// are 1-based inclusive ranges over characters, which matches byte positions
// in the original single-byte encoding.
package cotahist

import (
	"strconv"
	"strings"
	"time"

	"github.com/quantbr/b3data/data"
)

// LineLength is the number of characters in a well-formed COTAHIST record.
const LineLength = 245

// DateLayout is the format dates are written in throughout the file.
const DateLayout = "20060102"

// Decode converts one content line into a quote. Decode never fails: a
// field that cannot be parsed is left nil, and a short or malformed line
// yields a quote with every unparseable field missing. Zero-filled dates
// and blank numeric fields decode to nil, never to zero values. Prices are
// published as integers scaled by 100 and are divided during decoding.
func Decode(line string) *data.Quote {
	runes := []rune(line)

	return &data.Quote{
		RecordType:         intField(runes, 1, 2),
		TradeDate:          dateField(runes, 3, 10),
		BDICode:            intField(runes, 11, 12),
		Ticker:             textField(runes, 13, 24),
		MarketType:         intField(runes, 25, 27),
		ShortName:          textField(runes, 28, 39),
		Spec:               textField(runes, 40, 49),
		Term:               intField(runes, 50, 52),
		Currency:           textField(runes, 53, 56),
		Open:               priceField(runes, 57, 69),
		High:               priceField(runes, 70, 82),
		Low:                priceField(runes, 83, 95),
		Average:            priceField(runes, 96, 108),
		Close:              priceField(runes, 109, 121),
		Bid:                priceField(runes, 122, 134),
		Ask:                priceField(runes, 135, 147),
		Trades:             intField(runes, 148, 152),
		Quantity:           intField(runes, 153, 170),
		Volume:             priceField(runes, 171, 188),
		StrikePrice:        priceField(runes, 189, 201),
		OptionStyle:        intField(runes, 202, 202),
		ExpireDate:         dateField(runes, 203, 210),
		QuoteFactor:        intField(runes, 211, 217),
		StrikePoints:       intField(runes, 218, 230),
		ISIN:               textField(runes, 231, 242),
		DistributionNumber: intField(runes, 243, 245),
	}
}

// extract returns the trimmed text at the 1-based inclusive column range,
// clamped to the line that was actually read.
func extract(runes []rune, start, end int) string {
	if start > len(runes) {
		return ""
	}

	if end > len(runes) {
		end = len(runes)
	}

	return strings.TrimSpace(string(runes[start-1 : end]))
}

func textField(runes []rune, start, end int) *string {
	raw := extract(runes, start, end)
	if raw == "" {
		return nil
	}

	return &raw
}

func intField(runes []rune, start, end int) *int64 {
	raw := extract(runes, start, end)
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}

	return &val
}

func priceField(runes []rune, start, end int) *float64 {
	raw := extract(runes, start, end)
	cents, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}

	price := float64(cents) / 100

	return &price
}

func dateField(runes []rune, start, end int) *time.Time {
	raw := extract(runes, start, end)
	if raw == "" {
		return nil
	}

	dt, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil
	}

	return &dt
}
