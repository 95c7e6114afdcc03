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
package refdata

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/quantbr/b3data/library"
)

type bdiRow struct {
	Code        int64  `csv:"CODBDI"`
	Description string `csv:"DESCRICAO_CODBDI"`
}

type marketTypeRow struct {
	Code        int64  `csv:"TPMERC"`
	Description string `csv:"DESCRICAO_TPMERC"`
}

// Write emits both code tables as CSV artifacts, rows ordered by code.
func Write(bdiPath, marketTypePath string) error {
	bdiRows := make([]*bdiRow, 0, len(BDIDescriptions))
	for code, desc := range BDIDescriptions {
		bdiRows = append(bdiRows, &bdiRow{Code: code, Description: desc})
	}

	sort.Slice(bdiRows, func(i, j int) bool { return bdiRows[i].Code < bdiRows[j].Code })

	if err := writeCSV(bdiPath, &bdiRows); err != nil {
		return err
	}

	marketRows := make([]*marketTypeRow, 0, len(MarketTypeDescriptions))
	for code, desc := range MarketTypeDescriptions {
		marketRows = append(marketRows, &marketTypeRow{Code: code, Description: desc})
	}

	sort.Slice(marketRows, func(i, j int) bool { return marketRows[i].Code < marketRows[j].Code })

	return writeCSV(marketTypePath, &marketRows)
}

func writeCSV(path string, rows any) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dictionary %s: %w", path, err)
	}
	defer fh.Close()

	if err := gocsv.MarshalFile(rows, fh); err != nil {
		return fmt.Errorf("writing dictionary %s: %w", path, err)
	}

	return nil
}

// Dictionaries are the loaded code tables, indexed both by code and by
// upper-cased description. They are read once and never mutated, so they
// are safe to share.
type Dictionaries struct {
	bdi          map[int64]string
	bdiByDesc    map[string][]int64
	market       map[int64]string
	marketByDesc map[string][]int64
}

// Load reads both dictionary artifacts back. A missing file is a missing
// precondition for whoever needed the dictionaries, reported distinctly
// from parse failures.
func Load(bdiPath, marketTypePath string) (*Dictionaries, error) {
	var bdiRows []*bdiRow
	if err := readCSV(bdiPath, &bdiRows); err != nil {
		return nil, err
	}

	var marketRows []*marketTypeRow
	if err := readCSV(marketTypePath, &marketRows); err != nil {
		return nil, err
	}

	dicts := &Dictionaries{
		bdi:          make(map[int64]string, len(bdiRows)),
		bdiByDesc:    make(map[string][]int64),
		market:       make(map[int64]string, len(marketRows)),
		marketByDesc: make(map[string][]int64),
	}

	for _, row := range bdiRows {
		dicts.bdi[row.Code] = row.Description
		desc := strings.ToUpper(row.Description)
		dicts.bdiByDesc[desc] = append(dicts.bdiByDesc[desc], row.Code)
	}

	for _, row := range marketRows {
		dicts.market[row.Code] = row.Description
		desc := strings.ToUpper(row.Description)
		dicts.marketByDesc[desc] = append(dicts.marketByDesc[desc], row.Code)
	}

	return dicts, nil
}

func readCSV(path string, rows any) error {
	fh, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", library.ErrMissingArtifact, path)
		}

		return fmt.Errorf("opening dictionary %s: %w", path, err)
	}
	defer fh.Close()

	if err := gocsv.UnmarshalFile(fh, rows); err != nil {
		return fmt.Errorf("parsing dictionary %s: %w", path, err)
	}

	return nil
}

// BDIDescription resolves a BDI code to its description.
func (dicts *Dictionaries) BDIDescription(code int64) (string, bool) {
	desc, ok := dicts.bdi[code]

	return desc, ok
}

// MarketTypeDescription resolves a market type code to its description.
func (dicts *Dictionaries) MarketTypeDescription(code int64) (string, bool) {
	desc, ok := dicts.market[code]

	return desc, ok
}

// BDICodes resolves a description to every BDI code that carries it. The
// lookup ignores case and the result is sorted.
func (dicts *Dictionaries) BDICodes(description string) []int64 {
	codes := append([]int64(nil), dicts.bdiByDesc[strings.ToUpper(description)]...)
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	return codes
}

// MarketTypeCodes resolves a description to every market type code that
// carries it. The lookup ignores case and the result is sorted.
func (dicts *Dictionaries) MarketTypeCodes(description string) []int64 {
	codes := append([]int64(nil), dicts.marketByDesc[strings.ToUpper(description)]...)
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	return codes
}
