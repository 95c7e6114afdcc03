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

import "strings"

// TrailSeparator joins the distinct historical values recorded for a
// security into a single readable string.
const TrailSeparator = " | "

// Security is one entry of the security master: the latest identity of a
// listed instrument keyed by ISIN, plus the trail of every ticker and short
// name it traded under across the ingested history.
type Security struct {
	ISIN          string `json:"codisi" csv:"CODISI"`
	LastTicker    string `json:"ultimo_ticker" csv:"ULTIMO_TICKER"`
	LastName      string `json:"ultimo_nome" csv:"ULTIMO_NOME"`
	LastSpec      string `json:"ultima_especificacao" csv:"ULTIMA_ESPECIFICACAO"`
	TickerHistory string `json:"tickers_historicos" csv:"TICKERS_HISTORICOS"`
	NameHistory   string `json:"nomes_historicos" csv:"NOMES_HISTORICOS"`
}

// Tickers splits the ticker trail back into its distinct values.
func (security *Security) Tickers() []string {
	if security.TickerHistory == "" {
		return nil
	}

	return strings.Split(security.TickerHistory, TrailSeparator)
}

// Names splits the short name trail back into its distinct values.
func (security *Security) Names() []string {
	if security.NameHistory == "" {
		return nil
	}

	return strings.Split(security.NameHistory, TrailSeparator)
}
