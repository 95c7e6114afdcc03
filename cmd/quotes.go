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
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantbr/b3data/data"
	"github.com/quantbr/b3data/query"
)

var quotesFlags struct {
	tickers      []string
	entity       string
	class        string
	root         string
	start        string
	end          string
	expireAfter  string
	expireBefore string
	bdi          []string
	tpmerc       []string
	isins        []string
	specs        []string
	columns      []string
	asJSON       bool
}

// quotesCmd represents the quotes command
var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Query historical quotes from the store",
	Long: `The quotes sub-command runs one filtered query against the columnar
store. Filters combine with AND semantics and at least one of --tickers,
--entity, --class, --root, --bdi, --tpmerc, or --isin must be given, so a
typo never triggers a full-history scan.

Examples:

	b3data quotes --tickers PETR4 --start 2021-01-01 --end 2021-12-31
	b3data quotes --entity vale --class options
	b3data quotes --class fii --start 2023-01-01
	b3data quotes --tickers MGLU3 --columns PREULT,TOTNEG --json`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		class, err := query.ParseAssetClass(quotesFlags.class)
		if err != nil {
			log.Fatal().Err(err).Msg("unrecognized --class value")
		}

		criteria := query.Criteria{
			Tickers:      quotesFlags.tickers,
			Entity:       quotesFlags.entity,
			Class:        class,
			TickerRoot:   quotesFlags.root,
			StartDate:    parseDateFlag("start", quotesFlags.start),
			EndDate:      parseDateFlag("end", quotesFlags.end),
			ExpireAfter:  parseDateFlag("expire-after", quotesFlags.expireAfter),
			ExpireBefore: parseDateFlag("expire-before", quotesFlags.expireBefore),
			BDICodes:     quotesFlags.bdi,
			MarketTypes:  quotesFlags.tpmerc,
			ISINs:        quotesFlags.isins,
			SpecContains: quotesFlags.specs,
			Columns:      quotesFlags.columns,
		}

		engine, err := query.NewEngine(ctx, loadLibrary(), log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open the quote library")
		}

		quotes, err := engine.GetQuotes(ctx, criteria)
		if err != nil {
			log.Fatal().Err(err).Msg("quote query failed")
		}

		if quotesFlags.asJSON {
			out, err := json.MarshalIndent(quotes, "", "  ")
			if err != nil {
				log.Fatal().Err(err).Msg("could not marshal quotes")
			}

			fmt.Println(string(out))

			return
		}

		printQuoteTable(quotes, criteria.Columns)
	},
}

func parseDateFlag(name, value string) *time.Time {
	if value == "" {
		return nil
	}

	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		log.Fatal().Err(err).Str("Flag", name).Str("Value", value).
			Msg("dates must look like 2006-01-02")
	}

	return &parsed
}

func printQuoteTable(quotes []*data.Quote, columns []string) {
	valueColumns := []string{
		data.ColOpen, data.ColHigh, data.ColLow,
		data.ColClose, data.ColVolume, data.ColQuantity,
	}

	if len(columns) > 0 {
		valueColumns = valueColumns[:0]
		for _, column := range columns {
			valueColumns = append(valueColumns, strings.ToUpper(strings.TrimSpace(column)))
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	header := append([]string{data.ColTradeDate, data.ColTicker, data.ColISIN}, valueColumns...)
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, quote := range quotes {
		row := []string{
			formatQuoteValue(quote, data.ColTradeDate),
			formatQuoteValue(quote, data.ColTicker),
			formatQuoteValue(quote, data.ColISIN),
		}

		for _, column := range valueColumns {
			row = append(row, formatQuoteValue(quote, column))
		}

		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
}

// formatQuoteValue renders one store column of a quote, "-" when missing.
func formatQuoteValue(quote *data.Quote, column string) string {
	switch column {
	case data.ColRecordType:
		return formatInt(quote.RecordType)
	case data.ColTradeDate:
		return formatDate(quote.TradeDate)
	case data.ColBDICode:
		return formatInt(quote.BDICode)
	case data.ColTicker:
		return formatText(quote.Ticker)
	case data.ColMarketType:
		return formatInt(quote.MarketType)
	case data.ColShortName:
		return formatText(quote.ShortName)
	case data.ColSpec:
		return formatText(quote.Spec)
	case data.ColTerm:
		return formatInt(quote.Term)
	case data.ColCurrency:
		return formatText(quote.Currency)
	case data.ColOpen:
		return formatPrice(quote.Open)
	case data.ColHigh:
		return formatPrice(quote.High)
	case data.ColLow:
		return formatPrice(quote.Low)
	case data.ColAverage:
		return formatPrice(quote.Average)
	case data.ColClose:
		return formatPrice(quote.Close)
	case data.ColBid:
		return formatPrice(quote.Bid)
	case data.ColAsk:
		return formatPrice(quote.Ask)
	case data.ColTrades:
		return formatInt(quote.Trades)
	case data.ColQuantity:
		return formatInt(quote.Quantity)
	case data.ColVolume:
		return formatPrice(quote.Volume)
	case data.ColStrikePrice:
		return formatPrice(quote.StrikePrice)
	case data.ColOptionStyle:
		return formatInt(quote.OptionStyle)
	case data.ColExpireDate:
		return formatDate(quote.ExpireDate)
	case data.ColQuoteFactor:
		return formatInt(quote.QuoteFactor)
	case data.ColStrikePoints:
		return formatInt(quote.StrikePoints)
	case data.ColISIN:
		return formatText(quote.ISIN)
	case data.ColDistributionNumber:
		return formatInt(quote.DistributionNumber)
	}

	return "-"
}

func formatInt(v *int64) string {
	if v == nil {
		return "-"
	}

	return fmt.Sprintf("%d", *v)
}

func formatPrice(v *float64) string {
	if v == nil {
		return "-"
	}

	return fmt.Sprintf("%.2f", *v)
}

func formatText(v *string) string {
	if v == nil {
		return "-"
	}

	return *v
}

func formatDate(v *time.Time) string {
	if v == nil {
		return "-"
	}

	return v.Format("2006-01-02")
}

func init() {
	rootCmd.AddCommand(quotesCmd)

	quotesCmd.Flags().StringSliceVar(&quotesFlags.tickers, "tickers", nil, "tickers to fetch, e.g. PETR4,VALE3")
	quotesCmd.Flags().StringVar(&quotesFlags.entity, "entity", "", "company name to resolve against the security master")
	quotesCmd.Flags().StringVar(&quotesFlags.class, "class", "", "asset class: equity, fii, bdr, or options")
	quotesCmd.Flags().StringVar(&quotesFlags.root, "root", "", "4-letter ticker root, e.g. VALE for all VALE* series")
	quotesCmd.Flags().StringVar(&quotesFlags.start, "start", "", "first trade date, inclusive (2006-01-02)")
	quotesCmd.Flags().StringVar(&quotesFlags.end, "end", "", "last trade date, inclusive (2006-01-02)")
	quotesCmd.Flags().StringVar(&quotesFlags.expireAfter, "expire-after", "", "earliest derivative expiration, inclusive")
	quotesCmd.Flags().StringVar(&quotesFlags.expireBefore, "expire-before", "", "latest derivative expiration, inclusive")
	quotesCmd.Flags().StringSliceVar(&quotesFlags.bdi, "bdi", nil, "BDI codes or descriptions, e.g. 2 or 'FUNDOS IMOBILIÁRIOS'")
	quotesCmd.Flags().StringSliceVar(&quotesFlags.tpmerc, "tpmerc", nil, "market type codes or descriptions, e.g. 10 or VISTA")
	quotesCmd.Flags().StringSliceVar(&quotesFlags.isins, "isin", nil, "ISIN codes to fetch")
	quotesCmd.Flags().StringSliceVar(&quotesFlags.specs, "spec", nil, "keep rows whose specification contains any of these")
	quotesCmd.Flags().StringSliceVar(&quotesFlags.columns, "columns", nil, "value columns to return (default open/high/low/close/volume/quantity)")
	quotesCmd.Flags().BoolVar(&quotesFlags.asJSON, "json", false, "print quotes as JSON instead of a table")
}
