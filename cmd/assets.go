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
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantbr/b3data/data"
	"github.com/quantbr/b3data/query"
)

var assetsBest bool

// assetsCmd represents the assets command
var assetsCmd = &cobra.Command{
	Use:   "assets <query>",
	Short: "Search the security master by name, ticker, or ISIN",
	Long: `The assets sub-command searches the security master. The query matches
company names as a substring, historical tickers as a whole token, and
ISINs exactly, all ignoring case.

Examples:

	b3data assets gerdau
	b3data assets PETR4
	b3data assets BRVALEACNOR0 --best`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := query.NewEngine(context.Background(), loadLibrary(), log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open the quote library")
		}

		if assetsBest {
			security, err := engine.AssetInfo(args[0])
			if err != nil {
				log.Fatal().Err(err).Msg("asset lookup failed")
			}

			printAssetCard(security)

			return
		}

		matches := engine.FindAssets(args[0])
		if len(matches) == 0 {
			log.Warn().Str("Query", args[0]).Msg("no assets match")

			return
		}

		r, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(120),
		)

		builder := strings.Builder{}
		builder.WriteString(fmt.Sprintf("# Assets matching %q\n\n", args[0]))
		builder.WriteString("| ISIN | Ticker | Name | Spec | Historical Tickers |\n")
		builder.WriteString("| --- | --- | --- | --- | --- |\n")

		for _, security := range matches {
			builder.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				security.ISIN, security.LastTicker, security.LastName,
				security.LastSpec, security.TickerHistory))
		}

		out, err := r.Render(builder.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render asset document")
		}

		fmt.Print(out)
	},
}

// printAssetCard renders one security the way a broker's terminal would,
// identity on top and the historical trails below.
func printAssetCard(security *data.Security) {
	var sb strings.Builder

	keyword := func(s string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
	}

	fmt.Fprintf(&sb,
		"%s\n\nISIN: %s\nTicker: %s\nName: %s\nSpecification: %s\n\n",
		lipgloss.NewStyle().Bold(true).Render(security.LastTicker),
		keyword(security.ISIN),
		keyword(security.LastTicker),
		keyword(security.LastName),
		keyword(security.LastSpec),
	)

	fmt.Fprintln(&sb, lipgloss.NewStyle().Bold(true).Render("Historical Identity"))
	fmt.Fprintf(&sb, "\nTickers: %s", keyword(security.TickerHistory))
	fmt.Fprintf(&sb, "\nNames: %s", keyword(security.NameHistory))

	fmt.Println(
		lipgloss.NewStyle().
			Width(60).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2).
			Render(sb.String()),
	)
}

func init() {
	rootCmd.AddCommand(assetsCmd)

	assetsCmd.Flags().BoolVar(&assetsBest, "best", false, "print only the best match")
}
