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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantbr/b3data/query"
)

var tickersCommon bool

// tickersCmd represents the tickers command
var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "List the latest tickers known to the security master",
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := query.NewEngine(context.Background(), loadLibrary(), log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open the quote library")
		}

		kind := query.AllTickers
		if tickersCommon {
			kind = query.CommonShares
		}

		for _, ticker := range engine.ListTickers(kind) {
			fmt.Println(ticker)
		}
	},
}

func init() {
	rootCmd.AddCommand(tickersCmd)

	tickersCmd.Flags().BoolVar(&tickersCommon, "common", false, "only tickers whose latest specification is a common share")
}
