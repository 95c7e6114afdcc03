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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantbr/b3data/master"
)

// masterCmd represents the master command
var masterCmd = &cobra.Command{
	Use:   "master",
	Short: "Rebuild the security master from the quote store",
	Long: `The master sub-command scans the existing quote store and rewrites the
security master artifacts, the compact parquet the query engine loads and
the CSV spreadsheet. It requires a store built by a previous run of build.`,
	Run: func(cmd *cobra.Command, args []string) {
		myLibrary := loadLibrary()

		securities, err := master.Build(context.Background(), myLibrary, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("could not build the security master")
		}

		log.Info().Int("NumSecurities", securities).
			Str("MasterFile", myLibrary.MasterPath()).
			Msg("security master rebuilt")
	},
}

func init() {
	rootCmd.AddCommand(masterCmd)
}
