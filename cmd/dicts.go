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
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantbr/b3data/refdata"
)

// dictsCmd represents the dicts command
var dictsCmd = &cobra.Command{
	Use:   "dicts",
	Short: "Write the CODBDI and TPMERC code dictionaries",
	Long: `The dicts sub-command writes the two code dictionary CSVs into the
library's outputs directory. Build runs this step automatically; the
standalone command exists to refresh the dictionaries without a rebuild.`,
	Run: func(cmd *cobra.Command, args []string) {
		myLibrary := loadLibrary()
		if err := myLibrary.EnsureDirs(); err != nil {
			log.Fatal().Err(err).Msg("could not create library directories")
		}

		if err := refdata.Write(myLibrary.BDIDictPath(), myLibrary.MarketTypeDictPath()); err != nil {
			log.Fatal().Err(err).Msg("could not write the code dictionaries")
		}

		log.Info().Str("BDIDict", myLibrary.BDIDictPath()).
			Str("MarketTypeDict", myLibrary.MarketTypeDictPath()).
			Msg("code dictionaries written")
	},
}

func init() {
	rootCmd.AddCommand(dictsCmd)
}
