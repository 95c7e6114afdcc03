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
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantbr/b3data/library"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather library configuration and create the directory layout",
	Run: func(cmd *cobra.Command, args []string) {
		myLibrary := &library.Library{DataDir: "data"}

		form := huh.NewForm(
			// Gather details about the library and who owns it
			huh.NewGroup(
				huh.NewInput().
					Title("Give the library a name:").
					Value(&myLibrary.Name),

				huh.NewInput().
					Title("Who owns the library?").
					Value(&myLibrary.Owner),
			),

			// Get details about where the data lives
			huh.NewGroup(
				huh.NewInput().
					Title("Where should the library store its data? (the directory is created if needed)").
					Value(&myLibrary.DataDir).
					Validate(func(dir string) error {
						if strings.TrimSpace(dir) == "" {
							return errors.New("a data directory is required")
						}
						return nil
					}),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering library settings")
		}

		log.Info().Str("DataDir", myLibrary.DataDir).Msg("creating library directories")

		if err := myLibrary.EnsureDirs(); err != nil {
			log.Fatal().Err(err).Msg("error creating library directories")
		}

		log.Info().Msg("library directories created")
		log.Info().Msg("drop COTAHIST zip archives into the raw directory and run 'b3data build'")

		// save library settings to config file
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".b3data.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving library settings to config file")
		configData, err := toml.Marshal(myLibrary)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0644)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("Your quote library has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
