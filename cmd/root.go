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
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantbr/b3data/library"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "b3data",
	Short: "b3data builds and queries a local library of B3 quote history",
	Long: `b3data is a command line utility for turning the COTAHIST files published
by B3, the Brazilian stock exchange, into a local quote library that can be
queried in milliseconds instead of re-parsed for hours.

B3 publishes the full daily quote history as fixed-width latin-1 text, one
zip archive per year, reaching back to 1986. b3data manages the whole life
of that data:

	* extract the downloaded archives
	* decode every record into typed columns and build a columnar store
	* derive a security master that tracks each instrument across decades
	  of ticker and name changes
	* answer quote queries with filters pushed into the store scan

The library lives entirely on the local filesystem. No database server and
no network access are required after the archives are downloaded.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.b3data.toml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "directory the quote library lives in")
	if err := viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for data-dir failed")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".b3data" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".b3data")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}

// loadLibrary builds the library handle from configuration.
func loadLibrary() *library.Library {
	return library.New(
		viper.GetString("name"),
		viper.GetString("owner"),
		viper.GetString("data_dir"),
	)
}
