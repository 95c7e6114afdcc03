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
	"github.com/spf13/viper"

	"github.com/quantbr/b3data/backblaze"
)

// publishCmd represents the publish command
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload the built library artifacts to Backblaze B2",
	Long: `The publish sub-command uploads the quote store, security master,
dictionaries, and build manifest to a Backblaze B2 bucket. Other machines can
then download a ready-made library instead of rebuilding it from the raw
COTAHIST archives.

Credentials are read from backblaze.application_id and
backblaze.application_key in the config file.`,
	Run: func(cmd *cobra.Command, args []string) {
		bucketName := viper.GetString("backblaze.bucket")
		if bucketName == "" {
			log.Fatal().Msg("no bucket configured, set backblaze.bucket or pass --bucket")
		}

		myLibrary := loadLibrary()

		if err := backblaze.PublishArtifacts(myLibrary, bucketName, viper.GetString("backblaze.prefix")); err != nil {
			log.Fatal().Err(err).Msg("publish failed")
		}

		log.Info().Str("BucketName", bucketName).Msg("published library artifacts")
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().String("bucket", "", "backblaze bucket to upload artifacts to")
	if err := viper.BindPFlag("backblaze.bucket", publishCmd.Flags().Lookup("bucket")); err != nil {
		log.Panic().Err(err).Msg("could not bind backblaze.bucket")
	}

	publishCmd.Flags().String("prefix", "", "key prefix for uploaded artifacts")
	if err := viper.BindPFlag("backblaze.prefix", publishCmd.Flags().Lookup("prefix")); err != nil {
		log.Panic().Err(err).Msg("could not bind backblaze.prefix")
	}
}
