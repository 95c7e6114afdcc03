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
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantbr/b3data/archive"
	"github.com/quantbr/b3data/healthcheck"
	"github.com/quantbr/b3data/ingest"
	"github.com/quantbr/b3data/library"
	"github.com/quantbr/b3data/master"
	"github.com/quantbr/b3data/refdata"
	"github.com/quantbr/b3data/store"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the quote store, code dictionaries, and security master",
	Long: `The build sub-command runs the whole pipeline: extract any COTAHIST zip
archives waiting in the raw directory, decode every text file into the
columnar quote store, write the code dictionaries, and derive the security
master. The store is rebuilt from scratch on every run, so re-running build
after dropping in another year's archive is always safe.

When healthchecks.checkid is set in the config file, the build pings the
corresponding healthchecks.io check on start, success, and failure, so a
scheduled build that stops running raises an alert.`,
	Run: func(cmd *cobra.Command, args []string) {
		checkID := viper.GetString("healthchecks.checkid")
		if checkID != "" {
			if err := healthcheck.Start(checkID); err != nil {
				log.Warn().Err(err).Msg("healthcheck start ping failed")
			}
		}

		if err := runBuild(context.Background()); err != nil {
			if checkID != "" {
				if pingErr := healthcheck.Fail(checkID, err.Error()); pingErr != nil {
					log.Warn().Err(pingErr).Msg("healthcheck fail ping failed")
				}
			}

			log.Fatal().Err(err).Msg("library build failed")
		}

		if checkID != "" {
			if err := healthcheck.Success(checkID); err != nil {
				log.Warn().Err(err).Msg("healthcheck success ping failed")
			}
		}
	},
}

func runBuild(ctx context.Context) error {
	myLibrary := loadLibrary()
	if err := myLibrary.EnsureDirs(); err != nil {
		return fmt.Errorf("create library directories: %w", err)
	}

	manifest := library.NewManifest()
	log.Info().Str("BuildID", manifest.BuildID.String()).Msg("starting library build")

	if !viper.GetBool("skip_extract") {
		if _, err := archive.Extract(myLibrary.RawPath(), myLibrary.TextsPath(), log.Logger); err != nil {
			return fmt.Errorf("extract archives: %w", err)
		}
	}

	coordinator := ingest.NewCoordinator(myLibrary, viper.GetInt64("batch_size"), log.Logger)

	stats, err := coordinator.Run(ctx)
	if err != nil {
		return fmt.Errorf("build quote store: %w", err)
	}

	if err := refdata.Write(myLibrary.BDIDictPath(), myLibrary.MarketTypeDictPath()); err != nil {
		return fmt.Errorf("write code dictionaries: %w", err)
	}

	securities, err := master.Build(ctx, myLibrary, log.Logger)
	if err != nil {
		// A build over an empty raw directory produces no store; that
		// is a warning, not a broken pipeline.
		if errors.Is(err, library.ErrMissingArtifact) && stats.Rows == 0 {
			log.Warn().Msg("no quotes ingested, skipping the security master")
		} else {
			return fmt.Errorf("build security master: %w", err)
		}
	}

	manifest.Files = stats.Files
	manifest.FilesSkipped = stats.FilesSkipped
	manifest.FilesEmpty = stats.FilesEmpty
	manifest.Rows = stats.Rows
	manifest.ShortLines = stats.ShortLines
	manifest.Securities = securities
	manifest.StorePath = myLibrary.StorePath()
	manifest.FinishedAt = time.Now()

	if err := myLibrary.SaveManifest(manifest); err != nil {
		return fmt.Errorf("save build manifest: %w", err)
	}

	log.Info().Str("BuildID", manifest.BuildID.String()).
		Int64("NumRecords", manifest.Rows).
		Int("NumSecurities", manifest.Securities).
		Dur("Elapsed", manifest.FinishedAt.Sub(manifest.StartedAt)).
		Msg("library build finished")

	return nil
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().Int64("batch-size", store.DefaultBatchSize, "rows decoded per write batch")
	if err := viper.BindPFlag("batch_size", buildCmd.Flags().Lookup("batch-size")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for batch-size failed")
	}

	buildCmd.Flags().Bool("skip-extract", false, "ingest existing text files without extracting archives")
	if err := viper.BindPFlag("skip_extract", buildCmd.Flags().Lookup("skip-extract")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for skip-extract failed")
	}
}
