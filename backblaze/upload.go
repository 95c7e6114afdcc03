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

// Package backblaze publishes built library artifacts to a Backblaze B2
// bucket so other machines can download a ready-made quote library instead
// of rebuilding it from the raw COTAHIST archives.
package backblaze

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kothar/go-backblaze"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/quantbr/b3data/library"
)

// PublishArtifacts uploads the quote store and every derived artifact that
// exists to the named bucket. The store is required; the security master,
// dictionaries, and manifest are uploaded when present and skipped otherwise.
// Objects are keyed under prefix when one is given.
func PublishArtifacts(myLibrary *library.Library, bucketName, prefix string) error {
	if _, err := os.Stat(myLibrary.StorePath()); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", library.ErrMissingArtifact, myLibrary.StorePath())
	}

	b2, err := backblaze.NewB2(backblaze.Credentials{
		KeyID:          viper.GetString("backblaze.application_id"),
		ApplicationKey: viper.GetString("backblaze.application_key"),
	})
	if err != nil {
		log.Error().Err(err).Str("BucketName", bucketName).Msg("authorize backblaze failed")
		return err
	}

	bucket, err := b2.Bucket(bucketName)
	if err != nil {
		log.Error().Err(err).Str("BucketName", bucketName).Msg("lookup bucket failed")
		return err
	}
	if bucket == nil {
		log.Error().Str("BucketName", bucketName).Msg("bucket does not exist")
		return errors.New("bucket not found")
	}

	required := []string{myLibrary.StorePath()}
	optional := []string{
		myLibrary.MasterPath(),
		myLibrary.MasterCSVPath(),
		myLibrary.BDIDictPath(),
		myLibrary.MarketTypeDictPath(),
		myLibrary.ManifestPath(),
	}

	for _, fn := range required {
		if err := upload(bucket, bucketName, prefix, fn); err != nil {
			return err
		}
	}

	for _, fn := range optional {
		if _, err := os.Stat(fn); os.IsNotExist(err) {
			log.Debug().Str("FileName", fn).Msg("artifact not built, skipping upload")
			continue
		}
		if err := upload(bucket, bucketName, prefix, fn); err != nil {
			return err
		}
	}

	return nil
}

func upload(bucket *backblaze.Bucket, bucketName, prefix, fn string) error {
	reader, err := os.Open(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("open artifact failed")
		return err
	}
	defer reader.Close()

	outName := filepath.Base(fn)
	if prefix != "" {
		outName = fmt.Sprintf("%s/%s", prefix, outName)
	}

	metadata := make(map[string]string)

	file, err := bucket.UploadFile(outName, metadata, reader)
	if err != nil {
		log.Error().Err(err).Str("FileName", outName).Str("BucketName", bucketName).Msg("save file to backblaze failed")
		return err
	}

	log.Info().Str("FileName", file.Name).Int64("Size", file.ContentLength).Str("ID", file.ID).Msg("uploaded file to backblaze")
	return nil
}
