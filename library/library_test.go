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
package library_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbr/b3data/library"
)

func TestEnsureDirs(t *testing.T) {
	myLibrary := library.New("B3 History", "tester", t.TempDir())

	require.NoError(t, myLibrary.EnsureDirs())

	for _, dir := range []string{
		myLibrary.RawPath(),
		myLibrary.TextsPath(),
		myLibrary.ProcessedPath(),
		myLibrary.OutputsPath(),
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestArtifactPaths(t *testing.T) {
	myLibrary := library.New("B3 History", "tester", filepath.Join("data"))

	assert.Equal(t, filepath.Join("data", "processed", "dados_b3.parquet"), myLibrary.StorePath())
	assert.Equal(t, filepath.Join("data", "outputs", "dicionario_ativos.parquet"), myLibrary.MasterPath())
	assert.Equal(t, filepath.Join("data", "outputs", "dicionario_ativos.csv"), myLibrary.MasterCSVPath())
	assert.Equal(t, filepath.Join("data", "outputs", "dicionario_codbdi.csv"), myLibrary.BDIDictPath())
	assert.Equal(t, filepath.Join("data", "outputs", "dicionario_tpmerc.csv"), myLibrary.MarketTypeDictPath())
	assert.Equal(t, filepath.Join("data", "processed", "manifest.json"), myLibrary.ManifestPath())
}

func TestManifestRoundTrip(t *testing.T) {
	myLibrary := library.New("B3 History", "tester", t.TempDir())
	require.NoError(t, myLibrary.EnsureDirs())

	manifest := library.NewManifest()
	manifest.Files = 3
	manifest.FilesSkipped = 1
	manifest.Rows = 1500
	manifest.Securities = 42
	manifest.FinishedAt = time.Now()
	manifest.StorePath = myLibrary.StorePath()

	require.NoError(t, myLibrary.SaveManifest(manifest))

	loaded, err := myLibrary.LoadManifest()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, manifest.BuildID, loaded.BuildID)
	assert.Equal(t, 3, loaded.Files)
	assert.Equal(t, 1, loaded.FilesSkipped)
	assert.Equal(t, int64(1500), loaded.Rows)
	assert.Equal(t, 42, loaded.Securities)
}

func TestLoadManifestNeverBuilt(t *testing.T) {
	myLibrary := library.New("B3 History", "tester", t.TempDir())
	require.NoError(t, myLibrary.EnsureDirs())

	manifest, err := myLibrary.LoadManifest()
	require.NoError(t, err)
	assert.Nil(t, manifest)
}

func TestSummary(t *testing.T) {
	myLibrary := library.New("B3 History", "tester", t.TempDir())
	require.NoError(t, myLibrary.EnsureDirs())

	t.Run("never built", func(t *testing.T) {
		summary, err := myLibrary.Summary()
		require.NoError(t, err)

		assert.Contains(t, summary, "# B3 History")
		assert.Contains(t, summary, "Last Built: Never")
	})

	t.Run("after a build", func(t *testing.T) {
		manifest := library.NewManifest()
		manifest.Rows = 1_234_567
		manifest.Files = 12
		manifest.Securities = 4321
		manifest.FinishedAt = time.Now()
		require.NoError(t, myLibrary.SaveManifest(manifest))

		summary, err := myLibrary.Summary()
		require.NoError(t, err)

		assert.Contains(t, summary, "1,234,567 rows")
		assert.Contains(t, summary, "4,321 securities")
		assert.NotContains(t, summary, "Last Built: Never")
	})
}
