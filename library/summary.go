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
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a description of the library in markdown
func (myLibrary *Library) Summary() (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString(fmt.Sprintf("# %s\n", myLibrary.Name)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Details\n\n"); err != nil {
		return "", err
	}

	if myLibrary.Owner != "" {
		if _, err := builder.WriteString(fmt.Sprintf("Owner: %s\n\n", myLibrary.Owner)); err != nil {
			return "", err
		}
	}

	if _, err := builder.WriteString(fmt.Sprintf("Data Directory: %s\n\n", myLibrary.DataDir)); err != nil {
		return "", err
	}

	numRaw := countFiles(myLibrary.RawPath(), ".zip")
	numTexts := countFiles(myLibrary.TextsPath(), ".txt")

	if _, err := builder.WriteString(p.Sprintf("  * Raw Archives: %d\n", numRaw)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Text Files: %d\n\n", numTexts)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Artifacts\n\n"); err != nil {
		return "", err
	}

	manifest, err := myLibrary.LoadManifest()
	if err != nil {
		return "", err
	}

	if manifest != nil {
		if _, err := builder.WriteString(p.Sprintf("  * Quote Store: %d rows (%d files ingested, %d skipped, %d empty)\n",
			manifest.Rows, manifest.Files, manifest.FilesSkipped, manifest.FilesEmpty)); err != nil {
			return "", err
		}

		if _, err := builder.WriteString(p.Sprintf("  * Security Master: %d securities\n", manifest.Securities)); err != nil {
			return "", err
		}
	}

	for _, artifact := range []struct {
		label string
		path  string
	}{
		{"Quote Store File", myLibrary.StorePath()},
		{"Security Master File", myLibrary.MasterPath()},
		{"Security Master Spreadsheet", myLibrary.MasterCSVPath()},
		{"BDI Code Dictionary", myLibrary.BDIDictPath()},
		{"Market Type Dictionary", myLibrary.MarketTypeDictPath()},
	} {
		status := "missing"
		if info, statErr := os.Stat(artifact.path); statErr == nil {
			status = p.Sprintf("%d bytes", info.Size())
		}

		if _, err := builder.WriteString(fmt.Sprintf("  * %s: %s (%s)\n", artifact.label, artifact.path, status)); err != nil {
			return "", err
		}
	}

	if _, err := builder.WriteString("\n"); err != nil {
		return "", err
	}

	if manifest == nil {
		if _, err := builder.WriteString("Last Built: Never\n"); err != nil {
			return "", err
		}

		return builder.String(), nil
	}

	age := timeago.English.Format(manifest.FinishedAt)

	if _, err := builder.WriteString(fmt.Sprintf("Last Built: %s (%s) [%s]\n", age,
		manifest.FinishedAt.Local().Format("01/02/2006"), manifest.BuildID.String()[:6])); err != nil {
		return "", err
	}

	return builder.String(), nil
}

// countFiles counts directory entries with the suffix, case-insensitively.
func countFiles(dir, suffix string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	count := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if strings.EqualFold(filepath.Ext(entry.Name()), suffix) {
			count++
		}
	}

	return count
}
