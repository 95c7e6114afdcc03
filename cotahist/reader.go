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
package cotahist

import (
	"bufio"
	"io"

	"golang.org/x/text/encoding/charmap"
)

// Reader streams the content lines of a COTAHIST file. The files are
// encoded as ISO-8859-1 and carry one header record and one trailer record
// which are identified by position, not by content; Reader drops exactly the
// first and last line while holding only a single line of lookahead, so
// arbitrarily large files never get buffered whole.
type Reader struct {
	scanner *bufio.Scanner
	pending string
	line    string
	primed  bool
}

// NewReader wraps r, decoding from ISO-8859-1 as it reads.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(charmap.ISO8859_1.NewDecoder().Reader(r)),
	}
}

// Next advances to the next content line. It returns false at the trailer,
// at end of input, or on a read error; check Err afterwards to tell the
// last two apart. A file holding only a header and a trailer yields no
// lines at all.
func (reader *Reader) Next() bool {
	if !reader.primed {
		reader.primed = true

		// drop the header, then hold the first candidate line back until
		// the line after it proves it is not the trailer
		if !reader.scanner.Scan() {
			return false
		}

		if !reader.scanner.Scan() {
			return false
		}

		reader.pending = reader.scanner.Text()
	}

	if !reader.scanner.Scan() {
		return false
	}

	reader.line = reader.pending
	reader.pending = reader.scanner.Text()

	return true
}

// Line returns the content line Next advanced to.
func (reader *Reader) Line() string {
	return reader.line
}

// Err reports the first error hit while reading, nil on clean end of file.
func (reader *Reader) Err() error {
	return reader.scanner.Err()
}
