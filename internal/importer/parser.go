// Copyright 2026 The SalesDesk Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package importer

import (
	"strings"
)

const bom = "\uFEFF"

// ParseCSV splits text into rows of fields.
//
// Fields may be wrapped in double quotes; inside quotes a doubled quote is a
// literal quote and commas and line breaks are data. Both "\n" and "\r\n"
// end a row. Lines that are blank after trimming are dropped. An
// unterminated quote runs to the end of the input. The parser does not treat
// any row as a header.
func ParseCSV(text string) [][]string {
	text = strings.TrimPrefix(text, bom)

	var (
		rows    [][]string
		row     []string
		field   strings.Builder
		line    strings.Builder
		inQuote bool
	)

	endField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	endRow := func() {
		endField()
		if strings.TrimSpace(line.String()) != "" {
			rows = append(rows, row)
		}
		row = nil
		line.Reset()
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inQuote {
			line.WriteByte(c)
			if c != '"' {
				field.WriteByte(c)
				continue
			}
			if i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				line.WriteByte('"')
				i++
				continue
			}
			inQuote = false
			continue
		}

		switch c {
		case '"':
			line.WriteByte(c)
			inQuote = true
		case ',':
			line.WriteByte(c)
			endField()
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		case '\n':
			endRow()
		default:
			line.WriteByte(c)
			field.WriteByte(c)
		}
	}

	if line.Len() > 0 || field.Len() > 0 || len(row) > 0 {
		endRow()
	}

	return rows
}
