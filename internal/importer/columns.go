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

import "strings"

// Field is a canonical customer field that can be inferred from a header
type Field string

// Canonical fields
const (
	FieldFullName  Field = "full_name"
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
	FieldSource    Field = "source"
	FieldNotes     Field = "notes"
	FieldStatus    Field = "status"
)

// Variations lists known header spellings per field, most specific first.
var Variations = map[Field][]string{
	FieldFullName:  {"full name", "full_name", "fullname", "customer name", "contact name", "name"},
	FieldFirstName: {"first_name", "first name", "firstname", "fname", "given name"},
	FieldLastName:  {"last_name", "last name", "lastname", "lname", "surname", "family name"},
	FieldEmail:     {"email", "e-mail", "email address", "mail"},
	FieldPhone:     {"phone_no", "phone", "mobile", "cell", "telephone", "tel", "contact"},
	FieldSource:    {"lead source", "lead_source", "source", "channel", "origin"},
	FieldNotes:     {"notes", "note", "comments", "comment", "description"},
	FieldStatus:    {"lead status", "status", "stage"},
}

// NotFound is returned by FindColumn when no header matches
const NotFound = -1

// FindColumn returns the index of the first header matching a variation.
// Variations are tried in order; for each, headers are scanned left to
// right. A header matches when it equals the variation, contains it, or is
// contained in it. Empty headers never match.
func FindColumn(headers []string, variations []string) int {
	for _, v := range variations {
		for i, h := range headers {
			if h == "" {
				continue
			}
			if h == v || strings.Contains(h, v) || strings.Contains(v, h) {
				return i
			}
		}
	}
	return NotFound
}

// Columns maps canonical fields to header indices. Unresolved fields hold
// NotFound.
type Columns struct {
	FullName  int
	FirstName int
	LastName  int
	Email     int
	Phone     int
	Source    int
	Notes     int
	Status    int
}

// NormalizeHeaders lower-cases and trims each header.
func NormalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

// InferColumns resolves every canonical field against normalized headers.
// A header claimed by one field is not offered to later fields. A header
// that exactly names a full-name variation is claimed first so that a lone
// "name" column is not mistaken for a first or last name.
func InferColumns(headers []string) Columns {
	free := append([]string(nil), headers...)

	claim := func(f Field) int {
		idx := FindColumn(free, Variations[f])
		if idx != NotFound {
			free[idx] = ""
		}
		return idx
	}

	cols := Columns{FullName: exactColumn(free, Variations[FieldFullName])}
	if cols.FullName != NotFound {
		free[cols.FullName] = ""
	}

	cols.FirstName = claim(FieldFirstName)
	cols.LastName = claim(FieldLastName)
	cols.Email = claim(FieldEmail)
	if cols.FullName == NotFound {
		cols.FullName = claim(FieldFullName)
	}
	cols.Phone = claim(FieldPhone)
	cols.Source = claim(FieldSource)
	cols.Notes = claim(FieldNotes)
	cols.Status = claim(FieldStatus)

	return cols
}

func exactColumn(headers []string, variations []string) int {
	for _, v := range variations {
		for i, h := range headers {
			if h != "" && h == v {
				return i
			}
		}
	}
	return NotFound
}
