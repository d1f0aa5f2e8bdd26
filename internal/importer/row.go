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
	"fmt"
	"strings"

	"github.com/salesdesk/salesdesk/internal/customer"
	"github.com/salesdesk/salesdesk/internal/normalize"
)

// Row validation reasons
const (
	ReasonInvalidEmail = "Invalid or missing email"
	ReasonMissingName  = "Missing name"
)

const (
	// DefaultSource is the lead source of rows without one.
	DefaultSource = "CSV Import"
	// UnknownName fills a name part that could not be resolved.
	UnknownName = "Unknown"
)

// RowError is a validation failure of a single data row. Row is the 1-based
// display row where the header is row 1.
type RowError struct {
	Row    int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Reason)
}

// MapRow converts one data row into a customer draft. It returns nil, nil
// for a row whose fields are all empty.
func MapRow(row []string, cols Columns, displayRow int) (*customer.Draft, error) {
	if blankRow(row) {
		return nil, nil
	}

	var first, last string
	if full := cell(row, cols.FullName); full != "" {
		first, last = normalize.SplitFullName(full)
	}
	if v := cell(row, cols.FirstName); v != "" {
		first = v
	}
	if v := cell(row, cols.LastName); v != "" {
		last = v
	}

	email := cell(row, cols.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, &RowError{Row: displayRow, Reason: ReasonInvalidEmail}
	}
	if first == "" && last == "" {
		return nil, &RowError{Row: displayRow, Reason: ReasonMissingName}
	}
	if first == "" {
		first = UnknownName
	}
	if last == "" {
		last = UnknownName
	}

	source := cell(row, cols.Source)
	if source == "" {
		source = DefaultSource
	}

	status := customer.StatusPending
	if st, ok := customer.ParseStatus(cell(row, cols.Status)); ok {
		status = st
	}

	return &customer.Draft{
		FirstName: first,
		LastName:  last,
		Email:     normalize.Email(email),
		Phone:     normalize.Phone(cell(row, cols.Phone)),
		Source:    source,
		Notes:     cell(row, cols.Notes),
		Status:    status,
	}, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
