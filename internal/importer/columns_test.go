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
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPurpose: Pins the tie-break of column matching.
// Scope: Unit Test
// Expected: Variations are tried in priority order and the first matching header wins, so "phone" resolves to "Phone Number" before "Mobile".
// Test Case ID: IMP-01
func TestFindColumn_TieBreak(t *testing.T) {
	headers := NormalizeHeaders([]string{"Phone Number", "Mobile"})

	assert.Equal(t, 0, FindColumn(headers, []string{"phone_no", "phone", "mobile"}))
	assert.Equal(t, 1, FindColumn(headers, []string{"mobile", "phone"}))
	assert.Equal(t, 0, InferColumns(headers).Phone)
}

func TestFindColumn(t *testing.T) {
	tests := []struct {
		name       string
		headers    []string
		variations []string
		want       int
	}{
		{"exact", []string{"id", "email"}, []string{"email"}, 1},
		{"header contains variation", []string{"primary email address"}, []string{"email"}, 0},
		{"variation contains header", []string{"mail"}, []string{"e-mail"}, 0},
		{"no match", []string{"id", "company"}, []string{"email", "mail"}, NotFound},
		{"empty headers skipped", []string{"", "email"}, []string{"email"}, 1},
		{"no headers", nil, []string{"email"}, NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindColumn(tt.headers, tt.variations))
		})
	}
}

func TestInferColumns(t *testing.T) {
	t.Run("explicit names", func(t *testing.T) {
		cols := InferColumns(NormalizeHeaders([]string{
			"First Name", "Last Name", "E-mail", "Mobile", "Lead Source", "Comments", "Stage",
		}))
		assert.Equal(t, Columns{
			FullName: NotFound, FirstName: 0, LastName: 1, Email: 2,
			Phone: 3, Source: 4, Notes: 5, Status: 6,
		}, cols)
	})

	t.Run("single name column", func(t *testing.T) {
		cols := InferColumns(NormalizeHeaders([]string{" Name ", "Email", "Phone"}))
		assert.Equal(t, 0, cols.FullName)
		assert.Equal(t, NotFound, cols.FirstName)
		assert.Equal(t, NotFound, cols.LastName)
		assert.Equal(t, 1, cols.Email)
		assert.Equal(t, 2, cols.Phone)
	})

	t.Run("full name alongside parts", func(t *testing.T) {
		cols := InferColumns(NormalizeHeaders([]string{"Full Name", "First Name", "Email"}))
		assert.Equal(t, 0, cols.FullName)
		assert.Equal(t, 1, cols.FirstName)
		assert.Equal(t, NotFound, cols.LastName)
	})

	t.Run("contact name is not a phone", func(t *testing.T) {
		cols := InferColumns(NormalizeHeaders([]string{"Contact Name", "Contact", "Email"}))
		assert.Equal(t, 0, cols.FullName)
		assert.Equal(t, 1, cols.Phone)
	})
}
