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

	"github.com/salesdesk/salesdesk/internal/customer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRow(t *testing.T) {
	cols := InferColumns(NormalizeHeaders([]string{"Name", "First Name", "Last Name", "Email", "Phone", "Source", "Notes", "Status"}))

	t.Run("full name split with explicit override", func(t *testing.T) {
		d, err := MapRow([]string{"Jane Q Public", "", "Doe", " Jane@Example.com ", "9.17E+11", "", " vip ", "WON"}, cols, 2)
		require.NoError(t, err)
		assert.Equal(t, &customer.Draft{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@example.com",
			Phone:     "917000000000",
			Source:    DefaultSource,
			Notes:     "vip",
			Status:    customer.StatusWon,
		}, d)
	})

	t.Run("one name part defaults to Unknown", func(t *testing.T) {
		d, err := MapRow([]string{"", "", "Doe", "d@example.com", "", "Referral", "", ""}, cols, 3)
		require.NoError(t, err)
		assert.Equal(t, UnknownName, d.FirstName)
		assert.Equal(t, "Doe", d.LastName)
		assert.Equal(t, "Referral", d.Source)
		assert.Equal(t, customer.StatusPending, d.Status)
	})

	t.Run("unknown status falls back to pending", func(t *testing.T) {
		d, err := MapRow([]string{"Al", "", "", "al@example.com", "", "", "", "hot"}, cols, 4)
		require.NoError(t, err)
		assert.Equal(t, customer.StatusPending, d.Status)
	})

	t.Run("blank row skipped", func(t *testing.T) {
		d, err := MapRow([]string{"", " ", "", "", "", "", "", ""}, cols, 5)
		assert.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := MapRow([]string{"Al", "", "", "not-an-email", "", "", "", ""}, cols, 6)
		var rowErr *RowError
		require.ErrorAs(t, err, &rowErr)
		assert.Equal(t, 6, rowErr.Row)
		assert.Equal(t, "Row 6: Invalid or missing email", err.Error())
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := MapRow([]string{"", "", "", "x@example.com", "", "", "", ""}, cols, 7)
		assert.EqualError(t, err, "Row 7: Missing name")
	})

	t.Run("short row", func(t *testing.T) {
		_, err := MapRow([]string{"Al"}, cols, 8)
		assert.EqualError(t, err, "Row 8: Invalid or missing email")
	})
}
