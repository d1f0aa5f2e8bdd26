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

// Package normalize cleans raw contact values coming from spreadsheets and
// webhook payloads.
package normalize

import (
	"math"
	"strconv"
	"strings"
)

// MaxPhoneLength is the longest phone value kept after normalization.
const MaxPhoneLength = 20

// Phone normalizes a raw phone string.
//
// Spreadsheet tools often export long numbers in scientific notation
// ("9.17E+11"); those are rounded back to their integer digits. Any other
// value keeps only digits and a single leading "+".
func Phone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if strings.Contains(raw, "E") {
		if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return strconv.FormatFloat(math.Round(f), 'f', 0, 64)
		}
	}

	var b strings.Builder
	b.Grow(len(raw))
	if raw[0] == '+' {
		b.WriteByte('+')
	}
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	out := b.String()
	if out == "+" {
		return ""
	}
	if len(out) > MaxPhoneLength {
		out = out[:MaxPhoneLength]
	}
	return out
}

// SplitFullName splits a full name into first name and the remaining tokens.
func SplitFullName(raw string) (first, last string) {
	parts := strings.Fields(raw)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// Email trims and case-folds an email address.
func Email(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
