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

// Package tenant resolves the role and tenant scope of an authenticated
// identity and lazily provisions a tenant for administrators that have none.
package tenant

import (
	"time"
)

// Tenant represents an isolated client organization
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SheetRef  string    `json:"sheet_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Scope is the resolved identity, role and tenant of a caller. It is passed
// explicitly into every tenant-scoped operation.
type Scope struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
	TenantID string `json:"tenant_id"`
}

// IsAdmin reports whether the scope carries the client administrator role.
func (s Scope) IsAdmin() bool {
	return s.Role == RoleClientAdmin
}

// Validate checks that the scope identifies a user inside a tenant.
func (s Scope) Validate() error {
	if s.UserID == "" {
		return ErrMissingUser
	}
	if s.TenantID == "" {
		return ErrNoTenant
	}
	return nil
}
