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

package tenant

import "time"

// Role is a tenant-level role
type Role string

// Tenant roles
const (
	RoleClientAdmin Role = "client_admin"
	RoleSalesRep    Role = "sales_rep"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleClientAdmin || r == RoleSalesRep
}

// Assignment is a (user, role, tenant) triple. TenantID is empty for an
// administrator that has not been provisioned yet.
type Assignment struct {
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	TenantID  string    `json:"tenant_id,omitempty"`
	GrantedAt time.Time `json:"granted_at"`
	GrantedBy string    `json:"granted_by,omitempty"`
}
