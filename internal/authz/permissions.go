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

package authz

import (
	"errors"
	"slices"

	"github.com/salesdesk/salesdesk/internal/tenant"
)

// ErrPermissionDenied is returned when a scope lacks a permission
var ErrPermissionDenied = errors.New("permission denied")

// Permissions are "<resource>:<action>" strings.
const (
	PermCustomersRead   = "customers:read"
	PermCustomersWrite  = "customers:write"
	PermCustomersImport = "customers:import"
	PermWorkflowsRead   = "workflows:read"
	PermWorkflowsManage = "workflows:manage"
	PermSalesRepsInvite = "salesreps:invite"
	PermSalesRepsList   = "salesreps:list"
	PermAuditRead       = "audit:read"
)

// ClientAdminPermissions are granted to client_admin.
// Scope: Tenant
var ClientAdminPermissions = []string{
	PermCustomersRead,
	PermCustomersWrite,
	PermCustomersImport,
	PermWorkflowsRead,
	PermWorkflowsManage,
	PermSalesRepsInvite,
	PermSalesRepsList,
	PermAuditRead,
}

// SalesRepPermissions are granted to sales_rep. Reads are further limited
// to the rep's own customers by the customer service.
// Scope: Tenant
var SalesRepPermissions = []string{
	PermCustomersRead,
	PermCustomersWrite,
	PermCustomersImport,
	PermWorkflowsRead,
}

var rolePermissions = map[tenant.Role][]string{
	tenant.RoleClientAdmin: ClientAdminPermissions,
	tenant.RoleSalesRep:    SalesRepPermissions,
}

// PermissionsFor returns the permissions of role
func PermissionsFor(role tenant.Role) []string {
	return slices.Clone(rolePermissions[role])
}

// HasPermission reports whether role grants permission
func HasPermission(role tenant.Role, permission string) bool {
	return slices.Contains(rolePermissions[role], permission)
}

// Check returns ErrPermissionDenied unless scope is valid and its role
// grants permission.
func Check(scope tenant.Scope, permission string) error {
	if err := scope.Validate(); err != nil {
		return ErrPermissionDenied
	}
	if !HasPermission(scope.Role, permission) {
		return ErrPermissionDenied
	}
	return nil
}
