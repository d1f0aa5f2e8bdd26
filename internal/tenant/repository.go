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

import (
	"context"
	"errors"
)

var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrRoleAlreadyExists  = errors.New("role assignment already exists")
	ErrAlreadyProvisioned = errors.New("administrator already provisioned")
	ErrNoRole             = errors.New("user has no role assignment")
	ErrNoTenant           = errors.New("user has no tenant")
	ErrMissingUser        = errors.New("user id is required")
	ErrInvalidRole        = errors.New("invalid role")
)

// Repository defines the interface for tenant and role assignment storage
type Repository interface {
	GetByID(ctx context.Context, id string) (*Tenant, error)

	// ListAssignments returns the user's assignments ordered by grant time.
	ListAssignments(ctx context.Context, userID string) ([]*Assignment, error)

	// AssignRole stores an assignment. An identical existing triple is not
	// an error. A conflicting tenant-less assignment yields
	// ErrRoleAlreadyExists.
	AssignRole(ctx context.Context, a *Assignment) error

	// ProvisionForAdmin creates t and attaches it to the user's tenant-less
	// administrator assignment in one transaction. If no tenant-less
	// assignment remains, nothing is written and ErrAlreadyProvisioned is
	// returned.
	ProvisionForAdmin(ctx context.Context, userID string, t *Tenant) error
}
