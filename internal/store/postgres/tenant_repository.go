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

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/salesdesk/salesdesk/internal/tenant"
)

// TenantRepository implements tenant.Repository
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := r.db.WithTenant(ctx, id, func(tx pgx.Tx) error {
		var sheetRef *string
		err := tx.QueryRow(ctx, `
			SELECT id, name, sheet_ref, created_at, updated_at
			FROM tenants
			WHERE id = $1
		`, id).Scan(&t.ID, &t.Name, &sheetRef, &t.CreatedAt, &t.UpdatedAt)
		t.SheetRef = deref(sheetRef)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &t, nil
}

// ListAssignments returns the user's role assignments, oldest first
func (r *TenantRepository) ListAssignments(ctx context.Context, userID string) ([]*tenant.Assignment, error) {
	var out []*tenant.Assignment
	err := r.db.Privileged(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT user_id, role, tenant_id::text, granted_at, granted_by
			FROM user_roles
			WHERE user_id = $1
			ORDER BY granted_at, tenant_id NULLS FIRST
		`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var a tenant.Assignment
			var tenantID, grantedBy *string
			if err := rows.Scan(&a.UserID, &a.Role, &tenantID, &a.GrantedAt, &grantedBy); err != nil {
				return fmt.Errorf("failed to scan assignment: %w", err)
			}
			a.TenantID = deref(tenantID)
			a.GrantedBy = deref(grantedBy)
			out = append(out, &a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return out, nil
}

// AssignRole inserts the assignment unless an identical one exists
func (r *TenantRepository) AssignRole(ctx context.Context, a *tenant.Assignment) error {
	var inserted int64
	err := r.db.Privileged(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role, tenant_id, granted_at, granted_by)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT DO NOTHING
		`, a.UserID, a.Role, nullString(a.TenantID), a.GrantedAt, nullString(a.GrantedBy))
		inserted = tag.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	if inserted == 0 && a.TenantID == "" {
		return tenant.ErrRoleAlreadyExists
	}
	return nil
}

// ProvisionForAdmin creates t and attaches it to the user's pending
// administrator assignment. A concurrent provisioner blocks on the row lock
// and then finds no pending assignment, so its tenant is rolled back.
func (r *TenantRepository) ProvisionForAdmin(ctx context.Context, userID string, t *tenant.Tenant) error {
	return r.db.Privileged(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO tenants (id, name, sheet_ref, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, t.ID, t.Name, nullString(t.SheetRef), t.CreatedAt, t.UpdatedAt); err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			UPDATE user_roles
			SET tenant_id = $1
			WHERE user_id = $2 AND role = $3 AND tenant_id IS NULL
		`, t.ID, userID, tenant.RoleClientAdmin)
		if err != nil {
			return fmt.Errorf("failed to attach tenant: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return tenant.ErrAlreadyProvisioned
		}
		return nil
	})
}
