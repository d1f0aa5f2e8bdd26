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

	"github.com/salesdesk/salesdesk/internal/salesrep"
)

const salesRepColumns = `id, tenant_id, user_id, first_name, last_name, email, phone_no, status, created_at, updated_at`

// SalesRepRepository implements salesrep.Repository
type SalesRepRepository struct {
	db *DB
}

// NewSalesRepRepository creates a new sales rep repository
func NewSalesRepRepository(db *DB) *SalesRepRepository {
	return &SalesRepRepository{db: db}
}

func scanSalesRep(row pgx.Row) (*salesrep.SalesRep, error) {
	var s salesrep.SalesRep
	err := row.Scan(&s.ID, &s.TenantID, &s.UserID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert inserts rep or updates and reactivates the (tenant, email) record
func (r *SalesRepRepository) Upsert(ctx context.Context, rep *salesrep.SalesRep) (bool, error) {
	var inserted bool
	err := r.db.WithTenant(ctx, rep.TenantID, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO sales_reps (`+salesRepColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 'active', $8, $8)
			ON CONFLICT (tenant_id, email) DO UPDATE SET
				user_id    = EXCLUDED.user_id,
				first_name = EXCLUDED.first_name,
				last_name  = EXCLUDED.last_name,
				phone_no   = EXCLUDED.phone_no,
				status     = 'active',
				updated_at = EXCLUDED.updated_at
			RETURNING id, status, created_at, updated_at, (xmax = 0)
		`, rep.ID, rep.TenantID, rep.UserID, rep.FirstName, rep.LastName, rep.Email, rep.Phone, rep.UpdatedAt,
		).Scan(&rep.ID, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt, &inserted)
	})
	if err != nil {
		return false, fmt.Errorf("failed to upsert sales rep: %w", err)
	}
	return inserted, nil
}

// FindByEmail looks up a rep in any tenant, preferring active records
func (r *SalesRepRepository) FindByEmail(ctx context.Context, email string) (*salesrep.SalesRep, error) {
	var rep *salesrep.SalesRep
	err := r.db.Privileged(ctx, func(tx pgx.Tx) error {
		var err error
		rep, err = scanSalesRep(tx.QueryRow(ctx, `
			SELECT `+salesRepColumns+`
			FROM sales_reps
			WHERE lower(email) = lower($1)
			ORDER BY status = 'active' DESC, updated_at DESC
			LIMIT 1
		`, email))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, salesrep.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find sales rep: %w", err)
	}
	return rep, nil
}

// List returns the reps of a tenant ordered by name
func (r *SalesRepRepository) List(ctx context.Context, tenantID string) ([]*salesrep.SalesRep, error) {
	var out []*salesrep.SalesRep
	err := r.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT `+salesRepColumns+`
			FROM sales_reps
			WHERE tenant_id = $1
			ORDER BY last_name, first_name
		`, tenantID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rep, err := scanSalesRep(rows)
			if err != nil {
				return fmt.Errorf("failed to scan sales rep: %w", err)
			}
			out = append(out, rep)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sales reps: %w", err)
	}
	return out, nil
}
