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

	"github.com/salesdesk/salesdesk/internal/customer"
)

const customerColumns = `id, tenant_id, sales_rep_id, first_name, last_name, email, phone_no, source, notes, status, created_at, updated_at`

const insertCustomer = `
	INSERT INTO customers (` + customerColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const upsertCustomer = insertCustomer + `
	ON CONFLICT (sales_rep_id, email) DO UPDATE SET
		first_name = EXCLUDED.first_name,
		last_name  = EXCLUDED.last_name,
		phone_no   = EXCLUDED.phone_no,
		source     = EXCLUDED.source,
		notes      = EXCLUDED.notes,
		status     = EXCLUDED.status,
		updated_at = EXCLUDED.updated_at
	WHERE customers.tenant_id = EXCLUDED.tenant_id`

// CustomerRepository implements customer.Repository
type CustomerRepository struct {
	db *DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func customerArgs(c *customer.Customer) []any {
	return []any{
		c.ID, c.TenantID, c.SalesRepID, c.FirstName, c.LastName, c.Email,
		c.Phone, c.Source, c.Notes, c.Status, c.CreatedAt, c.UpdatedAt,
	}
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.TenantID, &c.SalesRepID, &c.FirstName, &c.LastName, &c.Email,
		&c.Phone, &c.Source, &c.Notes, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a customer
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	err := r.db.WithTenant(ctx, c.TenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertCustomer, customerArgs(c)...)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return customer.ErrDuplicate
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// SaveBatch writes all customers in one transaction
func (r *CustomerRepository) SaveBatch(ctx context.Context, tenantID string, customers []*customer.Customer, mode customer.WriteMode) (int, error) {
	query := insertCustomer
	if mode == customer.Upsert {
		query = upsertCustomer
	}

	var written int
	err := r.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, c := range customers {
			if c.TenantID != tenantID {
				return fmt.Errorf("customer %s does not belong to tenant %s", c.ID, tenantID)
			}
			batch.Queue(query, customerArgs(c)...)
		}

		results := tx.SendBatch(ctx, batch)
		for range customers {
			tag, err := results.Exec()
			if err != nil {
				_ = results.Close()
				return err
			}
			written += int(tag.RowsAffected())
		}
		return results.Close()
	})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, customer.ErrDuplicate
		}
		return 0, fmt.Errorf("failed to save customer batch: %w", err)
	}
	return written, nil
}

// GetByID retrieves a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, tenantID, id string) (*customer.Customer, error) {
	var c *customer.Customer
	err := r.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		var err error
		c, err = scanCustomer(tx.QueryRow(ctx, `
			SELECT `+customerColumns+`
			FROM customers
			WHERE tenant_id = $1 AND id = $2
		`, tenantID, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

// Exists reports whether a customer exists in the tenant
func (r *CustomerRepository) Exists(ctx context.Context, tenantID, id string) (bool, error) {
	_, err := r.GetByID(ctx, tenantID, id)
	if errors.Is(err, customer.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// List returns the tenant's customers, newest first. An empty salesRepID
// lists every owner.
func (r *CustomerRepository) List(ctx context.Context, tenantID, salesRepID string, limit, offset int) ([]*customer.Customer, error) {
	var out []*customer.Customer
	err := r.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT `+customerColumns+`
			FROM customers
			WHERE tenant_id = $1 AND ($2::uuid IS NULL OR sales_rep_id = $2::uuid)
			ORDER BY created_at DESC, id
			LIMIT $3 OFFSET $4
		`, tenantID, nullString(salesRepID), limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCustomer(rows)
			if err != nil {
				return fmt.Errorf("failed to scan customer: %w", err)
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return out, nil
}

// UpdateStatus changes a customer's status
func (r *CustomerRepository) UpdateStatus(ctx context.Context, tenantID, id string, status customer.Status) error {
	var affected int64
	err := r.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE customers
			SET status = $3, updated_at = now()
			WHERE tenant_id = $1 AND id = $2
		`, tenantID, id, status)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update customer status: %w", err)
	}
	if affected == 0 {
		return customer.ErrNotFound
	}
	return nil
}
