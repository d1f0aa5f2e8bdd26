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

	"github.com/salesdesk/salesdesk/internal/workflow"
)

const workflowColumns = `id, tenant_id, customer_id, status, current_step, step_data, error_message, started_at, completed_at, updated_at`

// WorkflowRepository implements workflow.Repository
type WorkflowRepository struct {
	db *DB
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

func scanWorkflow(row pgx.Row) (*workflow.Workflow, error) {
	var w workflow.Workflow
	err := row.Scan(&w.ID, &w.TenantID, &w.CustomerID, &w.Status, &w.CurrentStep, &w.StepData,
		&w.ErrorMessage, &w.StartedAt, &w.CompletedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func stepData(w *workflow.Workflow) map[string]any {
	if w.StepData == nil {
		return map[string]any{}
	}
	return w.StepData
}

// Create inserts a workflow
func (r *WorkflowRepository) Create(ctx context.Context, w *workflow.Workflow) error {
	err := r.db.WithTenant(ctx, w.TenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO workflows (`+workflowColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, w.ID, w.TenantID, w.CustomerID, w.Status, w.CurrentStep, stepData(w),
			w.ErrorMessage, w.StartedAt, w.CompletedAt, w.UpdatedAt)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return workflow.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create workflow: %w", err)
	}
	return nil
}

func (r *WorkflowRepository) getOne(ctx context.Context, tenantID, where string, arg string) (*workflow.Workflow, error) {
	var w *workflow.Workflow
	err := r.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		var err error
		w, err = scanWorkflow(tx.QueryRow(ctx, `
			SELECT `+workflowColumns+`
			FROM workflows
			WHERE tenant_id = $1 AND `+where+` = $2
		`, tenantID, arg))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workflow.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return w, nil
}

// GetByID retrieves a workflow by ID
func (r *WorkflowRepository) GetByID(ctx context.Context, tenantID, id string) (*workflow.Workflow, error) {
	return r.getOne(ctx, tenantID, "id", id)
}

// GetByCustomer retrieves the workflow of a customer
func (r *WorkflowRepository) GetByCustomer(ctx context.Context, tenantID, customerID string) (*workflow.Workflow, error) {
	return r.getOne(ctx, tenantID, "customer_id", customerID)
}

// Update persists the mutable workflow fields
func (r *WorkflowRepository) Update(ctx context.Context, w *workflow.Workflow) error {
	var affected int64
	err := r.db.WithTenant(ctx, w.TenantID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE workflows
			SET status = $3, current_step = $4, step_data = $5, error_message = $6,
				completed_at = $7, updated_at = $8
			WHERE tenant_id = $1 AND id = $2
		`, w.TenantID, w.ID, w.Status, w.CurrentStep, stepData(w), w.ErrorMessage, w.CompletedAt, w.UpdatedAt)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update workflow: %w", err)
	}
	if affected == 0 {
		return workflow.ErrNotFound
	}
	return nil
}
