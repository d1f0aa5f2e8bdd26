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

// Package workflow tracks the onboarding progress of each customer.
package workflow

import (
	"context"
	"errors"
	"time"
)

// Status of a workflow
type Status string

// Workflow statuses
const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

var (
	ErrNotFound         = errors.New("workflow not found")
	ErrAlreadyExists    = errors.New("workflow already exists for customer")
	ErrTerminal         = errors.New("workflow is already finished")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrMissingStep      = errors.New("workflow step is required")
)

// Workflow is the one-to-one onboarding tracker of a customer. It is never
// deleted.
type Workflow struct {
	ID           string         `json:"id"`
	TenantID     string         `json:"tenant_id"`
	CustomerID   string         `json:"customer_id"`
	Status       Status         `json:"status"`
	CurrentStep  string         `json:"current_step,omitempty"`
	StepData     map[string]any `json:"step_data,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Repository defines workflow persistence
type Repository interface {
	// Create returns ErrAlreadyExists if the customer already has one.
	Create(ctx context.Context, w *Workflow) error
	GetByID(ctx context.Context, tenantID, id string) (*Workflow, error)
	GetByCustomer(ctx context.Context, tenantID, customerID string) (*Workflow, error)
	Update(ctx context.Context, w *Workflow) error
}

// CustomerChecker reports whether a customer exists in a tenant
type CustomerChecker interface {
	Exists(ctx context.Context, tenantID, customerID string) (bool, error)
}
