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

package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/salesdesk/salesdesk/internal/id"
	"github.com/salesdesk/salesdesk/internal/observability/logger"
)

// Service drives workflow transitions
type Service struct {
	repo      Repository
	customers CustomerChecker
}

// NewService creates a new workflow service
func NewService(repo Repository, customers CustomerChecker) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
	}
}

// Start creates the pending workflow of a customer. Starting an already
// started customer returns the existing workflow.
func (s *Service) Start(ctx context.Context, tenantID, customerID string) (*Workflow, error) {
	existing, err := s.repo.GetByCustomer(ctx, tenantID, customerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}

	ok, err := s.customers.Exists(ctx, tenantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check customer: %w", err)
	}
	if !ok {
		return nil, ErrCustomerNotFound
	}

	now := time.Now()
	w := &Workflow{
		ID:         id.NewUUIDv7(),
		TenantID:   tenantID,
		CustomerID: customerID,
		Status:     StatusPending,
		StartedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, w); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return s.repo.GetByCustomer(ctx, tenantID, customerID)
		}
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	slog.InfoContext(ctx, "workflow started",
		logger.TenantID(tenantID),
		logger.String("customer_id", customerID),
		logger.String("workflow_id", w.ID),
	)
	return w, nil
}

// Get returns a workflow by ID
func (s *Service) Get(ctx context.Context, tenantID, id string) (*Workflow, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

// GetForCustomer returns the workflow of a customer
func (s *Service) GetForCustomer(ctx context.Context, tenantID, customerID string) (*Workflow, error) {
	return s.repo.GetByCustomer(ctx, tenantID, customerID)
}

// Advance records step as the current step and activates the workflow.
func (s *Service) Advance(ctx context.Context, tenantID, id, step string, data map[string]any) (*Workflow, error) {
	if step == "" {
		return nil, ErrMissingStep
	}
	return s.transition(ctx, tenantID, id, func(w *Workflow, now time.Time) {
		w.Status = StatusActive
		w.CurrentStep = step
		w.StepData = data
	})
}

// Complete finishes the workflow successfully
func (s *Service) Complete(ctx context.Context, tenantID, id string) (*Workflow, error) {
	return s.transition(ctx, tenantID, id, func(w *Workflow, now time.Time) {
		w.Status = StatusCompleted
		w.CompletedAt = &now
	})
}

// Fail finishes the workflow with an error message
func (s *Service) Fail(ctx context.Context, tenantID, id, message string) (*Workflow, error) {
	return s.transition(ctx, tenantID, id, func(w *Workflow, now time.Time) {
		w.Status = StatusFailed
		w.ErrorMessage = message
		w.CompletedAt = &now
	})
}

func (s *Service) transition(ctx context.Context, tenantID, id string, apply func(*Workflow, time.Time)) (*Workflow, error) {
	w, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if w.Status.Terminal() {
		return nil, ErrTerminal
	}

	now := time.Now()
	apply(w, now)
	w.UpdatedAt = now

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}
	return w, nil
}
