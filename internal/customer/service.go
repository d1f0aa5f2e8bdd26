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

package customer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/salesdesk/salesdesk/internal/audit"
	"github.com/salesdesk/salesdesk/internal/id"
	"github.com/salesdesk/salesdesk/internal/observability/logger"
	"github.com/salesdesk/salesdesk/internal/tenant"
)

// Service provides customer management business logic
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new customer service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
	}
}

// New builds a customer owned by salesRepID in tenantID from a draft.
func New(tenantID, salesRepID string, d Draft) *Customer {
	now := time.Now()
	status := d.Status
	if status == "" {
		status = StatusPending
	}
	return &Customer{
		ID:         id.NewUUIDv7(),
		TenantID:   tenantID,
		SalesRepID: salesRepID,
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		Email:      d.Email,
		Phone:      d.Phone,
		Source:     d.Source,
		Notes:      d.Notes,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Create inserts a single customer for the given owner
func (s *Service) Create(ctx context.Context, tenantID, salesRepID string, d Draft) (*Customer, error) {
	c := New(tenantID, salesRepID, d)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return c, nil
}

// Get returns a customer visible to scope. Sales reps only see their own.
func (s *Service) Get(ctx context.Context, scope tenant.Scope, id string) (*Customer, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !scope.IsAdmin() && c.SalesRepID != scope.UserID {
		return nil, ErrNotFound
	}
	return c, nil
}

// List returns customers visible to scope
func (s *Service) List(ctx context.Context, scope tenant.Scope, limit, offset int) ([]*Customer, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	owner := scope.UserID
	if scope.IsAdmin() {
		owner = ""
	}
	return s.repo.List(ctx, scope.TenantID, owner, limit, offset)
}

// UpdateStatus changes the lead status of a customer visible to scope
func (s *Service) UpdateStatus(ctx context.Context, scope tenant.Scope, id, status string) (*Customer, error) {
	st, ok := ParseStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	c, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, scope.TenantID, id, st); err != nil {
		return nil, fmt.Errorf("failed to update customer status: %w", err)
	}

	if err := s.auditLogger.Log(ctx, audit.Entry{
		TenantID:     scope.TenantID,
		ActorID:      scope.UserID,
		Action:       audit.ActionUpdateCustomerStatus,
		ResourceType: audit.ResourceCustomer,
		ResourceID:   id,
		Before:       map[string]any{"status": string(c.Status)},
		After:        map[string]any{"status": string(st)},
	}); err != nil {
		slog.WarnContext(ctx, "best-effort audit write failed",
			logger.Operation(audit.ActionUpdateCustomerStatus),
			logger.Error(err),
		)
	}

	c.Status = st
	c.UpdatedAt = time.Now()
	return c, nil
}
