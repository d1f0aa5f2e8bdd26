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

// Package salesrep models sales representatives of a tenant.
package salesrep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salesdesk/salesdesk/internal/tenant"
)

// Status of a sales representative
type Status string

// Sales rep statuses
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var ErrNotFound = errors.New("sales rep not found")

// SalesRep is a representative record. There is one per (tenant, email).
type SalesRep struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone_no,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository defines sales rep persistence
type Repository interface {
	// Upsert inserts rep, or updates the existing (tenant, email) record and
	// reactivates it. rep is refreshed with the stored values.
	Upsert(ctx context.Context, rep *SalesRep) (inserted bool, err error)

	// FindByEmail looks up a rep across tenants, case-insensitively. It runs
	// with privileged access.
	FindByEmail(ctx context.Context, email string) (*SalesRep, error)

	List(ctx context.Context, tenantID string) ([]*SalesRep, error)
}

// Service provides sales rep queries
type Service struct {
	repo Repository
}

// NewService creates a new sales rep service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the sales reps of the caller's tenant
func (s *Service) List(ctx context.Context, scope tenant.Scope) ([]*SalesRep, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	reps, err := s.repo.List(ctx, scope.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales reps: %w", err)
	}
	return reps, nil
}
