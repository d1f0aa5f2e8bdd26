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
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/salesdesk/salesdesk/internal/audit"
	"github.com/salesdesk/salesdesk/internal/id"
	"github.com/salesdesk/salesdesk/internal/observability/logger"
)

// Service provides tenant resolution and role assignment
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new tenant service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
	}
}

// Resolve returns the caller's scope. An administrator without a tenant gets
// one provisioned; concurrent first calls converge on a single tenant.
//
// A user holding several assignments resolves to the earliest granted one.
func (s *Service) Resolve(ctx context.Context, userID, email string) (Scope, error) {
	if userID == "" {
		return Scope{}, ErrMissingUser
	}

	a, err := s.firstAssignment(ctx, userID)
	if err != nil {
		return Scope{}, err
	}

	if a.TenantID == "" {
		if a.Role != RoleClientAdmin {
			return Scope{}, ErrNoTenant
		}
		a, err = s.provision(ctx, userID, email)
		if err != nil {
			return Scope{}, err
		}
	}

	return Scope{
		UserID:   userID,
		Email:    email,
		Role:     a.Role,
		TenantID: a.TenantID,
	}, nil
}

func (s *Service) firstAssignment(ctx context.Context, userID string) (*Assignment, error) {
	assignments, err := s.repo.ListAssignments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role assignments: %w", err)
	}
	if len(assignments) == 0 {
		return nil, ErrNoRole
	}
	return assignments[0], nil
}

func (s *Service) provision(ctx context.Context, userID, email string) (*Assignment, error) {
	now := time.Now()
	t := &Tenant{
		ID:        id.NewUUIDv7(),
		Name:      defaultTenantName(email),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.repo.ProvisionForAdmin(ctx, userID, t)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "provisioned tenant for administrator",
			logger.TenantID(t.ID),
			logger.UserID(userID),
		)
		if auditErr := s.auditLogger.Log(ctx, audit.Entry{
			TenantID:     t.ID,
			ActorID:      userID,
			Action:       audit.ActionProvisionTenant,
			ResourceType: audit.ResourceTenant,
			ResourceID:   t.ID,
			After:        map[string]any{"name": t.Name},
		}); auditErr != nil {
			slog.WarnContext(ctx, "best-effort audit write failed",
				logger.Operation(audit.ActionProvisionTenant),
				logger.Error(auditErr),
			)
		}
	case errors.Is(err, ErrAlreadyProvisioned):
		// A concurrent call won the race; observe its tenant.
	default:
		return nil, fmt.Errorf("failed to provision tenant: %w", err)
	}

	a, err := s.firstAssignment(ctx, userID)
	if err != nil {
		return nil, err
	}
	if a.TenantID == "" {
		return nil, fmt.Errorf("failed to provision tenant: %w", ErrNoTenant)
	}
	return a, nil
}

// EnsureRole assigns role in tenantID to userID. An existing assignment is
// left untouched.
func (s *Service) EnsureRole(ctx context.Context, userID string, role Role, tenantID, grantedBy string) error {
	if userID == "" {
		return ErrMissingUser
	}
	if !role.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	err := s.repo.AssignRole(ctx, &Assignment{
		UserID:    userID,
		Role:      role,
		TenantID:  tenantID,
		GrantedAt: time.Now(),
		GrantedBy: grantedBy,
	})
	if err != nil && !errors.Is(err, ErrRoleAlreadyExists) {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

// GetTenant retrieves a tenant by ID
func (s *Service) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func defaultTenantName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "New Client"
	}
	return local + "'s Client"
}
