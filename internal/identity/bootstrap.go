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

package identity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/salesdesk/salesdesk/internal/observability/logger"
	"github.com/salesdesk/salesdesk/internal/tenant"
)

const actorSystemBootstrap = "system:bootstrap"

// RoleGranter assigns tenant roles
type RoleGranter interface {
	EnsureRole(ctx context.Context, userID string, role tenant.Role, tenantID, grantedBy string) error
}

// BootstrapService creates the first client administrators
type BootstrapService struct {
	identityService *Service
	roles           RoleGranter
}

// NewBootstrapService creates a new bootstrap service
func NewBootstrapService(identityService *Service, roles RoleGranter) *BootstrapService {
	return &BootstrapService{
		identityService: identityService,
		roles:           roles,
	}
}

// Bootstrap grants the configured administrator, if any.
func (s *BootstrapService) Bootstrap(ctx context.Context, email string) error {
	if email == "" {
		return nil
	}
	_, err := s.GrantAdmin(ctx, email)
	return err
}

// GrantAdmin resolves or creates the identity for email and gives it a
// tenant-less administrator assignment. The tenant is provisioned on the
// identity's first authenticated request.
func (s *BootstrapService) GrantAdmin(ctx context.Context, email string) (*User, error) {
	u, created, err := s.identityService.EnsureUser(ctx, email, map[string]any{
		"role": string(tenant.RoleClientAdmin),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve administrator identity: %w", err)
	}

	if err := s.roles.EnsureRole(ctx, u.ID, tenant.RoleClientAdmin, "", actorSystemBootstrap); err != nil {
		return nil, fmt.Errorf("failed to grant administrator role: %w", err)
	}

	slog.InfoContext(ctx, "bootstrapped client administrator",
		logger.UserID(u.ID),
		logger.Email(u.Email),
		slog.Bool("created_user", created),
	)
	return u, nil
}
