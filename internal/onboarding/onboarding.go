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

// Package onboarding implements the privileged invite-representative and
// onboard-customer procedures.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/salesdesk/salesdesk/internal/audit"
	"github.com/salesdesk/salesdesk/internal/customer"
	"github.com/salesdesk/salesdesk/internal/id"
	"github.com/salesdesk/salesdesk/internal/identity"
	"github.com/salesdesk/salesdesk/internal/normalize"
	"github.com/salesdesk/salesdesk/internal/observability/logger"
	"github.com/salesdesk/salesdesk/internal/salesrep"
	"github.com/salesdesk/salesdesk/internal/tenant"
	"github.com/salesdesk/salesdesk/internal/workflow"
)

var (
	ErrForbidden      = errors.New("administrator role required")
	ErrInvalidRequest = errors.New("invalid request")
	ErrRepNotFound    = errors.New("sales rep not found")
)

// IdentityResolver resolves or creates identities by email
type IdentityResolver interface {
	EnsureUser(ctx context.Context, email string, metadata map[string]any) (*identity.User, bool, error)
	UpdateMetadata(ctx context.Context, userID string, metadata map[string]any) error
}

// RoleAssigner upserts role assignments
type RoleAssigner interface {
	EnsureRole(ctx context.Context, userID string, role tenant.Role, tenantID, grantedBy string) error
}

// CustomerCreator inserts customers
type CustomerCreator interface {
	Create(ctx context.Context, tenantID, salesRepID string, d customer.Draft) (*customer.Customer, error)
}

// WorkflowStarter starts a customer's onboarding workflow
type WorkflowStarter interface {
	Start(ctx context.Context, tenantID, customerID string) (*workflow.Workflow, error)
}

// InviteRequest is the input of InviteRepresentative
type InviteRequest struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// InviteResult reports the resolved representative
type InviteResult struct {
	CreatedUser bool
	UserID      string
	SalesRep    *salesrep.SalesRep
}

// OnboardRequest is the input of OnboardCustomer
type OnboardRequest struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	SalesRepEmail string
	Source        string
	Notes         string
	Status        string
}

// Service runs the onboarding procedures
type Service struct {
	identities  IdentityResolver
	roles       RoleAssigner
	reps        salesrep.Repository
	customers   CustomerCreator
	workflows   WorkflowStarter
	auditLogger audit.Logger
	tracer      trace.Tracer
}

// NewService creates a new onboarding service
func NewService(
	identities IdentityResolver,
	roles RoleAssigner,
	reps salesrep.Repository,
	customers CustomerCreator,
	workflows WorkflowStarter,
	auditLogger audit.Logger,
) *Service {
	return &Service{
		identities:  identities,
		roles:       roles,
		reps:        reps,
		customers:   customers,
		workflows:   workflows,
		auditLogger: auditLogger,
		tracer:      otel.Tracer("github.com/salesdesk/salesdesk/internal/onboarding"),
	}
}

// InviteRepresentative resolves an identity for req.Email, makes it a sales
// rep of the caller's tenant and upserts the rep record keyed by
// (tenant, email).
func (s *Service) InviteRepresentative(ctx context.Context, scope tenant.Scope, req InviteRequest) (*InviteResult, error) {
	if !scope.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = normalize.Email(req.Email)
	req.Phone = normalize.Phone(req.Phone)
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: first_name, last_name and email are required", ErrInvalidRequest)
	}

	ctx, span := s.tracer.Start(ctx, "onboarding.InviteRepresentative", trace.WithAttributes(
		attribute.String("tenant.id", scope.TenantID),
	))
	defer span.End()

	submitted := map[string]any{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"email":      req.Email,
		"phone_no":   req.Phone,
	}

	user, created, err := s.identities.EnsureUser(ctx, req.Email, submitted)
	if err != nil {
		span.SetStatus(codes.Error, "identity resolution failed")
		return nil, err
	}

	if err := s.roles.EnsureRole(ctx, user.ID, tenant.RoleSalesRep, scope.TenantID, scope.UserID); err != nil {
		span.SetStatus(codes.Error, "role assignment failed")
		return nil, err
	}

	now := time.Now()
	rep := &salesrep.SalesRep{
		ID:        id.NewUUIDv7(),
		TenantID:  scope.TenantID,
		UserID:    user.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    salesrep.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	inserted, err := s.reps.Upsert(ctx, rep)
	if err != nil {
		span.SetStatus(codes.Error, "sales rep write failed")
		return nil, fmt.Errorf("failed to upsert sales rep: %w", err)
	}

	slog.InfoContext(ctx, "sales rep invited",
		logger.Component("onboarding"),
		logger.TenantID(scope.TenantID),
		logger.UserID(user.ID),
		slog.Bool("created_user", created),
		slog.Bool("inserted", inserted),
	)

	runPostActions(ctx,
		postAction{name: audit.ActionInviteSalesRep, run: func(ctx context.Context) error {
			after := map[string]any{"user_id": user.ID, "created_user": created, "inserted": inserted}
			for k, v := range submitted {
				after[k] = v
			}
			return s.auditLogger.Log(ctx, audit.Entry{
				TenantID:     scope.TenantID,
				ActorID:      scope.UserID,
				Action:       audit.ActionInviteSalesRep,
				ResourceType: audit.ResourceSalesRep,
				ResourceID:   rep.ID,
				After:        after,
			})
		}},
		postAction{name: "sync_profile", run: func(ctx context.Context) error {
			return s.identities.UpdateMetadata(ctx, user.ID, map[string]any{
				"first_name": req.FirstName,
				"last_name":  req.LastName,
				"role":       string(tenant.RoleSalesRep),
				"tenant_id":  scope.TenantID,
			})
		}},
	)

	return &InviteResult{
		CreatedUser: created,
		UserID:      user.ID,
		SalesRep:    rep,
	}, nil
}

// OnboardCustomer creates a customer owned by the sales rep whose email is
// req.SalesRepEmail. The rep is never created implicitly.
func (s *Service) OnboardCustomer(ctx context.Context, req OnboardRequest) (*customer.Customer, error) {
	req.Email = normalize.Email(req.Email)
	req.SalesRepEmail = normalize.Email(req.SalesRepEmail)
	if req.Email == "" || req.SalesRepEmail == "" {
		return nil, fmt.Errorf("%w: email and sales_rep_email are required", ErrInvalidRequest)
	}

	status := customer.StatusPending
	if strings.TrimSpace(req.Status) != "" {
		st, ok := customer.ParseStatus(req.Status)
		if !ok {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, customer.ErrInvalidStatus)
		}
		status = st
	}

	ctx, span := s.tracer.Start(ctx, "onboarding.OnboardCustomer")
	defer span.End()

	rep, err := s.reps.FindByEmail(ctx, req.SalesRepEmail)
	if err != nil {
		if errors.Is(err, salesrep.ErrNotFound) {
			return nil, ErrRepNotFound
		}
		span.SetStatus(codes.Error, "sales rep lookup failed")
		return nil, fmt.Errorf("failed to find sales rep: %w", err)
	}
	span.SetAttributes(attribute.String("tenant.id", rep.TenantID))

	c, err := s.customers.Create(ctx, rep.TenantID, rep.UserID, customer.Draft{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Phone:     normalize.Phone(req.Phone),
		Source:    strings.TrimSpace(req.Source),
		Notes:     strings.TrimSpace(req.Notes),
		Status:    status,
	})
	if err != nil {
		span.SetStatus(codes.Error, "customer write failed")
		return nil, err
	}

	slog.InfoContext(ctx, "customer onboarded",
		logger.Component("onboarding"),
		logger.TenantID(rep.TenantID),
		logger.UserID(rep.UserID),
		logger.String("customer_id", c.ID),
	)

	runPostActions(ctx,
		postAction{name: audit.ActionOnboardCustomer, run: func(ctx context.Context) error {
			return s.auditLogger.Log(ctx, audit.Entry{
				TenantID:     rep.TenantID,
				ActorID:      rep.UserID,
				Action:       audit.ActionOnboardCustomer,
				ResourceType: audit.ResourceCustomer,
				ResourceID:   c.ID,
				After: map[string]any{
					"first_name":      c.FirstName,
					"last_name":       c.LastName,
					"email":           c.Email,
					"phone_no":        c.Phone,
					"source":          c.Source,
					"status":          string(c.Status),
					"sales_rep_email": rep.Email,
				},
			})
		}},
		postAction{name: "start_workflow", run: func(ctx context.Context) error {
			_, err := s.workflows.Start(ctx, rep.TenantID, c.ID)
			return err
		}},
	)

	return c, nil
}
