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
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/salesdesk/internal/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory Repository enforcing the same uniqueness rules as
// the database: one tenant-less assignment per user and role.
type memRepo struct {
	mu          sync.Mutex
	tenants     map[string]*Tenant
	assignments []*Assignment
	listErr     error
}

func newMemRepo() *memRepo {
	return &memRepo{tenants: map[string]*Tenant{}}
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	return t, nil
}

func (r *memRepo) ListAssignments(ctx context.Context, userID string) ([]*Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*Assignment
	for _, a := range r.assignments {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GrantedAt.Before(out[j].GrantedAt) })
	return out, nil
}

func (r *memRepo) AssignRole(ctx context.Context, a *Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.assignments {
		if existing.UserID == a.UserID && existing.Role == a.Role && existing.TenantID == a.TenantID {
			if a.TenantID == "" {
				return ErrRoleAlreadyExists
			}
			return nil
		}
	}
	cp := *a
	r.assignments = append(r.assignments, &cp)
	return nil
}

func (r *memRepo) ProvisionForAdmin(ctx context.Context, userID string, t *Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assignments {
		if a.UserID == userID && a.Role == RoleClientAdmin && a.TenantID == "" {
			r.tenants[t.ID] = t
			a.TenantID = t.ID
			return nil
		}
	}
	return ErrAlreadyProvisioned
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Log(ctx context.Context, entry audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// TestPurpose: Validates that a provisioned user resolves to their existing tenant without side effects.
// Scope: Unit Test
// Security: Multi-tenant boundary enforcement
// Expected: Scope carries the stored role and tenant; no tenant is created.
// Test Case ID: TEN-01
func TestTenant_Resolve_ExistingTenant(t *testing.T) {
	repo := newMemRepo()
	repo.assignments = append(repo.assignments, &Assignment{UserID: "u1", Role: RoleSalesRep, TenantID: "t1", GrantedAt: time.Now()})
	svc := NewService(repo, new(mockAudit))

	scope, err := svc.Resolve(context.Background(), "u1", "rep@example.com")

	require.NoError(t, err)
	assert.Equal(t, Scope{UserID: "u1", Email: "rep@example.com", Role: RoleSalesRep, TenantID: "t1"}, scope)
	assert.Empty(t, repo.tenants)
}

// TestPurpose: Validates the error taxonomy for callers that cannot be scoped.
// Scope: Unit Test
// Security: Authorization (no role means no access)
// Expected: ErrNoRole without assignments, ErrNoTenant for a tenant-less representative.
// Test Case ID: TEN-02
func TestTenant_Resolve_Unscoped(t *testing.T) {
	ctx := context.Background()

	t.Run("no assignment", func(t *testing.T) {
		svc := NewService(newMemRepo(), new(mockAudit))
		_, err := svc.Resolve(ctx, "u1", "")
		assert.ErrorIs(t, err, ErrNoRole)
	})

	t.Run("representative without tenant", func(t *testing.T) {
		repo := newMemRepo()
		repo.assignments = append(repo.assignments, &Assignment{UserID: "u1", Role: RoleSalesRep})
		svc := NewService(repo, new(mockAudit))
		_, err := svc.Resolve(ctx, "u1", "")
		assert.ErrorIs(t, err, ErrNoTenant)
		assert.Empty(t, repo.tenants)
	})

	t.Run("missing user", func(t *testing.T) {
		svc := NewService(newMemRepo(), new(mockAudit))
		_, err := svc.Resolve(ctx, "", "")
		assert.ErrorIs(t, err, ErrMissingUser)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := newMemRepo()
		repo.listErr = errors.New("connection refused")
		svc := NewService(repo, new(mockAudit))
		_, err := svc.Resolve(ctx, "u1", "")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoRole)
	})
}

// TestPurpose: Validates lazy tenant provisioning for a tenant-less administrator.
// Scope: Unit Test
// Security: Traceability of tenant creation
// Expected: One UUIDv7 tenant is created, attached to the assignment and audited.
// Test Case ID: TEN-03
func TestTenant_Resolve_ProvisionsAdmin(t *testing.T) {
	repo := newMemRepo()
	repo.assignments = append(repo.assignments, &Assignment{UserID: "admin-1", Role: RoleClientAdmin})
	auditLogger := new(mockAudit)
	auditLogger.On("Log", mock.Anything, mock.MatchedBy(func(e audit.Entry) bool {
		return e.Action == audit.ActionProvisionTenant && e.ActorID == "admin-1"
	})).Return(nil).Once()
	svc := NewService(repo, auditLogger)

	scope, err := svc.Resolve(context.Background(), "admin-1", "ada@example.com")

	require.NoError(t, err)
	assert.True(t, scope.IsAdmin())
	require.Len(t, repo.tenants, 1)
	created := repo.tenants[scope.TenantID]
	require.NotNil(t, created)
	assert.Equal(t, "ada's Client", created.Name)

	uid, err := uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), uid.Version())
	auditLogger.AssertExpectations(t)
}

// TestPurpose: Validates that a failing audit write does not fail provisioning.
// Scope: Unit Test
// Expected: Resolve succeeds with the new tenant.
// Test Case ID: TEN-04
func TestTenant_Resolve_AuditFailureIsBestEffort(t *testing.T) {
	repo := newMemRepo()
	repo.assignments = append(repo.assignments, &Assignment{UserID: "admin-1", Role: RoleClientAdmin})
	auditLogger := new(mockAudit)
	auditLogger.On("Log", mock.Anything, mock.Anything).Return(errors.New("audit table unavailable"))
	svc := NewService(repo, auditLogger)

	scope, err := svc.Resolve(context.Background(), "admin-1", "")

	require.NoError(t, err)
	assert.NotEmpty(t, scope.TenantID)
}

// TestPurpose: Validates that concurrent first requests of a tenant-less administrator create exactly one tenant.
// Scope: Unit Test
// Security: Multi-tenant consistency under races
// Expected: All callers observe the same tenant and only one tenant exists.
// Test Case ID: TEN-05
func TestTenant_Resolve_ConcurrentProvisioning(t *testing.T) {
	repo := newMemRepo()
	repo.assignments = append(repo.assignments, &Assignment{UserID: "admin-1", Role: RoleClientAdmin})
	auditLogger := new(mockAudit)
	auditLogger.On("Log", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(repo, auditLogger)

	const callers = 8
	scopes := make([]Scope, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			scopes[i], errs[i] = svc.Resolve(context.Background(), "admin-1", "")
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, scopes[0].TenantID, scopes[i].TenantID)
	}
	assert.Len(t, repo.tenants, 1)
	auditLogger.AssertNumberOfCalls(t, "Log", 1)
}

// TestPurpose: Validates role assignment upsert semantics.
// Scope: Unit Test
// Expected: Assigning the same triple twice succeeds once in storage; unknown roles are rejected.
// Test Case ID: TEN-06
func TestTenant_EnsureRole(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, new(mockAudit))
	ctx := context.Background()

	require.NoError(t, svc.EnsureRole(ctx, "u1", RoleSalesRep, "t1", "admin-1"))
	require.NoError(t, svc.EnsureRole(ctx, "u1", RoleSalesRep, "t1", "admin-1"))
	assert.Len(t, repo.assignments, 1)

	err := svc.EnsureRole(ctx, "u1", Role("owner"), "t1", "admin-1")
	assert.ErrorIs(t, err, ErrInvalidRole)

	assert.ErrorIs(t, svc.EnsureRole(ctx, "", RoleSalesRep, "t1", ""), ErrMissingUser)
}
