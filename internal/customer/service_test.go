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
	"errors"
	"testing"

	"github.com/salesdesk/salesdesk/internal/audit"
	"github.com/salesdesk/salesdesk/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, c *Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockRepo) SaveBatch(ctx context.Context, tenantID string, customers []*Customer, mode WriteMode) (int, error) {
	args := m.Called(ctx, tenantID, customers, mode)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, tenantID, id string) (*Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Customer), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, tenantID, salesRepID string, limit, offset int) ([]*Customer, error) {
	args := m.Called(ctx, tenantID, salesRepID, limit, offset)
	return args.Get(0).([]*Customer), args.Error(1)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, tenantID, id string, status Status) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Log(ctx context.Context, entry audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

var (
	repScope   = tenant.Scope{UserID: "rep-1", Role: tenant.RoleSalesRep, TenantID: "t1"}
	adminScope = tenant.Scope{UserID: "admin-1", Role: tenant.RoleClientAdmin, TenantID: "t1"}
)

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus("  WON ")
	assert.True(t, ok)
	assert.Equal(t, StatusWon, st)

	_, ok = ParseStatus("archived")
	assert.False(t, ok)
}

func TestParseWriteMode(t *testing.T) {
	m, err := ParseWriteMode("", Upsert)
	require.NoError(t, err)
	assert.Equal(t, Upsert, m)

	m, err = ParseWriteMode("INSERT", Upsert)
	require.NoError(t, err)
	assert.Equal(t, InsertOnly, m)

	_, err = ParseWriteMode("merge", Upsert)
	assert.ErrorIs(t, err, ErrInvalidWriteMode)
}

// TestPurpose: Validates that new customers default to pending and get an identifier.
// Scope: Unit Test
// Expected: Status pending, owner and tenant set from arguments.
// Test Case ID: CUS-01
func TestCustomer_New_Defaults(t *testing.T) {
	c := New("t1", "rep-1", Draft{FirstName: "Jane", Email: "jane@example.com"})

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "t1", c.TenantID)
	assert.Equal(t, "rep-1", c.SalesRepID)
	assert.Equal(t, StatusPending, c.Status)
}

// TestPurpose: Validates owner scoping of customer listing.
// Scope: Unit Test
// Security: Sales reps only see their own leads; administrators see the tenant
// Expected: Repository is queried with the rep as owner, or no owner for admins.
// Test Case ID: CUS-02
func TestCustomer_List_OwnerScoping(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, new(mockAudit))
	ctx := context.Background()

	repo.On("List", ctx, "t1", "rep-1", 100, 0).Return([]*Customer{{ID: "c1"}}, nil).Once()
	repo.On("List", ctx, "t1", "", 50, 10).Return([]*Customer{{ID: "c1"}, {ID: "c2"}}, nil).Once()

	got, err := svc.List(ctx, repScope, 0, -1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.List(ctx, adminScope, 50, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.List(ctx, tenant.Scope{UserID: "u"}, 10, 0)
	assert.ErrorIs(t, err, tenant.ErrNoTenant)

	repo.AssertExpectations(t)
}

// TestPurpose: Validates status updates, including ownership and audit behavior.
// Scope: Unit Test
// Security: A rep cannot modify another rep's lead
// Expected: Own lead is updated and audited; foreign lead reports not found; bad status is rejected.
// Test Case ID: CUS-03
func TestCustomer_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("own customer", func(t *testing.T) {
		repo := new(mockRepo)
		auditLogger := new(mockAudit)
		svc := NewService(repo, auditLogger)

		repo.On("GetByID", ctx, "t1", "c1").Return(&Customer{ID: "c1", SalesRepID: "rep-1", Status: StatusPending}, nil)
		repo.On("UpdateStatus", ctx, "t1", "c1", StatusActive).Return(nil)
		auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Entry) bool {
			return e.Action == audit.ActionUpdateCustomerStatus && e.Before["status"] == "pending" && e.After["status"] == "active"
		})).Return(errors.New("audit down"))

		c, err := svc.UpdateStatus(ctx, repScope, "c1", "Active")
		require.NoError(t, err)
		assert.Equal(t, StatusActive, c.Status)
		auditLogger.AssertExpectations(t)
	})

	t.Run("foreign customer", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewService(repo, new(mockAudit))
		repo.On("GetByID", ctx, "t1", "c2").Return(&Customer{ID: "c2", SalesRepID: "rep-2"}, nil)

		_, err := svc.UpdateStatus(ctx, repScope, "c2", "won")
		assert.ErrorIs(t, err, ErrNotFound)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid status", func(t *testing.T) {
		svc := NewService(new(mockRepo), new(mockAudit))
		_, err := svc.UpdateStatus(ctx, repScope, "c1", "archived")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}
