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

package onboarding

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdesk/salesdesk/internal/audit"
	"github.com/salesdesk/salesdesk/internal/customer"
	"github.com/salesdesk/salesdesk/internal/identity"
	"github.com/salesdesk/salesdesk/internal/salesrep"
	"github.com/salesdesk/salesdesk/internal/tenant"
	"github.com/salesdesk/salesdesk/internal/workflow"
)

type fakeIdentities struct {
	users     map[string]*identity.User
	ensureErr error
	updateErr error
	updates   map[string]map[string]any
}

func (f *fakeIdentities) EnsureUser(ctx context.Context, email string, md map[string]any) (*identity.User, bool, error) {
	if f.ensureErr != nil {
		return nil, false, f.ensureErr
	}
	if u, ok := f.users[email]; ok {
		return u, false, nil
	}
	u := &identity.User{ID: "user-" + email, Email: email, Metadata: md}
	f.users[email] = u
	return u, true, nil
}

func (f *fakeIdentities) UpdateMetadata(ctx context.Context, userID string, md map[string]any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates[userID] = md
	return nil
}

type fakeRoles struct {
	assigned []tenant.Assignment
	err      error
}

func (f *fakeRoles) EnsureRole(ctx context.Context, userID string, role tenant.Role, tenantID, grantedBy string) error {
	if f.err != nil {
		return f.err
	}
	for _, a := range f.assigned {
		if a.UserID == userID && a.Role == role && a.TenantID == tenantID {
			return nil
		}
	}
	f.assigned = append(f.assigned, tenant.Assignment{UserID: userID, Role: role, TenantID: tenantID, GrantedBy: grantedBy})
	return nil
}

type fakeReps struct {
	mu   sync.Mutex
	reps []*salesrep.SalesRep
	err  error
}

func (f *fakeReps) Upsert(ctx context.Context, rep *salesrep.SalesRep) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, existing := range f.reps {
		if existing.TenantID == rep.TenantID && existing.Email == rep.Email {
			existing.FirstName, existing.LastName, existing.Phone = rep.FirstName, rep.LastName, rep.Phone
			existing.Status = salesrep.StatusActive
			*rep = *existing
			return false, nil
		}
	}
	cp := *rep
	f.reps = append(f.reps, &cp)
	return true, nil
}

func (f *fakeReps) FindByEmail(ctx context.Context, email string) (*salesrep.SalesRep, error) {
	for _, r := range f.reps {
		if strings.EqualFold(r.Email, email) {
			return r, nil
		}
	}
	return nil, salesrep.ErrNotFound
}

func (f *fakeReps) List(ctx context.Context, tenantID string) ([]*salesrep.SalesRep, error) {
	return f.reps, nil
}

type fakeCustomers struct {
	created []*customer.Customer
	err     error
}

func (f *fakeCustomers) Create(ctx context.Context, tenantID, salesRepID string, d customer.Draft) (*customer.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := customer.New(tenantID, salesRepID, d)
	f.created = append(f.created, c)
	return c, nil
}

type fakeWorkflows struct {
	started []string
	err     error
}

func (f *fakeWorkflows) Start(ctx context.Context, tenantID, customerID string) (*workflow.Workflow, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.started = append(f.started, customerID)
	return &workflow.Workflow{ID: "wf-" + customerID, CustomerID: customerID, Status: workflow.StatusPending}, nil
}

type fakeAudit struct {
	entries []audit.Entry
	err     error
}

func (f *fakeAudit) Log(ctx context.Context, e audit.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

type fixture struct {
	identities *fakeIdentities
	roles      *fakeRoles
	reps       *fakeReps
	customers  *fakeCustomers
	workflows  *fakeWorkflows
	audit      *fakeAudit
	svc        *Service
}

func newFixture() *fixture {
	f := &fixture{
		identities: &fakeIdentities{users: map[string]*identity.User{}, updates: map[string]map[string]any{}},
		roles:      &fakeRoles{},
		reps:       &fakeReps{},
		customers:  &fakeCustomers{},
		workflows:  &fakeWorkflows{},
		audit:      &fakeAudit{},
	}
	f.svc = NewService(f.identities, f.roles, f.reps, f.customers, f.workflows, f.audit)
	return f
}

var adminScope = tenant.Scope{UserID: "admin-1", Email: "admin@example.com", Role: tenant.RoleClientAdmin, TenantID: "t1"}

var inviteReq = InviteRequest{FirstName: "Ada", LastName: "Lovelace", Email: " Ada@Example.com ", Phone: "(555) 123-4567"}

// TestPurpose: Validates inviting a representative whose identity does not exist yet.
// Scope: Unit Test
// Expected: createdUser is true, one active rep exists, one invite_sales_rep audit entry is written and the role is assigned.
// Test Case ID: ONB-01
func TestInviteRepresentative_NewIdentity(t *testing.T) {
	f := newFixture()

	res, err := f.svc.InviteRepresentative(context.Background(), adminScope, inviteReq)

	require.NoError(t, err)
	assert.True(t, res.CreatedUser)
	assert.Equal(t, "user-ada@example.com", res.UserID)

	require.Len(t, f.reps.reps, 1)
	rep := f.reps.reps[0]
	assert.Equal(t, salesrep.StatusActive, rep.Status)
	assert.Equal(t, "t1", rep.TenantID)
	assert.Equal(t, "ada@example.com", rep.Email)
	assert.Equal(t, "5551234567", rep.Phone)

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, audit.ActionInviteSalesRep, entry.Action)
	assert.Equal(t, "admin-1", entry.ActorID)
	assert.Equal(t, res.UserID, entry.After["user_id"])
	assert.Equal(t, "Ada", entry.After["first_name"])

	require.Len(t, f.roles.assigned, 1)
	assert.Equal(t, tenant.RoleSalesRep, f.roles.assigned[0].Role)
	assert.Equal(t, "t1", f.roles.assigned[0].TenantID)

	assert.Equal(t, "sales_rep", f.identities.updates[res.UserID]["role"])
}

// TestPurpose: Validates that re-inviting updates and reactivates the existing rep.
// Scope: Unit Test
// Expected: Still one rep, reactivated, with updated fields; createdUser false; audited each time.
// Test Case ID: ONB-02
func TestInviteRepresentative_Reinvite(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.InviteRepresentative(ctx, adminScope, inviteReq)
	require.NoError(t, err)
	f.reps.reps[0].Status = salesrep.StatusInactive

	req := inviteReq
	req.LastName = "King"
	res, err := f.svc.InviteRepresentative(ctx, adminScope, req)
	require.NoError(t, err)

	assert.False(t, res.CreatedUser)
	require.Len(t, f.reps.reps, 1)
	assert.Equal(t, salesrep.StatusActive, f.reps.reps[0].Status)
	assert.Equal(t, "King", f.reps.reps[0].LastName)
	assert.Equal(t, f.reps.reps[0].ID, res.SalesRep.ID)
	assert.Len(t, f.audit.entries, 2)
	assert.Len(t, f.roles.assigned, 1)
}

// TestPurpose: Validates that best-effort post-actions never fail the invite.
// Scope: Unit Test
// Expected: Audit and profile sync failures are swallowed; the rep is written.
// Test Case ID: ONB-03
func TestInviteRepresentative_PostActionFailures(t *testing.T) {
	f := newFixture()
	f.audit.err = errors.New("audit table unavailable")
	f.identities.updateErr = errors.New("provider timeout")

	res, err := f.svc.InviteRepresentative(context.Background(), adminScope, inviteReq)

	require.NoError(t, err)
	assert.True(t, res.CreatedUser)
	assert.Len(t, f.reps.reps, 1)
}

// TestPurpose: Validates authorization and hard-failure semantics of the invite.
// Scope: Unit Test
// Security: Only administrators of a resolved tenant may invite
// Expected: Non-admins are forbidden; invalid input, identity and persistence failures abort without audit.
// Test Case ID: ONB-04
func TestInviteRepresentative_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("not an administrator", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.InviteRepresentative(ctx, tenant.Scope{UserID: "rep", Role: tenant.RoleSalesRep, TenantID: "t1"}, inviteReq)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.InviteRepresentative(ctx, adminScope, InviteRequest{Email: "a@b.c"})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("unresolvable identity", func(t *testing.T) {
		f := newFixture()
		f.identities.ensureErr = identity.ErrUnresolvable
		_, err := f.svc.InviteRepresentative(ctx, adminScope, inviteReq)
		assert.ErrorIs(t, err, identity.ErrUnresolvable)
		assert.Empty(t, f.reps.reps)
		assert.Empty(t, f.audit.entries)
	})

	t.Run("rep write fails", func(t *testing.T) {
		f := newFixture()
		f.reps.err = errors.New("connection reset")
		_, err := f.svc.InviteRepresentative(ctx, adminScope, inviteReq)
		assert.Error(t, err)
		assert.Empty(t, f.audit.entries)
	})
}

func seedRep(f *fixture) *salesrep.SalesRep {
	rep := &salesrep.SalesRep{ID: "rep-row-1", TenantID: "t1", UserID: "rep-user-1", Email: "rep@example.com", Status: salesrep.StatusActive}
	f.reps.reps = append(f.reps.reps, rep)
	return rep
}

var onboardReq = OnboardRequest{
	FirstName:     "Grace",
	LastName:      "Hopper",
	Email:         "Grace@Example.com",
	Phone:         "+1 555 000 1111",
	SalesRepEmail: "REP@example.com",
	Source:        "Website",
}

// TestPurpose: Validates onboarding a customer for a known representative.
// Scope: Unit Test
// Expected: Customer is attributed to the rep's tenant and user, defaults to pending, is audited and gets a workflow.
// Test Case ID: ONB-05
func TestOnboardCustomer_Success(t *testing.T) {
	f := newFixture()
	seedRep(f)

	c, err := f.svc.OnboardCustomer(context.Background(), onboardReq)

	require.NoError(t, err)
	assert.Equal(t, "t1", c.TenantID)
	assert.Equal(t, "rep-user-1", c.SalesRepID)
	assert.Equal(t, customer.StatusPending, c.Status)
	assert.Equal(t, "grace@example.com", c.Email)
	assert.Equal(t, "+15550001111", c.Phone)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, audit.ActionOnboardCustomer, f.audit.entries[0].Action)
	assert.Equal(t, []string{c.ID}, f.workflows.started)
}

// TestPurpose: Validates that onboarding is create-only.
// Scope: Unit Test
// Expected: Two calls with the same email create two customers.
// Test Case ID: ONB-06
func TestOnboardCustomer_CreateOnly(t *testing.T) {
	f := newFixture()
	seedRep(f)
	ctx := context.Background()

	_, err := f.svc.OnboardCustomer(ctx, onboardReq)
	require.NoError(t, err)
	_, err = f.svc.OnboardCustomer(ctx, onboardReq)
	require.NoError(t, err)

	assert.Len(t, f.customers.created, 2)
}

// TestPurpose: Validates onboarding failure semantics.
// Scope: Unit Test
// Expected: Unknown rep -> ErrRepNotFound and no customer; bad status -> ErrInvalidRequest; post-action failures are swallowed.
// Test Case ID: ONB-07
func TestOnboardCustomer_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown rep", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.OnboardCustomer(ctx, onboardReq)
		assert.ErrorIs(t, err, ErrRepNotFound)
		assert.Empty(t, f.customers.created)
		assert.Empty(t, f.reps.reps)
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newFixture()
		seedRep(f)
		req := onboardReq
		req.Status = "archived"
		_, err := f.svc.OnboardCustomer(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("missing rep email", func(t *testing.T) {
		f := newFixture()
		req := onboardReq
		req.SalesRepEmail = " "
		_, err := f.svc.OnboardCustomer(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("post-actions best effort", func(t *testing.T) {
		f := newFixture()
		seedRep(f)
		f.audit.err = errors.New("audit down")
		f.workflows.err = errors.New("workflow table locked")
		c, err := f.svc.OnboardCustomer(ctx, onboardReq)
		require.NoError(t, err)
		assert.NotEmpty(t, c.ID)
	})

	t.Run("persistence failure", func(t *testing.T) {
		f := newFixture()
		seedRep(f)
		f.customers.err = errors.New("connection reset")
		_, err := f.svc.OnboardCustomer(ctx, onboardReq)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrRepNotFound)
		assert.Empty(t, f.workflows.started)
	})
}
