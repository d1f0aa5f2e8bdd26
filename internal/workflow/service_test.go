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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	byID      map[string]*Workflow
	createErr error
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*Workflow{}}
}

func (r *memRepo) Create(ctx context.Context, w *Workflow) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.CustomerID == w.CustomerID {
			return ErrAlreadyExists
		}
	}
	cp := *w
	r.byID[w.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, tenantID, id string) (*Workflow, error) {
	w, ok := r.byID[id]
	if !ok || w.TenantID != tenantID {
		return nil, ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *memRepo) GetByCustomer(ctx context.Context, tenantID, customerID string) (*Workflow, error) {
	for _, w := range r.byID {
		if w.TenantID == tenantID && w.CustomerID == customerID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) Update(ctx context.Context, w *Workflow) error {
	if _, ok := r.byID[w.ID]; !ok {
		return ErrNotFound
	}
	cp := *w
	r.byID[w.ID] = &cp
	return nil
}

type customerSet map[string]bool

func (c customerSet) Exists(ctx context.Context, tenantID, customerID string) (bool, error) {
	return c[tenantID+"/"+customerID], nil
}

// TestPurpose: Validates that a customer has at most one workflow.
// Scope: Unit Test
// Expected: Starting twice returns the same workflow; unknown customers are rejected.
// Test Case ID: WF-01
func TestWorkflow_Start_Idempotent(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, customerSet{"t1/c1": true})
	ctx := context.Background()

	first, err := svc.Start(ctx, "t1", "c1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, first.Status)

	second, err := svc.Start(ctx, "t1", "c1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.byID, 1)

	_, err = svc.Start(ctx, "t1", "missing")
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	_, err = svc.Start(ctx, "t2", "c1")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

// TestPurpose: Validates the workflow lifecycle pending -> active -> completed.
// Scope: Unit Test
// Expected: Steps are recorded, completion sets a timestamp, terminal workflows reject changes.
// Test Case ID: WF-02
func TestWorkflow_Lifecycle(t *testing.T) {
	svc := NewService(newMemRepo(), customerSet{"t1/c1": true})
	ctx := context.Background()

	w, err := svc.Start(ctx, "t1", "c1")
	require.NoError(t, err)

	w, err = svc.Advance(ctx, "t1", w.ID, "kyc", map[string]any{"document": "passport"})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, w.Status)
	assert.Equal(t, "kyc", w.CurrentStep)
	assert.Equal(t, "passport", w.StepData["document"])

	w, err = svc.Complete(ctx, "t1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, w.Status)
	require.NotNil(t, w.CompletedAt)

	_, err = svc.Advance(ctx, "t1", w.ID, "late", nil)
	assert.ErrorIs(t, err, ErrTerminal)
	_, err = svc.Fail(ctx, "t1", w.ID, "too late")
	assert.ErrorIs(t, err, ErrTerminal)
}

// TestPurpose: Validates failure recording and input validation.
// Scope: Unit Test
// Expected: Fail stores the message; empty step and cross-tenant IDs are rejected.
// Test Case ID: WF-03
func TestWorkflow_FailAndValidation(t *testing.T) {
	svc := NewService(newMemRepo(), customerSet{"t1/c1": true})
	ctx := context.Background()

	w, err := svc.Start(ctx, "t1", "c1")
	require.NoError(t, err)

	_, err = svc.Advance(ctx, "t1", w.ID, "", nil)
	assert.ErrorIs(t, err, ErrMissingStep)

	_, err = svc.Complete(ctx, "t2", w.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	w, err = svc.Fail(ctx, "t1", w.ID, "documents rejected")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, w.Status)
	assert.Equal(t, "documents rejected", w.ErrorMessage)
}

// TestPurpose: Validates that a lost creation race resolves to the stored workflow.
// Scope: Unit Test
// Expected: ErrAlreadyExists from storage is absorbed by re-reading.
// Test Case ID: WF-04
func TestWorkflow_Start_RaceAbsorbed(t *testing.T) {
	repo := newMemRepo()
	repo.byID["w-existing"] = &Workflow{ID: "w-existing", TenantID: "t1", CustomerID: "c1", Status: StatusPending}
	svc := NewService(&racyRepo{memRepo: repo}, customerSet{"t1/c1": true})

	w, err := svc.Start(context.Background(), "t1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "w-existing", w.ID)

	repo.createErr = errors.New("connection reset")
	_, err = NewService(repo, customerSet{"t1/c2": true}).Start(context.Background(), "t1", "c2")
	assert.Error(t, err)
}

// racyRepo hides the existing workflow on the first lookup, as if a
// concurrent request created it in between.
type racyRepo struct {
	*memRepo
	looked bool
}

func (r *racyRepo) GetByCustomer(ctx context.Context, tenantID, customerID string) (*Workflow, error) {
	if !r.looked {
		r.looked = true
		return nil, ErrNotFound
	}
	return r.memRepo.GetByCustomer(ctx, tenantID, customerID)
}
