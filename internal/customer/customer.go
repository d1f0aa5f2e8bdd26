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

// Package customer models customer leads owned by sales representatives.
package customer

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Status is the lead status of a customer
type Status string

// Customer statuses
const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// ParseStatus case-folds s and reports whether it is a known status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusActive, StatusWon, StatusLost:
		return st, true
	}
	return "", false
}

// WriteMode selects how a batch write treats existing records
type WriteMode string

// Write modes
const (
	// InsertOnly fails the whole batch if any record already exists.
	InsertOnly WriteMode = "insert"
	// Upsert updates the record matching (sales rep, email) in place.
	Upsert WriteMode = "upsert"
)

// ParseWriteMode returns the mode named by s, or def when s is empty.
func ParseWriteMode(s string, def WriteMode) (WriteMode, error) {
	switch WriteMode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return def, nil
	case InsertOnly:
		return InsertOnly, nil
	case Upsert:
		return Upsert, nil
	}
	return "", ErrInvalidWriteMode
}

var (
	ErrNotFound         = errors.New("customer not found")
	ErrDuplicate        = errors.New("customer with this email already exists for the sales rep")
	ErrInvalidStatus    = errors.New("invalid customer status")
	ErrInvalidWriteMode = errors.New("invalid write mode")
	ErrForbidden        = errors.New("customer belongs to another sales rep")
)

// Customer is a lead owned by one sales rep inside one tenant.
// SalesRepID references the owning user identity.
type Customer struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	SalesRepID string    `json:"sales_rep_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone_no"`
	Source     string    `json:"source"`
	Notes      string    `json:"notes,omitempty"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Draft is a validated candidate record that has not been persisted
type Draft struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Source    string
	Notes     string
	Status    Status
}

// Repository defines customer persistence. Every method is tenant-scoped.
type Repository interface {
	Create(ctx context.Context, c *Customer) error

	// SaveBatch writes all customers atomically and returns the number of
	// rows written.
	SaveBatch(ctx context.Context, tenantID string, customers []*Customer, mode WriteMode) (int, error)

	GetByID(ctx context.Context, tenantID, id string) (*Customer, error)

	// List returns customers of the tenant, optionally limited to one owner.
	List(ctx context.Context, tenantID, salesRepID string, limit, offset int) ([]*Customer, error)

	UpdateStatus(ctx context.Context, tenantID, id string, status Status) error
}
