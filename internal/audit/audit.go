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

// Package audit records append-only audit trail entries for privileged
// operations.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/salesdesk/salesdesk/internal/id"
)

// Actions
const (
	ActionInviteSalesRep       = "invite_sales_rep"
	ActionOnboardCustomer      = "onboard_customer"
	ActionProvisionTenant      = "provision_tenant"
	ActionImportCustomers      = "import_customers"
	ActionUpdateCustomerStatus = "update_customer_status"
)

// Resource types
const (
	ResourceTenant   = "tenant"
	ResourceSalesRep = "sales_rep"
	ResourceCustomer = "customer"
)

// ErrMissingTenant is returned for entries without a tenant
var ErrMissingTenant = errors.New("audit entry requires a tenant")

// Entry is an immutable audit log record
type Entry struct {
	ID           string         `json:"id"`
	TenantID     string         `json:"tenant_id"`
	ActorID      string         `json:"actor_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Before       map[string]any `json:"before,omitempty"`
	After        map[string]any `json:"after,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// Repository persists audit entries. Entries are never updated or deleted.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, tenantID string, limit int) ([]*Entry, error)
}

// Recorder persists entries and mirrors them to the structured log
type Recorder struct {
	repo Repository
}

// NewRecorder creates a new audit recorder
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Log appends entry to the audit trail
func (r *Recorder) Log(ctx context.Context, entry Entry) error {
	if entry.TenantID == "" {
		return ErrMissingTenant
	}
	if entry.ID == "" {
		entry.ID = id.NewUUIDv7()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if err := r.repo.Append(ctx, &entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	logEntry(ctx, entry)
	return nil
}

// List returns the most recent entries of a tenant, newest first
func (r *Recorder) List(ctx context.Context, tenantID string, limit int) ([]*Entry, error) {
	if tenantID == "" {
		return nil, ErrMissingTenant
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return r.repo.List(ctx, tenantID, limit)
}

// SlogLogger implements Logger using slog only
type SlogLogger struct{}

// NewSlogLogger creates a new audit logger
func NewSlogLogger() *SlogLogger {
	return &SlogLogger{}
}

// Log records an audit entry
func (l *SlogLogger) Log(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	logEntry(ctx, entry)
	return nil
}

func logEntry(ctx context.Context, entry Entry) {
	attrs := []any{
		slog.String("audit_action", entry.Action),
		slog.String("tenant_id", entry.TenantID),
		slog.String("actor_id", entry.ActorID),
		slog.String("resource_type", entry.ResourceType),
		slog.String("resource_id", entry.ResourceID),
		slog.Time("timestamp", entry.CreatedAt),
	}

	if len(entry.After) > 0 {
		attrs = append(attrs, slog.Group("after", redact(entry.After)...))
	}
	if len(entry.Before) > 0 {
		attrs = append(attrs, slog.Group("before", redact(entry.Before)...))
	}

	slog.InfoContext(ctx, "AUDIT_EVENT", append(attrs, slog.String("component", "audit"))...)
}

func redact(snapshot map[string]any) []any {
	group := make([]any, 0, len(snapshot))
	for k, v := range snapshot {
		if isSecret(k) {
			v = "[REDACTED]"
		}
		group = append(group, slog.Any(k, v))
	}
	return group
}

// isSecret checks if a key likely contains a secret
func isSecret(key string) bool {
	key = strings.ToLower(key)
	secrets := []string{"password", "secret", "token", "key", "authorization", "hash", "credential"}
	for _, s := range secrets {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}
