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

package logger

import (
	"context"
	"log/slog"
)

// SecurityEvent is an access-control decision worth keeping in the logs.
// Unlike tenant audit entries, these are never persisted.
type SecurityEvent struct {
	EventType string
	UserID    string
	TenantID  string
	IPAddress string
	Action    string
	Resource  string
	Result    string // success, failure, denied
	Reason    string
}

// SecurityLogger logs authentication and authorization outcomes
type SecurityLogger struct {
	logger *slog.Logger
}

// NewSecurityLogger creates a new security logger
func NewSecurityLogger(logger *slog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger.With(Component("security")),
	}
}

// Log logs a security event
func (s *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	attrs := []slog.Attr{
		slog.String("event_type", event.EventType),
		slog.String("action", event.Action),
		slog.String("result", event.Result),
	}

	if event.UserID != "" {
		attrs = append(attrs, UserID(event.UserID))
	}
	if event.TenantID != "" {
		attrs = append(attrs, TenantID(event.TenantID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.Resource != "" {
		attrs = append(attrs, slog.String("resource", event.Resource))
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("reason", event.Reason))
	}

	level := slog.LevelInfo
	if event.Result != "success" {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(ctx, level, "security_event", attrs...)
}

// AuthenticationFailure records a rejected bearer token
func (s *SecurityLogger) AuthenticationFailure(ctx context.Context, ipAddr, reason string) {
	s.Log(ctx, SecurityEvent{
		EventType: "authentication",
		IPAddress: ipAddr,
		Action:    "verify_token",
		Result:    "failure",
		Reason:    reason,
	})
}

// AccessDenied records a request refused by role or tenant checks
func (s *SecurityLogger) AccessDenied(ctx context.Context, userID, tenantID, resource, reason string) {
	s.Log(ctx, SecurityEvent{
		EventType: "authorization",
		UserID:    userID,
		TenantID:  tenantID,
		Action:    "access",
		Resource:  resource,
		Result:    "denied",
		Reason:    reason,
	})
}

// WebhookRejected records a webhook call with a missing or wrong secret
func (s *SecurityLogger) WebhookRejected(ctx context.Context, ipAddr, reason string) {
	s.Log(ctx, SecurityEvent{
		EventType: "webhook",
		IPAddress: ipAddr,
		Action:    "onboard_customer",
		Result:    "denied",
		Reason:    reason,
	})
}
