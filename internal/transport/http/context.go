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

package http

import (
	"context"

	"github.com/salesdesk/salesdesk/internal/tenant"
)

type contextKey string

const (
	scopeKey contextKey = "scope"
)

func withScope(ctx context.Context, scope tenant.Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

// GetScope returns the resolved caller scope set by AuthMiddleware
func GetScope(ctx context.Context) (tenant.Scope, bool) {
	scope, ok := ctx.Value(scopeKey).(tenant.Scope)
	return scope, ok
}

func GetUserID(ctx context.Context) string {
	scope, _ := GetScope(ctx)
	return scope.UserID
}

func GetTenantID(ctx context.Context) string {
	scope, _ := GetScope(ctx)
	return scope.TenantID
}
