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
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/salesdesk/salesdesk/internal/authz"
	"github.com/salesdesk/salesdesk/internal/observability/logger"
	"github.com/salesdesk/salesdesk/internal/observability/metrics"
	"github.com/salesdesk/salesdesk/internal/tenant"
)

// LoggingMiddleware logs the start and end of every request
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slog.DebugContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// MetricsMiddleware records request counts and latency by route pattern
func MetricsMiddleware(instruments *metrics.HTTPInstruments) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			attrs := metric.WithAttributes(
				attribute.String("http.route", route),
				attribute.String("http.method", r.Method),
				attribute.Int("http.status_code", ww.Status()),
			)
			instruments.Requests.Add(r.Context(), 1, attrs)
			instruments.Duration.Record(r.Context(), float64(time.Since(start).Milliseconds()), attrs)
		})
	}
}

// CORS answers preflight requests with 204 and no body. Browser origins are
// checked against allowedOrigins; paths under a public prefix accept any
// origin.
func CORS(allowedOrigins []string, publicPrefixes ...string) func(http.Handler) http.Handler {
	allowed := map[string]struct{}{}
	for _, origin := range allowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}

	isPublic := func(path string) bool {
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			switch origin := r.Header.Get("Origin"); {
			case isPublic(r.URL.Path):
				h.Set("Access-Control-Allow-Origin", "*")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Webhook-Secret, X-Request-Id")
				h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			case origin != "":
				if _, ok := allowed[origin]; ok {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
					h.Set("Access-Control-Allow-Credentials", "true")
					h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-Id")
					h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware verifies the bearer token and resolves the caller's
// tenant scope. An administrator without a tenant is provisioned here.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		sess, err := h.verifier.Verify(token)
		if err != nil {
			h.security.AuthenticationFailure(r.Context(), getIPAddress(r), err.Error())
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		// Tenant context is derived exclusively from role assignments.
		if r.Header.Get("X-Tenant-ID") != "" {
			slog.WarnContext(r.Context(), "tenant header rejected on authenticated route", logger.UserID(sess.UserID))
			respondError(w, http.StatusBadRequest, "X-Tenant-ID header is not allowed; tenant is derived from the caller's role")
			return
		}

		scope, err := h.tenants.Resolve(r.Context(), sess.UserID, sess.Email)
		if err != nil {
			if errors.Is(err, tenant.ErrNoRole) || errors.Is(err, tenant.ErrNoTenant) {
				h.security.AccessDenied(r.Context(), sess.UserID, "", r.URL.Path, err.Error())
				respondError(w, http.StatusForbidden, "no tenant access")
				return
			}
			slog.ErrorContext(r.Context(), "failed to resolve tenant scope",
				logger.UserID(sess.UserID),
				logger.Error(err),
			)
			respondError(w, http.StatusInternalServerError, "failed to resolve tenant")
			return
		}

		next.ServeHTTP(w, r.WithContext(withScope(r.Context(), scope)))
	})
}

// RequirePermission rejects callers whose role lacks permission
func (h *Handler) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := GetScope(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if err := authz.Check(scope, permission); err != nil {
				h.security.AccessDenied(r.Context(), scope.UserID, scope.TenantID, permission, err.Error())
				respondError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
