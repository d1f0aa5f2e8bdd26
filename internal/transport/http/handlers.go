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

// @title SalesDesk API
// @version 1.0.0
// @description Multi-tenant sales CRM backend

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/swaggo/swag"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/salesdesk/salesdesk/internal/audit"
	"github.com/salesdesk/salesdesk/internal/authz"
	"github.com/salesdesk/salesdesk/internal/customer"
	"github.com/salesdesk/salesdesk/internal/importer"
	"github.com/salesdesk/salesdesk/internal/observability/logger"
	"github.com/salesdesk/salesdesk/internal/observability/metrics"
	"github.com/salesdesk/salesdesk/internal/onboarding"
	"github.com/salesdesk/salesdesk/internal/salesrep"
	"github.com/salesdesk/salesdesk/internal/session"
	"github.com/salesdesk/salesdesk/internal/tenant"
	"github.com/salesdesk/salesdesk/internal/workflow"
)

// TokenVerifier validates bearer tokens
type TokenVerifier interface {
	Verify(token string) (*session.Session, error)
}

// TenantResolver resolves the caller's scope and tenant record
type TenantResolver interface {
	Resolve(ctx context.Context, userID, email string) (tenant.Scope, error)
	GetTenant(ctx context.Context, id string) (*tenant.Tenant, error)
}

// CustomerImporter runs file imports
type CustomerImporter interface {
	ImportCSV(ctx context.Context, scope tenant.Scope, data []byte, opts importer.Options) (*importer.Result, error)
	ImportWorkbook(ctx context.Context, scope tenant.Scope, r io.Reader, opts importer.Options) (*importer.Result, error)
}

// CustomerService reads and updates customers within a scope
type CustomerService interface {
	Get(ctx context.Context, scope tenant.Scope, id string) (*customer.Customer, error)
	List(ctx context.Context, scope tenant.Scope, limit, offset int) ([]*customer.Customer, error)
	UpdateStatus(ctx context.Context, scope tenant.Scope, id, status string) (*customer.Customer, error)
}

// WorkflowService manages customer onboarding workflows
type WorkflowService interface {
	Start(ctx context.Context, tenantID, customerID string) (*workflow.Workflow, error)
	Get(ctx context.Context, tenantID, id string) (*workflow.Workflow, error)
	GetForCustomer(ctx context.Context, tenantID, customerID string) (*workflow.Workflow, error)
	Advance(ctx context.Context, tenantID, id, step string, data map[string]any) (*workflow.Workflow, error)
	Complete(ctx context.Context, tenantID, id string) (*workflow.Workflow, error)
	Fail(ctx context.Context, tenantID, id, message string) (*workflow.Workflow, error)
}

// Onboarder runs the privileged invite and onboarding procedures
type Onboarder interface {
	InviteRepresentative(ctx context.Context, scope tenant.Scope, req onboarding.InviteRequest) (*onboarding.InviteResult, error)
	OnboardCustomer(ctx context.Context, req onboarding.OnboardRequest) (*customer.Customer, error)
}

// SalesRepLister lists the reps of a tenant
type SalesRepLister interface {
	List(ctx context.Context, scope tenant.Scope) ([]*salesrep.SalesRep, error)
}

// AuditReader lists tenant audit entries
type AuditReader interface {
	List(ctx context.Context, tenantID string, limit int) ([]*audit.Entry, error)
}

// Services groups the collaborators of Handler
type Services struct {
	Verifier   TokenVerifier
	Tenants    TenantResolver
	Importer   CustomerImporter
	Customers  CustomerService
	Workflows  WorkflowService
	Onboarding Onboarder
	SalesReps  SalesRepLister
	Audit      AuditReader
}

// Config holds HTTP transport settings
type Config struct {
	WebhookSecret  string
	ImportMaxBytes int64
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Handler holds HTTP handlers and dependencies
type Handler struct {
	verifier   TokenVerifier
	tenants    TenantResolver
	importer   CustomerImporter
	customers  CustomerService
	workflows  WorkflowService
	onboarding Onboarder
	salesReps  SalesRepLister
	audit      AuditReader
	security   *logger.SecurityLogger
	validate   *validator.Validate
	cfg        Config
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services, cfg Config) *Handler {
	if cfg.ImportMaxBytes <= 0 {
		cfg.ImportMaxBytes = 10 << 20
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	return &Handler{
		verifier:   svc.Verifier,
		tenants:    svc.Tenants,
		importer:   svc.Importer,
		customers:  svc.Customers,
		workflows:  svc.Workflows,
		onboarding: svc.Onboarding,
		salesReps:  svc.SalesReps,
		audit:      svc.Audit,
		security:   logger.NewSecurityLogger(slog.Default()),
		validate:   newValidator(),
		cfg:        cfg,
	}
}

const webhookPrefix = "/api/v1/webhooks/"

// NewRouter creates a new HTTP router. instruments may be nil.
func NewRouter(h *Handler, rateLimiter *RateLimiter, instruments *metrics.HTTPInstruments) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	if instruments != nil {
		r.Use(MetricsMiddleware(instruments))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(h.cfg.RequestTimeout))
	r.Use(CORS(h.cfg.AllowedOrigins, webhookPrefix))

	r.Get("/health", h.HealthCheck)
	r.Get("/swagger/doc.json", h.SwaggerDoc)

	r.Route("/api/v1", func(r chi.Router) {
		// Server-to-server; authenticated by the shared webhook secret.
		r.Post("/webhooks/onboard-customer", h.OnboardCustomerWebhook)

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/me", h.GetMe)

			r.Route("/customers", func(r chi.Router) {
				r.With(h.RequirePermission(authz.PermCustomersRead)).Get("/", h.ListCustomers)
				r.With(h.RequirePermission(authz.PermCustomersImport)).Post("/import", h.ImportCustomers)
				r.Route("/{customerID}", func(r chi.Router) {
					r.With(h.RequirePermission(authz.PermCustomersRead)).Get("/", h.GetCustomer)
					r.With(h.RequirePermission(authz.PermCustomersWrite)).Patch("/status", h.UpdateCustomerStatus)
					r.With(h.RequirePermission(authz.PermWorkflowsRead)).Get("/workflow", h.GetCustomerWorkflow)
					r.With(h.RequirePermission(authz.PermWorkflowsManage)).Post("/workflow", h.StartWorkflow)
				})
			})

			r.Route("/workflows/{workflowID}", func(r chi.Router) {
				r.With(h.RequirePermission(authz.PermWorkflowsRead)).Get("/", h.GetWorkflow)
				r.Group(func(r chi.Router) {
					r.Use(h.RequirePermission(authz.PermWorkflowsManage))
					r.Post("/steps", h.AdvanceWorkflow)
					r.Post("/complete", h.CompleteWorkflow)
					r.Post("/fail", h.FailWorkflow)
				})
			})

			r.Route("/sales-reps", func(r chi.Router) {
				r.With(h.RequirePermission(authz.PermSalesRepsList)).Get("/", h.ListSalesReps)
				r.With(h.RequirePermission(authz.PermSalesRepsInvite)).Post("/invite", h.InviteSalesRep)
			})

			r.With(h.RequirePermission(authz.PermAuditRead)).Get("/audit-logs", h.ListAuditLogs)
		})
	})

	return r
}

// HealthCheck returns the health status
// @Summary Health Check
// @Description Checks if the service is up and running
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "salesdesk",
	})
}

// SwaggerDoc serves the registered OpenAPI document
func (h *Handler) SwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		respondError(w, http.StatusNotFound, "api documentation not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc)
}

// MeResponse describes the authenticated caller
type MeResponse struct {
	UserID      string   `json:"user_id"`
	Email       string   `json:"email,omitempty"`
	Role        string   `json:"role"`
	TenantID    string   `json:"tenant_id"`
	TenantName  string   `json:"tenant_name,omitempty"`
	Permissions []string `json:"permissions"`
}

// GetMe returns the caller's resolved scope
// @Summary Current caller
// @Description Returns the caller's role and tenant. The first call by a new administrator provisions their tenant.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	scope, _ := GetScope(r.Context())

	resp := MeResponse{
		UserID:      scope.UserID,
		Email:       scope.Email,
		Role:        string(scope.Role),
		TenantID:    scope.TenantID,
		Permissions: authz.PermissionsFor(scope.Role),
	}
	if t, err := h.tenants.GetTenant(r.Context(), scope.TenantID); err == nil {
		resp.TenantName = t.Name
	} else {
		slog.WarnContext(r.Context(), "failed to load tenant", logger.TenantID(scope.TenantID), logger.Error(err))
	}

	respondJSON(w, http.StatusOK, resp)
}

// newValidator reports field errors by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage names the failing fields by their JSON names
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	msg := "invalid or missing fields:"
	for i, fe := range verrs {
		if i > 0 {
			msg += ","
		}
		msg += " " + fe.Field()
	}
	return msg
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
