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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/salesdesk/salesdesk/docs"
	"github.com/salesdesk/salesdesk/internal/audit"
	"github.com/salesdesk/salesdesk/internal/config"
	"github.com/salesdesk/salesdesk/internal/customer"
	"github.com/salesdesk/salesdesk/internal/identity"
	"github.com/salesdesk/salesdesk/internal/importer"
	"github.com/salesdesk/salesdesk/internal/observability/logger"
	"github.com/salesdesk/salesdesk/internal/observability/metrics"
	"github.com/salesdesk/salesdesk/internal/observability/tracing"
	"github.com/salesdesk/salesdesk/internal/onboarding"
	"github.com/salesdesk/salesdesk/internal/salesrep"
	"github.com/salesdesk/salesdesk/internal/session"
	"github.com/salesdesk/salesdesk/internal/store/postgres"
	"github.com/salesdesk/salesdesk/internal/tenant"
	transportHTTP "github.com/salesdesk/salesdesk/internal/transport/http"
	"github.com/salesdesk/salesdesk/internal/workflow"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply pending migrations before serving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting salesdesk api")

	if err := run(cfg, *migrate); err != nil {
		slog.Error("server failed", logger.Error(err))
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func run(cfg *config.Config, migrate bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
		Endpoint:       cfg.Observability.OTELEndpoint,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tracer.Shutdown(shutdownCtx)
		}()
	}

	meter := metrics.New(metrics.Config{Enabled: cfg.Observability.MetricsEnabled}, cfg.Observability.ServiceName)
	instruments, err := meter.NewHTTPInstruments()
	if err != nil {
		return fmt.Errorf("failed to create http instruments: %w", err)
	}

	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	slog.Info("connected to database")

	if migrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	// Repositories
	tenantRepo := postgres.NewTenantRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	workflowRepo := postgres.NewWorkflowRepository(db)
	salesRepRepo := postgres.NewSalesRepRepository(db)
	auditRecorder := audit.NewRecorder(postgres.NewAuditRepository(db))

	// Services
	identityService := identity.NewService(newIdentityProvider(cfg, db), identity.Config{
		PageSize:    cfg.IdentityProvider.PageSize,
		MaxPages:    cfg.IdentityProvider.MaxPages,
		RedirectURL: cfg.IdentityProvider.RedirectURL,
	})
	tenantService := tenant.NewService(tenantRepo, auditRecorder)
	customerService := customer.NewService(customerRepo, auditRecorder)
	workflowService := workflow.NewService(workflowRepo, customerRepo)
	salesRepService := salesrep.NewService(salesRepRepo)
	importService, err := importer.NewService(customerRepo, auditRecorder, importer.Config{
		MaxRows:     cfg.Import.MaxRows,
		DefaultMode: customer.WriteMode(cfg.Import.DefaultMode),
	}, meter.GetMeter())
	if err != nil {
		return err
	}
	onboardingService := onboarding.NewService(
		identityService,
		tenantService,
		salesRepRepo,
		customerService,
		workflowService,
		auditRecorder,
	)

	if err := identity.NewBootstrapService(identityService, tenantService).
		Bootstrap(ctx, cfg.IdentityProvider.BootstrapAdminEmail); err != nil {
		slog.Error("bootstrap failed", logger.Error(err))
	}

	handler := transportHTTP.NewHandler(transportHTTP.Services{
		Verifier: session.NewVerifier(session.Config{
			Secret:   cfg.Auth.JWTSecret,
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
			TTL:      cfg.Auth.TokenTTL,
		}),
		Tenants:    tenantService,
		Importer:   importService,
		Customers:  customerService,
		Workflows:  workflowService,
		Onboarding: onboardingService,
		SalesReps:  salesRepService,
		Audit:      auditRecorder,
	}, transportHTTP.Config{
		WebhookSecret:  cfg.Webhook.Secret,
		ImportMaxBytes: cfg.Import.MaxBytes,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	rateLimiter := transportHTTP.NewRateLimiter(ctx, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	router := transportHTTP.NewRouter(handler, rateLimiter, instruments)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"), logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func newIdentityProvider(cfg *config.Config, db *postgres.DB) identity.Provider {
	if cfg.IdentityProvider.Mode == config.IdentityModeHTTP {
		slog.Info("using hosted identity provider", logger.String("url", cfg.IdentityProvider.URL))
		return identity.NewHTTPProvider(identity.HTTPConfig{
			BaseURL:    cfg.IdentityProvider.URL,
			ServiceKey: cfg.IdentityProvider.ServiceKey,
			Timeout:    cfg.IdentityProvider.Timeout,
		})
	}
	slog.Info("using local identity store")
	return identity.NewLocalProvider(postgres.NewIdentityStore(db), identity.DefaultPasswordHasher())
}
