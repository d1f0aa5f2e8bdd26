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

// Package importer turns spreadsheet exports into customer records owned by
// the importing sales rep.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/salesdesk/salesdesk/internal/audit"
	"github.com/salesdesk/salesdesk/internal/customer"
	"github.com/salesdesk/salesdesk/internal/observability/logger"
	"github.com/salesdesk/salesdesk/internal/tenant"
)

// maxSummaryErrors is the number of row errors quoted in an ImportError
const maxSummaryErrors = 5

var (
	ErrNoDataRows  = errors.New("no data rows found")
	ErrNoValidRows = errors.New("no valid rows to import")
	ErrTooManyRows = errors.New("too many rows")
)

// ImportError fails a whole import because no row was accepted
type ImportError struct {
	Errors []string
}

func (e *ImportError) Error() string {
	if len(e.Errors) == 0 {
		return "No data rows found in file"
	}

	n := len(e.Errors)
	if n > maxSummaryErrors {
		n = maxSummaryErrors
	}
	msg := "No valid rows to import. " + strings.Join(e.Errors[:n], "; ")
	if rest := len(e.Errors) - n; rest > 0 {
		msg += fmt.Sprintf(" (and %d more errors)", rest)
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	if len(e.Errors) == 0 {
		return ErrNoDataRows
	}
	return ErrNoValidRows
}

// Options control a single import
type Options struct {
	Mode customer.WriteMode
}

// Result reports a finished import. Skipped rows are warnings.
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Config holds importer limits
type Config struct {
	MaxRows     int
	DefaultMode customer.WriteMode
}

// Service orchestrates parse, inference, validation and persistence
type Service struct {
	repo        customer.Repository
	auditLogger audit.Logger
	cfg         Config
	tracer      trace.Tracer

	importedRows metric.Int64Counter
	rejectedRows metric.Int64Counter
}

// NewService creates a new import service
func NewService(repo customer.Repository, auditLogger audit.Logger, cfg Config, meter metric.Meter) (*Service, error) {
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = customer.Upsert
	}

	imported, err := meter.Int64Counter("salesdesk.import.rows_imported",
		metric.WithDescription("Customer rows persisted by imports"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	rejected, err := meter.Int64Counter("salesdesk.import.rows_rejected",
		metric.WithDescription("Rows rejected by import validation"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	return &Service{
		repo:         repo,
		auditLogger:  auditLogger,
		cfg:          cfg,
		tracer:       otel.Tracer("github.com/salesdesk/salesdesk/internal/importer"),
		importedRows: imported,
		rejectedRows: rejected,
	}, nil
}

// ImportCSV imports CSV text
func (s *Service) ImportCSV(ctx context.Context, scope tenant.Scope, data []byte, opts Options) (*Result, error) {
	return s.Import(ctx, scope, ParseCSV(string(data)), opts)
}

// ImportWorkbook imports the first sheet of an XLSX workbook
func (s *Service) ImportWorkbook(ctx context.Context, scope tenant.Scope, r io.Reader, opts Options) (*Result, error) {
	rows, err := ReadWorkbook(r)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, scope, rows, opts)
}

// Import maps rows (header first) to customers owned by scope and persists
// the accepted ones in a single batch write.
func (s *Service) Import(ctx context.Context, scope tenant.Scope, rows [][]string, opts Options) (*Result, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	mode := opts.Mode
	if mode == "" {
		mode = s.cfg.DefaultMode
	}
	if mode != customer.InsertOnly && mode != customer.Upsert {
		return nil, customer.ErrInvalidWriteMode
	}

	ctx, span := s.tracer.Start(ctx, "importer.Import", trace.WithAttributes(
		attribute.String("tenant.id", scope.TenantID),
		attribute.String("import.mode", string(mode)),
		attribute.Int("import.rows", len(rows)),
	))
	defer span.End()

	if len(rows) > 0 && s.cfg.MaxRows > 0 && len(rows)-1 > s.cfg.MaxRows {
		err := fmt.Errorf("%w: %d data rows exceed the limit of %d", ErrTooManyRows, len(rows)-1, s.cfg.MaxRows)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var (
		batch  []*customer.Customer
		errMsg []string
	)
	if len(rows) > 0 {
		cols := InferColumns(NormalizeHeaders(rows[0]))
		for i, row := range rows[1:] {
			draft, err := MapRow(row, cols, i+2)
			if err != nil {
				errMsg = append(errMsg, err.Error())
				continue
			}
			if draft == nil {
				continue
			}
			batch = append(batch, customer.New(scope.TenantID, scope.UserID, *draft))
		}
	}

	attrs := metric.WithAttributes(attribute.String("mode", string(mode)))
	s.rejectedRows.Add(ctx, int64(len(errMsg)), attrs)

	if len(batch) == 0 {
		err := &ImportError{Errors: errMsg}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	n, err := s.repo.SaveBatch(ctx, scope.TenantID, batch, mode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch write failed")
		return nil, fmt.Errorf("failed to save customers: %w", err)
	}
	s.importedRows.Add(ctx, int64(n), attrs)

	slog.InfoContext(ctx, "customers imported",
		logger.Component("importer"),
		logger.TenantID(scope.TenantID),
		logger.UserID(scope.UserID),
		slog.Int("imported", n),
		slog.Int("skipped", len(errMsg)),
		slog.String("mode", string(mode)),
	)

	if err := s.auditLogger.Log(ctx, audit.Entry{
		TenantID:     scope.TenantID,
		ActorID:      scope.UserID,
		Action:       audit.ActionImportCustomers,
		ResourceType: audit.ResourceCustomer,
		After: map[string]any{
			"imported": n,
			"skipped":  len(errMsg),
			"mode":     string(mode),
		},
	}); err != nil {
		slog.WarnContext(ctx, "best-effort audit write failed",
			logger.Operation(audit.ActionImportCustomers),
			logger.Error(err),
		)
	}

	return &Result{
		Imported: n,
		Skipped:  len(errMsg),
		Errors:   errMsg,
	}, nil
}
