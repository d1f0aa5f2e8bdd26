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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/salesdesk/salesdesk/internal/audit"
	"github.com/salesdesk/salesdesk/internal/customer"
	"github.com/salesdesk/salesdesk/internal/importer"
	"github.com/salesdesk/salesdesk/internal/observability/metrics"
	"github.com/salesdesk/salesdesk/internal/store/postgres"
	"github.com/salesdesk/salesdesk/internal/tenant"
)

type importOptions struct {
	tenantID string
	repID    string
	file     string
	mode     customer.WriteMode
}

func newImportCmd(a *app) *cobra.Command {
	var opts importOptions
	var tenantID, repID, mode string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import customers from a CSV or XLSX file on behalf of a sales rep",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant UUID (required)")
	cmd.Flags().StringVar(&repID, "rep", "", "Owning sales rep user UUID (required)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Path to a .csv or .xlsx file (required)")
	cmd.Flags().StringVar(&mode, "mode", "", "Write mode: insert or upsert (default from IMPORT_DEFAULT_MODE)")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("rep")
	_ = cmd.MarkFlagRequired("file")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		t, err := uuid.Parse(strings.TrimSpace(tenantID))
		if err != nil {
			return fmt.Errorf("invalid --tenant: %w", err)
		}
		r, err := uuid.Parse(strings.TrimSpace(repID))
		if err != nil {
			return fmt.Errorf("invalid --rep: %w", err)
		}
		m, err := customer.ParseWriteMode(mode, "")
		if err != nil {
			return fmt.Errorf("invalid --mode %q: %w", mode, err)
		}
		opts.tenantID, opts.repID, opts.mode = t.String(), r.String(), m
		return nil
	}

	return cmd
}

func (a *app) runImport(ctx context.Context, opts importOptions) error {
	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	meter := metrics.New(metrics.Config{}, "salesdeskctl")
	svc, err := importer.NewService(
		postgres.NewCustomerRepository(db),
		audit.NewRecorder(postgres.NewAuditRepository(db)),
		importer.Config{MaxRows: a.cfg.Import.MaxRows, DefaultMode: customer.WriteMode(a.cfg.Import.DefaultMode)},
		meter.GetMeter(),
	)
	if err != nil {
		return err
	}

	scope := tenant.Scope{UserID: opts.repID, Role: tenant.RoleSalesRep, TenantID: opts.tenantID}
	importOpts := importer.Options{Mode: opts.mode}

	var res *importer.Result
	if strings.EqualFold(filepath.Ext(opts.file), ".xlsx") {
		f, err := os.Open(opts.file)
		if err != nil {
			return err
		}
		defer f.Close()
		res, err = svc.ImportWorkbook(ctx, scope, f, importOpts)
		if err != nil {
			return err
		}
	} else {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return err
		}
		res, err = svc.ImportCSV(ctx, scope, data, importOpts)
		if err != nil {
			return err
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
