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

// Command salesdeskctl runs operator tasks against the SalesDesk database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/salesdesk/salesdesk/internal/config"
	"github.com/salesdesk/salesdesk/internal/observability/logger"
	"github.com/salesdesk/salesdesk/internal/store/postgres"
)

type app struct {
	cfg *config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "salesdeskctl",
		Short:         "Operator tooling for SalesDesk",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			a.cfg = cfg
			logger.InitLogger(logger.Config{
				Level:       cfg.Observability.LogLevel,
				Format:      cfg.Observability.LogFormat,
				ServiceName: "salesdeskctl",
				Output:      os.Stderr,
			})
			return nil
		},
	}

	root.AddCommand(
		newMigrateCmd(a),
		newImportCmd(a),
		newAdminCmd(a),
		newTokenCmd(a),
	)
	return root
}

func (a *app) openDB(ctx context.Context) (*postgres.DB, error) {
	return postgres.New(ctx, postgres.Config{
		Host:         a.cfg.Database.Host,
		Port:         a.cfg.Database.Port,
		User:         a.cfg.Database.User,
		Password:     a.cfg.Database.Password,
		Database:     a.cfg.Database.Database,
		SSLMode:      a.cfg.Database.SSLMode,
		MaxOpenConns: 2,
		MaxIdleConns: 1,
	})
}
