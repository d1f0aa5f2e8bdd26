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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salesdesk/salesdesk/internal/audit"
	"github.com/salesdesk/salesdesk/internal/config"
	"github.com/salesdesk/salesdesk/internal/identity"
	"github.com/salesdesk/salesdesk/internal/store/postgres"
	"github.com/salesdesk/salesdesk/internal/tenant"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage client administrators",
	}

	var email string
	grant := &cobra.Command{
		Use:   "grant",
		Short: "Grant a client administrator role; the tenant is created on first sign-in",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			identities := identity.NewService(a.identityProvider(db), identity.Config{
				PageSize:    a.cfg.IdentityProvider.PageSize,
				MaxPages:    a.cfg.IdentityProvider.MaxPages,
				RedirectURL: a.cfg.IdentityProvider.RedirectURL,
			})
			tenants := tenant.NewService(postgres.NewTenantRepository(db), audit.NewSlogLogger())

			u, err := identity.NewBootstrapService(identities, tenants).GrantAdmin(ctx, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.ID)
			return nil
		},
	}
	grant.Flags().StringVar(&email, "email", "", "Administrator email (required)")
	_ = grant.MarkFlagRequired("email")

	cmd.AddCommand(grant)
	return cmd
}

func (a *app) identityProvider(db *postgres.DB) identity.Provider {
	if a.cfg.IdentityProvider.Mode == config.IdentityModeHTTP {
		return identity.NewHTTPProvider(identity.HTTPConfig{
			BaseURL:    a.cfg.IdentityProvider.URL,
			ServiceKey: a.cfg.IdentityProvider.ServiceKey,
			Timeout:    a.cfg.IdentityProvider.Timeout,
		})
	}
	return identity.NewLocalProvider(postgres.NewIdentityStore(db), identity.DefaultPasswordHasher())
}
