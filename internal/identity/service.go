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

package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/salesdesk/salesdesk/internal/observability/logger"
)

// Config bounds provider lookups
type Config struct {
	PageSize    int
	MaxPages    int
	RedirectURL string
}

// Service resolves identities by email through the provider
type Service struct {
	provider Provider
	cfg      Config
}

// NewService creates a new identity service
func NewService(provider Provider, cfg Config) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 200
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 10
	}
	return &Service{
		provider: provider,
		cfg:      cfg,
	}
}

// FindByEmail scans at most MaxPages pages for a case-insensitive match.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	for page := 1; page <= s.cfg.MaxPages; page++ {
		users, err := s.provider.ListUsers(ctx, page, s.cfg.PageSize)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if strings.EqualFold(u.Email, email) {
				return u, nil
			}
		}
		if len(users) < s.cfg.PageSize {
			break
		}
	}
	return nil, ErrUserNotFound
}

// EnsureUser returns the identity for email, creating it when absent.
// It tries an invitation first, then a direct creation with a temporary
// password, then one last lookup in case a concurrent call created it.
// created reports whether this call brought the identity into existence.
func (s *Service) EnsureUser(ctx context.Context, email string, metadata map[string]any) (u *User, created bool, err error) {
	email = strings.TrimSpace(email)
	if !isValidEmail(email) {
		return nil, false, ErrInvalidEmail
	}

	u, err = s.FindByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		slog.WarnContext(ctx, "identity lookup failed",
			logger.Operation("find_by_email"),
			logger.Error(err),
		)
	}

	u, err = s.provider.InviteUser(ctx, email, s.cfg.RedirectURL, metadata)
	if err == nil {
		return u, true, nil
	}
	slog.WarnContext(ctx, "invitation failed, creating identity directly",
		logger.Operation("invite_user"),
		logger.Error(err),
	)

	password, err := TemporaryPassword()
	if err != nil {
		return nil, false, err
	}
	u, err = s.provider.CreateUser(ctx, email, password, metadata)
	if err == nil {
		return u, true, nil
	}
	slog.WarnContext(ctx, "identity creation failed, retrying lookup",
		logger.Operation("create_user"),
		logger.Error(err),
	)

	u, lookupErr := s.FindByEmail(ctx, email)
	if lookupErr == nil {
		return u, false, nil
	}
	return nil, false, fmt.Errorf("%w: %v", ErrUnresolvable, err)
}

// UpdateMetadata merges metadata into the user's provider metadata
func (s *Service) UpdateMetadata(ctx context.Context, userID string, metadata map[string]any) error {
	return s.provider.UpdateUser(ctx, userID, metadata)
}

func isValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && len(email) < 255
}
