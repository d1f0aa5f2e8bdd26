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
	"fmt"
	"log/slog"
	"time"

	"github.com/salesdesk/salesdesk/internal/id"
	"github.com/salesdesk/salesdesk/internal/normalize"
	"github.com/salesdesk/salesdesk/internal/observability/logger"
)

// Store persists self-hosted identities
type Store interface {
	// Create returns ErrUserAlreadyExists for a taken email.
	Create(ctx context.Context, u *User, passwordHash string) error
	List(ctx context.Context, limit, offset int) ([]*User, error)
	MergeMetadata(ctx context.Context, id string, metadata map[string]any) error
}

// LocalProvider keeps identities in the application database. Invitations
// are recorded and logged; delivering them is left to the operator.
type LocalProvider struct {
	store  Store
	hasher *PasswordHasher
}

// NewLocalProvider creates a database-backed provider
func NewLocalProvider(store Store, hasher *PasswordHasher) *LocalProvider {
	return &LocalProvider{
		store:  store,
		hasher: hasher,
	}
}

// ListUsers returns one page of users
func (p *LocalProvider) ListUsers(ctx context.Context, page, perPage int) ([]*User, error) {
	if page < 1 {
		page = 1
	}
	return p.store.List(ctx, perPage, (page-1)*perPage)
}

// InviteUser records an identity without a credential
func (p *LocalProvider) InviteUser(ctx context.Context, email, redirectTo string, metadata map[string]any) (*User, error) {
	now := time.Now()
	u := &User{
		ID:        id.NewUUIDv7(),
		Email:     normalize.Email(email),
		Metadata:  metadata,
		InvitedAt: &now,
		CreatedAt: now,
	}
	if err := p.store.Create(ctx, u, ""); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "invitation recorded",
		logger.Component("identity"),
		logger.UserID(u.ID),
		logger.Email(u.Email),
		logger.String("redirect_to", redirectTo),
	)
	return u, nil
}

// CreateUser creates an identity with a hashed password
func (p *LocalProvider) CreateUser(ctx context.Context, email, password string, metadata map[string]any) (*User, error) {
	hash, err := p.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		ID:        id.NewUUIDv7(),
		Email:     normalize.Email(email),
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	if err := p.store.Create(ctx, u, hash); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser merges metadata into the stored metadata
func (p *LocalProvider) UpdateUser(ctx context.Context, id string, metadata map[string]any) error {
	return p.store.MergeMetadata(ctx, id, metadata)
}
