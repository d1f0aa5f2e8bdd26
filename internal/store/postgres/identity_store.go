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

package postgres

import (
	"context"
	"fmt"

	"github.com/salesdesk/salesdesk/internal/identity"
)

// IdentityStore implements identity.Store for self-hosted identities.
// The identities table is not tenant-scoped.
type IdentityStore struct {
	db *DB
}

// NewIdentityStore creates a new identity store
func NewIdentityStore(db *DB) *IdentityStore {
	return &IdentityStore{db: db}
}

// Create inserts an identity
func (s *IdentityStore) Create(ctx context.Context, u *identity.User, passwordHash string) error {
	metadata := u.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO identities (id, email, password_hash, metadata, invited_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, u.ID, u.Email, nullString(passwordHash), metadata, u.InvitedAt, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create identity: %w", err)
	}
	return nil
}

// List returns identities in creation order
func (s *IdentityStore) List(ctx context.Context, limit, offset int) ([]*identity.User, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT id, email, metadata, invited_at, created_at
		FROM identities
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	defer rows.Close()

	var out []*identity.User
	for rows.Next() {
		var u identity.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Metadata, &u.InvitedAt, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// MergeMetadata merges metadata into the stored metadata
func (s *IdentityStore) MergeMetadata(ctx context.Context, id string, metadata map[string]any) error {
	tag, err := s.db.pool.Exec(ctx, `
		UPDATE identities
		SET metadata = metadata || $2::jsonb, updated_at = now()
		WHERE id = $1
	`, id, metadata)
	if err != nil {
		return fmt.Errorf("failed to update identity metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}
