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

// Package identity resolves user identities held by the identity provider.
package identity

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrUnresolvable      = errors.New("unable to resolve user identity")
	ErrProvider          = errors.New("identity provider error")
)

// User is an identity known to the identity provider
type User struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Metadata  map[string]any `json:"user_metadata,omitempty"`
	InvitedAt *time.Time     `json:"invited_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Provider is the identity provider collaborator
type Provider interface {
	// ListUsers returns one page of users. Pages start at 1; a short page is
	// the last one.
	ListUsers(ctx context.Context, page, perPage int) ([]*User, error)

	// InviteUser creates an identity that sets its own credential through
	// an invitation sent to email.
	InviteUser(ctx context.Context, email, redirectTo string, metadata map[string]any) (*User, error)

	// CreateUser creates a confirmed identity with the given password.
	CreateUser(ctx context.Context, email, password string, metadata map[string]any) (*User, error)

	// UpdateUser merges metadata into the user's metadata.
	UpdateUser(ctx context.Context, id string, metadata map[string]any) error
}
