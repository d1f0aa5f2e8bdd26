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
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPConfig configures the hosted identity provider admin API
type HTTPConfig struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
}

// HTTPProvider talks to a GoTrue-compatible admin API
type HTTPProvider struct {
	client *resty.Client
}

type listUsersResponse struct {
	Users []*User `json:"users"`
}

type apiError struct {
	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
	Error   string `json:"error_description"`
}

func (e *apiError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// NewHTTPProvider creates a provider authenticated with the service key
func NewHTTPProvider(cfg HTTPConfig) *HTTPProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("apikey", cfg.ServiceKey).
		SetAuthToken(cfg.ServiceKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &HTTPProvider{client: client}
}

// ListUsers returns one page of users
func (p *HTTPProvider) ListUsers(ctx context.Context, page, perPage int) ([]*User, error) {
	var out listUsersResponse
	var apiErr apiError
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("per_page", strconv.Itoa(perPage)).
		SetResult(&out).
		SetError(&apiErr).
		Get("/admin/users")
	if err := check(resp, err, &apiErr); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out.Users, nil
}

// InviteUser sends an invitation to email
func (p *HTTPProvider) InviteUser(ctx context.Context, email, redirectTo string, metadata map[string]any) (*User, error) {
	var out User
	var apiErr apiError
	req := p.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"email": email,
			"data":  metadata,
		}).
		SetResult(&out).
		SetError(&apiErr)
	if redirectTo != "" {
		req.SetQueryParam("redirect_to", redirectTo)
	}

	resp, err := req.Post("/invite")
	if err := check(resp, err, &apiErr); err != nil {
		return nil, fmt.Errorf("invite user: %w", err)
	}
	return &out, nil
}

// CreateUser creates a confirmed identity
func (p *HTTPProvider) CreateUser(ctx context.Context, email, password string, metadata map[string]any) (*User, error) {
	var out User
	var apiErr apiError
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"email":         email,
			"password":      password,
			"email_confirm": true,
			"user_metadata": metadata,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/admin/users")
	if err := check(resp, err, &apiErr); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &out, nil
}

// UpdateUser merges metadata into the user's metadata
func (p *HTTPProvider) UpdateUser(ctx context.Context, id string, metadata map[string]any) error {
	var apiErr apiError
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(map[string]any{"user_metadata": metadata}).
		SetError(&apiErr).
		Put("/admin/users/{id}")
	if err := check(resp, err, &apiErr); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func check(resp *resty.Response, err error, apiErr *apiError) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if !resp.IsError() {
		return nil
	}

	msg := apiErr.text()
	switch resp.StatusCode() {
	case http.StatusNotFound:
		return ErrUserNotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		if strings.Contains(strings.ToLower(msg), "already") {
			return ErrUserAlreadyExists
		}
	}
	return fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode(), msg)
}
