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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, h http.HandlerFunc) *HTTPProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPProvider(HTTPConfig{BaseURL: srv.URL + "/", ServiceKey: "service-key"})
}

// TestPurpose: Validates the admin API contract of the hosted identity provider.
// Scope: Unit Test
// Security: Every call carries the service key
// Expected: Paths, query parameters and bodies match the admin API; responses decode into users.
// Test Case ID: IDN-03
func TestHTTPProvider_Requests(t *testing.T) {
	ctx := context.Background()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/users":
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "50", r.URL.Query().Get("per_page"))
			_, _ = w.Write([]byte(`{"users":[{"id":"u1","email":"a@example.com"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/invite":
			assert.Equal(t, "https://app/welcome", r.URL.Query().Get("redirect_to"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "b@example.com", body["email"])
			_, _ = w.Write([]byte(`{"id":"u2","email":"b@example.com"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/admin/users":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, true, body["email_confirm"])
			assert.Equal(t, "temp-pass", body["password"])
			_, _ = w.Write([]byte(`{"id":"u3","email":"c@example.com"}`))
		case r.Method == http.MethodPut && r.URL.Path == "/admin/users/u3":
			var body map[string]map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "sales_rep", body["user_metadata"]["role"])
			_, _ = w.Write([]byte(`{"id":"u3"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	})

	users, err := p.ListUsers(ctx, 2, 50)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)

	u, err := p.InviteUser(ctx, "b@example.com", "https://app/welcome", nil)
	require.NoError(t, err)
	assert.Equal(t, "u2", u.ID)

	u, err = p.CreateUser(ctx, "c@example.com", "temp-pass", nil)
	require.NoError(t, err)
	assert.Equal(t, "u3", u.ID)

	require.NoError(t, p.UpdateUser(ctx, "u3", map[string]any{"role": "sales_rep"}))
}

// TestPurpose: Validates mapping of provider error responses.
// Scope: Unit Test
// Expected: Duplicate registrations map to ErrUserAlreadyExists, other failures to ErrProvider.
// Test Case ID: IDN-04
func TestHTTPProvider_Errors(t *testing.T) {
	ctx := context.Background()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/admin/users":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"code":422,"msg":"A user with this email address has already been registered"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":400,"msg":"Email rate limit exceeded"}`))
		}
	})

	_, err := p.CreateUser(ctx, "dup@example.com", "x", nil)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = p.InviteUser(ctx, "dup@example.com", "", nil)
	assert.ErrorIs(t, err, ErrProvider)
	assert.Contains(t, err.Error(), "rate limit")
}
