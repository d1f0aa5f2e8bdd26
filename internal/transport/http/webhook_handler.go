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

package http

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/salesdesk/salesdesk/internal/customer"
	"github.com/salesdesk/salesdesk/internal/observability/logger"
	"github.com/salesdesk/salesdesk/internal/onboarding"
)

// OnboardCustomerRequest is the onboarding webhook payload
type OnboardCustomerRequest struct {
	FirstName     string `json:"first_name" validate:"required" example:"John"`
	LastName      string `json:"last_name" validate:"required" example:"Smith"`
	Email         string `json:"email" validate:"required,email" example:"john@example.com"`
	Phone         string `json:"phone_no" validate:"required" example:"+15557654321"`
	SalesRepEmail string `json:"sales_rep_email" validate:"required,email" example:"jane@example.com"`
	Source        string `json:"source" validate:"required" example:"Website"`
	Notes         string `json:"notes"`
	Status        string `json:"status"`
}

// OnboardCustomerResponse reports the created customer
type OnboardCustomerResponse struct {
	Success    bool   `json:"success"`
	CustomerID string `json:"customer_id"`
}

// OnboardCustomerWebhook creates a customer for the sales rep named in the payload
// @Summary Onboard customer webhook
// @Description Server-to-server entry point. The shared secret is sent as a bearer token or X-Webhook-Secret.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param request body OnboardCustomerRequest true "Customer"
// @Success 200 {object} OnboardCustomerResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /webhooks/onboard-customer [post]
func (h *Handler) OnboardCustomerWebhook(w http.ResponseWriter, r *http.Request) {
	if h.cfg.WebhookSecret == "" {
		slog.ErrorContext(r.Context(), "webhook secret is not configured", logger.Component("webhook"))
		respondError(w, http.StatusInternalServerError, "server credential is not configured")
		return
	}

	provided := r.Header.Get("X-Webhook-Secret")
	if provided == "" {
		provided = bearerToken(r)
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.cfg.WebhookSecret)) != 1 {
		h.security.WebhookRejected(r.Context(), getIPAddress(r), "invalid webhook secret")
		respondError(w, http.StatusUnauthorized, "invalid webhook credential")
		return
	}

	var req OnboardCustomerRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	c, err := h.onboarding.OnboardCustomer(r.Context(), onboarding.OnboardRequest{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		SalesRepEmail: req.SalesRepEmail,
		Source:        req.Source,
		Notes:         req.Notes,
		Status:        req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, onboarding.ErrInvalidRequest):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, onboarding.ErrRepNotFound):
			respondError(w, http.StatusNotFound, "sales rep not found")
		case errors.Is(err, customer.ErrDuplicate):
			respondError(w, http.StatusConflict, "customer already exists for this sales rep")
		default:
			slog.ErrorContext(r.Context(), "failed to onboard customer",
				logger.Component("webhook"),
				logger.Email(req.SalesRepEmail),
				logger.Error(err),
			)
			respondError(w, http.StatusInternalServerError, "failed to onboard customer")
		}
		return
	}

	respondJSON(w, http.StatusOK, OnboardCustomerResponse{
		Success:    true,
		CustomerID: c.ID,
	})
}
