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
	"errors"
	"log/slog"
	"net/http"

	"github.com/salesdesk/salesdesk/internal/identity"
	"github.com/salesdesk/salesdesk/internal/observability/logger"
	"github.com/salesdesk/salesdesk/internal/onboarding"
	"github.com/salesdesk/salesdesk/internal/salesrep"
)

// InviteSalesRepRequest invites a sales rep into the caller's tenant
type InviteSalesRepRequest struct {
	FirstName string `json:"first_name" validate:"required" example:"Jane"`
	LastName  string `json:"last_name" validate:"required" example:"Doe"`
	Email     string `json:"email" validate:"required,email" example:"jane@example.com"`
	Phone     string `json:"phone_no" example:"+15551234567"`
}

// InviteSalesRepResponse reports the invited identity
type InviteSalesRepResponse struct {
	Success     bool   `json:"success"`
	CreatedUser bool   `json:"createdUser"`
	UserID      string `json:"user_id"`
}

// InviteSalesRep invites or re-activates a sales rep
// @Summary Invite sales rep
// @Description Resolves or invites the identity, grants the sales_rep role and upserts the rep record.
// @Tags SalesReps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body InviteSalesRepRequest true "Sales rep"
// @Success 200 {object} InviteSalesRepResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /sales-reps/invite [post]
func (h *Handler) InviteSalesRep(w http.ResponseWriter, r *http.Request) {
	scope, _ := GetScope(r.Context())

	var req InviteSalesRepRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.onboarding.InviteRepresentative(r.Context(), scope, onboarding.InviteRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, onboarding.ErrForbidden):
			respondError(w, http.StatusForbidden, "administrator role required")
		case errors.Is(err, onboarding.ErrInvalidRequest),
			errors.Is(err, identity.ErrInvalidEmail),
			errors.Is(err, identity.ErrUnresolvable):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "failed to invite sales rep",
				logger.TenantID(scope.TenantID),
				logger.Email(req.Email),
				logger.Error(err),
			)
			respondError(w, http.StatusInternalServerError, "failed to invite sales rep")
		}
		return
	}

	respondJSON(w, http.StatusOK, InviteSalesRepResponse{
		Success:     true,
		CreatedUser: res.CreatedUser,
		UserID:      res.UserID,
	})
}

// ListSalesReps lists the reps of the caller's tenant
// @Summary List sales reps
// @Tags SalesReps
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /sales-reps [get]
func (h *Handler) ListSalesReps(w http.ResponseWriter, r *http.Request) {
	scope, _ := GetScope(r.Context())

	reps, err := h.salesReps.List(r.Context(), scope)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list sales reps", logger.TenantID(scope.TenantID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list sales reps")
		return
	}
	if reps == nil {
		reps = []*salesrep.SalesRep{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"sales_reps": reps})
}
