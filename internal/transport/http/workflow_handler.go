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

	"github.com/go-chi/chi/v5"

	"github.com/salesdesk/salesdesk/internal/observability/logger"
	"github.com/salesdesk/salesdesk/internal/workflow"
)

// AdvanceWorkflowRequest records a completed step
type AdvanceWorkflowRequest struct {
	Step string         `json:"step" validate:"required" example:"kickoff_call"`
	Data map[string]any `json:"data"`
}

// FailWorkflowRequest marks a workflow failed
type FailWorkflowRequest struct {
	ErrorMessage string `json:"error_message" validate:"required"`
}

// StartWorkflow starts the onboarding workflow of a customer
// @Summary Start workflow
// @Description Idempotent: returns the existing workflow when one was already started.
// @Tags Workflows
// @Produce json
// @Security BearerAuth
// @Param customerID path string true "Customer ID"
// @Success 200 {object} workflow.Workflow
// @Failure 404 {object} map[string]string
// @Router /customers/{customerID}/workflow [post]
func (h *Handler) StartWorkflow(w http.ResponseWriter, r *http.Request) {
	scope, _ := GetScope(r.Context())

	wf, err := h.workflows.Start(r.Context(), scope.TenantID, chi.URLParam(r, "customerID"))
	if err != nil {
		h.respondWorkflowError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, wf)
}

// GetCustomerWorkflow returns the workflow of a customer
// @Summary Get customer workflow
// @Tags Workflows
// @Produce json
// @Security BearerAuth
// @Param customerID path string true "Customer ID"
// @Success 200 {object} workflow.Workflow
// @Failure 404 {object} map[string]string
// @Router /customers/{customerID}/workflow [get]
func (h *Handler) GetCustomerWorkflow(w http.ResponseWriter, r *http.Request) {
	scope, _ := GetScope(r.Context())
	customerID := chi.URLParam(r, "customerID")

	// Reps may only see workflows of their own customers.
	if _, err := h.customers.Get(r.Context(), scope, customerID); err != nil {
		h.respondCustomerError(w, r, err)
		return
	}

	wf, err := h.workflows.GetForCustomer(r.Context(), scope.TenantID, customerID)
	if err != nil {
		h.respondWorkflowError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, wf)
}

// GetWorkflow returns a workflow by ID
// @Summary Get workflow
// @Tags Workflows
// @Produce json
// @Security BearerAuth
// @Param workflowID path string true "Workflow ID"
// @Success 200 {object} workflow.Workflow
// @Failure 404 {object} map[string]string
// @Router /workflows/{workflowID} [get]
func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	scope, _ := GetScope(r.Context())

	wf, err := h.workflows.Get(r.Context(), scope.TenantID, chi.URLParam(r, "workflowID"))
	if err != nil {
		h.respondWorkflowError(w, r, err)
		return
	}
	if _, err := h.customers.Get(r.Context(), scope, wf.CustomerID); err != nil {
		respondError(w, http.StatusNotFound, "workflow not found")
		return
	}
	respondJSON(w, http.StatusOK, wf)
}

// AdvanceWorkflow records a step and activates a pending workflow
// @Summary Advance workflow
// @Tags Workflows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workflowID path string true "Workflow ID"
// @Param request body AdvanceWorkflowRequest true "Step"
// @Success 200 {object} workflow.Workflow
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /workflows/{workflowID}/steps [post]
func (h *Handler) AdvanceWorkflow(w http.ResponseWriter, r *http.Request) {
	scope, _ := GetScope(r.Context())

	var req AdvanceWorkflowRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	wf, err := h.workflows.Advance(r.Context(), scope.TenantID, chi.URLParam(r, "workflowID"), req.Step, req.Data)
	if err != nil {
		h.respondWorkflowError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, wf)
}

// CompleteWorkflow marks a workflow completed
// @Summary Complete workflow
// @Tags Workflows
// @Produce json
// @Security BearerAuth
// @Param workflowID path string true "Workflow ID"
// @Success 200 {object} workflow.Workflow
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /workflows/{workflowID}/complete [post]
func (h *Handler) CompleteWorkflow(w http.ResponseWriter, r *http.Request) {
	scope, _ := GetScope(r.Context())

	wf, err := h.workflows.Complete(r.Context(), scope.TenantID, chi.URLParam(r, "workflowID"))
	if err != nil {
		h.respondWorkflowError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, wf)
}

// FailWorkflow marks a workflow failed
// @Summary Fail workflow
// @Tags Workflows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workflowID path string true "Workflow ID"
// @Param request body FailWorkflowRequest true "Failure reason"
// @Success 200 {object} workflow.Workflow
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /workflows/{workflowID}/fail [post]
func (h *Handler) FailWorkflow(w http.ResponseWriter, r *http.Request) {
	scope, _ := GetScope(r.Context())

	var req FailWorkflowRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	wf, err := h.workflows.Fail(r.Context(), scope.TenantID, chi.URLParam(r, "workflowID"), req.ErrorMessage)
	if err != nil {
		h.respondWorkflowError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, wf)
}

func (h *Handler) respondWorkflowError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		respondError(w, http.StatusNotFound, "workflow not found")
	case errors.Is(err, workflow.ErrCustomerNotFound):
		respondError(w, http.StatusNotFound, "customer not found")
	case errors.Is(err, workflow.ErrTerminal):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, workflow.ErrMissingStep):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "workflow request failed",
			logger.TenantID(GetTenantID(r.Context())),
			logger.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
