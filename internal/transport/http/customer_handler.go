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
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/salesdesk/salesdesk/internal/customer"
	"github.com/salesdesk/salesdesk/internal/importer"
	"github.com/salesdesk/salesdesk/internal/observability/logger"
	"github.com/salesdesk/salesdesk/internal/tenant"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImportResponse reports an accepted import
type ImportResponse struct {
	Success  bool     `json:"success"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportCustomers imports a CSV or XLSX file of leads owned by the caller
// @Summary Import customers
// @Description Imports leads from a CSV or XLSX upload. Invalid rows are skipped and reported.
// @Tags Customers
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV or XLSX file"
// @Param mode formData string false "insert or upsert"
// @Success 200 {object} ImportResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Router /customers/import [post]
func (h *Handler) ImportCustomers(w http.ResponseWriter, r *http.Request) {
	scope, _ := GetScope(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.ImportMaxBytes)
	if err := r.ParseMultipartForm(h.cfg.ImportMaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload limit")
			return
		}
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	mode, err := customer.ParseWriteMode(r.FormValue("mode"), "")
	if err != nil {
		respondError(w, http.StatusBadRequest, "mode must be insert or upsert")
		return
	}
	opts := importer.Options{Mode: mode}

	var res *importer.Result
	if strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") || header.Header.Get("Content-Type") == xlsxContentType {
		res, err = h.importer.ImportWorkbook(r.Context(), scope, file, opts)
	} else {
		var data []byte
		data, err = io.ReadAll(file)
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read file")
			return
		}
		res, err = h.importer.ImportCSV(r.Context(), scope, data, opts)
	}
	if err != nil {
		h.respondImportError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ImportResponse{
		Success:  true,
		Imported: res.Imported,
		Skipped:  res.Skipped,
		Errors:   res.Errors,
	})
}

func (h *Handler) respondImportError(w http.ResponseWriter, r *http.Request, err error) {
	var importErr *importer.ImportError
	switch {
	case errors.As(err, &importErr):
		respondError(w, http.StatusBadRequest, importErr.Error())
	case errors.Is(err, importer.ErrTooManyRows),
		errors.Is(err, importer.ErrInvalidWorkbook),
		errors.Is(err, importer.ErrEmptyWorkbook),
		errors.Is(err, customer.ErrInvalidWriteMode):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, customer.ErrDuplicate):
		respondError(w, http.StatusConflict, "one or more customers already exist; retry with mode=upsert")
	case errors.Is(err, tenant.ErrNoTenant), errors.Is(err, tenant.ErrMissingUser):
		respondError(w, http.StatusForbidden, "no tenant access")
	default:
		slog.ErrorContext(r.Context(), "customer import failed",
			logger.TenantID(GetTenantID(r.Context())),
			logger.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "failed to import customers")
	}
}

// ListCustomers lists customers visible to the caller
// @Summary List customers
// @Description Administrators see every customer of the tenant; sales reps see their own.
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]any
// @Router /customers [get]
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	scope, _ := GetScope(r.Context())

	customers, err := h.customers.List(r.Context(), scope, queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list customers", logger.TenantID(scope.TenantID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}
	if customers == nil {
		customers = []*customer.Customer{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

// GetCustomer returns one customer
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param customerID path string true "Customer ID"
// @Success 200 {object} customer.Customer
// @Failure 404 {object} map[string]string
// @Router /customers/{customerID} [get]
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	scope, _ := GetScope(r.Context())

	c, err := h.customers.Get(r.Context(), scope, chi.URLParam(r, "customerID"))
	if err != nil {
		h.respondCustomerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// UpdateStatusRequest changes a customer's status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required" example:"won"`
}

// UpdateCustomerStatus sets the status of a customer
// @Summary Update customer status
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param customerID path string true "Customer ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} customer.Customer
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /customers/{customerID}/status [patch]
func (h *Handler) UpdateCustomerStatus(w http.ResponseWriter, r *http.Request) {
	scope, _ := GetScope(r.Context())

	var req UpdateStatusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	c, err := h.customers.UpdateStatus(r.Context(), scope, chi.URLParam(r, "customerID"), req.Status)
	if err != nil {
		h.respondCustomerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) respondCustomerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, customer.ErrNotFound), errors.Is(err, customer.ErrForbidden):
		respondError(w, http.StatusNotFound, "customer not found")
	case errors.Is(err, customer.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, "status must be one of pending, active, won, lost")
	default:
		slog.ErrorContext(r.Context(), "customer request failed",
			logger.TenantID(GetTenantID(r.Context())),
			logger.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
