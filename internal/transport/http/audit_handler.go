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
	"log/slog"
	"net/http"

	"github.com/salesdesk/salesdesk/internal/audit"
	"github.com/salesdesk/salesdesk/internal/observability/logger"
)

// ListAuditLogs returns the newest audit entries of the caller's tenant
// @Summary List audit logs
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries (default 100, max 500)"
// @Success 200 {object} map[string]any
// @Router /audit-logs [get]
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	scope, _ := GetScope(r.Context())

	entries, err := h.audit.List(r.Context(), scope.TenantID, queryInt(r, "limit", 0))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list audit logs", logger.TenantID(scope.TenantID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list audit logs")
		return
	}
	if entries == nil {
		entries = []*audit.Entry{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"audit_logs": entries})
}
