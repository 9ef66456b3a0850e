// internal/app/features/wallet/audit.go
package wallet

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auth"
	"github.com/secondbraindb/sbdwallet/internal/app/system/timeouts"
)

// ServeAuditTrail handles GET /workspaces/{workspaceID}/wallet/audit.
// Query parameters: start, end (RFC 3339 or YYYY-MM-DD, inclusive), limit.
func (h *Handler) ServeAuditTrail(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")

	start, err := parseTimeParam(r.URL.Query().Get("start"), false)
	if err != nil {
		badRequest(w, "invalid start time")
		return
	}
	end, err := parseTimeParam(r.URL.Query().Get("end"), true)
	if err != nil {
		badRequest(w, "invalid end time")
		return
	}

	var limit int64
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			badRequest(w, "invalid limit")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	recs, err := h.Wallet.GetTeamAuditTrail(ctx, workspaceID, actor, start, end, limit)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": recs, "count": len(recs)})
}

// ServeComplianceReport handles GET /workspaces/{workspaceID}/wallet/audit/report.
// Query parameters: format (json or csv, default json), start, end.
func (h *Handler) ServeComplianceReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")
	format := r.URL.Query().Get("format")

	start, err := parseTimeParam(r.URL.Query().Get("start"), false)
	if err != nil {
		badRequest(w, "invalid start time")
		return
	}
	end, err := parseTimeParam(r.URL.Query().Get("end"), true)
	if err != nil {
		badRequest(w, "invalid end time")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	report, err := h.Wallet.GenerateComplianceReport(ctx, workspaceID, actor, format, start, end)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ServeVerifyIntegrity handles GET /wallet/audit/{auditID}/verify... scoped
// under the workspace route so the admin check binds to the right team.
func (h *Handler) ServeVerifyIntegrity(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")
	auditID := chi.URLParam(r, "auditID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	verified, err := h.Wallet.VerifyAuditIntegrity(ctx, workspaceID, actor, auditID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"audit_id": auditID,
		"verified": verified,
	})
}

// parseTimeParam accepts RFC 3339 timestamps or bare dates. A bare date used
// as a range end means end of that day.
func parseTimeParam(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}
