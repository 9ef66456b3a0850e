// internal/app/features/wallet/permissions.go
package wallet

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auth"
	"github.com/secondbraindb/sbdwallet/internal/app/system/teamwallet"
	"github.com/secondbraindb/sbdwallet/internal/app/system/timeouts"
)

// ServeUpdatePermissions handles PUT /workspaces/{workspaceID}/wallet/permissions/{userID}.
func (h *Handler) ServeUpdatePermissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")
	targetUserID := chi.URLParam(r, "userID")

	var body permissionsBody
	if err := decode(r, &body); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	result, err := h.Wallet.UpdateSpendingPermissions(ctx, workspaceID, actor, targetUserID, teamwallet.SpendingPermissionInput{
		CanSpend:      body.CanSpend,
		SpendingLimit: body.SpendingLimit,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ServeDesignateBackupAdmin handles POST /workspaces/{workspaceID}/wallet/backup-admins/{userID}.
func (h *Handler) ServeDesignateBackupAdmin(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")
	targetUserID := chi.URLParam(r, "userID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	result, err := h.Wallet.DesignateBackupAdmin(ctx, workspaceID, actor, targetUserID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ServeRemoveBackupAdmin handles DELETE /workspaces/{workspaceID}/wallet/backup-admins/{userID}.
func (h *Handler) ServeRemoveBackupAdmin(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")
	targetUserID := chi.URLParam(r, "userID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	result, err := h.Wallet.RemoveBackupAdmin(ctx, workspaceID, actor, targetUserID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
