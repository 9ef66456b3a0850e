// internal/app/features/wallet/freeze.go
package wallet

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auth"
	"github.com/secondbraindb/sbdwallet/internal/app/system/timeouts"
)

// ServeFreeze handles POST /workspaces/{workspaceID}/wallet/freeze.
func (h *Handler) ServeFreeze(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")

	var body freezeBody
	if r.ContentLength > 0 {
		if err := decode(r, &body); err != nil {
			badRequest(w, "invalid request body")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	result, err := h.Wallet.FreezeTeamAccount(ctx, workspaceID, actor, body.Reason)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ServeUnfreeze handles POST /workspaces/{workspaceID}/wallet/unfreeze.
func (h *Handler) ServeUnfreeze(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	result, err := h.Wallet.UnfreezeTeamAccount(ctx, workspaceID, actor)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ServeEmergencyUnfreeze handles POST /workspaces/{workspaceID}/wallet/emergency-unfreeze.
func (h *Handler) ServeEmergencyUnfreeze(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")

	var body emergencyBody
	if err := decode(r, &body); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	result, err := h.Wallet.EmergencyUnfreezeAccount(ctx, workspaceID, actor, body.Reason)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ServeAcknowledgeEmergency handles POST /workspaces/{workspaceID}/wallet/emergency-ack.
func (h *Handler) ServeAcknowledgeEmergency(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	result, err := h.Wallet.AcknowledgeEmergency(ctx, workspaceID, actor)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
