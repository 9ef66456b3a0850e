// internal/app/features/wallet/initialize.go
package wallet

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auth"
	"github.com/secondbraindb/sbdwallet/internal/app/system/timeouts"
)

// ServeInitialize handles POST /workspaces/{workspaceID}/wallet.
func (h *Handler) ServeInitialize(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	result, err := h.Wallet.InitializeTeamWallet(ctx, workspaceID, actor)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ServeInfo handles GET /workspaces/{workspaceID}/wallet.
func (h *Handler) ServeInfo(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	info, err := h.Wallet.GetTeamWalletInfo(ctx, workspaceID, actor)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
