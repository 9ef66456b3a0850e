// internal/app/features/wallet/requests.go
package wallet

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auth"
	"github.com/secondbraindb/sbdwallet/internal/app/system/timeouts"
)

// ServeCreateRequest handles POST /workspaces/{workspaceID}/wallet/requests.
func (h *Handler) ServeCreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")

	var body tokenRequestBody
	if err := decode(r, &body); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	// Long: an auto-approved request processes the transfer inline.
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	result, err := h.Wallet.CreateTokenRequest(ctx, workspaceID, actor, body.Amount, body.Reason)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ServeReview handles POST /wallet/requests/{requestID}/review.
func (h *Handler) ServeReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	requestID := chi.URLParam(r, "requestID")

	var body reviewBody
	if err := decode(r, &body); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	result, err := h.Wallet.ReviewTokenRequest(ctx, requestID, actor, body.Action, body.Comments)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ServePendingRequests handles GET /workspaces/{workspaceID}/wallet/requests/pending.
func (h *Handler) ServePendingRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reqs, err := h.Wallet.GetPendingTokenRequests(ctx, workspaceID, actor)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": reqs, "count": len(reqs)})
}
