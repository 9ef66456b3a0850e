// internal/app/features/tokens/tokens.go
package tokens

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/secondbraindb/sbdwallet/internal/app/store/apitokens"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auth"
	"github.com/secondbraindb/sbdwallet/internal/app/system/inputval"
	"github.com/secondbraindb/sbdwallet/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// issueBody is the body for POST /tokens. UserID is honored only for
// bootstrap-token callers; authenticated users always issue for themselves.
type issueBody struct {
	Name   string `json:"name"`
	UserID string `json:"user_id,omitempty"`
}

// ServeIssue handles POST /tokens. The raw token appears once in the
// response and is never retrievable again.
func (h *Handler) ServeIssue(w http.ResponseWriter, r *http.Request) {
	var body issueBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := inputval.SanitizeText(body.Name)
	if name == "" {
		writeErr(w, http.StatusBadRequest, "name is required")
		return
	}

	userID, ok := h.resolveIssuer(r, body.UserID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	issued, err := h.Tokens.Issue(ctx, userID, name)
	if err != nil {
		h.Log.Error("token issue failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "token issue failed")
		return
	}
	writeJSON(w, http.StatusCreated, issued)
}

// ServeList handles GET /tokens. Returns the caller's own tokens; raw
// secrets and hashes are never included.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	toks, err := h.Tokens.List(ctx, actor)
	if err != nil {
		h.Log.Error("token list failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "token list failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tokens": toks, "count": len(toks)})
}

// ServeRevoke handles DELETE /tokens/{tokenID}. Users can revoke only their
// own tokens.
func (h *Handler) ServeRevoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	tokenID := chi.URLParam(r, "tokenID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Tokens.Revoke(ctx, tokenID, actor); err != nil {
		switch {
		case errors.Is(err, apitokens.ErrNotFound):
			writeErr(w, http.StatusNotFound, "token not found")
		case errors.Is(err, apitokens.ErrAlreadyRevoked):
			writeErr(w, http.StatusConflict, "token already revoked")
		default:
			h.Log.Error("token revoke failed", zap.Error(err))
			writeErr(w, http.StatusInternalServerError, "token revoke failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token_id": tokenID, "status": "revoked"})
}

// resolveIssuer decides who the new token belongs to. An authenticated
// caller issues for themselves; the bootstrap token may issue for any user.
func (h *Handler) resolveIssuer(r *http.Request, requestedUser string) (string, bool) {
	if actor, ok := auth.Actor(r); ok {
		return actor, true
	}
	if h.BootstrapToken == "" || requestedUser == "" {
		return "", false
	}
	presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(presented), []byte(h.BootstrapToken)) != 1 {
		return "", false
	}
	return requestedUser, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"message": message},
	})
}
