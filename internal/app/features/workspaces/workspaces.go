// internal/app/features/workspaces/workspaces.go
package workspaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	workspacestore "github.com/secondbraindb/sbdwallet/internal/app/store/workspaces"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auth"
	"github.com/secondbraindb/sbdwallet/internal/app/system/inputval"
	"github.com/secondbraindb/sbdwallet/internal/app/system/teamwallet"
	"github.com/secondbraindb/sbdwallet/internal/app/system/timeouts"
	"github.com/secondbraindb/sbdwallet/internal/domain/models"
	"go.uber.org/zap"
)

// ServeCreate handles POST /workspaces. The creator becomes the first admin
// member; the wallet itself is initialized separately.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body createBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := inputval.SanitizeText(body.Name)
	if name == "" {
		writeErr(w, http.StatusBadRequest, "name is required")
		return
	}
	workspaceID := strings.TrimSpace(body.WorkspaceID)
	if workspaceID == "" {
		workspaceID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ws, err := h.Workspaces.Create(ctx, models.Workspace{
		WorkspaceID: workspaceID,
		Name:        name,
		Members: []models.Member{
			{UserID: actor, Role: models.RoleAdmin},
		},
		Settings: models.WorkspaceSettings{
			AutoApprovalThreshold: teamwallet.DefaultAutoApprovalThreshold,
		},
	})
	if err != nil {
		if errors.Is(err, workspacestore.ErrDuplicateID) {
			writeErr(w, http.StatusConflict, "a workspace with this id already exists")
			return
		}
		h.Log.Error("workspace create failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "workspace creation failed")
		return
	}

	h.Log.Info("workspace created",
		zap.String("workspace_id", ws.WorkspaceID),
		zap.String("created_by", actor),
	)
	writeJSON(w, http.StatusCreated, ws)
}

// ServeGet handles GET /workspaces/{workspaceID}. Members only.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ws, err := h.Workspaces.Get(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "workspace not found")
			return
		}
		h.Log.Error("workspace lookup failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "workspace lookup failed")
		return
	}
	if !ws.IsMember(actor) {
		writeErr(w, http.StatusForbidden, "user is not a member of this workspace")
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

// ServeAddMember handles POST /workspaces/{workspaceID}/members. Admin only.
func (h *Handler) ServeAddMember(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")

	var body addMemberBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.UserID) == "" {
		writeErr(w, http.StatusBadRequest, "user_id is required")
		return
	}
	role := body.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleAdmin && role != models.RoleMember && role != models.RoleViewer {
		writeErr(w, http.StatusBadRequest, "role must be admin, member, or viewer")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ws, adminOK := h.requireAdmin(ctx, w, workspaceID, r)
	if !adminOK {
		return
	}

	if err := h.Workspaces.AddMember(ctx, workspaceID, models.Member{UserID: body.UserID, Role: role}); err != nil {
		if errors.Is(err, workspacestore.ErrAlreadyMember) {
			writeErr(w, http.StatusBadRequest, "user is already a member")
			return
		}
		h.Log.Error("add member failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "member addition failed")
		return
	}

	h.Log.Info("workspace member added",
		zap.String("workspace_id", ws.WorkspaceID),
		zap.String("user_id", body.UserID),
		zap.String("role", role),
	)
	writeJSON(w, http.StatusCreated, map[string]string{
		"workspace_id": workspaceID,
		"user_id":      body.UserID,
		"role":         role,
	})
}

// ServeSetThreshold handles PUT /workspaces/{workspaceID}/settings/auto-approval.
// Admin only. Zero disables auto-approval entirely.
func (h *Handler) ServeSetThreshold(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")

	var body thresholdBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Threshold < 0 {
		writeErr(w, http.StatusBadRequest, "threshold must be zero or positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, ok := h.requireAdmin(ctx, w, workspaceID, r); !ok {
		return
	}

	if err := h.Workspaces.SetAutoApprovalThreshold(ctx, workspaceID, body.Threshold); err != nil {
		h.Log.Error("threshold update failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "threshold update failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workspace_id":            workspaceID,
		"auto_approval_threshold": body.Threshold,
	})
}

// ServeSetAuthMethods handles PUT /workspaces/{workspaceID}/settings/auth-methods.
// Admin only. An empty list re-enables every method.
func (h *Handler) ServeSetAuthMethods(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")

	var body authMethodsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, m := range body.Methods {
		if !h.AuthMethods.ValidMethod(m) {
			writeErr(w, http.StatusBadRequest, "unknown auth method: "+m)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, ok := h.requireAdmin(ctx, w, workspaceID, r); !ok {
		return
	}

	if err := h.Workspaces.SetEnabledAuthMethods(ctx, workspaceID, body.Methods); err != nil {
		h.Log.Error("auth method update failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "auth method update failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workspace_id":         workspaceID,
		"enabled_auth_methods": body.Methods,
	})
}

// ServeGetAuthMethods handles GET /workspaces/{workspaceID}/settings/auth-methods.
// Members only. Provider-backed methods report whether the deployment
// carries OAuth credentials for them.
func (h *Handler) ServeGetAuthMethods(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	workspaceID := chi.URLParam(r, "workspaceID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ws, err := h.Workspaces.Get(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "workspace not found")
			return
		}
		h.Log.Error("workspace lookup failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "workspace lookup failed")
		return
	}
	if !ws.IsMember(actor) {
		writeErr(w, http.StatusForbidden, "user is not a member of this workspace")
		return
	}

	enabled := h.AuthMethods.Enabled(ctx, workspaceID)
	views := make([]authMethodView, 0, len(enabled))
	for _, m := range enabled {
		_, configured := h.AuthMethods.OAuthConfig(m.Value)
		views = append(views, authMethodView{
			Value:           m.Value,
			Label:           m.Label,
			OAuthConfigured: configured,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workspace_id": workspaceID,
		"methods":      views,
	})
}

// requireAdmin loads the workspace and enforces the admin role, writing the
// error response itself when the check fails.
func (h *Handler) requireAdmin(ctx context.Context, w http.ResponseWriter, workspaceID string, r *http.Request) (models.Workspace, bool) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return models.Workspace{}, false
	}
	ws, err := h.Workspaces.Get(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "workspace not found")
			return models.Workspace{}, false
		}
		h.Log.Error("workspace lookup failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "workspace lookup failed")
		return models.Workspace{}, false
	}
	if !ws.IsAdmin(actor) {
		writeErr(w, http.StatusForbidden, "admin role required")
		return models.Workspace{}, false
	}
	return ws, true
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
