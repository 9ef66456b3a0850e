// internal/app/features/workspaces/handler.go

// Package workspaces manages the workspace records the wallet hangs off:
// creation, membership, and wallet policy settings.
package workspaces

import (
	workspacestore "github.com/secondbraindb/sbdwallet/internal/app/store/workspaces"
	"github.com/secondbraindb/sbdwallet/internal/app/system/wsauth"
	"go.uber.org/zap"
)

type Handler struct {
	Workspaces  *workspacestore.Store
	AuthMethods *wsauth.Service
	Log         *zap.Logger
}

// NewHandler constructs a workspaces feature handler.
func NewHandler(ws *workspacestore.Store, authMethods *wsauth.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Workspaces:  ws,
		AuthMethods: authMethods,
		Log:         logger,
	}
}
