// internal/app/features/tokens/handler.go

// Package tokens manages API token lifecycle: issue, list, revoke. Issuing
// the first token requires the bootstrap admin token configured at startup;
// after that, users manage their own tokens with their own credentials.
package tokens

import (
	"github.com/secondbraindb/sbdwallet/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Tokens *auth.Service
	Log    *zap.Logger

	// BootstrapToken, when set, is accepted on the issue route so the first
	// real token can be created on a fresh deployment.
	BootstrapToken string
}

// NewHandler constructs a tokens feature handler.
func NewHandler(svc *auth.Service, bootstrapToken string, logger *zap.Logger) *Handler {
	return &Handler{
		Tokens:         svc,
		Log:            logger,
		BootstrapToken: bootstrapToken,
	}
}
