// internal/app/features/wallet/handler.go

// Package wallet exposes the team wallet operations over JSON. Every route
// is authenticated by API token; the acting user is always the token owner,
// never a request field.
package wallet

import (
	"github.com/secondbraindb/sbdwallet/internal/app/system/teamwallet"
	"go.uber.org/zap"
)

type Handler struct {
	Wallet *teamwallet.Manager
	Log    *zap.Logger
}

// NewHandler constructs a wallet feature handler bound to the wallet manager
// and logger.
func NewHandler(mgr *teamwallet.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		Wallet: mgr,
		Log:    logger,
	}
}
