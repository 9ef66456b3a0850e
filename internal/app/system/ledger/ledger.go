// internal/app/system/ledger/ledger.go

// Package ledger is the client side of the external SBD token-transfer
// system, the source of truth for account balances. The wallet manager
// only depends on the Ledger interface.
package ledger

import (
	"context"
	"errors"
)

// ErrInsufficientBalance is surfaced by the transfer system when the team
// account cannot cover the amount. The wallet manager propagates it
// unchanged.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Ledger is the contract the wallet manager consumes.
type Ledger interface {
	// Balance returns the live balance of a virtual account.
	Balance(ctx context.Context, account string) (int64, error)

	// Transfer moves amount tokens from the team account to a user and
	// returns the transfer system's reference for the move. A non-empty
	// dedupeKey identifies the logical transfer: replaying it returns the
	// original reference instead of moving tokens again, so callers may
	// retry safely.
	Transfer(ctx context.Context, fromAccount, toUser string, amount int64, memo, dedupeKey string) (string, error)
}
