package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction types.
const (
	TxnTokenGrant = "token_grant"
)

// Transaction is one append-only entry in the team transaction log.
// Records are never mutated after insert.
type Transaction struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"-"`

	TransactionID string `bson:"transaction_id" json:"transaction_id"`
	WorkspaceID   string `bson:"workspace_id" json:"workspace_id"`
	Type          string `bson:"type" json:"type"`
	Amount        int64  `bson:"amount" json:"amount"`

	FromAccount string `bson:"from_account" json:"from_account"`
	ToUser      string `bson:"to_user" json:"to_user"`
	ProcessedBy string `bson:"processed_by" json:"processed_by"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	// RequestID back-references the token request that produced this
	// transaction, when there is one.
	RequestID string `bson:"request_id,omitempty" json:"request_id,omitempty"`

	// LedgerRef is the external transfer system's reference for the move.
	LedgerRef string `bson:"ledger_ref,omitempty" json:"ledger_ref,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
