package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Token request statuses.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestDenied   = "denied"
	RequestExpired  = "expired"
)

// RequestTTL is how long a pending token request stays reviewable.
const RequestTTL = 7 * 24 * time.Hour

// TokenRequest is a member's ask for tokens from the team account.
//
// Lifecycle: created pending (or approved immediately when the amount is at
// or below the workspace auto-approval threshold); pending requests move to
// approved/denied exactly once via admin review, or to expired by the sweep
// job once expires_at passes. Approved requests are processed (ledger
// transfer plus transaction record) and stamped with processed_at.
type TokenRequest struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"-"`

	RequestID   string `bson:"request_id" json:"request_id"`
	WorkspaceID string `bson:"workspace_id" json:"workspace_id"`
	RequesterID string `bson:"requester_user_id" json:"requester_user_id"`

	Amount int64  `bson:"amount" json:"amount"`
	Reason string `bson:"reason" json:"reason"`

	Status       string `bson:"status" json:"status"`
	AutoApproved bool   `bson:"auto_approved" json:"auto_approved"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`

	ReviewedBy    string     `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	AdminComments string     `bson:"admin_comments,omitempty" json:"admin_comments,omitempty"`
	ReviewedAt    *time.Time `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	ProcessedAt   *time.Time `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
}

// Expired reports whether the request is past its review deadline.
func (r TokenRequest) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
