package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// APIToken is a permanent API credential for a user. The raw secret is shown
// once at creation; only its bcrypt hash is stored. Prefix is a non-secret
// lookup key embedded in the raw token so verification is a single indexed
// read plus one hash comparison.
type APIToken struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"-"`

	TokenID string `bson:"token_id" json:"token_id"`
	UserID  string `bson:"user_id" json:"user_id"`
	Name    string `bson:"name" json:"name"`

	Prefix    string `bson:"prefix" json:"prefix"`
	TokenHash []byte `bson:"token_hash" json:"-"`

	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	LastUsedAt *time.Time `bson:"last_used_at,omitempty" json:"last_used_at,omitempty"`
	RevokedAt  *time.Time `bson:"revoked_at,omitempty" json:"revoked_at,omitempty"`
}

// Revoked reports whether the token has been revoked.
func (t APIToken) Revoked() bool {
	return t.RevokedAt != nil
}
