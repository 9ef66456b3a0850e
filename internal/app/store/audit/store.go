// internal/app/store/audit/store.go
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event types recorded for team wallets.
const (
	EventWalletInitialized    = "wallet_initialized"
	EventTokenRequestCreated  = "token_request_created"
	EventTokenRequestApproved = "token_request_approved"
	EventTokenRequestDenied   = "token_request_denied"
	EventPermissionsUpdated   = "permissions_updated"
	EventPermissionChange     = "permission_change"
	EventAccountFreeze        = "account_freeze"
	EventEmergencyUnfreeze    = "emergency_unfreeze"
)

// Record is one write-once audit entry. The integrity hash covers every
// semantic field; any out-of-band mutation makes verification fail.
type Record struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"-"`

	AuditID   string `bson:"audit_id" json:"audit_id"`
	TeamID    string `bson:"team_id" json:"team_id"`
	EventType string `bson:"event_type" json:"event_type"`

	Actor      string `bson:"actor,omitempty" json:"actor,omitempty"`
	TargetUser string `bson:"target_user,omitempty" json:"target_user,omitempty"`
	Action     string `bson:"action,omitempty" json:"action,omitempty"`
	Reason     string `bson:"reason,omitempty" json:"reason,omitempty"`

	Amount      int64  `bson:"amount,omitempty" json:"amount,omitempty"`
	FromAccount string `bson:"from_account,omitempty" json:"from_account,omitempty"`
	ToAccount   string `bson:"to_account,omitempty" json:"to_account,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`

	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
	IntegrityHash string    `bson:"integrity_hash" json:"integrity_hash"`

	// ComplianceEligible is true when every field a regulatory export needs
	// is present.
	ComplianceEligible bool `bson:"compliance_eligible" json:"compliance_eligible"`
}

// Hash computes the record's integrity hash over a canonical serialization
// of its semantic fields. Deterministic: the same logical record always
// hashes the same; changing any single field changes the hash.
func (r Record) Hash() string {
	var b strings.Builder
	b.WriteString(r.AuditID)
	b.WriteByte('|')
	b.WriteString(r.TeamID)
	b.WriteByte('|')
	b.WriteString(r.EventType)
	b.WriteByte('|')
	b.WriteString(r.Actor)
	b.WriteByte('|')
	b.WriteString(r.TargetUser)
	b.WriteByte('|')
	b.WriteString(r.Action)
	b.WriteByte('|')
	b.WriteString(r.Reason)
	b.WriteByte('|')
	fmt.Fprintf(&b, "%d", r.Amount)
	b.WriteByte('|')
	b.WriteString(r.FromAccount)
	b.WriteByte('|')
	b.WriteString(r.ToAccount)
	b.WriteByte('|')
	b.WriteString(r.Timestamp.UTC().Format(time.RFC3339Nano))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(r.ComplianceEligible))

	keys := make([]string, 0, len(r.Details))
	for k := range r.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(r.Details[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Verified recomputes the hash and compares it to the stored value.
func (r Record) Verified() bool {
	return r.IntegrityHash != "" && r.Hash() == r.IntegrityHash
}

// QueryFilter bounds an audit trail query. Start/End are inclusive.
type QueryFilter struct {
	TeamID    string
	EventType string
	Start     *time.Time
	End       *time.Time
	Limit     int64
}

var ErrNotFound = errors.New("audit record not found")

// Store manages the write-once audit collection. There are no update or
// delete operations; verification is read-plus-recompute.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("team_audit_records")}
}

// Insert finalizes and writes a record: stamps the timestamp if unset,
// computes the integrity hash, and appends. The stored record is returned.
func (s *Store) Insert(ctx context.Context, rec Record) (Record, error) {
	rec.ID = primitive.NewObjectID()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	// Mongo stores times at millisecond precision; truncate before hashing
	// so the recomputed hash matches what a round-tripped record yields.
	rec.Timestamp = rec.Timestamp.UTC().Truncate(time.Millisecond)
	rec.IntegrityHash = rec.Hash()
	if _, err := s.c.InsertOne(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Get retrieves a record by its external audit_id.
func (s *Store) Get(ctx context.Context, auditID string) (Record, error) {
	var rec Record
	err := s.c.FindOne(ctx, bson.M{"audit_id": auditID}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// Query returns records matching the filter, newest first, capped at the
// filter limit (default 100).
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Record, error) {
	query := bson.M{}
	if filter.TeamID != "" {
		query["team_id"] = filter.TeamID
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}
	if filter.Start != nil || filter.End != nil {
		timeQuery := bson.M{}
		if filter.Start != nil {
			timeQuery["$gte"] = *filter.Start
		}
		if filter.End != nil {
			timeQuery["$lte"] = *filter.End
		}
		query["timestamp"] = timeQuery
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var recs []Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// CountByFilter returns the number of records matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	query := bson.M{}
	if filter.TeamID != "" {
		query["team_id"] = filter.TeamID
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}
	if filter.Start != nil || filter.End != nil {
		timeQuery := bson.M{}
		if filter.Start != nil {
			timeQuery["$gte"] = *filter.Start
		}
		if filter.End != nil {
			timeQuery["$lte"] = *filter.End
		}
		query["timestamp"] = timeQuery
	}
	return s.c.CountDocuments(ctx, query)
}

// EnsureIndexes creates indexes for the audit collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "audit_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_audit_id"),
		},
		{
			Keys: bson.D{
				{Key: "team_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_team_time"),
		},
		{
			Keys: bson.D{
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_event_time"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
