// internal/app/store/tokenrequests/store.go
package tokenrequests

import (
	"context"
	"errors"
	"time"

	"github.com/secondbraindb/sbdwallet/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound = errors.New("token request not found")

	// ErrNotReviewable means the request exists but is no longer pending,
	// or its review deadline has passed.
	ErrNotReviewable = errors.New("token request is not reviewable")

	// ErrAlreadyProcessed means another caller completed the transfer first.
	ErrAlreadyProcessed = errors.New("token request already processed")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("team_token_requests")}
}

// Insert stores a new token request.
func (s *Store) Insert(ctx context.Context, req models.TokenRequest) (models.TokenRequest, error) {
	req.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, req); err != nil {
		return models.TokenRequest{}, err
	}
	return req, nil
}

// Get retrieves a request by its external request_id.
func (s *Store) Get(ctx context.Context, requestID string) (models.TokenRequest, error) {
	var req models.TokenRequest
	err := s.c.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.TokenRequest{}, ErrNotFound
		}
		return models.TokenRequest{}, err
	}
	return req, nil
}

// MarkReviewed performs the pending->approved/denied transition. The filter
// asserts the request is still pending and unexpired, so the transition
// happens exactly once even under concurrent reviewers.
func (s *Store) MarkReviewed(ctx context.Context, requestID, status, reviewedBy, comments string, at time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"request_id": requestID,
			"status":     models.RequestPending,
			"expires_at": bson.M{"$gt": at},
		},
		bson.M{"$set": bson.M{
			"status":         status,
			"reviewed_by":    reviewedBy,
			"admin_comments": comments,
			"reviewed_at":    at,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.Get(ctx, requestID); err != nil {
			return err
		}
		return ErrNotReviewable
	}
	return nil
}

// MarkProcessed stamps processed_at on an approved request. The filter
// asserts it has not been processed yet, which makes transfer processing
// idempotent under retries and the reconciliation sweep.
func (s *Store) MarkProcessed(ctx context.Context, requestID string, at time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"request_id":   requestID,
			"status":       models.RequestApproved,
			"processed_at": bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{"processed_at": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.Get(ctx, requestID); err != nil {
			return err
		}
		return ErrAlreadyProcessed
	}
	return nil
}

// ListPending returns reviewable requests for a workspace, newest first.
// Requests past their deadline are excluded even if the sweep has not yet
// transitioned them.
func (s *Store) ListPending(ctx context.Context, workspaceID string, now time.Time) ([]models.TokenRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{
		"workspace_id": workspaceID,
		"status":       models.RequestPending,
		"expires_at":   bson.M{"$gt": now},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reqs []models.TokenRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// ExpireStale transitions pending requests past their deadline to expired.
// Run periodically so storage agrees with what listings report.
func (s *Store) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"status":     models.RequestPending,
			"expires_at": bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{"status": models.RequestExpired}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// FindApprovedUnprocessed returns approved requests whose transfer never
// completed, approved before the cutoff. Used by the reconciliation sweep.
func (s *Store) FindApprovedUnprocessed(ctx context.Context, cutoff time.Time) ([]models.TokenRequest, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"status":       models.RequestApproved,
		"processed_at": bson.M{"$exists": false},
		"reviewed_at":  bson.M{"$lte": cutoff},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reqs []models.TokenRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// EnsureIndexes creates indexes for the token request collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_request_id"),
		},
		{
			Keys: bson.D{
				{Key: "workspace_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_request_workspace_status"),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "expires_at", Value: 1},
			},
			Options: options.Index().SetName("idx_request_expiry"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
