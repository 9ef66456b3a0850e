// internal/app/store/apitokens/store.go
package apitokens

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
	ErrNotFound       = errors.New("api token not found")
	ErrAlreadyRevoked = errors.New("api token already revoked")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sbd_api_tokens")}
}

// Insert stores a new token record. The raw secret never reaches this layer.
func (s *Store) Insert(ctx context.Context, tok models.APIToken) (models.APIToken, error) {
	tok.ID = primitive.NewObjectID()
	if tok.CreatedAt.IsZero() {
		tok.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, tok); err != nil {
		return models.APIToken{}, err
	}
	return tok, nil
}

// GetByPrefix retrieves a token record by its lookup prefix.
func (s *Store) GetByPrefix(ctx context.Context, prefix string) (models.APIToken, error) {
	var tok models.APIToken
	err := s.c.FindOne(ctx, bson.M{"prefix": prefix}).Decode(&tok)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.APIToken{}, ErrNotFound
		}
		return models.APIToken{}, err
	}
	return tok, nil
}

// ListByUser returns a user's tokens, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.APIToken, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var toks []models.APIToken
	if err := cur.All(ctx, &toks); err != nil {
		return nil, err
	}
	return toks, nil
}

// Revoke marks a token revoked. Only the owning user's tokens match.
func (s *Store) Revoke(ctx context.Context, tokenID, userID string, at time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"token_id":   tokenID,
			"user_id":    userID,
			"revoked_at": bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{"revoked_at": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		err := s.c.FindOne(ctx, bson.M{"token_id": tokenID, "user_id": userID},
			options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadyRevoked
	}
	return nil
}

// TouchLastUsed updates last_used_at. Best effort; callers ignore failures.
func (s *Store) TouchLastUsed(ctx context.Context, tokenID string, at time.Time) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"token_id": tokenID},
		bson.M{"$set": bson.M{"last_used_at": at}})
	return err
}

// EnsureIndexes creates indexes for the api token collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_api_token_id"),
		},
		{
			Keys:    bson.D{{Key: "prefix", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_api_token_prefix"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_api_token_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
