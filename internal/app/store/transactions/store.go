// internal/app/store/transactions/store.go
package transactions

import (
	"context"
	"time"

	"github.com/secondbraindb/sbdwallet/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the append-only team transaction log. There are no update or
// delete operations on purpose.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("team_transactions")}
}

// Insert appends a transaction record.
func (s *Store) Insert(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	txn.ID = primitive.NewObjectID()
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, txn); err != nil {
		return models.Transaction{}, err
	}
	return txn, nil
}

// ListRecent returns the most recent transactions for a workspace, newest
// first, capped at limit.
func (s *Store) ListRecent(ctx context.Context, workspaceID string, limit int64) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"workspace_id": workspaceID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var txns []models.Transaction
	if err := cur.All(ctx, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// CountByRequest returns how many transactions reference a token request.
func (s *Store) CountByRequest(ctx context.Context, requestID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"request_id": requestID})
}

// EnsureIndexes creates indexes for the transaction log.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transaction_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_transaction_id"),
		},
		{
			Keys: bson.D{
				{Key: "workspace_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_transaction_workspace"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
