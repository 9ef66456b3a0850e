// internal/app/store/workspaces/workspacestore.go
package workspacestore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
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
	ErrNotFound       = errors.New("workspace not found")
	ErrDuplicateID    = errors.New("a workspace with this id already exists")
	ErrWalletExists   = errors.New("team wallet already initialized")
	ErrNotFrozen      = errors.New("account is not frozen")
	ErrAlreadyFrozen  = errors.New("account is already frozen")
	ErrAlreadyBackup  = errors.New("user is already a backup admin")
	ErrNotBackupAdmin = errors.New("user is not a backup admin")
	ErrAlreadyMember  = errors.New("user is already a member")
	ErrNoEmergency    = errors.New("no emergency unfreeze on record")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("workspaces")}
}

// Create inserts a new workspace.
func (s *Store) Create(ctx context.Context, ws models.Workspace) (models.Workspace, error) {
	now := time.Now().UTC()
	ws.ID = primitive.NewObjectID()
	ws.CreatedAt = now
	ws.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, ws); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Workspace{}, ErrDuplicateID
		}
		return models.Workspace{}, err
	}
	return ws, nil
}

// Get retrieves a workspace by its external workspace_id.
func (s *Store) Get(ctx context.Context, workspaceID string) (models.Workspace, error) {
	var ws models.Workspace
	err := s.c.FindOne(ctx, bson.M{"workspace_id": workspaceID}).Decode(&ws)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Workspace{}, ErrNotFound
		}
		return models.Workspace{}, err
	}
	return ws, nil
}

// AddMember appends a member entry unless the user is already listed.
func (s *Store) AddMember(ctx context.Context, workspaceID string, m models.Member) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID, "members.user_id": bson.M{"$ne": m.UserID}},
		bson.M{
			"$push": bson.M{"members": m},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classify(ctx, workspaceID, ErrAlreadyMember)
	}
	return nil
}

// InitializeWallet assigns the account username and seeds spending
// permissions. The filter asserts the wallet has never been initialized, so
// a second attempt matches nothing and reports ErrWalletExists.
func (s *Store) InitializeWallet(ctx context.Context, workspaceID string, account models.SBDAccount) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"workspace_id": workspaceID,
			"sbd_account.account_username": bson.M{"$in": bson.A{nil, ""}},
		},
		bson.M{"$set": bson.M{
			"sbd_account": account,
			"updated_at":  time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classify(ctx, workspaceID, ErrWalletExists)
	}
	return nil
}

// SetSpendingPermission overwrites one member's spending permission entry.
// Concurrent updates for different users touch disjoint sub-paths and are
// safe against each other.
func (s *Store) SetSpendingPermission(ctx context.Context, workspaceID, userID string, perm models.SpendingPermission) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID},
		bson.M{"$set": bson.M{
			"sbd_account.spending_permissions." + userID: perm,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Freeze marks the account frozen. Fails with ErrAlreadyFrozen when another
// caller froze it first.
func (s *Store) Freeze(ctx context.Context, workspaceID, frozenBy string, at time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID, "sbd_account.is_frozen": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{
			"sbd_account.is_frozen": true,
			"sbd_account.frozen_by": frozenBy,
			"sbd_account.frozen_at": at,
			"updated_at":            at,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classify(ctx, workspaceID, ErrAlreadyFrozen)
	}
	return nil
}

// Unfreeze clears the freeze fields. Fails with ErrNotFrozen when the
// account is not currently frozen. Emergency forensic fields are untouched.
func (s *Store) Unfreeze(ctx context.Context, workspaceID string, at time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID, "sbd_account.is_frozen": true},
		bson.M{
			"$set": bson.M{
				"sbd_account.is_frozen": false,
				"updated_at":            at,
			},
			"$unset": bson.M{
				"sbd_account.frozen_by": "",
				"sbd_account.frozen_at": "",
			},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classify(ctx, workspaceID, ErrNotFrozen)
	}
	return nil
}

// EmergencyUnfreeze clears the freeze like Unfreeze and additionally stamps
// the permanent emergency recovery record.
func (s *Store) EmergencyUnfreeze(ctx context.Context, workspaceID, backupAdminID, reason string, at time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID, "sbd_account.is_frozen": true},
		bson.M{
			"$set": bson.M{
				"sbd_account.is_frozen":             false,
				"sbd_account.emergency_unfrozen":    true,
				"sbd_account.emergency_unfrozen_by": backupAdminID,
				"sbd_account.emergency_unfrozen_at": at,
				"sbd_account.emergency_reason":      reason,
				"updated_at":                        at,
			},
			"$unset": bson.M{
				"sbd_account.frozen_by": "",
				"sbd_account.frozen_at": "",
			},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classify(ctx, workspaceID, ErrNotFrozen)
	}
	return nil
}

// AcknowledgeEmergency clears the emergency forensic fields. This is the
// only path that removes them.
func (s *Store) AcknowledgeEmergency(ctx context.Context, workspaceID string, at time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID, "sbd_account.emergency_unfrozen": true},
		bson.M{
			"$set": bson.M{
				"sbd_account.emergency_unfrozen": false,
				"updated_at":                     at,
			},
			"$unset": bson.M{
				"sbd_account.emergency_unfrozen_by": "",
				"sbd_account.emergency_unfrozen_at": "",
				"sbd_account.emergency_reason":      "",
			},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classify(ctx, workspaceID, ErrNoEmergency)
	}
	return nil
}

// AddBackupAdmin designates a backup admin. Fails with ErrAlreadyBackup when
// the user is already designated.
func (s *Store) AddBackupAdmin(ctx context.Context, workspaceID, userID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID, "settings.backup_admins": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"settings.backup_admins": userID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classify(ctx, workspaceID, ErrAlreadyBackup)
	}
	return nil
}

// RemoveBackupAdmin removes a backup admin designation. Fails with
// ErrNotBackupAdmin when the user is not currently designated.
func (s *Store) RemoveBackupAdmin(ctx context.Context, workspaceID, userID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID, "settings.backup_admins": userID},
		bson.M{
			"$pull": bson.M{"settings.backup_admins": userID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classify(ctx, workspaceID, ErrNotBackupAdmin)
	}
	return nil
}

// SetAutoApprovalThreshold updates the auto-approval policy value.
func (s *Store) SetAutoApprovalThreshold(ctx context.Context, workspaceID string, threshold int64) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID},
		bson.M{"$set": bson.M{
			"settings.auto_approval_threshold": threshold,
			"updated_at":                       time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetEnabledAuthMethods replaces the workspace's enabled auth method list.
func (s *Store) SetEnabledAuthMethods(ctx context.Context, workspaceID string, methods []string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID},
		bson.M{"$set": bson.M{
			"settings.enabled_auth_methods": methods,
			"updated_at":                    time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// classify distinguishes "workspace missing" from "precondition failed" after
// a conditional update matched nothing.
func (s *Store) classify(ctx context.Context, workspaceID string, preconditionErr error) error {
	err := s.c.FindOne(ctx, bson.M{"workspace_id": workspaceID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if preconditionErr != nil {
		return preconditionErr
	}
	return ErrNotFound
}

// EnsureIndexes creates indexes for the workspaces collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_workspace_id"),
		},
		{
			Keys:    bson.D{{Key: "members.user_id", Value: 1}},
			Options: options.Index().SetName("idx_workspace_member"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
