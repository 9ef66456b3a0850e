// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/secondbraindb/sbdwallet/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateWorkspace creates a workspace with the given members. The wallet is
// uninitialized; use CreateWorkspaceWithWallet when a ready account is
// needed.
func (f *Fixtures) CreateWorkspace(ctx context.Context, name string, members ...models.Member) models.Workspace {
	f.t.Helper()

	now := time.Now().UTC()
	ws := models.Workspace{
		ID:          primitive.NewObjectID(),
		WorkspaceID: uuid.NewString(),
		Name:        name,
		Members:     members,
		Settings: models.WorkspaceSettings{
			AutoApprovalThreshold: 100,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("workspaces").InsertOne(ctx, ws); err != nil {
		f.t.Fatalf("failed to create test workspace: %v", err)
	}
	return ws
}

// CreateWorkspaceWithWallet creates a workspace whose wallet is already
// initialized. Admins get unlimited spending permissions, other members
// none, matching what wallet initialization produces.
func (f *Fixtures) CreateWorkspaceWithWallet(ctx context.Context, name string, members ...models.Member) models.Workspace {
	f.t.Helper()

	now := time.Now().UTC()
	perms := make(map[string]models.SpendingPermission, len(members))
	for _, m := range members {
		p := models.SpendingPermission{UpdatedBy: "fixture", UpdatedAt: now}
		if m.Role == models.RoleAdmin {
			p.CanSpend = true
			p.SpendingLimit = -1
		}
		perms[m.UserID] = p
	}

	ws := models.Workspace{
		ID:          primitive.NewObjectID(),
		WorkspaceID: uuid.NewString(),
		Name:        name,
		Members:     members,
		SBDAccount: models.SBDAccount{
			AccountUsername:     "sbd_team_" + uuid.NewString()[:12],
			SpendingPermissions: perms,
		},
		Settings: models.WorkspaceSettings{
			AutoApprovalThreshold: 100,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("workspaces").InsertOne(ctx, ws); err != nil {
		f.t.Fatalf("failed to create test workspace: %v", err)
	}
	return ws
}

// CreateTokenRequest inserts a token request document directly.
func (f *Fixtures) CreateTokenRequest(ctx context.Context, workspaceID, requesterID string, amount int64, status string) models.TokenRequest {
	f.t.Helper()

	now := time.Now().UTC()
	req := models.TokenRequest{
		ID:          primitive.NewObjectID(),
		RequestID:   uuid.NewString(),
		WorkspaceID: workspaceID,
		RequesterID: requesterID,
		Amount:      amount,
		Reason:      "fixture request reason",
		Status:      status,
		CreatedAt:   now,
		ExpiresAt:   now.Add(models.RequestTTL),
	}

	if _, err := f.db.Collection("team_token_requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("failed to create test token request: %v", err)
	}
	return req
}

// Admin returns a member entry with the admin role and a fresh user ID.
func Admin() models.Member {
	return models.Member{UserID: "admin-" + uuid.NewString()[:8], Role: models.RoleAdmin}
}

// Member returns a member entry with the member role and a fresh user ID.
func Member() models.Member {
	return models.Member{UserID: "member-" + uuid.NewString()[:8], Role: models.RoleMember}
}

// Viewer returns a member entry with the viewer role and a fresh user ID.
func Viewer() models.Member {
	return models.Member{UserID: "viewer-" + uuid.NewString()[:8], Role: models.RoleViewer}
}
