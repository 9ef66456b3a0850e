package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member roles within a workspace.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// Member is a single entry in a workspace's member list.
type Member struct {
	UserID string `bson:"user_id" json:"user_id"`
	Role   string `bson:"role" json:"role"`
}

// SpendingPermission describes what a member may spend from the team account.
// SpendingLimit semantics: -1 unlimited, 0 none, >0 capped at that amount.
type SpendingPermission struct {
	CanSpend      bool      `bson:"can_spend" json:"can_spend"`
	SpendingLimit int64     `bson:"spending_limit" json:"spending_limit"`
	UpdatedBy     string    `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	UpdatedAt     time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// SBDAccount is the embedded team token account. AccountUsername is assigned
// exactly once at wallet initialization and is immutable thereafter.
//
// The emergency_* fields are a permanent forensic record: a normal
// freeze/unfreeze cycle never clears them. Only an explicit
// acknowledge-emergency action by an admin resets them.
type SBDAccount struct {
	AccountUsername     string                        `bson:"account_username,omitempty" json:"account_username,omitempty"`
	SpendingPermissions map[string]SpendingPermission `bson:"spending_permissions,omitempty" json:"spending_permissions,omitempty"`

	IsFrozen bool       `bson:"is_frozen" json:"is_frozen"`
	FrozenBy string     `bson:"frozen_by,omitempty" json:"frozen_by,omitempty"`
	FrozenAt *time.Time `bson:"frozen_at,omitempty" json:"frozen_at,omitempty"`

	EmergencyUnfrozen   bool       `bson:"emergency_unfrozen,omitempty" json:"emergency_unfrozen,omitempty"`
	EmergencyUnfrozenBy string     `bson:"emergency_unfrozen_by,omitempty" json:"emergency_unfrozen_by,omitempty"`
	EmergencyUnfrozenAt *time.Time `bson:"emergency_unfrozen_at,omitempty" json:"emergency_unfrozen_at,omitempty"`
	EmergencyReason     string     `bson:"emergency_reason,omitempty" json:"emergency_reason,omitempty"`
}

// Initialized reports whether the team wallet has been set up.
func (a SBDAccount) Initialized() bool {
	return a.AccountUsername != ""
}

// WorkspaceSettings holds per-workspace wallet policy.
type WorkspaceSettings struct {
	// BackupAdmins are user IDs designated for emergency recovery. They are
	// distinct from members with the admin role.
	BackupAdmins []string `bson:"backup_admins,omitempty" json:"backup_admins,omitempty"`

	// AutoApprovalThreshold: token requests at or below this amount are
	// approved without admin review.
	AutoApprovalThreshold int64 `bson:"auto_approval_threshold" json:"auto_approval_threshold"`

	// EnabledAuthMethods limits how members of this workspace may
	// authenticate. Empty means all methods are enabled.
	EnabledAuthMethods []string `bson:"enabled_auth_methods,omitempty" json:"enabled_auth_methods,omitempty"`
}

// Workspace is the aggregate root for the team wallet. The embedded
// sbd_account and settings are mutated only through single-document updates
// whose filters assert the prior state, so conflicting concurrent calls lose
// deterministically.
type Workspace struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"-"`

	// WorkspaceID is the opaque external identifier callers use.
	WorkspaceID string `bson:"workspace_id" json:"workspace_id"`

	Name    string   `bson:"name" json:"name"`
	Members []Member `bson:"members" json:"members"`

	SBDAccount SBDAccount        `bson:"sbd_account" json:"sbd_account"`
	Settings   WorkspaceSettings `bson:"settings" json:"settings"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// MemberRole returns the role of userID and whether they are a member.
func (w Workspace) MemberRole(userID string) (string, bool) {
	for _, m := range w.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

// IsMember reports whether userID is in the member list.
func (w Workspace) IsMember(userID string) bool {
	_, ok := w.MemberRole(userID)
	return ok
}

// IsAdmin reports whether userID is a member with the admin role.
func (w Workspace) IsAdmin(userID string) bool {
	role, ok := w.MemberRole(userID)
	return ok && role == RoleAdmin
}

// IsBackupAdmin reports whether userID is designated for emergency recovery.
// Backup-admin status is independent of the member's role.
func (w Workspace) IsBackupAdmin(userID string) bool {
	for _, id := range w.Settings.BackupAdmins {
		if id == userID {
			return true
		}
	}
	return false
}
