// internal/app/system/teamwallet/types.go
package teamwallet

import (
	"time"

	"github.com/secondbraindb/sbdwallet/internal/domain/models"
)

// Every result carries AuditRecorded: audit writes are best-effort and
// never fail the triggering operation, so this is the caller's only signal
// that the trail may be incomplete.

// InitializeResult is returned by InitializeTeamWallet.
type InitializeResult struct {
	WorkspaceID     string `json:"workspace_id"`
	AccountUsername string `json:"account_username"`
	MembersSeeded   int    `json:"members_seeded"`
	AuditRecorded   bool   `json:"audit_recorded"`
}

// WalletInfo is returned by GetTeamWalletInfo.
type WalletInfo struct {
	WorkspaceID     string `json:"workspace_id"`
	AccountUsername string `json:"account_username"`

	// Balance is the live value from the external ledger; it degrades to 0
	// when the ledger is unreachable.
	Balance int64 `json:"balance"`

	IsFrozen          bool       `json:"is_frozen"`
	FrozenBy          string     `json:"frozen_by,omitempty"`
	FrozenAt          *time.Time `json:"frozen_at,omitempty"`
	EmergencyUnfrozen bool       `json:"emergency_unfrozen,omitempty"`

	AutoApprovalThreshold int64 `json:"auto_approval_threshold"`

	// UserPermissions is the requesting member's own spending entry.
	UserPermissions models.SpendingPermission `json:"user_permissions"`

	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

// TokenRequestResult is returned by CreateTokenRequest.
type TokenRequestResult struct {
	RequestID    string    `json:"request_id"`
	WorkspaceID  string    `json:"workspace_id"`
	Status       string    `json:"status"`
	AutoApproved bool      `json:"auto_approved"`
	Amount       int64     `json:"amount"`
	ExpiresAt    time.Time `json:"expires_at"`

	// TransactionID is set when the request was auto-approved and
	// processed in the same call.
	TransactionID string `json:"transaction_id,omitempty"`

	AuditRecorded bool `json:"audit_recorded"`
}

// ReviewResult is returned by ReviewTokenRequest.
type ReviewResult struct {
	RequestID  string    `json:"request_id"`
	Status     string    `json:"status"`
	ReviewedBy string    `json:"reviewed_by"`
	ReviewedAt time.Time `json:"reviewed_at"`

	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`

	AuditRecorded bool `json:"audit_recorded"`
}

// PermissionsResult is returned by UpdateSpendingPermissions.
type PermissionsResult struct {
	WorkspaceID   string                    `json:"workspace_id"`
	UserID        string                    `json:"user_id"`
	Permissions   models.SpendingPermission `json:"permissions"`
	AuditRecorded bool                      `json:"audit_recorded"`
}

// FreezeResult is returned by Freeze/UnfreezeTeamAccount.
type FreezeResult struct {
	WorkspaceID   string    `json:"workspace_id"`
	IsFrozen      bool      `json:"is_frozen"`
	ActedBy       string    `json:"acted_by"`
	ActedAt       time.Time `json:"acted_at"`
	AuditRecorded bool      `json:"audit_recorded"`
}

// EmergencyUnfreezeResult is returned by EmergencyUnfreezeAccount.
type EmergencyUnfreezeResult struct {
	WorkspaceID   string    `json:"workspace_id"`
	UnfrozenBy    string    `json:"unfrozen_by"`
	UnfrozenAt    time.Time `json:"unfrozen_at"`
	Reason        string    `json:"reason"`
	AuditRecorded bool      `json:"audit_recorded"`
}

// BackupAdminResult is returned by Designate/RemoveBackupAdmin.
type BackupAdminResult struct {
	WorkspaceID   string `json:"workspace_id"`
	UserID        string `json:"user_id"`
	Designated    bool   `json:"designated"`
	AuditRecorded bool   `json:"audit_recorded"`
}

// SpendingPermissionInput is the caller-supplied permission update.
// SpendingLimit: -1 unlimited, 0 none, >0 capped.
type SpendingPermissionInput struct {
	CanSpend      bool  `json:"can_spend"`
	SpendingLimit int64 `json:"spending_limit"`
}
