// internal/app/system/teamwallet/manager.go

// Package teamwallet owns every business rule governing a workspace's
// shared SBD token account: initialization, token requests with
// auto-approval, admin review, spending permissions, freeze/unfreeze, and
// backup-admin emergency recovery.
//
// All state lives in single MongoDB documents mutated through conditional
// updates, so conflicting concurrent calls fail cleanly instead of racing.
// Audit writes are best-effort: an audit failure is logged at Warn and the
// business operation still succeeds.
package teamwallet

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/secondbraindb/sbdwallet/internal/app/store/audit"
	"github.com/secondbraindb/sbdwallet/internal/app/store/tokenrequests"
	"github.com/secondbraindb/sbdwallet/internal/app/store/transactions"
	workspacestore "github.com/secondbraindb/sbdwallet/internal/app/store/workspaces"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auditlog"
	"github.com/secondbraindb/sbdwallet/internal/app/system/ledger"
	"github.com/secondbraindb/sbdwallet/internal/app/system/ratelimit"
	"github.com/secondbraindb/sbdwallet/internal/app/system/txn"
	"github.com/secondbraindb/sbdwallet/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DefaultAutoApprovalThreshold applies to workspaces created without an
// explicit threshold.
const DefaultAutoApprovalThreshold = 100

// RecentTransactionLimit caps the transaction list in wallet info.
const RecentTransactionLimit = 10

// Deps bundles everything a Manager needs. Client may be nil in tests that
// never reach the approve/process path.
type Deps struct {
	Client       *mongo.Client
	Workspaces   *workspacestore.Store
	Requests     *tokenrequests.Store
	Transactions *transactions.Store
	Audit        *auditlog.Manager
	Ledger       ledger.Ledger
	Limiter      *ratelimit.Limiter
	Log          *zap.Logger
}

// Manager enforces the team wallet rules. Construct one per process with
// NewManager; it holds no per-request state and is safe for concurrent use.
type Manager struct {
	client       *mongo.Client
	workspaces   *workspacestore.Store
	requests     *tokenrequests.Store
	transactions *transactions.Store
	audit        *auditlog.Manager
	ledger       ledger.Ledger
	limiter      *ratelimit.Limiter
	log          *zap.Logger
}

// NewManager creates a wallet Manager from its injected dependencies.
func NewManager(d Deps) *Manager {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		client:       d.Client,
		workspaces:   d.Workspaces,
		requests:     d.Requests,
		transactions: d.Transactions,
		audit:        d.Audit,
		ledger:       d.Ledger,
		limiter:      d.Limiter,
		log:          log,
	}
}

// requireMember loads the workspace and checks the actor is a member.
func (m *Manager) requireMember(ctx context.Context, workspaceID, userID string) (models.Workspace, error) {
	ws, err := m.workspaces.Get(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			return models.Workspace{}, newError(CodeWorkspaceNotFound, "workspace not found")
		}
		return models.Workspace{}, infraError("workspace lookup", err)
	}
	if !ws.IsMember(userID) {
		return models.Workspace{}, newError(CodeInsufficientPermissions, "user is not a member of this workspace")
	}
	return ws, nil
}

// requireAdmin loads the workspace and checks the actor holds the admin role.
func (m *Manager) requireAdmin(ctx context.Context, workspaceID, adminID string) (models.Workspace, error) {
	ws, err := m.workspaces.Get(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			return models.Workspace{}, newError(CodeWorkspaceNotFound, "workspace not found")
		}
		return models.Workspace{}, infraError("workspace lookup", err)
	}
	if !ws.IsAdmin(adminID) {
		return models.Workspace{}, newError(CodeInsufficientPermissions, "admin role required")
	}
	return ws, nil
}

func requireInitialized(ws models.Workspace) error {
	if !ws.SBDAccount.Initialized() {
		return newError(CodeWalletNotInitialized, "team wallet has not been initialized")
	}
	return nil
}

// InitializeTeamWallet assigns the workspace's ledger account name and seeds
// spending permissions: admins get unlimited spend, everyone else none.
// Not idempotent: a second call reports WALLET_ALREADY_EXISTS.
func (m *Manager) InitializeTeamWallet(ctx context.Context, workspaceID, adminID string) (InitializeResult, error) {
	ws, err := m.requireAdmin(ctx, workspaceID, adminID)
	if err != nil {
		return InitializeResult{}, err
	}
	if ws.SBDAccount.Initialized() {
		return InitializeResult{}, newError(CodeWalletAlreadyExists, "team wallet already initialized")
	}

	now := time.Now().UTC()
	account := models.SBDAccount{
		AccountUsername:     newAccountUsername(),
		SpendingPermissions: make(map[string]models.SpendingPermission, len(ws.Members)),
	}
	for _, member := range ws.Members {
		perm := models.SpendingPermission{UpdatedBy: adminID, UpdatedAt: now}
		if member.Role == models.RoleAdmin {
			perm.CanSpend = true
			perm.SpendingLimit = -1
		}
		account.SpendingPermissions[member.UserID] = perm
	}

	if err := m.workspaces.InitializeWallet(ctx, workspaceID, account); err != nil {
		switch {
		case errors.Is(err, workspacestore.ErrWalletExists):
			return InitializeResult{}, newError(CodeWalletAlreadyExists, "team wallet already initialized")
		case errors.Is(err, workspacestore.ErrNotFound):
			return InitializeResult{}, newError(CodeWorkspaceNotFound, "workspace not found")
		default:
			return InitializeResult{}, infraError("wallet initialization", err)
		}
	}

	audited := m.auditTransaction(ctx, auditlog.TransactionEvent{
		TeamID:      workspaceID,
		EventType:   audit.EventWalletInitialized,
		Actor:       adminID,
		FromAccount: account.AccountUsername,
	})

	m.log.Info("team wallet initialized",
		zap.String("workspace_id", workspaceID),
		zap.String("account_username", account.AccountUsername),
		zap.String("admin_id", adminID),
	)

	return InitializeResult{
		WorkspaceID:     workspaceID,
		AccountUsername: account.AccountUsername,
		MembersSeeded:   len(account.SpendingPermissions),
		AuditRecorded:   audited,
	}, nil
}

// GetTeamWalletInfo returns the live balance, freeze state, the caller's own
// spending entry, and the most recent transactions. A ledger outage degrades
// the balance to 0 with a warning rather than failing the read.
func (m *Manager) GetTeamWalletInfo(ctx context.Context, workspaceID, userID string) (WalletInfo, error) {
	ws, err := m.requireMember(ctx, workspaceID, userID)
	if err != nil {
		return WalletInfo{}, err
	}
	if err := requireInitialized(ws); err != nil {
		return WalletInfo{}, err
	}

	balance, err := m.ledger.Balance(ctx, ws.SBDAccount.AccountUsername)
	if err != nil {
		m.log.Warn("ledger balance lookup failed, reporting 0",
			zap.String("workspace_id", workspaceID),
			zap.String("account_username", ws.SBDAccount.AccountUsername),
			zap.Error(err),
		)
		balance = 0
	}

	recent, err := m.transactions.ListRecent(ctx, workspaceID, RecentTransactionLimit)
	if err != nil {
		return WalletInfo{}, infraError("transaction history", err)
	}

	return WalletInfo{
		WorkspaceID:           workspaceID,
		AccountUsername:       ws.SBDAccount.AccountUsername,
		Balance:               balance,
		IsFrozen:              ws.SBDAccount.IsFrozen,
		FrozenBy:              ws.SBDAccount.FrozenBy,
		FrozenAt:              ws.SBDAccount.FrozenAt,
		EmergencyUnfrozen:     ws.SBDAccount.EmergencyUnfrozen,
		AutoApprovalThreshold: ws.Settings.AutoApprovalThreshold,
		UserPermissions:       ws.SBDAccount.SpendingPermissions[userID],
		RecentTransactions:    recent,
	}, nil
}

func newAccountUsername() string {
	return "sbd_team_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// process completes an approved request: stamps processed_at (exactly once),
// executes the ledger transfer, and appends the transaction record. Callers
// run it under txn.WithTransaction so the Mongo writes commit together.
//
// The transfer is keyed on the request ID. A transaction retry or a
// reconciliation sweep replays the same key and the ledger returns the
// original reference instead of moving tokens a second time.
func (m *Manager) process(ctx context.Context, accountUsername string, req models.TokenRequest, processorID string) (models.Transaction, error) {
	now := time.Now().UTC()

	if err := m.requests.MarkProcessed(ctx, req.RequestID, now); err != nil {
		if errors.Is(err, tokenrequests.ErrAlreadyProcessed) {
			return models.Transaction{}, wrapError(CodeValidationError, "token request has already been processed", err)
		}
		if errors.Is(err, tokenrequests.ErrNotFound) {
			return models.Transaction{}, newError(CodeTokenRequestNotFound, "token request not found")
		}
		return models.Transaction{}, infraError("request processing", err)
	}

	ref, err := m.ledger.Transfer(ctx, accountUsername, req.RequesterID, req.Amount, "token request "+req.RequestID, req.RequestID)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return models.Transaction{}, wrapError(CodeInsufficientBalance, "team account balance is insufficient", err)
		}
		return models.Transaction{}, infraError("ledger transfer", err)
	}

	record, err := m.transactions.Insert(ctx, models.Transaction{
		TransactionID: uuid.NewString(),
		WorkspaceID:   req.WorkspaceID,
		Type:          models.TxnTokenGrant,
		Amount:        req.Amount,
		FromAccount:   accountUsername,
		ToUser:        req.RequesterID,
		ProcessedBy:   processorID,
		Description:   req.Reason,
		RequestID:     req.RequestID,
		LedgerRef:     ref,
		CreatedAt:     now,
	})
	if err != nil {
		return models.Transaction{}, infraError("transaction record", err)
	}
	return record, nil
}

// runProcess wraps process in a Mongo transaction when one is available.
func (m *Manager) runProcess(ctx context.Context, accountUsername string, req models.TokenRequest, processorID string) (models.Transaction, error) {
	var record models.Transaction
	run := func(ctx context.Context) error {
		var err error
		record, err = m.process(ctx, accountUsername, req, processorID)
		return err
	}
	if m.client == nil {
		return record, run(ctx)
	}
	return record, txn.WithTransaction(ctx, m.client, m.log, run)
}

// --- best-effort audit helpers ---

func (m *Manager) auditTransaction(ctx context.Context, ev auditlog.TransactionEvent) bool {
	if m.audit == nil {
		return false
	}
	if _, err := m.audit.LogTransaction(ctx, ev); err != nil {
		m.warnAuditFailure(ev.TeamID, ev.EventType, err)
		return false
	}
	return true
}

func (m *Manager) auditPermissionChange(ctx context.Context, ev auditlog.PermissionChangeEvent) bool {
	if m.audit == nil {
		return false
	}
	if _, err := m.audit.LogPermissionChange(ctx, ev); err != nil {
		m.warnAuditFailure(ev.TeamID, ev.EventType, err)
		return false
	}
	return true
}

func (m *Manager) auditFreeze(ctx context.Context, ev auditlog.FreezeEvent) bool {
	if m.audit == nil {
		return false
	}
	if _, err := m.audit.LogAccountFreeze(ctx, ev); err != nil {
		m.warnAuditFailure(ev.TeamID, "account_freeze", err)
		return false
	}
	return true
}

// Audit writes never fail the triggering operation; the trail is
// best-effort and compliance consumers are told so via AuditRecorded.
func (m *Manager) warnAuditFailure(teamID, eventType string, err error) {
	m.log.Warn("audit write failed, continuing",
		zap.String("team_id", teamID),
		zap.String("event_type", eventType),
		zap.Error(err),
	)
}
