// internal/app/system/teamwallet/freeze.go
package teamwallet

import (
	"context"
	"errors"
	"time"

	"github.com/secondbraindb/sbdwallet/internal/app/store/audit"
	workspacestore "github.com/secondbraindb/sbdwallet/internal/app/store/workspaces"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auditlog"
	"github.com/secondbraindb/sbdwallet/internal/app/system/inputval"
	"go.uber.org/zap"
)

// FreezeTeamAccount halts all spending from the team account. Admin only.
// Freezing an already-frozen account fails with TEAM_WALLET_ERROR.
func (m *Manager) FreezeTeamAccount(ctx context.Context, workspaceID, adminID, reason string) (FreezeResult, error) {
	ws, err := m.requireAdmin(ctx, workspaceID, adminID)
	if err != nil {
		return FreezeResult{}, err
	}
	if err := requireInitialized(ws); err != nil {
		return FreezeResult{}, err
	}
	reason = inputval.SanitizeText(reason)

	now := time.Now().UTC()
	if err := m.workspaces.Freeze(ctx, workspaceID, adminID, now); err != nil {
		switch {
		case errors.Is(err, workspacestore.ErrAlreadyFrozen):
			return FreezeResult{}, newError(CodeTeamWalletError, "account is already frozen")
		case errors.Is(err, workspacestore.ErrNotFound):
			return FreezeResult{}, newError(CodeWorkspaceNotFound, "workspace not found")
		default:
			return FreezeResult{}, infraError("account freeze", err)
		}
	}

	audited := m.auditFreeze(ctx, auditlog.FreezeEvent{
		TeamID: workspaceID,
		Actor:  adminID,
		Action: "freeze",
		Reason: reason,
	})

	m.log.Info("team account frozen",
		zap.String("workspace_id", workspaceID),
		zap.String("admin_id", adminID),
	)

	return FreezeResult{
		WorkspaceID:   workspaceID,
		IsFrozen:      true,
		ActedBy:       adminID,
		ActedAt:       now,
		AuditRecorded: audited,
	}, nil
}

// UnfreezeTeamAccount resumes spending. Admin only. Unfreezing an account
// that is not frozen fails with TEAM_WALLET_ERROR. Emergency forensic fields
// survive a normal unfreeze.
func (m *Manager) UnfreezeTeamAccount(ctx context.Context, workspaceID, adminID string) (FreezeResult, error) {
	ws, err := m.requireAdmin(ctx, workspaceID, adminID)
	if err != nil {
		return FreezeResult{}, err
	}
	if err := requireInitialized(ws); err != nil {
		return FreezeResult{}, err
	}

	now := time.Now().UTC()
	if err := m.workspaces.Unfreeze(ctx, workspaceID, now); err != nil {
		switch {
		case errors.Is(err, workspacestore.ErrNotFrozen):
			return FreezeResult{}, newError(CodeTeamWalletError, "account is not frozen")
		case errors.Is(err, workspacestore.ErrNotFound):
			return FreezeResult{}, newError(CodeWorkspaceNotFound, "workspace not found")
		default:
			return FreezeResult{}, infraError("account unfreeze", err)
		}
	}

	audited := m.auditFreeze(ctx, auditlog.FreezeEvent{
		TeamID: workspaceID,
		Actor:  adminID,
		Action: "unfreeze",
	})

	m.log.Info("team account unfrozen",
		zap.String("workspace_id", workspaceID),
		zap.String("admin_id", adminID),
	)

	return FreezeResult{
		WorkspaceID:   workspaceID,
		IsFrozen:      false,
		ActedBy:       adminID,
		ActedAt:       now,
		AuditRecorded: audited,
	}, nil
}

// EmergencyUnfreezeAccount lets a designated backup admin unfreeze the
// account when no regular admin is reachable. The caller needs backup-admin
// designation, not the admin role. The action leaves a permanent forensic
// record that only AcknowledgeEmergency clears.
func (m *Manager) EmergencyUnfreezeAccount(ctx context.Context, workspaceID, backupAdminID, reason string) (EmergencyUnfreezeResult, error) {
	ws, err := m.workspaces.Get(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			return EmergencyUnfreezeResult{}, newError(CodeWorkspaceNotFound, "workspace not found")
		}
		return EmergencyUnfreezeResult{}, infraError("workspace lookup", err)
	}
	if !ws.IsBackupAdmin(backupAdminID) {
		return EmergencyUnfreezeResult{}, newError(CodeInsufficientPermissions, "backup admin designation required")
	}
	if err := requireInitialized(ws); err != nil {
		return EmergencyUnfreezeResult{}, err
	}

	reason = inputval.SanitizeText(reason)
	if !inputval.ValidReason(reason) {
		return EmergencyUnfreezeResult{}, newError(CodeValidationError, "emergency reason must be at least 5 characters")
	}

	now := time.Now().UTC()
	if err := m.workspaces.EmergencyUnfreeze(ctx, workspaceID, backupAdminID, reason, now); err != nil {
		switch {
		case errors.Is(err, workspacestore.ErrNotFrozen):
			return EmergencyUnfreezeResult{}, newError(CodeTeamWalletError, "account is not frozen")
		case errors.Is(err, workspacestore.ErrNotFound):
			return EmergencyUnfreezeResult{}, newError(CodeWorkspaceNotFound, "workspace not found")
		default:
			return EmergencyUnfreezeResult{}, infraError("emergency unfreeze", err)
		}
	}

	audited := m.auditFreeze(ctx, auditlog.FreezeEvent{
		TeamID:    workspaceID,
		Actor:     backupAdminID,
		Action:    "emergency_unfreeze",
		Reason:    reason,
		Emergency: true,
	})

	// Warn, not Info: emergency recovery bypasses normal admin control and
	// operators should see it.
	m.log.Warn("emergency unfreeze performed",
		zap.String("workspace_id", workspaceID),
		zap.String("backup_admin_id", backupAdminID),
		zap.String("reason", reason),
	)

	return EmergencyUnfreezeResult{
		WorkspaceID:   workspaceID,
		UnfrozenBy:    backupAdminID,
		UnfrozenAt:    now,
		Reason:        reason,
		AuditRecorded: audited,
	}, nil
}

// AcknowledgeEmergency clears the emergency forensic fields after an admin
// has reviewed the recovery. Admin only.
func (m *Manager) AcknowledgeEmergency(ctx context.Context, workspaceID, adminID string) (FreezeResult, error) {
	ws, err := m.requireAdmin(ctx, workspaceID, adminID)
	if err != nil {
		return FreezeResult{}, err
	}
	if err := requireInitialized(ws); err != nil {
		return FreezeResult{}, err
	}

	now := time.Now().UTC()
	if err := m.workspaces.AcknowledgeEmergency(ctx, workspaceID, now); err != nil {
		switch {
		case errors.Is(err, workspacestore.ErrNoEmergency):
			return FreezeResult{}, newError(CodeTeamWalletError, "no emergency unfreeze on record")
		case errors.Is(err, workspacestore.ErrNotFound):
			return FreezeResult{}, newError(CodeWorkspaceNotFound, "workspace not found")
		default:
			return FreezeResult{}, infraError("emergency acknowledgement", err)
		}
	}

	audited := m.auditPermissionChange(ctx, auditlog.PermissionChangeEvent{
		TeamID:     workspaceID,
		EventType:  audit.EventPermissionChange,
		Actor:      adminID,
		TargetUser: ws.SBDAccount.EmergencyUnfrozenBy,
		Change:     "emergency unfreeze acknowledged",
	})

	m.log.Info("emergency unfreeze acknowledged",
		zap.String("workspace_id", workspaceID),
		zap.String("admin_id", adminID),
	)

	return FreezeResult{
		WorkspaceID:   workspaceID,
		IsFrozen:      ws.SBDAccount.IsFrozen,
		ActedBy:       adminID,
		ActedAt:       now,
		AuditRecorded: audited,
	}, nil
}
