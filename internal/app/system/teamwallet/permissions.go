// internal/app/system/teamwallet/permissions.go
package teamwallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/secondbraindb/sbdwallet/internal/app/store/audit"
	workspacestore "github.com/secondbraindb/sbdwallet/internal/app/store/workspaces"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auditlog"
	"github.com/secondbraindb/sbdwallet/internal/domain/models"
	"go.uber.org/zap"
)

// UpdateSpendingPermissions overwrites one member's spending entry. Admin
// only; the target must be a workspace member. SpendingLimit: -1 unlimited,
// 0 none, >0 capped.
func (m *Manager) UpdateSpendingPermissions(ctx context.Context, workspaceID, adminID, targetUserID string, input SpendingPermissionInput) (PermissionsResult, error) {
	ws, err := m.requireAdmin(ctx, workspaceID, adminID)
	if err != nil {
		return PermissionsResult{}, err
	}
	if err := requireInitialized(ws); err != nil {
		return PermissionsResult{}, err
	}
	if !ws.IsMember(targetUserID) {
		return PermissionsResult{}, newError(CodeUserNotMember, "target user is not a member of this workspace")
	}
	if input.SpendingLimit < -1 {
		return PermissionsResult{}, newError(CodeValidationError, "spending limit must be -1, 0, or a positive amount")
	}

	perm := models.SpendingPermission{
		CanSpend:      input.CanSpend,
		SpendingLimit: input.SpendingLimit,
		UpdatedBy:     adminID,
		UpdatedAt:     time.Now().UTC(),
	}
	if err := m.workspaces.SetSpendingPermission(ctx, workspaceID, targetUserID, perm); err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			return PermissionsResult{}, newError(CodeWorkspaceNotFound, "workspace not found")
		}
		return PermissionsResult{}, infraError("permission update", err)
	}

	audited := m.auditPermissionChange(ctx, auditlog.PermissionChangeEvent{
		TeamID:     workspaceID,
		EventType:  audit.EventPermissionsUpdated,
		Actor:      adminID,
		TargetUser: targetUserID,
		Change:     fmt.Sprintf("can_spend=%t limit=%d", perm.CanSpend, perm.SpendingLimit),
	})

	m.log.Info("spending permissions updated",
		zap.String("workspace_id", workspaceID),
		zap.String("admin_id", adminID),
		zap.String("target_user_id", targetUserID),
		zap.Bool("can_spend", perm.CanSpend),
		zap.Int64("spending_limit", perm.SpendingLimit),
	)

	return PermissionsResult{
		WorkspaceID:   workspaceID,
		UserID:        targetUserID,
		Permissions:   perm,
		AuditRecorded: audited,
	}, nil
}

// DesignateBackupAdmin marks a member as eligible for emergency recovery.
// Admin only; the target must be a member. Designation is independent of the
// member's role.
func (m *Manager) DesignateBackupAdmin(ctx context.Context, workspaceID, adminID, targetUserID string) (BackupAdminResult, error) {
	ws, err := m.requireAdmin(ctx, workspaceID, adminID)
	if err != nil {
		return BackupAdminResult{}, err
	}
	if !ws.IsMember(targetUserID) {
		return BackupAdminResult{}, newError(CodeUserNotMember, "target user is not a member of this workspace")
	}

	if err := m.workspaces.AddBackupAdmin(ctx, workspaceID, targetUserID); err != nil {
		switch {
		case errors.Is(err, workspacestore.ErrAlreadyBackup):
			return BackupAdminResult{}, newError(CodeValidationError, "user is already a backup admin")
		case errors.Is(err, workspacestore.ErrNotFound):
			return BackupAdminResult{}, newError(CodeWorkspaceNotFound, "workspace not found")
		default:
			return BackupAdminResult{}, infraError("backup admin designation", err)
		}
	}

	audited := m.auditPermissionChange(ctx, auditlog.PermissionChangeEvent{
		TeamID:     workspaceID,
		EventType:  audit.EventPermissionChange,
		Actor:      adminID,
		TargetUser: targetUserID,
		Change:     "backup admin designated",
	})

	m.log.Info("backup admin designated",
		zap.String("workspace_id", workspaceID),
		zap.String("admin_id", adminID),
		zap.String("target_user_id", targetUserID),
	)

	return BackupAdminResult{
		WorkspaceID:   workspaceID,
		UserID:        targetUserID,
		Designated:    true,
		AuditRecorded: audited,
	}, nil
}

// RemoveBackupAdmin revokes a member's emergency recovery designation.
// Admin only.
func (m *Manager) RemoveBackupAdmin(ctx context.Context, workspaceID, adminID, targetUserID string) (BackupAdminResult, error) {
	if _, err := m.requireAdmin(ctx, workspaceID, adminID); err != nil {
		return BackupAdminResult{}, err
	}

	if err := m.workspaces.RemoveBackupAdmin(ctx, workspaceID, targetUserID); err != nil {
		switch {
		case errors.Is(err, workspacestore.ErrNotBackupAdmin):
			return BackupAdminResult{}, newError(CodeValidationError, "user is not a backup admin")
		case errors.Is(err, workspacestore.ErrNotFound):
			return BackupAdminResult{}, newError(CodeWorkspaceNotFound, "workspace not found")
		default:
			return BackupAdminResult{}, infraError("backup admin removal", err)
		}
	}

	audited := m.auditPermissionChange(ctx, auditlog.PermissionChangeEvent{
		TeamID:     workspaceID,
		EventType:  audit.EventPermissionChange,
		Actor:      adminID,
		TargetUser: targetUserID,
		Change:     "backup admin removed",
	})

	m.log.Info("backup admin removed",
		zap.String("workspace_id", workspaceID),
		zap.String("admin_id", adminID),
		zap.String("target_user_id", targetUserID),
	)

	return BackupAdminResult{
		WorkspaceID:   workspaceID,
		UserID:        targetUserID,
		Designated:    false,
		AuditRecorded: audited,
	}, nil
}
