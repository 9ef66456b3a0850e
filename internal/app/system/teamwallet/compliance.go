// internal/app/system/teamwallet/compliance.go
package teamwallet

import (
	"context"
	"errors"
	"time"

	"github.com/secondbraindb/sbdwallet/internal/app/store/audit"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auditlog"
)

// GetTeamAuditTrail returns the workspace's audit records, newest first,
// optionally bounded by an inclusive time range. Admin only.
func (m *Manager) GetTeamAuditTrail(ctx context.Context, workspaceID, adminID string, start, end *time.Time, limit int64) ([]audit.Record, error) {
	if _, err := m.requireAdmin(ctx, workspaceID, adminID); err != nil {
		return nil, err
	}
	recs, err := m.audit.Trail(ctx, workspaceID, start, end, limit)
	if err != nil {
		return nil, infraError("audit trail query", err)
	}
	return recs, nil
}

// GenerateComplianceReport builds a formatted audit export for the
// workspace. Admin only. Supported formats: json (default) and csv.
func (m *Manager) GenerateComplianceReport(ctx context.Context, workspaceID, adminID, format string, start, end *time.Time) (auditlog.Report, error) {
	if _, err := m.requireAdmin(ctx, workspaceID, adminID); err != nil {
		return auditlog.Report{}, err
	}
	report, err := m.audit.ComplianceReport(ctx, workspaceID, format, start, end)
	if err != nil {
		if errors.Is(err, auditlog.ErrUnsupportedFormat) {
			return auditlog.Report{}, wrapError(CodeValidationError, "unsupported report format", err)
		}
		return auditlog.Report{}, infraError("compliance report", err)
	}
	return report, nil
}

// VerifyAuditIntegrity recomputes a record's integrity hash and reports
// whether it matches the stored value. Admin only. A tampered record yields
// false with no error.
func (m *Manager) VerifyAuditIntegrity(ctx context.Context, workspaceID, adminID, auditID string) (bool, error) {
	if _, err := m.requireAdmin(ctx, workspaceID, adminID); err != nil {
		return false, err
	}
	ok, err := m.audit.VerifyIntegrity(ctx, auditID)
	if err != nil {
		if errors.Is(err, audit.ErrNotFound) {
			return false, newError(CodeAuditRecordNotFound, "audit record not found")
		}
		return false, infraError("audit verification", err)
	}
	return ok, nil
}
