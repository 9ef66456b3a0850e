// internal/app/system/auditlog/auditlog.go

// Package auditlog is the audit trail engine for team wallets: an
// append-only, integrity-hashed ledger of every wallet-affecting event.
// It has no dependency on the wallet manager; the wallet manager calls it
// best-effort.
package auditlog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/secondbraindb/sbdwallet/internal/app/store/audit"
	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned by ComplianceReport for report types
// outside the supported set.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// Result is returned from every log method.
type Result struct {
	AuditID string `json:"audit_id"`

	// ComplianceEligible is true when the record carries every field a
	// regulatory export requires.
	ComplianceEligible bool `json:"compliance_eligible"`
}

// TransactionEvent captures a balance-affecting event.
type TransactionEvent struct {
	TeamID      string
	EventType   string // e.g. token_request_created
	Actor       string
	Amount      int64
	FromAccount string
	ToAccount   string
	Reason      string
	RequestID   string
}

// PermissionChangeEvent captures a permission or designation change.
type PermissionChangeEvent struct {
	TeamID     string
	EventType  string // permissions_updated or permission_change
	Actor      string
	TargetUser string
	Change     string
}

// FreezeEvent captures a freeze, unfreeze, or emergency unfreeze.
type FreezeEvent struct {
	TeamID    string
	Actor     string
	Action    string // freeze, unfreeze, emergency_unfreeze
	Reason    string
	Emergency bool
}

// Manager writes and verifies audit records. It also mirrors every event to
// zap so operators can follow the trail without querying the collection.
type Manager struct {
	store *audit.Store
	log   *zap.Logger
}

// New creates an audit Manager.
func New(store *audit.Store, logger *zap.Logger) *Manager {
	return &Manager{store: store, log: logger}
}

// LogTransaction records a balance-affecting event.
func (m *Manager) LogTransaction(ctx context.Context, ev TransactionEvent) (Result, error) {
	rec := audit.Record{
		AuditID:     uuid.NewString(),
		TeamID:      ev.TeamID,
		EventType:   ev.EventType,
		Actor:       ev.Actor,
		Amount:      ev.Amount,
		FromAccount: ev.FromAccount,
		ToAccount:   ev.ToAccount,
		Reason:      ev.Reason,
	}
	if ev.RequestID != "" {
		rec.Details = map[string]string{"request_id": ev.RequestID}
	}
	rec.ComplianceEligible = ev.TeamID != "" && ev.Actor != "" && ev.Amount != 0 && ev.FromAccount != ""
	return m.insert(ctx, rec)
}

// LogPermissionChange records a permission or designation change.
func (m *Manager) LogPermissionChange(ctx context.Context, ev PermissionChangeEvent) (Result, error) {
	rec := audit.Record{
		AuditID:    uuid.NewString(),
		TeamID:     ev.TeamID,
		EventType:  ev.EventType,
		Actor:      ev.Actor,
		TargetUser: ev.TargetUser,
		Details:    map[string]string{"change": ev.Change},
	}
	rec.ComplianceEligible = ev.TeamID != "" && ev.Actor != "" && ev.TargetUser != ""
	return m.insert(ctx, rec)
}

// LogAccountFreeze records a freeze action. Emergency unfreezes get their
// own event type so compliance queries can isolate them.
func (m *Manager) LogAccountFreeze(ctx context.Context, ev FreezeEvent) (Result, error) {
	eventType := audit.EventAccountFreeze
	if ev.Emergency {
		eventType = audit.EventEmergencyUnfreeze
	}
	rec := audit.Record{
		AuditID:   uuid.NewString(),
		TeamID:    ev.TeamID,
		EventType: eventType,
		Actor:     ev.Actor,
		Action:    ev.Action,
		Reason:    ev.Reason,
	}
	rec.ComplianceEligible = ev.TeamID != "" && ev.Actor != "" && ev.Action != ""
	return m.insert(ctx, rec)
}

func (m *Manager) insert(ctx context.Context, rec audit.Record) (Result, error) {
	stored, err := m.store.Insert(ctx, rec)
	if err != nil {
		return Result{}, err
	}
	m.log.Info("audit record written",
		zap.String("audit_id", stored.AuditID),
		zap.String("team_id", stored.TeamID),
		zap.String("event_type", stored.EventType),
		zap.Bool("compliance_eligible", stored.ComplianceEligible),
	)
	return Result{AuditID: stored.AuditID, ComplianceEligible: stored.ComplianceEligible}, nil
}

// VerifyIntegrity recomputes the stored record's hash and reports whether it
// matches. A mismatch returns false, not an error; errors are reserved for
// lookup failures.
func (m *Manager) VerifyIntegrity(ctx context.Context, auditID string) (bool, error) {
	rec, err := m.store.Get(ctx, auditID)
	if err != nil {
		return false, err
	}
	return rec.Verified(), nil
}

// Trail returns a team's audit records, optionally bounded by an inclusive
// timestamp range, newest first, capped at limit (default 100).
func (m *Manager) Trail(ctx context.Context, teamID string, start, end *time.Time, limit int64) ([]audit.Record, error) {
	return m.store.Query(ctx, audit.QueryFilter{
		TeamID: teamID,
		Start:  start,
		End:    end,
		Limit:  limit,
	})
}

// ReportSummary aggregates a compliance report's event set.
type ReportSummary struct {
	TotalEvents        int            `json:"total_events"`
	EventsByType       map[string]int `json:"events_by_type"`
	ComplianceEligible int            `json:"compliance_eligible"`
}

// Report is a compliance export for a team.
type Report struct {
	TeamID      string         `json:"team_id"`
	Format      string         `json:"format"`
	GeneratedAt time.Time      `json:"generated_at"`
	Summary     ReportSummary  `json:"summary"`
	Events      []audit.Record `json:"events,omitempty"`

	// CSV holds the rendered document when format is csv.
	CSV string `json:"csv,omitempty"`
}

// Supported compliance report formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ComplianceReport wraps Trail with a summary block. Formats other than
// json and csv are rejected with ErrUnsupportedFormat.
func (m *Manager) ComplianceReport(ctx context.Context, teamID, format string, start, end *time.Time) (Report, error) {
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatCSV {
		return Report{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	events, err := m.Trail(ctx, teamID, start, end, 0)
	if err != nil {
		return Report{}, err
	}

	summary := ReportSummary{
		TotalEvents:  len(events),
		EventsByType: make(map[string]int),
	}
	for _, ev := range events {
		summary.EventsByType[ev.EventType]++
		if ev.ComplianceEligible {
			summary.ComplianceEligible++
		}
	}

	report := Report{
		TeamID:      teamID,
		Format:      format,
		GeneratedAt: time.Now().UTC(),
		Summary:     summary,
	}

	if format == FormatCSV {
		csvDoc, err := renderCSV(events)
		if err != nil {
			return Report{}, err
		}
		report.CSV = csvDoc
		return report, nil
	}

	report.Events = events
	return report, nil
}

func renderCSV(events []audit.Record) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"audit_id", "team_id", "event_type", "actor", "target_user",
		"action", "reason", "amount", "from_account", "to_account", "timestamp", "integrity_hash"}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, ev := range events {
		row := []string{
			ev.AuditID, ev.TeamID, ev.EventType, ev.Actor, ev.TargetUser,
			ev.Action, ev.Reason, strconv.FormatInt(ev.Amount, 10),
			ev.FromAccount, ev.ToAccount,
			ev.Timestamp.UTC().Format(time.RFC3339),
			ev.IntegrityHash,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
