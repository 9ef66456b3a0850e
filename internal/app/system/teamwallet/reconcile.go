// internal/app/system/teamwallet/reconcile.go
package teamwallet

import (
	"context"
	"errors"
	"time"

	"github.com/secondbraindb/sbdwallet/internal/app/store/tokenrequests"
	"go.uber.org/zap"
)

// ReconcileUnprocessed finds approved requests whose transfer never
// completed (reviewed before the cutoff) and retries processing. Safe to run
// repeatedly: MarkProcessed is conditional, so a request retried by two
// sweeps transfers at most once. Returns how many requests were completed.
func (m *Manager) ReconcileUnprocessed(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := m.requests.FindApprovedUnprocessed(ctx, cutoff)
	if err != nil {
		return 0, infraError("unprocessed request scan", err)
	}

	completed := 0
	for _, req := range stale {
		ws, err := m.workspaces.Get(ctx, req.WorkspaceID)
		if err != nil {
			m.log.Error("reconcile: workspace lookup failed",
				zap.String("request_id", req.RequestID),
				zap.String("workspace_id", req.WorkspaceID),
				zap.Error(err),
			)
			continue
		}
		if !ws.SBDAccount.Initialized() {
			continue
		}

		if _, err := m.runProcess(ctx, ws.SBDAccount.AccountUsername, req, req.ReviewedBy); err != nil {
			if errors.Is(err, tokenrequests.ErrAlreadyProcessed) {
				continue
			}
			m.log.Error("reconcile: request processing failed",
				zap.String("request_id", req.RequestID),
				zap.String("workspace_id", req.WorkspaceID),
				zap.Error(err),
			)
			continue
		}
		completed++
		m.log.Info("reconcile: completed stale approved request",
			zap.String("request_id", req.RequestID),
			zap.String("workspace_id", req.WorkspaceID),
		)
	}
	return completed, nil
}
