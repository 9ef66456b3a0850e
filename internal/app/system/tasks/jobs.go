// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/secondbraindb/sbdwallet/internal/app/store/tokenrequests"
	"github.com/secondbraindb/sbdwallet/internal/app/system/teamwallet"
	"go.uber.org/zap"
)

// RequestExpiryJob creates a job that transitions pending token requests
// past their review deadline to expired, so listings and storage agree.
func RequestExpiryJob(reqStore *tokenrequests.Store, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "token-request-expiry",
		Interval: interval,
		Run: func(ctx context.Context) error {
			count, err := reqStore.ExpireStale(ctx, time.Now().UTC())
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("expired stale token requests", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// ReconcileUnprocessedJob creates a job that retries approved requests whose
// transfer never completed (review succeeded but the process crashed before
// the ledger transfer). The grace period keeps it off requests still being
// processed inline.
func ReconcileUnprocessedJob(mgr *teamwallet.Manager, logger *zap.Logger, interval, grace time.Duration) Job {
	return Job{
		Name:     "reconcile-unprocessed-requests",
		Interval: interval,
		Run: func(ctx context.Context) error {
			count, err := mgr.ReconcileUnprocessed(ctx, time.Now().UTC().Add(-grace))
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("reconciled unprocessed requests", zap.Int("count", count))
			}
			return nil
		},
	}
}
