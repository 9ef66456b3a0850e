// internal/app/system/txn/txn.go

// Package txn wraps multi-write sequences in a MongoDB transaction when the
// deployment supports one (replica set or mongos), and degrades to running
// the writes sequentially when it does not (standalone dev instances).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// IsNotSupported reports whether err indicates the deployment cannot run
// multi-document transactions. Matches the driver's command error codes and
// the message shapes standalone servers return.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	hasTransaction := strings.Contains(msg, "transaction")
	if hasTransaction && strings.Contains(msg, "replica set") {
		return true
	}
	if hasTransaction && strings.Contains(msg, "session") {
		return true
	}
	if hasTransaction && strings.Contains(msg, "illegal operation") {
		return true
	}
	if strings.Contains(msg, "session") && strings.Contains(msg, "not supported") {
		return true
	}
	return false
}

// WithTransaction runs fn inside a Mongo transaction. When the deployment
// does not support transactions, fn runs once more outside of one; callers
// must keep their writes individually idempotent for that case.
func WithTransaction(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	session, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			logFallback(log, err)
			return fn(ctx)
		}
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		logFallback(log, err)
		return fn(ctx)
	}
	return err
}

func logFallback(log *zap.Logger, err error) {
	if log != nil {
		log.Warn("mongo transactions unavailable, running writes sequentially", zap.Error(err))
	}
}
