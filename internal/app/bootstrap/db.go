// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/secondbraindb/sbdwallet/internal/app/store/apitokens"
	"github.com/secondbraindb/sbdwallet/internal/app/store/audit"
	"github.com/secondbraindb/sbdwallet/internal/app/store/tokenrequests"
	"github.com/secondbraindb/sbdwallet/internal/app/store/transactions"
	workspacestore "github.com/secondbraindb/sbdwallet/internal/app/store/workspaces"
	"go.uber.org/zap"
)

// EnsureSchema creates the indexes every collection relies on. Safe to run
// on every startup; Mongo treats existing identical indexes as a no-op.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.WalletMongoDatabase

	if err := workspacestore.New(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := tokenrequests.New(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := transactions.New(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := audit.New(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := apitokens.New(db).EnsureIndexes(ctx); err != nil {
		return err
	}

	logger.Info("database indexes ensured")
	return nil
}
