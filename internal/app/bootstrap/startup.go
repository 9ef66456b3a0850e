// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/secondbraindb/sbdwallet/internal/app/store/apitokens"
	"github.com/secondbraindb/sbdwallet/internal/app/store/audit"
	"github.com/secondbraindb/sbdwallet/internal/app/store/tokenrequests"
	"github.com/secondbraindb/sbdwallet/internal/app/store/transactions"
	workspacestore "github.com/secondbraindb/sbdwallet/internal/app/store/workspaces"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auditlog"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auth"
	"github.com/secondbraindb/sbdwallet/internal/app/system/ledger"
	"github.com/secondbraindb/sbdwallet/internal/app/system/ratelimit"
	"github.com/secondbraindb/sbdwallet/internal/app/system/tasks"
	"github.com/secondbraindb/sbdwallet/internal/app/system/teamwallet"
	"github.com/secondbraindb/sbdwallet/internal/app/system/wsauth"
	"go.uber.org/zap"
)

// services holds the long-lived application objects built once at startup
// and shared between BuildHandler and Shutdown.
type services struct {
	wallet      *teamwallet.Manager
	tokens      *auth.Service
	workspace   *workspacestore.Store
	authMethods *wsauth.Service
	runner      *tasks.Runner
}

var svc services

// Startup builds the store layer, the wallet manager, and the background
// job runner. It runs after DB connections and schema setup, before the
// HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.WalletMongoDatabase

	workspaces := workspacestore.New(db)
	requests := tokenrequests.New(db)
	txns := transactions.New(db)
	auditStore := audit.New(db)
	tokenStore := apitokens.New(db)

	var lgr ledger.Ledger
	if appCfg.LedgerMode == "http" {
		lgr = ledger.NewClient(appCfg.LedgerURL, appCfg.LedgerAPIKey, appCfg.LedgerTimeout)
		logger.Info("using http token transfer system", zap.String("url", appCfg.LedgerURL))
	} else {
		lgr = ledger.NewMemory(appCfg.LedgerSeed)
		logger.Info("using in-memory token transfer system", zap.Int64("seed", appCfg.LedgerSeed))
	}

	manager := teamwallet.NewManager(teamwallet.Deps{
		Client:       deps.WalletMongoClient,
		Workspaces:   workspaces,
		Requests:     requests,
		Transactions: txns,
		Audit:        auditlog.New(auditStore, logger),
		Ledger:       lgr,
		Limiter:      ratelimit.New(appCfg.RequestRateLimit, appCfg.RequestRateWindow),
		Log:          logger,
	})

	runner := tasks.NewRunner(logger,
		tasks.RequestExpiryJob(requests, logger, appCfg.ExpirySweepInterval),
		tasks.ReconcileUnprocessedJob(manager, logger, appCfg.ReconcileInterval, appCfg.ReconcileGrace),
	)
	runner.Start()

	authMethods := wsauth.NewService(workspaces, wsauth.Providers{
		Google: wsauth.ProviderCredentials{
			ClientID:     appCfg.GoogleClientID,
			ClientSecret: appCfg.GoogleClientSecret,
			RedirectURL:  appCfg.OAuthRedirectURL,
		},
		GitHub: wsauth.ProviderCredentials{
			ClientID:     appCfg.GitHubClientID,
			ClientSecret: appCfg.GitHubClientSecret,
			RedirectURL:  appCfg.OAuthRedirectURL,
		},
	})

	svc = services{
		wallet:      manager,
		tokens:      auth.NewService(tokenStore, logger),
		workspace:   workspaces,
		authMethods: authMethods,
		runner:      runner,
	}
	return nil
}
