// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	healthfeature "github.com/secondbraindb/sbdwallet/internal/app/features/health"
	tokensfeature "github.com/secondbraindb/sbdwallet/internal/app/features/tokens"
	walletfeature "github.com/secondbraindb/sbdwallet/internal/app/features/wallet"
	workspacesfeature "github.com/secondbraindb/sbdwallet/internal/app/features/workspaces"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed, so the shared services built in Startup
// are available here.
//
// The service is a JSON API: a health endpoint for orchestrators, API token
// lifecycle routes, workspace management, and the wallet operations, all
// versioned under /api/v1.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.WalletMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	tokensHandler := tokensfeature.NewHandler(svc.tokens, appCfg.BootstrapToken, logger)
	workspacesHandler := workspacesfeature.NewHandler(svc.workspace, svc.authMethods, logger)
	walletHandler := walletfeature.NewHandler(svc.wallet, logger)

	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/tokens", tokensfeature.Routes(tokensHandler, svc.tokens))
		api.Mount("/workspaces", workspacesfeature.Routes(workspacesHandler, svc.tokens,
			walletfeature.Routes(walletHandler)))
		api.Mount("/requests", walletfeature.ReviewRoutes(walletHandler, svc.tokens))
	})

	return r, nil
}
