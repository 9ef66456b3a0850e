// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the wallet service.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, ledger_mode, etc.
//   - Environment variables: SBDWALLET_MONGO_URI, SBDWALLET_LEDGER_MODE, etc.
//   - Command-line flags: --mongo_uri, --ledger_mode, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "sbd_wallet", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Token transfer system
	{Name: "ledger_mode", Default: "memory", Desc: "Transfer system backend: 'memory' or 'http'"},
	{Name: "ledger_url", Default: "", Desc: "Base URL of the token transfer service (http mode)"},
	{Name: "ledger_api_key", Default: "", Desc: "API key for the token transfer service (http mode)"},
	{Name: "ledger_timeout", Default: "10s", Desc: "Per-call timeout for transfer service requests"},
	{Name: "ledger_seed", Default: 10000, Desc: "Starting balance per account (memory mode)"},

	// Token request policy
	{Name: "request_rate_limit", Default: 10, Desc: "Max token requests per member per window"},
	{Name: "request_rate_window", Default: "1h", Desc: "Token request rate limit window"},

	// Background jobs
	{Name: "expiry_sweep_interval", Default: "10m", Desc: "How often pending requests past deadline are expired"},
	{Name: "reconcile_interval", Default: "5m", Desc: "How often stale approved requests are retried"},
	{Name: "reconcile_grace", Default: "2m", Desc: "How old an unprocessed approval must be before retry"},

	// Auth bootstrap
	{Name: "bootstrap_token", Default: "", Desc: "Static token allowed to mint the first API token"},

	// OAuth2 providers
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "github_client_id", Default: "", Desc: "GitHub OAuth2 client ID"},
	{Name: "github_client_secret", Default: "", Desc: "GitHub OAuth2 client secret"},
	{Name: "oauth_redirect_url", Default: "", Desc: "Redirect URL for OAuth2 callbacks"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have access
// to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SBDWALLET", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		LedgerMode:    appValues.String("ledger_mode"),
		LedgerURL:     appValues.String("ledger_url"),
		LedgerAPIKey:  appValues.String("ledger_api_key"),
		LedgerTimeout: appValues.Duration("ledger_timeout", 10*time.Second),
		LedgerSeed:    int64(appValues.Int("ledger_seed")),

		RequestRateLimit:  appValues.Int("request_rate_limit"),
		RequestRateWindow: appValues.Duration("request_rate_window", time.Hour),

		ExpirySweepInterval: appValues.Duration("expiry_sweep_interval", 10*time.Minute),
		ReconcileInterval:   appValues.Duration("reconcile_interval", 5*time.Minute),
		ReconcileGrace:      appValues.Duration("reconcile_grace", 2*time.Minute),

		BootstrapToken: appValues.String("bootstrap_token"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),
		GitHubClientID:     appValues.String("github_client_id"),
		GitHubClientSecret: appValues.String("github_client_secret"),
		OAuthRedirectURL:   appValues.String("oauth_redirect_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.LedgerMode {
	case "memory":
	case "http":
		if appCfg.LedgerURL == "" {
			return fmt.Errorf("ledger_mode 'http' requires ledger_url to be set")
		}
	default:
		return fmt.Errorf("ledger_mode must be 'memory' or 'http', got %q", appCfg.LedgerMode)
	}

	if appCfg.RequestRateLimit <= 0 {
		return fmt.Errorf("request_rate_limit must be positive, got %d", appCfg.RequestRateLimit)
	}

	return nil
}
