// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging,
// CORS). AppConfig is everything specific to the wallet service: the Mongo
// connection, the token transfer system, request policy, and auth.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Token transfer system (the external ledger holding real balances).
	// "memory" runs an in-process ledger for dev and tests; "http" talks to
	// the real service.
	LedgerMode    string
	LedgerURL     string        // Base URL of the transfer service (http mode)
	LedgerAPIKey  string        // API key for the transfer service (http mode)
	LedgerTimeout time.Duration // Per-call timeout for transfer service requests
	LedgerSeed    int64         // Starting balance per account (memory mode)

	// Token request policy
	RequestRateLimit  int           // Max token requests per member per window
	RequestRateWindow time.Duration // Rate limit window

	// Background job cadence
	ExpirySweepInterval time.Duration // How often pending requests are expired
	ReconcileInterval   time.Duration // How often stale approved requests are retried
	ReconcileGrace      time.Duration // How old an unprocessed approval must be before retry

	// BootstrapToken lets a fresh deployment mint its first API token.
	BootstrapToken string

	// OAuth2 provider credentials for workspace sign-in methods.
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
	OAuthRedirectURL   string
}
