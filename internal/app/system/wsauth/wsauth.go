// internal/app/system/wsauth/wsauth.go

// Package wsauth resolves which authentication methods a workspace allows
// and builds the OAuth2 configurations for the provider-backed ones.
package wsauth

import (
	"context"

	workspacestore "github.com/secondbraindb/sbdwallet/internal/app/store/workspaces"
	"github.com/secondbraindb/sbdwallet/internal/domain/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// ProviderCredentials holds one OAuth2 provider's client settings.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Providers bundles the OAuth2 provider credentials the deployment carries.
// Unset providers simply report as unconfigured.
type Providers struct {
	Google ProviderCredentials
	GitHub ProviderCredentials
}

// Service answers auth-method policy questions for workspaces.
type Service struct {
	workspaces *workspacestore.Store
	providers  Providers
}

// NewService creates a wsauth Service.
func NewService(ws *workspacestore.Store, providers Providers) *Service {
	return &Service{workspaces: ws, providers: providers}
}

// Enabled returns the methods a workspace allows. A missing workspace or
// lookup failure defaults to all methods so authentication is never
// hard-blocked by a read error.
func (s *Service) Enabled(ctx context.Context, workspaceID string) []models.AuthMethod {
	if workspaceID == "" {
		return models.AllAuthMethods
	}
	w, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		return models.AllAuthMethods
	}
	return models.EnabledAuthMethods(w.Settings.EnabledAuthMethods)
}

// IsEnabled reports whether a workspace allows the given method.
func (s *Service) IsEnabled(ctx context.Context, workspaceID, method string) bool {
	if !models.IsValidAuthMethod(method) {
		return false
	}
	for _, m := range s.Enabled(ctx, workspaceID) {
		if m.Value == method {
			return true
		}
	}
	return false
}

// EnabledMap returns the enabled methods as a set for quick lookup.
func (s *Service) EnabledMap(ctx context.Context, workspaceID string) map[string]bool {
	methods := s.Enabled(ctx, workspaceID)
	result := make(map[string]bool, len(methods))
	for _, m := range methods {
		result[m.Value] = true
	}
	return result
}

// ValidMethod reports whether value names a method the service supports at
// all, independent of any workspace's policy.
func (s *Service) ValidMethod(value string) bool {
	return models.IsValidAuthMethod(value)
}

// OAuthConfig builds the OAuth2 config for a provider-backed method. The
// second return is false for non-provider methods and for providers the
// deployment carries no credentials for.
func (s *Service) OAuthConfig(method string) (*oauth2.Config, bool) {
	switch method {
	case models.AuthGoogle:
		if s.providers.Google.ClientID == "" {
			return nil, false
		}
		return GoogleConfig(s.providers.Google), true
	case models.AuthGitHub:
		if s.providers.GitHub.ClientID == "" {
			return nil, false
		}
		return GitHubConfig(s.providers.GitHub), true
	}
	return nil, false
}

// GoogleConfig builds the OAuth2 config for Google sign-in.
func GoogleConfig(creds ProviderCredentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

// GitHubConfig builds the OAuth2 config for GitHub sign-in.
func GitHubConfig(creds ProviderCredentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURL,
		Scopes:       []string{"read:user", "user:email"},
		Endpoint:     github.Endpoint,
	}
}
