// internal/app/system/auth/auth.go

// Package auth issues and verifies the API tokens agents use to call the
// wallet service. A raw token looks like sbd_<prefix>_<secret>: the prefix
// is a non-secret lookup key, the secret is shown once at creation and only
// its bcrypt hash is stored.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/secondbraindb/sbdwallet/internal/app/store/apitokens"
	"github.com/secondbraindb/sbdwallet/internal/app/system/timeouts"
	"github.com/secondbraindb/sbdwallet/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenScheme  = "sbd"
	prefixLength = 8
	secretLength = 32

	// HeaderToken is where callers present the raw token.
	HeaderToken = "Authorization"
	bearer      = "Bearer "
)

var (
	ErrMalformedToken = errors.New("malformed api token")
	ErrInvalidToken   = errors.New("invalid api token")
	ErrRevokedToken   = errors.New("api token revoked")
)

// IssuedToken pairs the stored record with the raw token string. The raw
// value exists only in this struct; it is never persisted.
type IssuedToken struct {
	Token models.APIToken `json:"token"`
	Raw   string          `json:"raw_token"`
}

// Service creates and verifies API tokens.
type Service struct {
	tokens *apitokens.Store
	log    *zap.Logger
}

// NewService creates a token Service.
func NewService(tokens *apitokens.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{tokens: tokens, log: log}
}

// Issue creates a new API token for userID. The raw token in the result is
// the only copy that will ever exist.
func (s *Service) Issue(ctx context.Context, userID, name string) (IssuedToken, error) {
	prefix, err := randomHex(prefixLength)
	if err != nil {
		return IssuedToken{}, err
	}
	secret, err := randomHex(secretLength)
	if err != nil {
		return IssuedToken{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return IssuedToken{}, err
	}

	tok, err := s.tokens.Insert(ctx, models.APIToken{
		TokenID:   uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Prefix:    prefix,
		TokenHash: hash,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return IssuedToken{}, err
	}

	s.log.Info("api token issued",
		zap.String("token_id", tok.TokenID),
		zap.String("user_id", userID),
		zap.String("name", name),
	)

	return IssuedToken{
		Token: tok,
		Raw:   tokenScheme + "_" + prefix + "_" + secret,
	}, nil
}

// Verify checks a raw token and returns the owning record. Lookup is by
// prefix, then one bcrypt comparison against the stored hash.
func (s *Service) Verify(ctx context.Context, raw string) (models.APIToken, error) {
	prefix, secret, err := splitToken(raw)
	if err != nil {
		return models.APIToken{}, err
	}

	tok, err := s.tokens.GetByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, apitokens.ErrNotFound) {
			return models.APIToken{}, ErrInvalidToken
		}
		return models.APIToken{}, err
	}
	if tok.Revoked() {
		return models.APIToken{}, ErrRevokedToken
	}
	if bcrypt.CompareHashAndPassword(tok.TokenHash, []byte(secret)) != nil {
		return models.APIToken{}, ErrInvalidToken
	}

	// Best effort; a failed touch never blocks the request.
	if err := s.tokens.TouchLastUsed(ctx, tok.TokenID, time.Now().UTC()); err != nil {
		s.log.Warn("api token last-used update failed",
			zap.String("token_id", tok.TokenID),
			zap.Error(err),
		)
	}
	return tok, nil
}

// Revoke permanently disables one of userID's tokens.
func (s *Service) Revoke(ctx context.Context, tokenID, userID string) error {
	if err := s.tokens.Revoke(ctx, tokenID, userID, time.Now().UTC()); err != nil {
		return err
	}
	s.log.Info("api token revoked",
		zap.String("token_id", tokenID),
		zap.String("user_id", userID),
	)
	return nil
}

// List returns userID's tokens, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.APIToken, error) {
	return s.tokens.ListByUser(ctx, userID)
}

func splitToken(raw string) (prefix, secret string, err error) {
	parts := strings.Split(strings.TrimSpace(raw), "_")
	if len(parts) != 3 || parts[0] != tokenScheme || parts[1] == "" || parts[2] == "" {
		return "", "", ErrMalformedToken
	}
	return parts[1], parts[2], nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf)[:n], nil
}

// --- request context ---

type ctxKey string

const actorKey ctxKey = "actor"

// Actor returns the authenticated user ID set by RequireToken.
func Actor(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(actorKey).(string)
	return id, ok && id != ""
}

// WithActor injects an authenticated user ID into the request. Test helper.
func WithActor(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), actorKey, userID))
}

// RequireToken authenticates the request via a bearer API token and injects
// the owning user ID into the context. Missing or bad credentials get a
// plain 401; handlers never see unauthenticated requests.
func (s *Service) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(HeaderToken)
		if !strings.HasPrefix(header, bearer) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		tok, err := s.Verify(ctx, strings.TrimPrefix(header, bearer))
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, WithActor(r, tok.UserID))
	})
}

// OptionalToken resolves a bearer token into an actor when one is presented
// and valid, and lets the request through either way. Used by routes that do
// their own fallback authentication, like bootstrap token issuance.
func (s *Service) OptionalToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(HeaderToken)
		if !strings.HasPrefix(header, bearer) {
			next.ServeHTTP(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		if tok, err := s.Verify(ctx, strings.TrimPrefix(header, bearer)); err == nil {
			r = WithActor(r, tok.UserID)
		}
		next.ServeHTTP(w, r)
	})
}
