// Package auth exchanges a signed token from the CRM platform for a token
// issued by the connector. Signature checking and signing are left to the
// TokenValidator and TokenIssuer implementations supplied by the host.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no validator or issuer is installed.
var ErrNotConfigured = errors.New("token exchange is not configured")

// ErrInvalidToken is returned for a token that fails validation.
var ErrInvalidToken = errors.New("invalid token")

// AudiencePrefix is prepended to the client id to form the expected audience.
const AudiencePrefix = "spn:"

// Claims is what a validated token asserts.
type Claims struct {
	Subject   string
	Audience  []string
	Nonce     string
	ExpiresAt time.Time
}

// TokenValidator checks the signature of a token and returns its claims.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer signs a new token carrying nonce.
type TokenIssuer interface {
	Issue(ctx context.Context, nonce string) (string, error)
}

// Exchanger validates incoming tokens and issues replacements.
type Exchanger struct {
	Validator TokenValidator
	Issuer    TokenIssuer
	ClientID  string
	Now       func() time.Time
}

// Configured reports whether both a validator and an issuer are installed.
func (e *Exchanger) Configured() bool {
	return e != nil && e.Validator != nil && e.Issuer != nil
}

// Exchange validates token, checks that it was issued for this client and
// has not expired, and returns a new token for its nonce.
func (e *Exchanger) Exchange(ctx context.Context, token string) (string, error) {
	if !e.Configured() {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("empty token: %w", ErrInvalidToken)
	}

	claims, err := e.Validator.Validate(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, ErrInvalidToken)
	}

	want := AudiencePrefix + e.ClientID
	if !hasAudience(claims.Audience, want) {
		return "", fmt.Errorf("token audience %v does not include %q: %w", claims.Audience, want, ErrInvalidToken)
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	if !claims.ExpiresAt.IsZero() && !now().Before(claims.ExpiresAt) {
		return "", fmt.Errorf("token expired at %s: %w", claims.ExpiresAt.Format(time.RFC3339), ErrInvalidToken)
	}

	return e.Issuer.Issue(ctx, claims.Nonce)
}

func hasAudience(audiences []string, want string) bool {
	for _, a := range audiences {
		if strings.EqualFold(a, want) {
			return true
		}
	}
	return false
}
