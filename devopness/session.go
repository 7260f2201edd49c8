package devopness

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshLeeway is how long before expiry a token is considered stale.
const refreshLeeway = time.Minute

// Session caches the access token of a logged-in user. It is safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time // zero when the expiry is unknown
}

// Token returns the cached access token, or "" when not logged in.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// ExpiresAt returns the token expiry, zero when unknown.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Set stores a login token. The expiry is read from the JWT "exp" claim; when the
// token is not a JWT the response's expires_in is used instead.
func (s *Session) Set(tok Token, now time.Time) {
	exp := tokenExpiry(tok.AccessToken)
	if exp.IsZero() && tok.ExpiresIn > 0 {
		exp = now.Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok.AccessToken
	s.expiresAt = exp
}

// Clear forgets the cached token.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
}

// Valid reports whether a token is cached and does not expire within refreshLeeway.
// A token with unknown expiry stays valid until the API rejects it.
func (s *Session) Valid(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return false
	}
	return s.expiresAt.IsZero() || now.Add(refreshLeeway).Before(s.expiresAt)
}

// tokenExpiry reads the exp claim without verifying the signature. Zero when the
// token is not a JWT or has no expiry.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
