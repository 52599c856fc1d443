package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Gate decides whether a request may use a premium feature.
type Gate interface {
	// Allow returns nil to let the request through or an error wrapping
	// ErrPremiumRequired.
	Allow(r *http.Request) error
}

// TokenGate admits requests carrying "Authorization: Bearer <token>".
// A gate with an empty token admits nobody.
type TokenGate struct {
	token string
}

// NewTokenGate creates a TokenGate for token.
func NewTokenGate(token string) *TokenGate {
	return &TokenGate{token: token}
}

// Allow implements Gate.
func (g *TokenGate) Allow(r *http.Request) error {
	if g.token == "" {
		return ErrPremiumRequired
	}
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(g.token)) != 1 {
		return ErrPremiumRequired
	}
	return nil
}

// OpenGate admits every request.
type OpenGate struct{}

// Allow implements Gate.
func (OpenGate) Allow(*http.Request) error {
	return nil
}
