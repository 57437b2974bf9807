package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo describes what can be read from a bearer token without a key.
// The backend treats tokens as opaque; when one happens to be a JWT its
// claims are surfaced for display only and never used for authorization.
type TokenInfo struct {
	IsJWT     bool
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether a JWT expiry is known and already past.
func (t TokenInfo) Expired(now time.Time) bool {
	return t.IsJWT && !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// InspectToken decodes JWT claims without verifying the signature.
func InspectToken(token string) TokenInfo {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}
	}

	info := TokenInfo{IsJWT: true}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info
}
