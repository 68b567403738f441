package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of sessions minted by the local identity
// provider.
const DefaultSessionTTL = time.Hour

// Claims are the session claims understood by this service. The field names
// follow the GoTrue access token layout so the same struct decodes tokens
// minted locally and tokens minted by a hosted auth server.
type Claims struct {
	jwt.RegisteredClaims

	// SessionID identifies the login session the token belongs to.
	SessionID string `json:"session_id,omitempty"`

	// Email of the authenticated identity.
	Email string `json:"email,omitempty"`

	// Role is the database role claim ("authenticated" for end users). It is
	// not an application role; those live in the role store.
	Role string `json:"role,omitempty"`

	// UserMetadata mirrors the metadata supplied when the identity was created.
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for a fresh session.
func NewSessionClaims(
	subject, sessionID, email string,
	metadata map[string]any,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SessionID:    sessionID,
		Email:        email,
		Role:         "authenticated",
		UserMetadata: metadata,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
