// Package identity adapts identity providers to the signup pipeline. Two
// providers exist: Local keeps identities in the application store and mints
// EdDSA sessions; GoTrue talks to a hosted auth server's admin API.
package identity

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
)

var (
	ErrEmailTaken         = errors.New("identity: email already registered")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrEmailNotConfirmed  = errors.New("identity: email not confirmed")
	ErrNotFound           = errors.New("identity: not found")
	ErrInvalidToken       = errors.New("identity: invalid confirmation token")
)

// CreateRequest describes an identity to create.
type CreateRequest struct {
	Email        string
	Password     string
	Metadata     domain.IdentityMetadata
	EmailConfirm bool
}

// Provider is the identity provider port used by the signup saga.
type Provider interface {
	// Create registers the identity and runs default provisioning. It
	// returns the new identity id.
	Create(ctx context.Context, req CreateRequest) (string, error)

	// Delete removes the identity and everything default provisioning
	// created for it. A missing identity yields ErrNotFound.
	Delete(ctx context.Context, id string) error

	// TokenExchange performs a password grant.
	TokenExchange(ctx context.Context, email, password string) (domain.Session, error)

	// SendVerification asks the provider to (re)send the email
	// confirmation message.
	SendVerification(ctx context.Context, email string) error
}
