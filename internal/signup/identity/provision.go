package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
)

// Provisioner creates the application-side records that belong to a new
// identity. It runs inside the caller's transaction.
type Provisioner interface {
	Provision(ctx context.Context, tx store.Store, id domain.Identity) error
	Deprovision(ctx context.Context, tx store.Store, userID string) error
}

// StoreProvisioner is the default provisioning: a profile built from the
// identity metadata and, for business accounts linked to a hub, the base
// entrepreneur role in that hub.
type StoreProvisioner struct{}

func (StoreProvisioner) Provision(ctx context.Context, tx store.Store, id domain.Identity) error {
	accountType := id.Metadata.AccountType
	if accountType == "" {
		accountType = domain.AccountBusiness
	}

	now := id.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	err := tx.Profiles().CreateProfile(ctx, domain.Profile{
		ID:             id.ID,
		Email:          id.Email,
		FullName:       id.Metadata.FullName,
		AccountType:    accountType,
		HubID:          id.Metadata.HubID,
		EmailConfirmed: id.EmailConfirmedAt != nil,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return fmt.Errorf("provision profile: %w", err)
	}

	if accountType == domain.AccountBusiness && id.Metadata.HubID != "" {
		g, err := domain.Entrepreneur(id.Metadata.HubID)
		if err != nil {
			return fmt.Errorf("provision role: %w", err)
		}
		if _, err := tx.Roles().AddRole(ctx, id.ID, g); err != nil {
			return fmt.Errorf("provision role: %w", err)
		}
	}
	return nil
}

func (StoreProvisioner) Deprovision(ctx context.Context, tx store.Store, userID string) error {
	if err := tx.Subscriptions().DeleteSubscriptionsByUser(ctx, userID); err != nil {
		return fmt.Errorf("deprovision subscriptions: %w", err)
	}
	if err := tx.Roles().DeleteRolesByUser(ctx, userID); err != nil {
		return fmt.Errorf("deprovision roles: %w", err)
	}
	if err := tx.Profiles().DeleteProfile(ctx, userID); err != nil {
		return fmt.Errorf("deprovision profile: %w", err)
	}
	return nil
}
