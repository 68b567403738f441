package service

import (
	"context"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
)

// HubContextResolver derives a user's implicit hub scope from their role
// rows. Only a hub-scoped admin row counts; hub_manager rows never do.
type HubContextResolver struct {
	Store store.Store
}

// Resolve returns the hub of the user's hub-scoped admin row, or "".
func (r *HubContextResolver) Resolve(ctx context.Context, userID string) (string, error) {
	roles, err := r.Store.Roles().ListRolesByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	hub, _ := roles.AdminHub()
	return hub, nil
}

// CreatorContext is a snapshot of an invite creator's privileges taken once
// per signup and reused by every later step.
type CreatorContext struct {
	UserID     string
	Roles      domain.RoleSet
	SuperAdmin bool
	Admin      bool
	HubID      string // implicit hub from the admin row, "" if none
}

// AutoConfirm reports whether identities created from this creator's
// invites skip email verification.
func (c CreatorContext) AutoConfirm() bool { return c.SuperAdmin || c.Admin }

// Creator loads the privilege snapshot for userID.
func (r *HubContextResolver) Creator(ctx context.Context, userID string) (CreatorContext, error) {
	c := CreatorContext{UserID: userID}
	roles, err := r.Store.Roles().ListRolesByUser(ctx, userID)
	if err != nil {
		return c, err
	}
	c.Roles = roles
	c.SuperAdmin = roles.IsSuperAdmin()
	c.Admin = roles.IsAdmin()
	c.HubID, _ = roles.AdminHub()
	return c, nil
}
