package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/metrics"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/pkg/idx"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
)

// SystemActor is recorded as the actor of role changes made by the service
// itself, such as bootstrap.
const SystemActor = "system"

// RoleAuthority is the single entry point for role mutations. Every call
// is idempotent and writes an audit row in the same transaction.
type RoleAuthority struct {
	Store   store.Store
	Metrics *metrics.Metrics
}

type RoleChange struct {
	TargetUserID string
	Role         domain.RoleName
	HubID        string
	RequesterID  string
	Reason       string
}

// AssignRole grants a role. It reports whether a row was created; holding
// the role already is a successful no-op.
func (a *RoleAuthority) AssignRole(ctx context.Context, ch RoleChange) (bool, error) {
	return a.apply(ctx, domain.RoleActionAdd, ch)
}

// RemoveRole revokes a role. Removing a role the user does not hold is a
// successful no-op.
func (a *RoleAuthority) RemoveRole(ctx context.Context, ch RoleChange) (bool, error) {
	return a.apply(ctx, domain.RoleActionRemove, ch)
}

func (a *RoleAuthority) ListRoles(ctx context.Context, userID string) (domain.RoleSet, error) {
	return a.Store.Roles().ListRolesByUser(ctx, userID)
}

func (a *RoleAuthority) apply(ctx context.Context, action domain.RoleAction, ch RoleChange) (bool, error) {
	log := slogx.FromContext(ctx)

	if ch.TargetUserID == "" || ch.RequesterID == "" {
		return false, validationError("target user and requester are required")
	}
	g, err := domain.NewGrant(ch.Role, ch.HubID)
	if err != nil {
		return false, validationError("%v", err)
	}

	var changed bool
	err = a.Store.WithTx(ctx, func(tx store.Tx) error {
		requester, err := tx.Roles().ListRolesByUser(ctx, ch.RequesterID)
		if err != nil {
			return err
		}
		if !canGrant(requester, g) {
			log.Warn("role change denied",
				slog.String("action", string(action)),
				slog.String("requester_id", ch.RequesterID),
				slog.String("target_user_id", ch.TargetUserID),
				slog.String("grant", g.String()),
			)
			return ErrUnauthorized
		}
		changed, err = mutateRole(ctx, tx, action, ch.RequesterID, ch.TargetUserID, g, ch.Reason)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrUnauthorized) {
			log.Error("role change failed", slog.String("action", string(action)), slog.Any("error", err))
		}
		return false, err
	}

	a.Metrics.RoleChange(string(action), changed)
	log.Info("role change applied",
		slog.String("action", string(action)),
		slog.String("requester_id", ch.RequesterID),
		slog.String("target_user_id", ch.TargetUserID),
		slog.String("grant", g.String()),
		slog.Bool("changed", changed),
	)
	return changed, nil
}

// mutateRole adds or removes g and records the audit row on the same
// transaction. Authorization is the caller's job.
func mutateRole(
	ctx context.Context,
	tx store.Store,
	action domain.RoleAction,
	actorID, targetID string,
	g domain.Grant,
	reason string,
) (bool, error) {
	var (
		changed bool
		err     error
	)
	switch action {
	case domain.RoleActionAdd:
		changed, err = tx.Roles().AddRole(ctx, targetID, g)
	case domain.RoleActionRemove:
		changed, err = tx.Roles().RemoveRole(ctx, targetID, g)
	default:
		return false, validationError("unknown role action %q", action)
	}
	if err != nil {
		return false, err
	}

	err = tx.RoleAudit().RecordRoleAudit(ctx, domain.RoleAudit{
		ID:           idx.New().String(),
		ActorID:      actorID,
		TargetUserID: targetID,
		Action:       action,
		Role:         g.Role(),
		HubID:        g.Hub(),
		Reason:       reason,
		Changed:      changed,
		CreatedAt:    time.Now().UTC(),
	})
	return changed, err
}

// canGrant applies the hub scoping rules:
//
//	super_admin, global admin   requester must be super_admin
//	admin@H                     super_admin or admin@H
//	entrepreneur@H, hub_manager@H  super_admin, admin@H or hub_manager@H
func canGrant(requester domain.RoleSet, g domain.Grant) bool {
	if requester.IsSuperAdmin() {
		return true
	}
	hub, scoped := g.HubID()
	if !scoped {
		return false
	}
	if g.Role() == domain.RoleAdmin {
		admin, err := domain.HubAdmin(hub)
		return err == nil && requester.Contains(admin)
	}
	return requester.ManagesHub(hub)
}
