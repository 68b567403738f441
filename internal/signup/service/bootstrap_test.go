package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := &Bootstrap{Store: e.store, Identity: e.provider, Token: "let-me-in"}

	done, err := b.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.False(t, done)

	req := domain.BootstrapData{Email: "root@example.com", FullName: "Root", Plans: []string{"Premium", " "}}

	_, err = b.Run(ctx, "wrong", req)
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)

	res, err := b.Run(ctx, "let-me-in", req)
	require.NoError(t, err)
	require.NotEmpty(t, res.UserID)
	require.Len(t, res.GeneratedPassword, 16)
	require.Len(t, res.PlanIDs, 1)

	roles, err := e.store.Roles().ListRolesByUser(ctx, res.UserID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleSet{domain.SuperAdmin()}, roles)

	audit, err := e.store.RoleAudit().ListRoleAuditByUser(ctx, res.UserID, 10)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	require.Equal(t, SystemActor, audit[0].ActorID)

	plan, err := e.store.Plans().GetActivePlanByName(ctx, domain.PremiumPlanName)
	require.NoError(t, err)
	require.Equal(t, res.PlanIDs[0], plan.ID)

	session, err := e.provider.TokenExchange(ctx, "root@example.com", res.GeneratedPassword)
	require.NoError(t, err)
	require.Equal(t, res.UserID, session.UserID)

	_, err = b.Run(ctx, "let-me-in", domain.BootstrapData{Email: "again@example.com"})
	require.ErrorIs(t, err, ErrBootstrapAlready)
	creates, _ := e.provider.counts()
	require.Equal(t, 1, creates)
}

func TestBootstrapDisabledWithoutToken(t *testing.T) {
	e := newEnv(t)
	b := &Bootstrap{Store: e.store, Identity: e.provider}

	_, err := b.Run(context.Background(), "", domain.BootstrapData{Email: "root@example.com"})
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)
}

func TestBootstrapRollsBackIdentityWhenPlansFail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := &Bootstrap{Store: e.store, Identity: e.provider, Token: "t"}

	// Plan names are unique case-insensitively.
	_, err := b.Run(ctx, "t", domain.BootstrapData{
		Email:    "root@example.com",
		Password: "correct-horse-battery",
		Plans:    []string{"Premium", "PREMIUM"},
	})
	require.Error(t, err)

	_, deletes := e.provider.counts()
	require.Equal(t, 1, deletes)

	done, err := b.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.False(t, done)
}
