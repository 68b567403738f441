package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store/drivers/postgres"
	"github.com/aussiebroadwan/hubsignup/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupStore starts a throwaway postgres and returns a migrated store.
func setupStore(t *testing.T) *postgres.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests skipped in -short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("signup"),
		tcpostgres.WithUsername("signup"),
		tcpostgres.WithPassword("signup"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := postgres.NewStore(ctx, connString)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestPostgresStore(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("consume is single winner", func(t *testing.T) {
		inv := domain.InviteCode{
			ID:          idx.New().String(),
			Code:        "PGRACE000001",
			AccountType: domain.AccountBusiness,
			HubID:       "hub-1",
			CreatedBy:   "creator",
			ExpiresAt:   now.Add(time.Hour),
			CreatedAt:   now,
		}
		require.NoError(t, s.Invites().CreateInvite(ctx, inv))
		require.ErrorIs(t, s.Invites().CreateInvite(ctx, inv), store.ErrAlreadyExists)

		var (
			wg   sync.WaitGroup
			wins atomic.Int32
		)
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Invites().ConsumeInvite(ctx, inv.Code, idx.New().String(), now); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		require.Equal(t, int32(1), wins.Load())

		got, err := s.Invites().GetInviteByCode(ctx, inv.Code)
		require.NoError(t, err)
		require.NotNil(t, got.UsedAt)

		listed, err := s.Invites().ListInvites(ctx, domain.InviteFilter{HubIDs: []string{"hub-1"}})
		require.NoError(t, err)
		require.Len(t, listed, 1)
	})

	t.Run("roles and audit in one tx", func(t *testing.T) {
		hubAdmin, err := domain.HubAdmin("hub-1")
		require.NoError(t, err)

		err = s.WithTx(ctx, func(tx store.Tx) error {
			added, err := tx.Roles().AddRole(ctx, "pg-user", hubAdmin)
			if err != nil {
				return err
			}
			return tx.RoleAudit().RecordRoleAudit(ctx, domain.RoleAudit{
				ID:           idx.New().String(),
				ActorID:      "actor",
				TargetUserID: "pg-user",
				Action:       domain.RoleActionAdd,
				Role:         domain.RoleAdmin,
				HubID:        "hub-1",
				Changed:      added,
				CreatedAt:    now,
			})
		})
		require.NoError(t, err)

		added, err := s.Roles().AddRole(ctx, "pg-user", hubAdmin)
		require.NoError(t, err)
		require.False(t, added)

		set, err := s.Roles().ListRolesByUser(ctx, "pg-user")
		require.NoError(t, err)
		hub, ok := set.AdminHub()
		require.True(t, ok)
		require.Equal(t, "hub-1", hub)

		audit, err := s.RoleAudit().ListRoleAuditByUser(ctx, "pg-user", 0)
		require.NoError(t, err)
		require.Len(t, audit, 1)
	})

	t.Run("one active subscription", func(t *testing.T) {
		plan := domain.Plan{ID: idx.New().String(), Name: "PREMIUM", Active: true, CreatedAt: now}
		require.NoError(t, s.Plans().CreatePlan(ctx, plan))

		got, err := s.Plans().GetActivePlanByName(ctx, domain.PremiumPlanName)
		require.NoError(t, err)

		for i, want := range []bool{true, false} {
			ok, err := s.Subscriptions().InsertActiveIfAbsent(ctx, domain.Subscription{
				ID:                 idx.New().String(),
				UserID:             "pg-user",
				PlanID:             got.ID,
				CurrentPeriodStart: now,
				CurrentPeriodEnd:   now.Add(domain.DefaultGrantPeriod),
				CreatedAt:          now,
			})
			require.NoError(t, err)
			require.Equal(t, want, ok, "insert %d", i)
		}
	})

	t.Run("identity metadata round trip", func(t *testing.T) {
		require.NoError(t, s.Identities().CreateIdentity(ctx, domain.Identity{
			ID:           "pg-identity",
			Email:        "Grace@Example.com",
			PasswordHash: "hash",
			Metadata:     domain.IdentityMetadata{FullName: "Grace", AccountType: domain.AccountOrganization},
			CreatedAt:    now,
		}))

		got, err := s.Identities().GetIdentityByEmail(ctx, "grace@example.com")
		require.NoError(t, err)
		require.Equal(t, "Grace", got.Metadata.FullName)
		require.Equal(t, domain.AccountOrganization, got.Metadata.AccountType)
	})
}
