package sqlite_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store/drivers/sqlite"
	"github.com/aussiebroadwan/hubsignup/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newInvite(code string, expires time.Time) domain.InviteCode {
	return domain.InviteCode{
		ID:          idx.New().String(),
		Code:        code,
		AccountType: domain.AccountBusiness,
		CreatedBy:   "creator-1",
		ExpiresAt:   expires,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestInviteCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	inv := newInvite("ABCDEFGHJKLM", time.Now().Add(time.Hour))
	inv.InvitedEmail = "Person@Example.com"
	inv.HubID = "hub-1"
	require.NoError(t, s.Invites().CreateInvite(ctx, inv))

	dup := newInvite("ABCDEFGHJKLM", time.Now().Add(time.Hour))
	require.ErrorIs(t, s.Invites().CreateInvite(ctx, dup), store.ErrAlreadyExists)

	got, err := s.Invites().GetInviteByCode(ctx, inv.Code)
	require.NoError(t, err)
	require.Equal(t, inv.ID, got.ID)
	require.Equal(t, "hub-1", got.HubID)
	require.Nil(t, got.UsedAt)
	require.WithinDuration(t, inv.ExpiresAt, got.ExpiresAt, time.Millisecond)

	byEmail, err := s.Invites().GetLatestInviteByEmail(ctx, "person@example.com")
	require.NoError(t, err)
	require.Equal(t, inv.ID, byEmail.ID)

	_, err = s.Invites().GetInviteByCode(ctx, "NOPE")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestConsumeInviteCompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	inv := newInvite("CONSUME00001", now.Add(time.Hour))
	require.NoError(t, s.Invites().CreateInvite(ctx, inv))

	used, err := s.Invites().ConsumeInvite(ctx, inv.Code, "user-1", now)
	require.NoError(t, err)
	require.NotNil(t, used.UsedAt)
	require.Equal(t, "user-1", used.UsedBy)

	_, err = s.Invites().ConsumeInvite(ctx, inv.Code, "user-2", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.Invites().GetInviteByCode(ctx, inv.Code)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.UsedBy)

	expired := newInvite("CONSUME00002", now.Add(-time.Minute))
	require.NoError(t, s.Invites().CreateInvite(ctx, expired))
	_, err = s.Invites().ConsumeInvite(ctx, expired.Code, "user-3", now)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestConsumeInviteRejectsExpired(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	inv := newInvite("EXPIRED00001", now.Add(-time.Minute))
	require.NoError(t, s.Invites().CreateInvite(ctx, inv))

	_, err := s.Invites().ConsumeInvite(ctx, inv.Code, "user-1", now)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestConsumeInviteConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	inv := newInvite("RACE00000001", now.Add(time.Hour))
	require.NoError(t, s.Invites().CreateInvite(ctx, inv))

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Invites().ConsumeInvite(ctx, inv.Code, idx.New().String(), now); err == nil {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
}

func TestListInvitesFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	exp := time.Now().Add(time.Hour)

	a := newInvite("LISTAAAAAAAA", exp)
	a.HubID = "hub-a"
	b := newInvite("LISTBBBBBBBB", exp)
	b.HubID = "hub-b"
	g := newInvite("LISTGGGGGGGG", exp)
	for _, inv := range []domain.InviteCode{a, b, g} {
		require.NoError(t, s.Invites().CreateInvite(ctx, inv))
	}

	all, err := s.Invites().ListInvites(ctx, domain.InviteFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	hubA, err := s.Invites().ListInvites(ctx, domain.InviteFilter{HubIDs: []string{"hub-a"}})
	require.NoError(t, err)
	require.Len(t, hubA, 1)
	require.Equal(t, a.ID, hubA[0].ID)

	global, err := s.Invites().ListInvites(ctx, domain.InviteFilter{OnlyGlobal: true})
	require.NoError(t, err)
	require.Len(t, global, 1)
	require.Equal(t, g.ID, global[0].ID)

	page, err := s.Invites().ListInvites(ctx, domain.InviteFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)

	require.NoError(t, s.Invites().DeleteInvite(ctx, a.ID))
	require.ErrorIs(t, s.Invites().DeleteInvite(ctx, a.ID), store.ErrNotFound)
}

func TestRolesAreIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ent, err := domain.Entrepreneur("hub-1")
	require.NoError(t, err)

	added, err := s.Roles().AddRole(ctx, "user-1", ent)
	require.NoError(t, err)
	require.True(t, added)

	added, err = s.Roles().AddRole(ctx, "user-1", ent)
	require.NoError(t, err)
	require.False(t, added)

	// Global grants are deduplicated too, despite the NULL hub.
	added, err = s.Roles().AddRole(ctx, "user-1", domain.GlobalAdmin())
	require.NoError(t, err)
	require.True(t, added)
	added, err = s.Roles().AddRole(ctx, "user-1", domain.GlobalAdmin())
	require.NoError(t, err)
	require.False(t, added)

	set, err := s.Roles().ListRolesByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, set, 2)
	require.True(t, set.Contains(ent))
	require.True(t, set.IsAdmin())

	n, err := s.Roles().CountRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	removed, err := s.Roles().RemoveRole(ctx, "user-1", domain.GlobalAdmin())
	require.NoError(t, err)
	require.True(t, removed)
	removed, err = s.Roles().RemoveRole(ctx, "user-1", domain.GlobalAdmin())
	require.NoError(t, err)
	require.False(t, removed)
}

func TestRoleAuditWrittenInTx(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		changed, err := tx.Roles().AddRole(ctx, "user-1", domain.SuperAdmin())
		if err != nil {
			return err
		}
		return tx.RoleAudit().RecordRoleAudit(ctx, domain.RoleAudit{
			ID:           idx.New().String(),
			ActorID:      "actor-1",
			TargetUserID: "user-1",
			Action:       domain.RoleActionAdd,
			Role:         domain.RoleSuperAdmin,
			Changed:      changed,
			CreatedAt:    time.Now(),
		})
	})
	require.NoError(t, err)

	entries, err := s.RoleAudit().ListRoleAuditByUser(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, entries[0].Changed)
	require.Empty(t, entries[0].HubID)
}

func TestProfileLinkKeepsEmptyFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	require.NoError(t, s.Profiles().CreateProfile(ctx, domain.Profile{
		ID:          "user-1",
		Email:       "a@x.com",
		FullName:    "Ada",
		AccountType: domain.AccountOrganization,
		CreatedAt:   now,
		UpdatedAt:   now,
	}))

	require.NoError(t, s.Profiles().LinkProfile(ctx, "user-1", domain.ProfileLink{HubID: "hub-1"}))

	p, err := s.Profiles().GetProfile(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "Ada", p.FullName)
	require.Equal(t, domain.AccountOrganization, p.AccountType)
	require.Equal(t, "hub-1", p.HubID)

	require.ErrorIs(t, s.Profiles().LinkProfile(ctx, "missing", domain.ProfileLink{FullName: "x"}), store.ErrNotFound)
}

func TestSubscriptionSingleActive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	plan := domain.Plan{ID: idx.New().String(), Name: "Premium", Active: true, CreatedAt: now}
	require.NoError(t, s.Plans().CreatePlan(ctx, plan))

	got, err := s.Plans().GetActivePlanByName(ctx, "premium")
	require.NoError(t, err)
	require.Equal(t, plan.ID, got.ID)

	sub := func() domain.Subscription {
		return domain.Subscription{
			ID:                 idx.New().String(),
			UserID:             "user-1",
			PlanID:             plan.ID,
			CurrentPeriodStart: now,
			CurrentPeriodEnd:   now.Add(domain.DefaultGrantPeriod),
			CreatedAt:          now,
		}
	}

	inserted, err := s.Subscriptions().InsertActiveIfAbsent(ctx, sub())
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = s.Subscriptions().InsertActiveIfAbsent(ctx, sub())
	require.NoError(t, err)
	require.False(t, inserted)

	active, err := s.Subscriptions().GetActiveSubscription(ctx, "user-1", now)
	require.NoError(t, err)
	require.Equal(t, domain.SubscriptionActive, active.Status)

	expired, err := s.Subscriptions().ExpireLapsed(ctx, now.Add(domain.DefaultGrantPeriod+time.Second))
	require.NoError(t, err)
	require.Equal(t, int64(1), expired)

	_, err = s.Subscriptions().GetActiveSubscription(ctx, "user-1", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Once expired, a new active row is allowed.
	inserted, err = s.Subscriptions().InsertActiveIfAbsent(ctx, sub())
	require.NoError(t, err)
	require.True(t, inserted)
}

func TestSagaJournal(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	old := time.Now().Add(-time.Hour)

	rec := domain.SagaRecord{
		ID:         idx.New().String(),
		Email:      "a@x.com",
		InviteCode: "fp",
		State:      domain.SagaStart,
		CreatedAt:  old,
		UpdatedAt:  old,
	}
	require.NoError(t, s.Sagas().CreateSaga(ctx, rec))

	stale, err := s.Sagas().ListStaleSagas(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	require.Empty(t, stale, "sagas without an identity are not reconcilable")

	require.NoError(t, s.Sagas().UpdateSaga(ctx, rec.ID, domain.SagaIdentityCreated, "user-1", ""))
	require.NoError(t, s.Sagas().UpdateSaga(ctx, rec.ID, domain.SagaRollbackFailed, "", "boom"))

	got, err := s.Sagas().GetSaga(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.UserID)
	require.Equal(t, "boom", got.Error)
	require.Equal(t, domain.SagaRollbackFailed, got.State)

	stale, err = s.Sagas().ListStaleSagas(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)

	require.NoError(t, s.Sagas().UpdateSaga(ctx, rec.ID, domain.SagaReconciled, "", ""))
	stale, err = s.Sagas().ListStaleSagas(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	require.Empty(t, stale)

	require.ErrorIs(t, s.Sagas().UpdateSaga(ctx, "missing", domain.SagaDone, "", ""), store.ErrNotFound)
}

func TestIdentityEmailUniqueCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id := domain.Identity{
		ID:           "user-1",
		Email:        "Ada@Example.com",
		PasswordHash: "argon2id$x",
		Metadata:     domain.IdentityMetadata{FullName: "Ada", AccountType: domain.AccountBusiness},
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.Identities().CreateIdentity(ctx, id))

	id.ID = "user-2"
	id.Email = "ada@example.com"
	require.ErrorIs(t, s.Identities().CreateIdentity(ctx, id), store.ErrAlreadyExists)

	got, err := s.Identities().GetIdentityByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	require.Equal(t, "user-1", got.ID)
	require.Equal(t, "Ada", got.Metadata.FullName)
	require.Nil(t, got.EmailConfirmedAt)

	require.NoError(t, s.Identities().ConfirmIdentityEmail(ctx, "user-1", time.Now()))
	got, err = s.Identities().GetIdentityByID(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got.EmailConfirmedAt)

	require.NoError(t, s.Identities().DeleteIdentity(ctx, "user-1"))
	require.ErrorIs(t, s.Identities().DeleteIdentity(ctx, "user-1"), store.ErrNotFound)
}

func TestNestedTxNotSupported(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Tx(ctx)
		return err
	})
	require.Error(t, err)
}
