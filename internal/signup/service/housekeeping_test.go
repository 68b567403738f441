package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/identity"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingExpiresLapsedSubscriptions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	plan := e.premiumPlan(t)

	past := time.Now().UTC().Add(-48 * time.Hour)
	inserted, err := e.store.Subscriptions().InsertActiveIfAbsent(ctx, domain.Subscription{
		ID:                 "sub-1",
		UserID:             "user-1",
		PlanID:             plan.ID,
		Status:             domain.SubscriptionActive,
		CurrentPeriodStart: past.Add(-domain.DefaultGrantPeriod),
		CurrentPeriodEnd:   past,
		CreatedAt:          past,
	})
	require.NoError(t, err)
	require.True(t, inserted)

	hk := NewHousekeepingService(e.store, e.provider, nil, discardLogger(), time.Hour, 0)
	hk.RunOnce(ctx)

	// The lapsed row no longer blocks a fresh grant.
	res, err := e.subs.GrantDefaultIfEligible(ctx, "user-1", domain.AccountBusiness, true)
	require.NoError(t, err)
	require.True(t, res.Assigned)
}

func TestHousekeepingReconcilesStaleSagas(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	create := func(email string, state domain.SagaState) (sagaID, userID string) {
		userID, err := e.provider.Provider.Create(ctx, identity.CreateRequest{Email: email, Password: "correct-horse-battery"})
		require.NoError(t, err)

		old := time.Now().UTC().Add(-time.Hour)
		sagaID = "saga-" + email
		require.NoError(t, e.store.Sagas().CreateSaga(ctx, domain.SagaRecord{
			ID: sagaID, Email: email, InviteCode: "fp", State: domain.SagaStart, CreatedAt: old, UpdatedAt: old,
		}))
		require.NoError(t, e.store.Sagas().UpdateSaga(ctx, sagaID, state, userID, ""))
		return sagaID, userID
	}

	crashed, _ := create("crashed@example.com", domain.SagaIdentityCreated)
	consumed, _ := create("consumed@example.com", domain.SagaProfileLinked)
	finished, _ := create("finished@example.com", domain.SagaDone)

	hk := NewHousekeepingService(e.store, e.provider, nil, discardLogger(), time.Hour, time.Nanosecond)
	hk.RunOnce(ctx)

	states := map[string]domain.SagaState{}
	for _, id := range []string{crashed, consumed, finished} {
		rec, err := e.store.Sagas().GetSaga(ctx, id)
		require.NoError(t, err)
		states[id] = rec.State
	}
	require.Equal(t, domain.SagaReconciled, states[crashed])
	require.Equal(t, domain.SagaFailed, states[consumed])
	require.Equal(t, domain.SagaDone, states[finished])

	_, err := e.store.Identities().GetIdentityByEmail(ctx, "crashed@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = e.store.Identities().GetIdentityByEmail(ctx, "consumed@example.com")
	require.NoError(t, err, "accounts past invite consumption are kept for review")
}

func TestHousekeepingStartStop(t *testing.T) {
	e := newEnv(t)
	hk := NewHousekeepingService(e.store, e.provider, nil, discardLogger(), time.Hour, 0)
	hk.Start()
	hk.Stop()
}
