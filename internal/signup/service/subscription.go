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

// SubscriptionAutoAssigner grants the default plan to qualifying signups.
type SubscriptionAutoAssigner struct {
	Store   store.Store
	Metrics *metrics.Metrics

	// Period defaults to domain.DefaultGrantPeriod.
	Period time.Duration

	now func() time.Time
}

// GrantDefaultIfEligible gives a hub-linked business account an active
// premium subscription unless it already has one. A deployment without a
// premium plan is normal and yields {Assigned: false, Plan: "free"}.
func (s *SubscriptionAutoAssigner) GrantDefaultIfEligible(
	ctx context.Context,
	userID string,
	accountType domain.AccountType,
	hubLinked bool,
) (domain.GrantResult, error) {
	log := slogx.FromContext(ctx).With(slog.String("user_id", userID))
	free := domain.GrantResult{Plan: domain.FreePlanName}

	if accountType != domain.AccountBusiness || !hubLinked {
		s.Metrics.SubscriptionGrant(metrics.GrantIneligible)
		return free, nil
	}

	plan, err := s.Store.Plans().GetActivePlanByName(ctx, domain.PremiumPlanName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("no premium plan configured")
			s.Metrics.SubscriptionGrant(metrics.GrantNoPlan)
			return free, nil
		}
		return domain.GrantResult{}, err
	}

	now := time.Now().UTC()
	if s.now != nil {
		now = s.now().UTC()
	}
	premium := domain.GrantResult{Plan: domain.PremiumPlanName}

	_, err = s.Store.Subscriptions().GetActiveSubscription(ctx, userID, now)
	switch {
	case err == nil:
		s.Metrics.SubscriptionGrant(metrics.GrantExisting)
		return premium, nil
	case !errors.Is(err, store.ErrNotFound):
		return domain.GrantResult{}, err
	}

	period := s.Period
	if period <= 0 {
		period = domain.DefaultGrantPeriod
	}

	// A lapsed row still marked active would hold the partial unique index on
	// active rows, so it is expired on the same transaction as the insert. The
	// index closes the check-then-insert race; losing it is the same as
	// finding an existing subscription.
	var inserted bool
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		expired, err := tx.Subscriptions().ExpireLapsedForUser(ctx, userID, now)
		if err != nil {
			return err
		}
		if expired > 0 {
			log.Info("expired lapsed subscription before grant", slog.Int64("count", expired))
		}
		inserted, err = tx.Subscriptions().InsertActiveIfAbsent(ctx, domain.Subscription{
			ID:                 idx.New().String(),
			UserID:             userID,
			PlanID:             plan.ID,
			Status:             domain.SubscriptionActive,
			CurrentPeriodStart: now,
			CurrentPeriodEnd:   now.Add(period),
			CreatedAt:          now,
		})
		return err
	})
	if err != nil {
		return domain.GrantResult{}, err
	}
	if !inserted {
		s.Metrics.SubscriptionGrant(metrics.GrantExisting)
		return premium, nil
	}

	premium.Assigned = true
	s.Metrics.SubscriptionGrant(metrics.GrantAssigned)
	log.Info("default subscription assigned",
		slog.String("plan_id", plan.ID),
		slog.Time("period_end", now.Add(period)),
	)
	return premium, nil
}
