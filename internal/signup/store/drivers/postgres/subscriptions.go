package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
)

type subscriptionsRepo struct {
	db dbtx
}

func (r *subscriptionsRepo) GetActiveSubscription(
	ctx context.Context,
	userID string,
	now time.Time,
) (domain.Subscription, error) {
	var (
		s      domain.Subscription
		status string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, plan_id, status, current_period_start, current_period_end, created_at
		FROM user_subscriptions
		WHERE user_id = $1 AND status = 'active' AND current_period_end > $2
		LIMIT 1`, userID, now.UTC(),
	).Scan(&s.ID, &s.UserID, &s.PlanID, &status, &s.CurrentPeriodStart, &s.CurrentPeriodEnd, &s.CreatedAt)
	if err != nil {
		return domain.Subscription{}, mapNotFound(err)
	}
	s.Status = domain.SubscriptionStatus(status)
	s.CurrentPeriodStart = s.CurrentPeriodStart.UTC()
	s.CurrentPeriodEnd = s.CurrentPeriodEnd.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}

func (r *subscriptionsRepo) InsertActiveIfAbsent(ctx context.Context, s domain.Subscription) (bool, error) {
	return changed(r.db.Exec(ctx, `
		INSERT INTO user_subscriptions (id, user_id, plan_id, status, current_period_start, current_period_end, created_at)
		VALUES ($1, $2, $3, 'active', $4, $5, $6)
		ON CONFLICT DO NOTHING`,
		s.ID,
		s.UserID,
		s.PlanID,
		s.CurrentPeriodStart.UTC(),
		s.CurrentPeriodEnd.UTC(),
		s.CreatedAt.UTC(),
	))
}

func (r *subscriptionsRepo) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE user_subscriptions
		SET status = 'expired'
		WHERE status = 'active' AND current_period_end <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *subscriptionsRepo) ExpireLapsedForUser(ctx context.Context, userID string, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE user_subscriptions
		SET status = 'expired'
		WHERE user_id = $1 AND status = 'active' AND current_period_end <= $2`, userID, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *subscriptionsRepo) DeleteSubscriptionsByUser(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_subscriptions WHERE user_id = $1`, userID)
	return err
}
