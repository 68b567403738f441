package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/identity"
	"github.com/aussiebroadwan/hubsignup/internal/signup/metrics"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
)

const (
	DefaultSagaStaleAfter = 15 * time.Minute
	staleSagaBatch        = 100
)

// HousekeepingService periodically expires lapsed subscriptions and
// reconciles signup sagas abandoned by a crash or a failed rollback.
type HousekeepingService struct {
	Store      store.Store
	Identity   identity.Provider
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Interval   time.Duration
	StaleAfter time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(
	s store.Store,
	provider identity.Provider,
	m *metrics.Metrics,
	logger *slog.Logger,
	interval, staleAfter time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if staleAfter <= 0 {
		staleAfter = DefaultSagaStaleAfter
	}
	return &HousekeepingService{
		Store:      s,
		Identity:   provider,
		Metrics:    m,
		Logger:     logger,
		Interval:   interval,
		StaleAfter: staleAfter,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		"interval", s.Interval,
		"saga_stale_after", s.StaleAfter,
	)
}

// Stop blocks until the worker has finished any in-progress sweep.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce performs a single sweep. Each task is independent; a failure in
// one does not stop the other.
func (s *HousekeepingService) RunOnce(ctx context.Context) {
	ctx = slogx.WithContext(ctx, s.Logger)
	now := time.Now().UTC()

	n, err := s.Store.Subscriptions().ExpireLapsed(ctx, now)
	if err != nil {
		s.Logger.Error("failed to expire lapsed subscriptions", "error", err)
	} else {
		s.Metrics.SubscriptionsExpired(n)
		s.Logger.Debug("expired lapsed subscriptions", "count", n)
	}

	reconciled, failed := s.reconcileSagas(ctx, now.Add(-s.StaleAfter))
	s.Logger.Info("housekeeping sweep completed",
		"subscriptions_expired", n,
		"sagas_reconciled", reconciled,
		"sagas_failed", failed,
	)
}

// reconcileSagas finishes the rollback of stale sagas. Sagas that never got
// past identity creation, or that were already rolling back, lose their
// identity. A saga that consumed its invite may belong to a working account
// whose final journal write was lost, so it is flagged for review instead.
func (s *HousekeepingService) reconcileSagas(ctx context.Context, cutoff time.Time) (reconciled, failed int) {
	sagas, err := s.Store.Sagas().ListStaleSagas(ctx, cutoff, staleSagaBatch)
	if err != nil {
		s.Logger.Error("failed to list stale sagas", "error", err)
		return 0, 0
	}

	for _, rec := range sagas {
		log := s.Logger.With("saga_id", rec.ID, "user_id", rec.UserID, "state", string(rec.State))

		switch rec.State {
		case domain.SagaIdentityCreated, domain.SagaRollback, domain.SagaRollbackFailed:
		default:
			log.Warn("stale saga past invite consumption needs review")
			if err := s.Store.Sagas().UpdateSaga(ctx, rec.ID, domain.SagaFailed, "", "stale after "+string(rec.State)); err != nil {
				log.Error("failed to mark saga failed", "error", err)
			}
			failed++
			continue
		}

		err := s.Identity.Delete(ctx, rec.UserID)
		if err != nil && !errors.Is(err, identity.ErrNotFound) {
			slogx.Critical(ctx, "saga reconciliation failed, identity still orphaned",
				slog.String("saga_id", rec.ID),
				slog.String("user_id", rec.UserID),
				slog.Any("error", err),
			)
			s.Metrics.SagaReconciled(false)
			failed++
			continue
		}

		if err := s.Store.Sagas().UpdateSaga(ctx, rec.ID, domain.SagaReconciled, "", ""); err != nil {
			log.Error("failed to mark saga reconciled", "error", err)
		}
		s.Metrics.SagaReconciled(true)
		log.Info("stale saga reconciled")
		reconciled++
	}
	return reconciled, failed
}
