package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/pkg/cryptox"
	"github.com/aussiebroadwan/hubsignup/pkg/idx"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
)

// DefaultRollbackTimeout bounds the whole compensation run.
const DefaultRollbackTimeout = 10 * time.Second

type compensation struct {
	name string
	fn   func(ctx context.Context) error
}

// saga tracks one signup run: its journal row and the compensations
// registered by completed steps. Journal writes are best-effort; a saga
// whose journal is unavailable still runs and still compensates.
type saga struct {
	id      string
	store   store.Store
	log     *slog.Logger
	state   domain.SagaState
	userID  string
	timeout time.Duration
	undo    []compensation
}

func newSaga(ctx context.Context, s store.Store, email, inviteCode string, timeout time.Duration) *saga {
	sg := &saga{
		id:      idx.New().String(),
		store:   s,
		state:   domain.SagaStart,
		timeout: timeout,
	}
	sg.log = slogx.FromContext(ctx).With(slog.String("saga_id", sg.id))

	now := time.Now().UTC()
	err := s.Sagas().CreateSaga(ctx, domain.SagaRecord{
		ID:         sg.id,
		Email:      email,
		InviteCode: cryptox.FingerprintToken(inviteCode),
		State:      domain.SagaStart,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		sg.log.Warn("saga journal unavailable", slog.Any("error", err))
	}
	return sg
}

// advance records a completed step.
func (s *saga) advance(ctx context.Context, state domain.SagaState) {
	s.state = state
	s.journal(ctx, state, "")
}

// identityCreated binds the saga to the new identity.
func (s *saga) identityCreated(ctx context.Context, userID string) {
	s.userID = userID
	s.log = s.log.With(slog.String("user_id", userID))
	s.advance(ctx, domain.SagaIdentityCreated)
}

// fail ends a saga that never created anything.
func (s *saga) fail(ctx context.Context, cause error) {
	s.state = domain.SagaFailed
	s.journal(ctx, domain.SagaFailed, cause.Error())
}

// onRollback registers the compensation for the step that just completed.
func (s *saga) onRollback(name string, fn func(ctx context.Context) error) {
	s.undo = append(s.undo, compensation{name: name, fn: fn})
}

// rollback runs the registered compensations newest first and returns the
// error the caller should see: cause itself, or a *RollbackError wrapping
// it when a compensation failed. Cancellation of ctx does not stop it.
func (s *saga) rollback(ctx context.Context, cause error) error {
	ctx = context.WithoutCancel(ctx)
	timeout := s.timeout
	if timeout <= 0 {
		timeout = DefaultRollbackTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	failedAt := s.state
	s.state = domain.SagaRollback
	s.journal(ctx, domain.SagaRollback, cause.Error())
	s.log.Warn("signup step failed, rolling back",
		slog.String("failed_after", string(failedAt)),
		slog.Any("error", cause),
	)

	var errs []error
	for i := len(s.undo) - 1; i >= 0; i-- {
		c := s.undo[i]
		if err := c.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	s.undo = nil

	if len(errs) == 0 {
		s.state = domain.SagaRolledBack
		s.journal(ctx, domain.SagaRolledBack, cause.Error())
		return cause
	}

	compErr := errors.Join(errs...)
	s.state = domain.SagaRollbackFailed
	s.journal(ctx, domain.SagaRollbackFailed, compErr.Error())
	slogx.Critical(ctx, "signup rollback failed, identity may be orphaned",
		slog.String("saga_id", s.id),
		slog.String("user_id", s.userID),
		slog.String("failed_after", string(failedAt)),
		slog.Any("cause", cause),
		slog.Any("compensation_error", compErr),
	)
	return &RollbackError{Cause: cause, Compensation: compErr}
}

func (s *saga) journal(ctx context.Context, state domain.SagaState, errMsg string) {
	if err := s.store.Sagas().UpdateSaga(ctx, s.id, state, s.userID, errMsg); err != nil {
		s.log.Warn("saga journal update failed",
			slog.String("state", string(state)),
			slog.Any("error", err),
		)
	}
}
