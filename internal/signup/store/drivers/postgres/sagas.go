package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
)

const sagaColumns = `id, email, invite_code, user_id, state, error, created_at, updated_at`

type sagasRepo struct {
	db dbtx
}

func (r *sagasRepo) CreateSaga(ctx context.Context, rec domain.SagaRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO signup_sagas (`+sagaColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID,
		rec.Email,
		rec.InviteCode,
		nullable(rec.UserID),
		string(rec.State),
		rec.Error,
		rec.CreatedAt.UTC(),
		rec.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *sagasRepo) UpdateSaga(
	ctx context.Context,
	id string,
	state domain.SagaState,
	userID string,
	errMsg string,
) error {
	ok, err := changed(r.db.Exec(ctx, `
		UPDATE signup_sagas
		SET state      = $1,
		    user_id    = COALESCE($2, user_id),
		    error      = COALESCE(NULLIF($3, ''), error),
		    updated_at = now()
		WHERE id = $4`,
		string(state), nullable(userID), errMsg, id,
	))
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func (r *sagasRepo) GetSaga(ctx context.Context, id string) (domain.SagaRecord, error) {
	return scanSaga(r.db.QueryRow(ctx, `SELECT `+sagaColumns+` FROM signup_sagas WHERE id = $1`, id))
}

func (r *sagasRepo) ListStaleSagas(ctx context.Context, cutoff time.Time, limit int) ([]domain.SagaRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	states := make([]string, len(domain.NonTerminalSagaStates))
	for i, s := range domain.NonTerminalSagaStates {
		states[i] = string(s)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+sagaColumns+`
		FROM signup_sagas
		WHERE state = ANY($1)
		  AND user_id IS NOT NULL
		  AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3`, states, cutoff.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SagaRecord
	for rows.Next() {
		rec, err := scanSaga(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanSaga(row scanner) (domain.SagaRecord, error) {
	var (
		rec    domain.SagaRecord
		userID *string
		state  string
	)
	if err := row.Scan(&rec.ID, &rec.Email, &rec.InviteCode, &userID, &state, &rec.Error, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return domain.SagaRecord{}, mapNotFound(err)
	}
	rec.UserID = deref(userID)
	rec.State = domain.SagaState(state)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}
