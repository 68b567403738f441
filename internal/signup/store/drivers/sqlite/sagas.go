package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
)

type sagasRepo struct {
	db dbtx
}

func (r *sagasRepo) CreateSaga(ctx context.Context, rec domain.SagaRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO signup_sagas (id, email, invite_code, user_id, state, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Email,
		rec.InviteCode,
		mapStringNull(rec.UserID),
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
	changed, err := rowsChanged(r.db.ExecContext(ctx, `
		UPDATE signup_sagas
		SET state      = ?,
		    user_id    = COALESCE(?, user_id),
		    error      = COALESCE(NULLIF(?, ''), error),
		    updated_at = ?
		WHERE id = ?`,
		string(state), mapStringNull(userID), errMsg, time.Now().UTC(), id,
	))
	if err != nil {
		return err
	}
	if !changed {
		return store.ErrNotFound
	}
	return nil
}

func (r *sagasRepo) GetSaga(ctx context.Context, id string) (domain.SagaRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, invite_code, user_id, state, error, created_at, updated_at
		FROM signup_sagas WHERE id = ?`, id)
	return scanSaga(row)
}

func (r *sagasRepo) ListStaleSagas(ctx context.Context, cutoff time.Time, limit int) ([]domain.SagaRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	args := make([]any, 0, len(domain.NonTerminalSagaStates)+2)
	for _, s := range domain.NonTerminalSagaStates {
		args = append(args, string(s))
	}
	args = append(args, cutoff.UTC(), limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, invite_code, user_id, state, error, created_at, updated_at
		FROM signup_sagas
		WHERE state IN (`+placeholders(len(domain.NonTerminalSagaStates))+`)
		  AND user_id IS NOT NULL
		  AND updated_at < ?
		ORDER BY updated_at ASC
		LIMIT ?`, args...)
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
		userID sql.NullString
		state  string
	)
	err := row.Scan(&rec.ID, &rec.Email, &rec.InviteCode, &userID, &state, &rec.Error, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return domain.SagaRecord{}, mapNotFound(err)
	}
	rec.UserID = mapNullString(userID)
	rec.State = domain.SagaState(state)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}
