package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
)

const identityColumns = `id, email, password_hash, email_confirmed_at, metadata, created_at`

type identitiesRepo struct {
	db dbtx
}

func (r *identitiesRepo) CreateIdentity(ctx context.Context, id domain.Identity) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO identities (`+identityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id.ID,
		strings.TrimSpace(id.Email),
		id.PasswordHash,
		utcPtr(id.EmailConfirmedAt),
		id.Metadata, // encoded as jsonb
		id.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *identitiesRepo) GetIdentityByID(ctx context.Context, id string) (domain.Identity, error) {
	return scanIdentity(r.db.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE id = $1`, id))
}

func (r *identitiesRepo) GetIdentityByEmail(ctx context.Context, email string) (domain.Identity, error) {
	return scanIdentity(r.db.QueryRow(ctx, `
		SELECT `+identityColumns+` FROM identities WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
}

func (r *identitiesRepo) ConfirmIdentityEmail(ctx context.Context, id string, at time.Time) error {
	ok, err := changed(r.db.Exec(ctx, `UPDATE identities SET email_confirmed_at = $1 WHERE id = $2`, at.UTC(), id))
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func (r *identitiesRepo) DeleteIdentity(ctx context.Context, id string) error {
	ok, err := changed(r.db.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id))
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func scanIdentity(row scanner) (domain.Identity, error) {
	var id domain.Identity
	if err := row.Scan(&id.ID, &id.Email, &id.PasswordHash, &id.EmailConfirmedAt, &id.Metadata, &id.CreatedAt); err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	id.EmailConfirmedAt = utcPtr(id.EmailConfirmedAt)
	id.CreatedAt = id.CreatedAt.UTC()
	return id, nil
}
