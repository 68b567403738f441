package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
)

type identitiesRepo struct {
	db dbtx
}

func (r *identitiesRepo) CreateIdentity(ctx context.Context, id domain.Identity) error {
	meta, err := json.Marshal(id.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO identities (id, email, password_hash, email_confirmed_at, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id.ID,
		strings.TrimSpace(id.Email),
		id.PasswordHash,
		mapOptionalTime(id.EmailConfirmedAt),
		string(meta),
		id.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *identitiesRepo) GetIdentityByID(ctx context.Context, id string) (domain.Identity, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, email_confirmed_at, metadata, created_at
		FROM identities WHERE id = ?`, id)
	return scanIdentity(row)
}

func (r *identitiesRepo) GetIdentityByEmail(ctx context.Context, email string) (domain.Identity, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, email_confirmed_at, metadata, created_at
		FROM identities WHERE email = ? COLLATE NOCASE`, strings.TrimSpace(email))
	return scanIdentity(row)
}

func (r *identitiesRepo) ConfirmIdentityEmail(ctx context.Context, id string, at time.Time) error {
	changed, err := rowsChanged(r.db.ExecContext(ctx, `
		UPDATE identities SET email_confirmed_at = ? WHERE id = ?`, at.UTC(), id))
	if err != nil {
		return err
	}
	if !changed {
		return store.ErrNotFound
	}
	return nil
}

func (r *identitiesRepo) DeleteIdentity(ctx context.Context, id string) error {
	changed, err := rowsChanged(r.db.ExecContext(ctx, `DELETE FROM identities WHERE id = ?`, id))
	if err != nil {
		return err
	}
	if !changed {
		return store.ErrNotFound
	}
	return nil
}

func scanIdentity(row scanner) (domain.Identity, error) {
	var (
		id        domain.Identity
		confirmed sql.NullTime
		meta      string
	)
	if err := row.Scan(&id.ID, &id.Email, &id.PasswordHash, &confirmed, &meta, &id.CreatedAt); err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	if meta != "" {
		if err := json.Unmarshal([]byte(meta), &id.Metadata); err != nil {
			return domain.Identity{}, err
		}
	}
	id.EmailConfirmedAt = mapNullTimePtr(confirmed)
	id.CreatedAt = id.CreatedAt.UTC()
	return id, nil
}
