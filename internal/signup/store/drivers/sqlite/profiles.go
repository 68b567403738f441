package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
)

type profilesRepo struct {
	db dbtx
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, full_name, account_type, hub_id, email_confirmed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Email,
		p.FullName,
		string(p.AccountType),
		mapStringNull(p.HubID),
		p.EmailConfirmed,
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *profilesRepo) GetProfile(ctx context.Context, id string) (domain.Profile, error) {
	var (
		p           domain.Profile
		accountType string
		hubID       sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, account_type, hub_id, email_confirmed, created_at, updated_at
		FROM profiles WHERE id = ?`, id,
	).Scan(&p.ID, &p.Email, &p.FullName, &accountType, &hubID, &p.EmailConfirmed, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	p.AccountType = domain.AccountType(accountType)
	p.HubID = mapNullString(hubID)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *profilesRepo) LinkProfile(ctx context.Context, id string, link domain.ProfileLink) error {
	changed, err := rowsChanged(r.db.ExecContext(ctx, `
		UPDATE profiles
		SET full_name    = COALESCE(NULLIF(?, ''), full_name),
		    account_type = COALESCE(NULLIF(?, ''), account_type),
		    hub_id       = COALESCE(?, hub_id),
		    updated_at   = ?
		WHERE id = ?`,
		link.FullName,
		string(link.AccountType),
		mapStringNull(link.HubID),
		time.Now().UTC(),
		id,
	))
	if err != nil {
		return err
	}
	if !changed {
		return store.ErrNotFound
	}
	return nil
}

func (r *profilesRepo) SetEmailConfirmed(ctx context.Context, id string, confirmed bool) error {
	changed, err := rowsChanged(r.db.ExecContext(ctx, `
		UPDATE profiles SET email_confirmed = ?, updated_at = ? WHERE id = ?`,
		confirmed, time.Now().UTC(), id,
	))
	if err != nil {
		return err
	}
	if !changed {
		return store.ErrNotFound
	}
	return nil
}

func (r *profilesRepo) DeleteProfile(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	return err
}
