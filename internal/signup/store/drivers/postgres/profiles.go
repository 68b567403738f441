package postgres

import (
	"context"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
)

type profilesRepo struct {
	db dbtx
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO profiles (id, email, full_name, account_type, hub_id, email_confirmed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID,
		p.Email,
		p.FullName,
		string(p.AccountType),
		nullable(p.HubID),
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
		hubID       *string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, email, full_name, account_type, hub_id, email_confirmed, created_at, updated_at
		FROM profiles WHERE id = $1`, id,
	).Scan(&p.ID, &p.Email, &p.FullName, &accountType, &hubID, &p.EmailConfirmed, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	p.AccountType = domain.AccountType(accountType)
	p.HubID = deref(hubID)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *profilesRepo) LinkProfile(ctx context.Context, id string, link domain.ProfileLink) error {
	ok, err := changed(r.db.Exec(ctx, `
		UPDATE profiles
		SET full_name    = COALESCE(NULLIF($1, ''), full_name),
		    account_type = COALESCE(NULLIF($2, ''), account_type),
		    hub_id       = COALESCE($3, hub_id),
		    updated_at   = now()
		WHERE id = $4`,
		link.FullName, string(link.AccountType), nullable(link.HubID), id,
	))
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func (r *profilesRepo) SetEmailConfirmed(ctx context.Context, id string, confirmed bool) error {
	ok, err := changed(r.db.Exec(ctx, `
		UPDATE profiles SET email_confirmed = $1, updated_at = now() WHERE id = $2`, confirmed, id))
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func (r *profilesRepo) DeleteProfile(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	return err
}
