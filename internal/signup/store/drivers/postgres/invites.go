package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
)

const inviteColumns = `id, code, invited_email, account_type, hub_id, created_by, expires_at, used_at, used_by, created_at`

type invitesRepo struct {
	db dbtx
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.InviteCode) error {
	ok, err := changed(r.db.Exec(ctx, `
		INSERT INTO invite_codes (`+inviteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT DO NOTHING`,
		inv.ID,
		inv.Code,
		nullable(inv.InvitedEmail),
		string(inv.AccountType),
		nullable(inv.HubID),
		inv.CreatedBy,
		inv.ExpiresAt.UTC(),
		utcPtr(inv.UsedAt),
		nullable(inv.UsedBy),
		inv.CreatedAt.UTC(),
	))
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *invitesRepo) GetInviteByCode(ctx context.Context, code string) (domain.InviteCode, error) {
	return scanInvite(r.db.QueryRow(ctx, `SELECT `+inviteColumns+` FROM invite_codes WHERE code = $1`, code))
}

func (r *invitesRepo) GetInviteByID(ctx context.Context, id string) (domain.InviteCode, error) {
	return scanInvite(r.db.QueryRow(ctx, `SELECT `+inviteColumns+` FROM invite_codes WHERE id = $1`, id))
}

func (r *invitesRepo) GetLatestInviteByEmail(ctx context.Context, email string) (domain.InviteCode, error) {
	return scanInvite(r.db.QueryRow(ctx, `
		SELECT `+inviteColumns+` FROM invite_codes
		WHERE lower(invited_email) = lower($1)
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, strings.TrimSpace(email)))
}

func (r *invitesRepo) ConsumeInvite(
	ctx context.Context,
	code string,
	userID string,
	now time.Time,
) (domain.InviteCode, error) {
	return scanInvite(r.db.QueryRow(ctx, `
		UPDATE invite_codes
		SET used_at = $1, used_by = $2
		WHERE code = $3 AND used_at IS NULL AND expires_at > $1
		RETURNING `+inviteColumns,
		now.UTC(), userID, code,
	))
}

func (r *invitesRepo) ListInvites(ctx context.Context, f domain.InviteFilter) ([]domain.InviteCode, error) {
	query := `SELECT ` + inviteColumns + ` FROM invite_codes`
	var args []any

	switch {
	case len(f.HubIDs) > 0:
		query += ` WHERE hub_id = ANY($1)`
		args = append(args, f.HubIDs)
	case f.OnlyGlobal:
		query += ` WHERE hub_id IS NULL`
	}

	var limit *int
	if f.Limit > 0 {
		limit = &f.Limit
	}
	n := len(args)
	query += ` ORDER BY created_at DESC, id DESC LIMIT ` + placeholders(n+1, 1) + ` OFFSET ` + placeholders(n+2, 1)
	args = append(args, limit, max(f.Offset, 0))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InviteCode
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitesRepo) DeleteInvite(ctx context.Context, id string) error {
	ok, err := changed(r.db.Exec(ctx, `DELETE FROM invite_codes WHERE id = $1`, id))
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func scanInvite(row scanner) (domain.InviteCode, error) {
	var (
		inv          domain.InviteCode
		accountType  string
		invitedEmail *string
		hubID        *string
		usedBy       *string
	)
	err := row.Scan(
		&inv.ID,
		&inv.Code,
		&invitedEmail,
		&accountType,
		&hubID,
		&inv.CreatedBy,
		&inv.ExpiresAt,
		&inv.UsedAt,
		&usedBy,
		&inv.CreatedAt,
	)
	if err != nil {
		return domain.InviteCode{}, mapNotFound(err)
	}
	inv.InvitedEmail = deref(invitedEmail)
	inv.AccountType = domain.AccountType(accountType)
	inv.HubID = deref(hubID)
	inv.UsedBy = deref(usedBy)
	inv.UsedAt = utcPtr(inv.UsedAt)
	inv.ExpiresAt = inv.ExpiresAt.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	return inv, nil
}
