package sqlite

import (
	"context"
	"database/sql"
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
	changed, err := rowsChanged(r.db.ExecContext(ctx, `
		INSERT INTO invite_codes (`+inviteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		inv.ID,
		inv.Code,
		mapStringNull(inv.InvitedEmail),
		string(inv.AccountType),
		mapStringNull(inv.HubID),
		inv.CreatedBy,
		inv.ExpiresAt.UTC(),
		mapOptionalTime(inv.UsedAt),
		mapStringNull(inv.UsedBy),
		inv.CreatedAt.UTC(),
	))
	if err != nil {
		return err
	}
	if !changed {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *invitesRepo) GetInviteByCode(ctx context.Context, code string) (domain.InviteCode, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invite_codes WHERE code = ?`, code)
	return scanInvite(row)
}

func (r *invitesRepo) GetInviteByID(ctx context.Context, id string) (domain.InviteCode, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invite_codes WHERE id = ?`, id)
	return scanInvite(row)
}

func (r *invitesRepo) GetLatestInviteByEmail(ctx context.Context, email string) (domain.InviteCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+inviteColumns+` FROM invite_codes
		WHERE invited_email = ? COLLATE NOCASE
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, strings.TrimSpace(email))
	return scanInvite(row)
}

func (r *invitesRepo) ConsumeInvite(
	ctx context.Context,
	code string,
	userID string,
	now time.Time,
) (domain.InviteCode, error) {
	now = now.UTC()
	changed, err := rowsChanged(r.db.ExecContext(ctx, `
		UPDATE invite_codes
		SET used_at = ?, used_by = ?
		WHERE code = ? AND used_at IS NULL AND expires_at > ?`,
		now, userID, code, now,
	))
	if err != nil {
		return domain.InviteCode{}, err
	}
	if !changed {
		return domain.InviteCode{}, store.ErrNotFound
	}
	return r.GetInviteByCode(ctx, code)
}

func (r *invitesRepo) ListInvites(ctx context.Context, f domain.InviteFilter) ([]domain.InviteCode, error) {
	query := `SELECT ` + inviteColumns + ` FROM invite_codes`
	var args []any

	switch {
	case len(f.HubIDs) > 0:
		query += ` WHERE hub_id IN (` + placeholders(len(f.HubIDs)) + `)`
		for _, h := range f.HubIDs {
			args = append(args, h)
		}
	case f.OnlyGlobal:
		query += ` WHERE hub_id IS NULL`
	}

	limit := f.Limit
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, max(f.Offset, 0))

	rows, err := r.db.QueryContext(ctx, query, args...)
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
	changed, err := rowsChanged(r.db.ExecContext(ctx, `DELETE FROM invite_codes WHERE id = ?`, id))
	if err != nil {
		return err
	}
	if !changed {
		return store.ErrNotFound
	}
	return nil
}

func scanInvite(row scanner) (domain.InviteCode, error) {
	var (
		inv          domain.InviteCode
		accountType  string
		invitedEmail sql.NullString
		hubID        sql.NullString
		usedAt       sql.NullTime
		usedBy       sql.NullString
	)
	err := row.Scan(
		&inv.ID,
		&inv.Code,
		&invitedEmail,
		&accountType,
		&hubID,
		&inv.CreatedBy,
		&inv.ExpiresAt,
		&usedAt,
		&usedBy,
		&inv.CreatedAt,
	)
	if err != nil {
		return domain.InviteCode{}, mapNotFound(err)
	}

	inv.InvitedEmail = mapNullString(invitedEmail)
	inv.AccountType = domain.AccountType(accountType)
	inv.HubID = mapNullString(hubID)
	inv.UsedAt = mapNullTimePtr(usedAt)
	inv.UsedBy = mapNullString(usedBy)
	inv.ExpiresAt = inv.ExpiresAt.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	return inv, nil
}
