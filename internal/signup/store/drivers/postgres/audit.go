package postgres

import (
	"context"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
)

type roleAuditRepo struct {
	db dbtx
}

func (r *roleAuditRepo) RecordRoleAudit(ctx context.Context, a domain.RoleAudit) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO role_audit (id, actor_id, target_user_id, action, role, hub_id, reason, changed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID,
		a.ActorID,
		a.TargetUserID,
		string(a.Action),
		string(a.Role),
		nullable(a.HubID),
		a.Reason,
		a.Changed,
		a.CreatedAt.UTC(),
	)
	return err
}

func (r *roleAuditRepo) ListRoleAuditByUser(ctx context.Context, userID string, limit int) ([]domain.RoleAudit, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, actor_id, target_user_id, action, role, hub_id, reason, changed, created_at
		FROM role_audit
		WHERE target_user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, lim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RoleAudit
	for rows.Next() {
		var (
			a      domain.RoleAudit
			action string
			role   string
			hubID  *string
		)
		if err := rows.Scan(&a.ID, &a.ActorID, &a.TargetUserID, &action, &role, &hubID, &a.Reason, &a.Changed, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Action = domain.RoleAction(action)
		a.Role = domain.RoleName(role)
		a.HubID = deref(hubID)
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
