package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/pkg/idx"
)

type rolesRepo struct {
	db dbtx
}

func (r *rolesRepo) ListRolesByUser(ctx context.Context, userID string) (domain.RoleSet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT role, COALESCE(hub_id, '')
		FROM user_roles
		WHERE user_id = ?
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var set domain.RoleSet
	for rows.Next() {
		var role, hub string
		if err := rows.Scan(&role, &hub); err != nil {
			return nil, err
		}
		g, err := domain.NewGrant(domain.RoleName(role), hub)
		if err != nil {
			return nil, fmt.Errorf("user_roles row for %s: %w", userID, err)
		}
		set = append(set, g)
	}
	return set, rows.Err()
}

func (r *rolesRepo) AddRole(ctx context.Context, userID string, g domain.Grant) (bool, error) {
	return rowsChanged(r.db.ExecContext(ctx, `
		INSERT INTO user_roles (id, user_id, role, hub_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		idx.New().String(),
		userID,
		string(g.Role()),
		mapStringNull(g.Hub()),
		time.Now().UTC(),
	))
}

func (r *rolesRepo) RemoveRole(ctx context.Context, userID string, g domain.Grant) (bool, error) {
	return rowsChanged(r.db.ExecContext(ctx, `
		DELETE FROM user_roles
		WHERE user_id = ? AND role = ? AND COALESCE(hub_id, '') = ?`,
		userID, string(g.Role()), g.Hub(),
	))
}

func (r *rolesRepo) DeleteRolesByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, userID)
	return err
}

func (r *rolesRepo) CountRole(ctx context.Context, role domain.RoleName) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_roles WHERE role = ?`, string(role)).Scan(&n)
	return n, err
}
