package postgres

import (
	"context"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
)

type plansRepo struct {
	db dbtx
}

func (r *plansRepo) CreatePlan(ctx context.Context, p domain.Plan) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO subscription_plans (id, name, is_active, created_at)
		VALUES ($1, $2, $3, $4)`,
		p.ID, p.Name, p.Active, p.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *plansRepo) GetActivePlanByName(ctx context.Context, name string) (domain.Plan, error) {
	var p domain.Plan
	err := r.db.QueryRow(ctx, `
		SELECT id, name, is_active, created_at
		FROM subscription_plans
		WHERE lower(name) = lower($1) AND is_active
		LIMIT 1`, name,
	).Scan(&p.ID, &p.Name, &p.Active, &p.CreatedAt)
	if err != nil {
		return domain.Plan{}, mapNotFound(err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}
