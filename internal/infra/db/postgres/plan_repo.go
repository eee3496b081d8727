package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"iptv-reseller-store/internal/convert"
	"iptv-reseller-store/internal/domain"
	"iptv-reseller-store/internal/domain/model"
	"iptv-reseller-store/internal/domain/ports/repository"
)

var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct {
	pool *pgxpool.Pool
}

func NewPlanRepo(pool *pgxpool.Pool) repository.PlanRepository {
	return &planRepo{pool: pool}
}

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	row := convert.ToPlanRow(*p)
	const q = `
INSERT INTO plans (id, name, description, price, duration, features, points_reward, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
  name          = EXCLUDED.name,
  description   = EXCLUDED.description,
  price         = EXCLUDED.price,
  duration      = EXCLUDED.duration,
  features      = EXCLUDED.features,
  points_reward = EXCLUDED.points_reward,
  is_active     = EXCLUDED.is_active;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		row.ID, row.Name, row.Description, row.Price, row.Duration, row.Features, row.PointsReward, row.IsActive, row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

func (r *planRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	const q = `
SELECT id, name, description, price, duration, features, points_reward, is_active, created_at
  FROM plans
 WHERE id = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	var pr convert.PlanRow
	err = row.Scan(&pr.ID, &pr.Name, &pr.Description, &pr.Price, &pr.Duration, &pr.Features, &pr.PointsReward, &pr.IsActive, &pr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	p := convert.ToPlan(pr)
	return &p, nil
}

func (r *planRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	const q = `
SELECT id, name, description, price, duration, features, points_reward, is_active, created_at
  FROM plans
 ORDER BY created_at DESC;
`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var out []*model.Plan
	for rows.Next() {
		var pr convert.PlanRow
		if err := rows.Scan(&pr.ID, &pr.Name, &pr.Description, &pr.Price, &pr.Duration, &pr.Features, &pr.PointsReward, &pr.IsActive, &pr.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		p := convert.ToPlan(pr)
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Delete removes the plan; the codes FK is ON DELETE CASCADE so its
// inventory goes with it. Purchases keep their code_id references and are
// left as historical records.
func (r *planRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM plans WHERE id = $1;`
	ct, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
