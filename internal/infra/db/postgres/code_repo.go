package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"iptv-reseller-store/internal/convert"
	"iptv-reseller-store/internal/domain"
	"iptv-reseller-store/internal/domain/model"
	"iptv-reseller-store/internal/domain/ports/repository"
)

var _ repository.CodeRepository = (*codeRepo)(nil)

type codeRepo struct {
	pool *pgxpool.Pool
}

func NewCodeRepo(pool *pgxpool.Pool) repository.CodeRepository {
	return &codeRepo{pool: pool}
}

func (r *codeRepo) SaveBatch(ctx context.Context, tx repository.Tx, codes []*model.Code) error {
	if len(codes) == 0 {
		return nil
	}
	const q = `
INSERT INTO codes (id, plan_id, code, is_used, used_by, used_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	for _, c := range codes {
		row := convert.ToCodeRow(*c)
		if _, err := execSQL(ctx, r.pool, tx, q,
			row.ID, row.PlanID, row.Code, row.IsUsed, row.UsedBy, row.UsedAt, row.CreatedAt,
		); err != nil {
			return fmt.Errorf("save code %q: %w", c.Code, err)
		}
	}
	return nil
}

func (r *codeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Code, error) {
	const q = `
SELECT id, plan_id, code, is_used, used_by, used_at, created_at
  FROM codes
 WHERE id = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanCode(row)
}

func (r *codeRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Code, error) {
	const q = `
SELECT id, plan_id, code, is_used, used_by, used_at, created_at
  FROM codes
 ORDER BY created_at DESC;
`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	defer rows.Close()

	var out []*model.Code
	for rows.Next() {
		var cr convert.CodeRow
		if err := rows.Scan(&cr.ID, &cr.PlanID, &cr.Code, &cr.IsUsed, &cr.UsedBy, &cr.UsedAt, &cr.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		c := convert.ToCode(cr)
		out = append(out, &c)
	}
	return out, rows.Err()
}

// ReserveUnused consumes one unused code of the plan inside the caller's
// transaction. FOR UPDATE SKIP LOCKED keeps two concurrent purchasers off
// the same row; the is_used = FALSE guard on the UPDATE makes a double
// consume impossible even outside a transaction.
func (r *codeRepo) ReserveUnused(ctx context.Context, tx repository.Tx, planID, clientID string, at time.Time) (*model.Code, error) {
	const q = `
UPDATE codes
   SET is_used = TRUE, used_by = $2, used_at = $3
 WHERE id = (
       SELECT id FROM codes
        WHERE plan_id = $1 AND is_used = FALSE
        ORDER BY created_at
        LIMIT 1
        FOR UPDATE SKIP LOCKED
       )
   AND is_used = FALSE
RETURNING id, plan_id, code, is_used, used_by, used_at, created_at;
`
	row, err := pickRow(ctx, r.pool, tx, q, planID, clientID, at)
	if err != nil {
		return nil, err
	}
	c, err := scanCode(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoAvailableCodes
	}
	return c, err
}

func scanCode(row pgx.Row) (*model.Code, error) {
	var cr convert.CodeRow
	err := row.Scan(&cr.ID, &cr.PlanID, &cr.Code, &cr.IsUsed, &cr.UsedBy, &cr.UsedAt, &cr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	c := convert.ToCode(cr)
	return &c, nil
}
