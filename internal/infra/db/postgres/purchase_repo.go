package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"iptv-reseller-store/internal/convert"
	"iptv-reseller-store/internal/domain"
	"iptv-reseller-store/internal/domain/model"
	"iptv-reseller-store/internal/domain/ports/repository"
)

var _ repository.PurchaseRepository = (*purchaseRepo)(nil)

type purchaseRepo struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepo(pool *pgxpool.Pool) repository.PurchaseRepository {
	return &purchaseRepo{pool: pool}
}

// Save inserts the purchase. There is deliberately no ON CONFLICT clause:
// the ledger is append-only and a duplicate ID is a bug worth surfacing.
func (r *purchaseRepo) Save(ctx context.Context, tx repository.Tx, p *model.Purchase) error {
	row := convert.ToPurchaseRow(*p)
	const q = `
INSERT INTO purchases (id, client_id, plan_id, code_id, amount, points_earned, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		row.ID, row.ClientID, row.PlanID, row.CodeID, row.Amount, row.PointsEarned, row.Status, row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save purchase: %w", err)
	}
	return nil
}

func (r *purchaseRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Purchase, error) {
	const q = `
SELECT id, client_id, plan_id, code_id, amount, points_earned, status, created_at
  FROM purchases
 ORDER BY created_at DESC;
`
	return r.list(ctx, tx, q)
}

func (r *purchaseRepo) ListByClient(ctx context.Context, tx repository.Tx, clientID string) ([]*model.Purchase, error) {
	const q = `
SELECT id, client_id, plan_id, code_id, amount, points_earned, status, created_at
  FROM purchases
 WHERE client_id = $1
 ORDER BY created_at DESC;
`
	return r.list(ctx, tx, q, clientID)
}

func (r *purchaseRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Purchase, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []*model.Purchase
	for rows.Next() {
		var pr convert.PurchaseRow
		if err := rows.Scan(&pr.ID, &pr.ClientID, &pr.PlanID, &pr.CodeID, &pr.Amount, &pr.PointsEarned, &pr.Status, &pr.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		p := convert.ToPurchase(pr)
		out = append(out, &p)
	}
	return out, rows.Err()
}
