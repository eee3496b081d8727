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

// Ensure implementation satisfies the interface.
var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepo{pool: pool}
}

func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	row := convert.ToUserRow(*u)
	const q = `
INSERT INTO users (id, name, email, role, points, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
  name   = EXCLUDED.name,
  email  = EXCLUDED.email,
  points = EXCLUDED.points;
`
	_, err := execSQL(ctx, r.pool, tx, q, row.ID, row.Name, row.Email, row.Role, row.Points, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return r.findBy(ctx, tx, "id", id)
}

func (r *userRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return r.findBy(ctx, tx, "email", email)
}

func (r *userRepo) findBy(ctx context.Context, tx repository.Tx, col, val string) (*model.User, error) {
	q := fmt.Sprintf(`
SELECT id, name, email, role, points, created_at
  FROM users
 WHERE %s = $1;`, col)
	row, err := pickRow(ctx, r.pool, tx, q, val)
	if err != nil {
		return nil, err
	}

	var ur convert.UserRow
	if err := row.Scan(&ur.ID, &ur.Name, &ur.Email, &ur.Role, &ur.Points, &ur.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	u := convert.ToUser(ur)
	return &u, nil
}

func (r *userRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	const q = `
SELECT id, name, email, role, points, created_at
  FROM users
 ORDER BY created_at DESC;
`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		var ur convert.UserRow
		if err := rows.Scan(&ur.ID, &ur.Name, &ur.Email, &ur.Role, &ur.Points, &ur.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		u := convert.ToUser(ur)
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (r *userRepo) AddPoints(ctx context.Context, tx repository.Tx, id string, delta int64) (int64, error) {
	const q = `
UPDATE users
   SET points = points + $2
 WHERE id = $1
RETURNING points;
`
	row, err := pickRow(ctx, r.pool, tx, q, id, delta)
	if err != nil {
		return 0, err
	}
	var balance int64
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("add points: %w", err)
	}
	return balance, nil
}
