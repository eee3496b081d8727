package repository

import (
	"context"

	"iptv-reseller-store/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	// ListAll returns all profiles ordered by creation time, newest first.
	ListAll(ctx context.Context, tx Tx) ([]*model.User, error)
	// AddPoints atomically credits (or debits) the points balance and
	// returns the new balance.
	AddPoints(ctx context.Context, tx Tx, id string, delta int64) (int64, error)
}
