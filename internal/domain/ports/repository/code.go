package repository

import (
	"context"
	"time"

	"iptv-reseller-store/internal/domain/model"
)

// CodeRepository is the port for managing redemption codes.
type CodeRepository interface {
	// SaveBatch inserts a batch of new codes.
	SaveBatch(ctx context.Context, tx Tx, codes []*model.Code) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Code, error)
	// ListAll returns all codes ordered by creation time, newest first.
	ListAll(ctx context.Context, tx Tx) ([]*model.Code, error)
	// ReserveUnused picks one unused code of the plan and marks it used by
	// the given client, guarded by an is_used = FALSE precondition. Returns
	// domain.ErrNoAvailableCodes when the plan has no unused codes left.
	ReserveUnused(ctx context.Context, tx Tx, planID, clientID string, at time.Time) (*model.Code, error)
}
