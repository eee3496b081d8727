package repository

import (
	"context"

	"iptv-reseller-store/internal/domain/model"
)

// PurchaseRepository is the port for the append-only purchase ledger.
type PurchaseRepository interface {
	// Save inserts a purchase. Purchases are never updated or deleted.
	Save(ctx context.Context, tx Tx, p *model.Purchase) error
	// ListAll returns all purchases ordered by creation time, newest first.
	ListAll(ctx context.Context, tx Tx) ([]*model.Purchase, error)
	ListByClient(ctx context.Context, tx Tx, clientID string) ([]*model.Purchase, error)
}
