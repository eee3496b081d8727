package repository

import (
	"context"

	"iptv-reseller-store/internal/domain/model"
)

// PlanRepository is the port for managing subscription plans.
type PlanRepository interface {
	// Save creates or fully replaces a plan.
	Save(ctx context.Context, tx Tx, p *model.Plan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Plan, error)
	// ListAll returns all plans ordered by creation time, newest first.
	ListAll(ctx context.Context, tx Tx) ([]*model.Plan, error)
	// Delete removes a plan. Its codes are removed with it.
	Delete(ctx context.Context, tx Tx, id string) error
}
