package model

import (
	"time"

	"iptv-reseller-store/internal/domain"

	"github.com/google/uuid"
)

// Plan represents a purchasable subscription offering. IsActive gates
// purchasability; PointsReward is credited to the buyer on each purchase.
type Plan struct {
	ID           string
	Name         string
	Description  string
	Price        float64
	Duration     string
	Features     []string
	PointsReward int64
	IsActive     bool
	CreatedAt    time.Time
}

// NewPlan validates and constructs a plan.
func NewPlan(id, name, description string, price float64, duration string, features []string, pointsReward int64, isActive bool) (*Plan, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" || price < 0 || pointsReward < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:           id,
		Name:         name,
		Description:  description,
		Price:        price,
		Duration:     duration,
		Features:     features,
		PointsReward: pointsReward,
		IsActive:     isActive,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// PlanPatch carries a partial plan update. Nil fields are left untouched.
type PlanPatch struct {
	Name         *string
	Description  *string
	Price        *float64
	Duration     *string
	Features     []string
	PointsReward *int64
	IsActive     *bool
}

// Apply merges the patch into a copy of the plan.
func (pp PlanPatch) Apply(p Plan) Plan {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Duration != nil {
		p.Duration = *pp.Duration
	}
	if pp.Features != nil {
		p.Features = pp.Features
	}
	if pp.PointsReward != nil {
		p.PointsReward = *pp.PointsReward
	}
	if pp.IsActive != nil {
		p.IsActive = *pp.IsActive
	}
	return p
}
