package model

import (
	"time"

	"iptv-reseller-store/internal/domain"

	"github.com/google/uuid"
)

// Code is a single-use redemption token bound to one plan.
// UsedBy and UsedAt are present iff IsUsed; once marked used a code is
// immutable outside the purchase transaction.
type Code struct {
	ID        string
	PlanID    string
	Code      string
	IsUsed    bool
	UsedBy    *string
	UsedAt    *time.Time
	CreatedAt time.Time
}

// NewCode constructs an unused code for a plan.
func NewCode(id, planID, value string) (*Code, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if planID == "" || value == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Code{
		ID:        id,
		PlanID:    planID,
		Code:      value,
		IsUsed:    false,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (c *Code) IsZero() bool { return c == nil || c.ID == "" }
