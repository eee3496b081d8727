package model

import (
	"time"

	"iptv-reseller-store/internal/domain"

	"github.com/oklog/ulid/v2"
)

type PurchaseStatus string

const (
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusFailed    PurchaseStatus = "failed"
)

func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchaseStatusCompleted, PurchaseStatusPending, PurchaseStatusFailed:
		return true
	}
	return false
}

// Purchase is an immutable record of one client redeeming one code under one
// plan. Amount and PointsEarned are snapshots of the plan at purchase time.
type Purchase struct {
	ID           string
	ClientID     string
	PlanID       string
	CodeID       string
	Amount       float64
	PointsEarned int64
	Status       PurchaseStatus
	CreatedAt    time.Time
}

// NewPurchase constructs a purchase record. IDs are ULIDs so purchase
// identifiers sort by creation time.
func NewPurchase(clientID, planID, codeID string, amount float64, pointsEarned int64, status PurchaseStatus) (*Purchase, error) {
	if clientID == "" || planID == "" || codeID == "" || amount < 0 || pointsEarned < 0 || !status.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	return &Purchase{
		ID:           ulid.Make().String(),
		ClientID:     clientID,
		PlanID:       planID,
		CodeID:       codeID,
		Amount:       amount,
		PointsEarned: pointsEarned,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (p *Purchase) IsZero() bool { return p == nil || p.ID == "" }
