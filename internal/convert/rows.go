// Package convert maps between the storage row shapes (snake_case columns)
// and the in-memory domain entities. The functions are pure and total:
// no validation, no defaulting beyond nullable-column handling.
package convert

import (
	"time"

	"iptv-reseller-store/internal/domain/model"
)

// UserRow mirrors the users table.
type UserRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	Points    int64     `db:"points"`
	CreatedAt time.Time `db:"created_at"`
}

// PlanRow mirrors the plans table. Features is a text[] column.
type PlanRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Description  string    `db:"description"`
	Price        float64   `db:"price"`
	Duration     string    `db:"duration"`
	Features     []string  `db:"features"`
	PointsReward int64     `db:"points_reward"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

// CodeRow mirrors the codes table. UsedBy and UsedAt are nullable and are
// NULL exactly when the code has not been consumed.
type CodeRow struct {
	ID        string     `db:"id"`
	PlanID    string     `db:"plan_id"`
	Code      string     `db:"code"`
	IsUsed    bool       `db:"is_used"`
	UsedBy    *string    `db:"used_by"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// PurchaseRow mirrors the purchases table.
type PurchaseRow struct {
	ID           string    `db:"id"`
	ClientID     string    `db:"client_id"`
	PlanID       string    `db:"plan_id"`
	CodeID       string    `db:"code_id"`
	Amount       float64   `db:"amount"`
	PointsEarned int64     `db:"points_earned"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
}

// --- rows -> domain ---

func ToUser(r UserRow) model.User {
	return model.User{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Role:      model.Role(r.Role),
		Points:    r.Points,
		CreatedAt: r.CreatedAt,
	}
}

func ToPlan(r PlanRow) model.Plan {
	return model.Plan{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		Duration:     r.Duration,
		Features:     r.Features,
		PointsReward: r.PointsReward,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
	}
}

func ToCode(r CodeRow) model.Code {
	return model.Code{
		ID:        r.ID,
		PlanID:    r.PlanID,
		Code:      r.Code,
		IsUsed:    r.IsUsed,
		UsedBy:    r.UsedBy,
		UsedAt:    r.UsedAt,
		CreatedAt: r.CreatedAt,
	}
}

func ToPurchase(r PurchaseRow) model.Purchase {
	return model.Purchase{
		ID:           r.ID,
		ClientID:     r.ClientID,
		PlanID:       r.PlanID,
		CodeID:       r.CodeID,
		Amount:       r.Amount,
		PointsEarned: r.PointsEarned,
		Status:       model.PurchaseStatus(r.Status),
		CreatedAt:    r.CreatedAt,
	}
}

// --- domain -> rows ---

func ToUserRow(u model.User) UserRow {
	return UserRow{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Points:    u.Points,
		CreatedAt: u.CreatedAt,
	}
}

func ToPlanRow(p model.Plan) PlanRow {
	return PlanRow{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Duration:     p.Duration,
		Features:     p.Features,
		PointsReward: p.PointsReward,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
	}
}

func ToCodeRow(c model.Code) CodeRow {
	return CodeRow{
		ID:        c.ID,
		PlanID:    c.PlanID,
		Code:      c.Code,
		IsUsed:    c.IsUsed,
		UsedBy:    c.UsedBy,
		UsedAt:    c.UsedAt,
		CreatedAt: c.CreatedAt,
	}
}

func ToPurchaseRow(p model.Purchase) PurchaseRow {
	return PurchaseRow{
		ID:           p.ID,
		ClientID:     p.ClientID,
		PlanID:       p.PlanID,
		CodeID:       p.CodeID,
		Amount:       p.Amount,
		PointsEarned: p.PointsEarned,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
	}
}
