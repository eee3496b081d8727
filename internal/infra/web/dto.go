package web

import (
	"time"

	"iptv-reseller-store/internal/domain/model"
)

// Wire shapes for the storefront API. Field names follow the domain
// (camelCase), not the storage rows.

type userDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Points    int64     `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserDTO(u model.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Points:    u.Points,
		CreatedAt: u.CreatedAt,
	}
}

type planDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Duration     string    `json:"duration"`
	Features     []string  `json:"features"`
	PointsReward int64     `json:"pointsReward"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toPlanDTO(p model.Plan) planDTO {
	return planDTO{
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

type codeDTO struct {
	ID        string     `json:"id"`
	PlanID    string     `json:"planId"`
	Code      string     `json:"code"`
	IsUsed    bool       `json:"isUsed"`
	UsedBy    *string    `json:"usedBy,omitempty"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func toCodeDTO(c model.Code) codeDTO {
	return codeDTO{
		ID:        c.ID,
		PlanID:    c.PlanID,
		Code:      c.Code,
		IsUsed:    c.IsUsed,
		UsedBy:    c.UsedBy,
		UsedAt:    c.UsedAt,
		CreatedAt: c.CreatedAt,
	}
}

type purchaseDTO struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"clientId"`
	PlanID       string    `json:"planId"`
	CodeID       string    `json:"codeId"`
	Amount       float64   `json:"amount"`
	PointsEarned int64     `json:"pointsEarned"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toPurchaseDTO(p model.Purchase) purchaseDTO {
	return purchaseDTO{
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

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createPlanRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Duration     string   `json:"duration"`
	Features     []string `json:"features"`
	PointsReward int64    `json:"pointsReward"`
	IsActive     bool     `json:"isActive"`
}

type updatePlanRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	Duration     *string  `json:"duration"`
	Features     []string `json:"features"`
	PointsReward *int64   `json:"pointsReward"`
	IsActive     *bool    `json:"isActive"`
}

type addCodesRequest struct {
	Codes []string `json:"codes"`
}

type generateCodesRequest struct {
	Count int `json:"count"`
}

type purchaseRequest struct {
	PlanID string `json:"planId"`
}
