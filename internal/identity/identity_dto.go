package identity

import "go-institute/internal/domain"

type SetRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=255"`
	Phone       string `json:"phone" binding:"omitempty,max=30"`
	City        string `json:"city" binding:"omitempty,max=100"`
}

type RolesResponse struct {
	AccountID string   `json:"account_id"`
	Roles     []string `json:"roles"`
	Status    string   `json:"status"`
}

type ProfileResponse struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone,omitempty"`
	City        string   `json:"city,omitempty"`
	Roles       []string `json:"roles"`
	Status      string   `json:"status"`
}

type MeResponse struct {
	Profile   ProfileResponse  `json:"profile"`
	Scope     domain.Scope     `json:"scope"`
	Placement domain.Placement `json:"placement"`
}
