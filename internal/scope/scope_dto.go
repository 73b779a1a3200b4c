package scope

import "go-institute/internal/domain"

type ScopeResponse struct {
	AccountID string       `json:"account_id"`
	Scope     domain.Scope `json:"scope"`
}
