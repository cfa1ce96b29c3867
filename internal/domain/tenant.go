package domain

import "time"

// Tenant represents one connected shop. Every other entity is scoped to a
// tenant, and all external-id lookups are composite on (external id, tenant id).
type Tenant struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ShopDomain string    `json:"shop_domain"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
