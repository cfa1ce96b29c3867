package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart lifecycle statuses. A checkout is not a separate entity: checkout
// events advance the same token-keyed cart row to CartStatusCheckoutStarted.
const (
	CartStatusActive          = "active"
	CartStatusCheckoutStarted = "checkout_started"
	CartStatusAbandoned       = "abandoned"
)

// Cart is a shopping cart or checkout, keyed by the platform cart token.
type Cart struct {
	ID         string          `json:"id"`
	Token      string          `json:"token"`
	TenantID   string          `json:"tenant_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     string          `json:"status"`
	CustomerID *string         `json:"customer_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CartItem is one cart line. Cart payloads carry full current state, so the
// item set is replaced wholesale on every cart upsert, never diffed.
// ExternalID is synthesized from token and variant when the platform omits it.
type CartItem struct {
	ID         string          `json:"id"`
	ExternalID string          `json:"external_id"`
	TenantID   string          `json:"tenant_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	CartID     string          `json:"cart_id"`
	ProductID  *string         `json:"product_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
