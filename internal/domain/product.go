package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a normalized catalog product.
type Product struct {
	ID          string    `json:"id"`
	ExternalID  string    `json:"external_id"`
	TenantID    string    `json:"tenant_id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Variant is a sellable variation of a product.
type Variant struct {
	ID         string          `json:"id"`
	ExternalID string          `json:"external_id"`
	TenantID   string          `json:"tenant_id"`
	Title      string          `json:"title"`
	SKU        string          `json:"sku"`
	Price      decimal.Decimal `json:"price"`
	ProductID  string          `json:"product_id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
