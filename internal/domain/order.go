package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a normalized shop order. CustomerID is nil for guest orders or
// when the referenced customer has not been seen yet.
type Order struct {
	ID                string          `json:"id"`
	ExternalID        string          `json:"external_id"`
	TenantID          string          `json:"tenant_id"`
	OrderNumber       string          `json:"order_number"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	Currency          string          `json:"currency"`
	FinancialStatus   string          `json:"financial_status"`
	FulfillmentStatus string          `json:"fulfillment_status"`
	CustomerID        *string         `json:"customer_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// OrderItem is one order line. ProductID is nil when the referenced product
// row does not exist; delivery order across topics is not guaranteed.
type OrderItem struct {
	ID         string          `json:"id"`
	ExternalID string          `json:"external_id"`
	TenantID   string          `json:"tenant_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	OrderID    string          `json:"order_id"`
	ProductID  *string         `json:"product_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Transaction is a payment transaction attached to an order.
type Transaction struct {
	ID         string          `json:"id"`
	ExternalID string          `json:"external_id"`
	TenantID   string          `json:"tenant_id"`
	Amount     decimal.Decimal `json:"amount"`
	Kind       string          `json:"kind"`
	Status     string          `json:"status"`
	OrderID    string          `json:"order_id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
