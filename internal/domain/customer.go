package domain

import "time"

// Customer is a normalized shop customer. Address keeps the platform's
// default_address object as an opaque serialized blob.
type Customer struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	TenantID   string    `json:"tenant_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
