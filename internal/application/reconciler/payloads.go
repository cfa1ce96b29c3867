package reconciler

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ExternalID is a platform entity id. The platform sends numeric ids for
// most entities and string tokens for others, and either may appear where a
// reference is optional; everything is coerced to a string for storage.
type ExternalID string

func (e *ExternalID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*e = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = ExternalID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("external id is neither string nor number: %w", err)
	}
	*e = ExternalID(n.String())
	return nil
}

func (e ExternalID) String() string { return string(e) }

// customerPayload is the customer shape, standalone or embedded in orders
// and checkouts. DefaultAddress stays an opaque blob.
type customerPayload struct {
	ID             ExternalID      `json:"id"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	DefaultAddress json.RawMessage `json:"default_address"`
}

// hasProfile reports whether the payload carries actual customer data, as
// opposed to a bare id reference.
func (p *customerPayload) hasProfile() bool {
	return p.Email != "" || p.FirstName != "" || p.LastName != "" || p.Phone != ""
}

type imagePayload struct {
	Src string `json:"src"`
}

type variantPayload struct {
	ID    ExternalID `json:"id"`
	Title string     `json:"title"`
	SKU   string     `json:"sku"`
	Price string     `json:"price"`
}

type productPayload struct {
	ID          ExternalID       `json:"id"`
	Title       string           `json:"title"`
	Handle      string           `json:"handle"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Image       *imagePayload    `json:"image"`
	Variants    []variantPayload `json:"variants"`
}

type lineItemPayload struct {
	ID        ExternalID `json:"id"`
	ProductID ExternalID `json:"product_id"`
	VariantID ExternalID `json:"variant_id"`
	Quantity  int        `json:"quantity"`
	Price     string     `json:"price"`
}

type transactionPayload struct {
	ID     ExternalID `json:"id"`
	Amount string     `json:"amount"`
	Kind   string     `json:"kind"`
	Status string     `json:"status"`
}

type orderPayload struct {
	ID                ExternalID           `json:"id"`
	OrderNumber       ExternalID           `json:"order_number"`
	TotalPrice        string               `json:"total_price"`
	Currency          string               `json:"currency"`
	FinancialStatus   string               `json:"financial_status"`
	FulfillmentStatus string               `json:"fulfillment_status"`
	Customer          *customerPayload     `json:"customer"`
	LineItems         []lineItemPayload    `json:"line_items"`
	Transactions      []transactionPayload `json:"transactions"`
}

// cartPayload covers both cart and checkout webhooks. Cart hooks key the row
// by token, checkout hooks carry cart_token for the originating cart plus
// their own token and id.
type cartPayload struct {
	ID          ExternalID        `json:"id"`
	Token       string            `json:"token"`
	CartToken   string            `json:"cart_token"`
	TotalPrice  string            `json:"total_price"`
	CompletedAt *string           `json:"completed_at"`
	Customer    *customerPayload  `json:"customer"`
	LineItems   []lineItemPayload `json:"line_items"`
}

// cartKey picks the token that keys the cart row. cart_token wins so a
// checkout lands on the row its cart events created.
func (p *cartPayload) cartKey() string {
	if p.CartToken != "" {
		return p.CartToken
	}
	if p.Token != "" {
		return p.Token
	}
	return p.ID.String()
}

// parseMoney parses a monetary string. Empty means zero.
func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable monetary value %q: %w", s, err)
	}
	return d, nil
}
