package reconciler

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-insights-core/internal/domain"
)

func (r *Reconciler) upsertCustomer(ctx context.Context, tenantID string, payload []byte) error {
	var p customerPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse customer payload: %w", err)
	}
	if p.ID == "" {
		r.logger.Warn().Str("tenantId", tenantID).Msg("Customer payload without id, skipping")
		return nil
	}

	_, err := r.saveCustomer(ctx, tenantID, &p)
	return err
}

// saveCustomer upserts one customer and returns the row with its internal id.
// Shared with the order and cart handlers for embedded customer objects.
func (r *Reconciler) saveCustomer(ctx context.Context, tenantID string, p *customerPayload) (*domain.Customer, error) {
	customer := &domain.Customer{
		ExternalID: p.ID.String(),
		TenantID:   tenantID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Email:      p.Email,
		Phone:      p.Phone,
	}
	if len(p.DefaultAddress) > 0 && string(p.DefaultAddress) != "null" {
		customer.Address = string(p.DefaultAddress)
	}

	if err := r.customers.Upsert(ctx, customer); err != nil {
		return nil, err
	}

	r.logger.Debug().Str("customerId", customer.ExternalID).Str("tenantId", tenantID).
		Msg("Upserted customer")

	return customer, nil
}

func (r *Reconciler) deleteCustomer(ctx context.Context, tenantID string, payload []byte) error {
	var p customerPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse customer delete payload: %w", err)
	}
	if p.ID == "" {
		return nil
	}

	return r.customers.Delete(ctx, tenantID, p.ID.String())
}
