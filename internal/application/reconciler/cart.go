package reconciler

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-insights-core/internal/domain"
)

func (r *Reconciler) upsertCart(ctx context.Context, tenantID string, payload []byte) error {
	return r.saveCart(ctx, tenantID, payload, domain.CartStatusActive)
}

// upsertCheckout maps a checkout event onto the cart row: a checkout is the
// same cart in a further lifecycle stage, not a separate entity.
func (r *Reconciler) upsertCheckout(ctx context.Context, tenantID string, payload []byte) error {
	return r.saveCart(ctx, tenantID, payload, domain.CartStatusCheckoutStarted)
}

func (r *Reconciler) saveCart(ctx context.Context, tenantID string, payload []byte, status string) error {
	var p cartPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse cart payload: %w", err)
	}

	token := p.cartKey()
	if token == "" {
		r.logger.Warn().Str("tenantId", tenantID).Msg("Cart payload without token, skipping")
		return nil
	}

	cart := &domain.Cart{
		Token:      token,
		TenantID:   tenantID,
		TotalPrice: r.money(p.TotalPrice, "cart.total_price"),
		Status:     status,
		CustomerID: r.linkCustomer(ctx, tenantID, p.Customer),
	}

	if err := r.carts.Upsert(ctx, cart); err != nil {
		return err
	}

	// The payload is the cart's full current state; replace the item set
	// wholesale instead of diffing.
	items := make([]*domain.CartItem, 0, len(p.LineItems))
	for _, li := range p.LineItems {
		externalID := li.ID.String()
		if externalID == "" {
			// Cart line items may arrive without ids.
			externalID = fmt.Sprintf("%s-%s", token, li.VariantID.String())
		}
		items = append(items, &domain.CartItem{
			ExternalID: externalID,
			TenantID:   tenantID,
			Quantity:   li.Quantity,
			Price:      r.money(li.Price, "cart_item.price"),
			ProductID:  r.linkProduct(ctx, tenantID, li.ProductID),
		})
	}

	if err := r.carts.ReplaceItems(ctx, cart.ID, items); err != nil {
		return err
	}

	r.logger.Debug().Str("cartToken", token).Str("tenantId", tenantID).
		Str("status", status).Int("items", len(items)).Msg("Upserted cart")

	return nil
}

// deleteCheckout fires when a checkout completes or is abandoned; the
// platform does not say which. The completion timestamp decides: a completed
// checkout became an order, so its cart row goes away, while an uncompleted
// one is marked abandoned and kept for the abandoned-carts report.
func (r *Reconciler) deleteCheckout(ctx context.Context, tenantID string, payload []byte) error {
	var p cartPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse checkout delete payload: %w", err)
	}

	token := p.cartKey()
	if token == "" {
		return nil
	}

	if p.CompletedAt != nil && *p.CompletedAt != "" {
		return r.carts.Delete(ctx, tenantID, token)
	}

	return r.carts.UpdateStatus(ctx, tenantID, token, domain.CartStatusAbandoned)
}
