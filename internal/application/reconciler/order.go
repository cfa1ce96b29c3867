package reconciler

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-insights-core/internal/domain"
)

func (r *Reconciler) upsertOrder(ctx context.Context, tenantID string, payload []byte) error {
	var p orderPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse order payload: %w", err)
	}
	if p.ID == "" {
		r.logger.Warn().Str("tenantId", tenantID).Msg("Order payload without id, skipping")
		return nil
	}

	order := &domain.Order{
		ExternalID:        p.ID.String(),
		TenantID:          tenantID,
		OrderNumber:       p.OrderNumber.String(),
		TotalPrice:        r.money(p.TotalPrice, "order.total_price"),
		Currency:          p.Currency,
		FinancialStatus:   p.FinancialStatus,
		FulfillmentStatus: p.FulfillmentStatus,
		CustomerID:        r.linkCustomer(ctx, tenantID, p.Customer),
	}

	if err := r.orders.Upsert(ctx, order); err != nil {
		return err
	}

	for _, li := range p.LineItems {
		if li.ID == "" {
			r.logger.Warn().Str("orderId", order.ExternalID).Msg("Order line item without id, skipping")
			continue
		}
		item := &domain.OrderItem{
			ExternalID: li.ID.String(),
			TenantID:   tenantID,
			Quantity:   li.Quantity,
			Price:      r.money(li.Price, "line_item.price"),
			OrderID:    order.ID,
			ProductID:  r.linkProduct(ctx, tenantID, li.ProductID),
		}
		if err := r.orders.UpsertItem(ctx, item); err != nil {
			return err
		}
	}

	for _, t := range p.Transactions {
		if t.ID == "" {
			continue
		}
		tx := &domain.Transaction{
			ExternalID: t.ID.String(),
			TenantID:   tenantID,
			Amount:     r.money(t.Amount, "transaction.amount"),
			Kind:       t.Kind,
			Status:     t.Status,
			OrderID:    order.ID,
		}
		if err := r.orders.UpsertTransaction(ctx, tx); err != nil {
			return err
		}
	}

	r.logger.Debug().Str("orderId", order.ExternalID).Str("tenantId", tenantID).
		Int("lineItems", len(p.LineItems)).Msg("Upserted order")

	return nil
}

func (r *Reconciler) deleteOrder(ctx context.Context, tenantID string, payload []byte) error {
	var p orderPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse order delete payload: %w", err)
	}
	if p.ID == "" {
		return nil
	}

	return r.orders.Delete(ctx, tenantID, p.ID.String())
}
