package reconciler

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-insights-core/internal/domain"
)

func (r *Reconciler) upsertProduct(ctx context.Context, tenantID string, payload []byte) error {
	var p productPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse product payload: %w", err)
	}
	if p.ID == "" {
		r.logger.Warn().Str("tenantId", tenantID).Msg("Product payload without id, skipping")
		return nil
	}

	product := &domain.Product{
		ExternalID:  p.ID.String(),
		TenantID:    tenantID,
		Title:       p.Title,
		Handle:      p.Handle,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
	}
	if p.Image != nil {
		product.ImageURL = p.Image.Src
	}

	if err := r.products.Upsert(ctx, product); err != nil {
		return err
	}

	for _, v := range p.Variants {
		if v.ID == "" {
			continue
		}
		variant := &domain.Variant{
			ExternalID: v.ID.String(),
			TenantID:   tenantID,
			Title:      v.Title,
			SKU:        v.SKU,
			Price:      r.money(v.Price, "variant.price"),
			ProductID:  product.ID,
		}
		if err := r.products.UpsertVariant(ctx, variant); err != nil {
			return err
		}
	}

	r.logger.Debug().Str("productId", product.ExternalID).Str("tenantId", tenantID).
		Int("variants", len(p.Variants)).Msg("Upserted product")

	return nil
}

func (r *Reconciler) deleteProduct(ctx context.Context, tenantID string, payload []byte) error {
	var p productPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse product delete payload: %w", err)
	}
	if p.ID == "" {
		return nil
	}

	return r.products.Delete(ctx, tenantID, p.ID.String())
}
