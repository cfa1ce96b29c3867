package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shopify-insights-core/internal/domain"
	"shopify-insights-core/internal/ports"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a Postgres-backed product repository.
func NewProductRepository(db *sql.DB) ports.ProductRepository {
	return &productRepository{db: db}
}

// Upsert inserts or updates a product keyed on (external_id, tenant_id) and
// writes the row's internal id back into product.ID.
func (r *productRepository) Upsert(ctx context.Context, product *domain.Product) error {
	now := time.Now()

	query := `
		INSERT INTO products (id, external_id, tenant_id, title, handle, vendor, product_type, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (external_id, tenant_id) DO UPDATE SET
			title        = EXCLUDED.title,
			handle       = EXCLUDED.handle,
			vendor       = EXCLUDED.vendor,
			product_type = EXCLUDED.product_type,
			image_url    = EXCLUDED.image_url,
			updated_at   = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		uuid.New().String(), product.ExternalID, product.TenantID,
		product.Title, product.Handle, product.Vendor, product.ProductType,
		product.ImageURL, now,
	).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", product.ExternalID, err)
	}

	return nil
}

// GetByExternalID returns the product, or nil if none exists.
func (r *productRepository) GetByExternalID(ctx context.Context, tenantID, externalID string) (*domain.Product, error) {
	query := `
		SELECT id, external_id, tenant_id, title, handle, vendor, product_type, image_url, created_at, updated_at
		FROM products
		WHERE external_id = $1 AND tenant_id = $2
	`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, externalID, tenantID).Scan(
		&p.ID, &p.ExternalID, &p.TenantID, &p.Title, &p.Handle,
		&p.Vendor, &p.ProductType, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", externalID, err)
	}

	return &p, nil
}

// UpsertVariant inserts or updates a variant keyed on (external_id, tenant_id).
func (r *productRepository) UpsertVariant(ctx context.Context, variant *domain.Variant) error {
	now := time.Now()

	query := `
		INSERT INTO variants (id, external_id, tenant_id, title, sku, price, product_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (external_id, tenant_id) DO UPDATE SET
			title      = EXCLUDED.title,
			sku        = EXCLUDED.sku,
			price      = EXCLUDED.price,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		uuid.New().String(), variant.ExternalID, variant.TenantID,
		variant.Title, variant.SKU, variant.Price, variant.ProductID, now,
	).Scan(&variant.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert variant %s: %w", variant.ExternalID, err)
	}

	return nil
}

// Delete removes the product and, via cascade, its variants. Missing row is
// a no-op.
func (r *productRepository) Delete(ctx context.Context, tenantID, externalID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM products WHERE external_id = $1 AND tenant_id = $2`,
		externalID, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", externalID, err)
	}
	return nil
}
