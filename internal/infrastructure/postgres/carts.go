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

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a Postgres-backed cart repository.
func NewCartRepository(db *sql.DB) ports.CartRepository {
	return &cartRepository{db: db}
}

// Upsert inserts or updates a cart keyed on (token, tenant_id). Checkout
// events share the cart's token, so they land on the same row.
func (r *cartRepository) Upsert(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()

	query := `
		INSERT INTO carts (id, token, tenant_id, total_price, status, customer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (token, tenant_id) DO UPDATE SET
			total_price = EXCLUDED.total_price,
			status      = EXCLUDED.status,
			updated_at  = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		uuid.New().String(), cart.Token, cart.TenantID,
		cart.TotalPrice, cart.Status, cart.CustomerID, now,
	).Scan(&cart.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert cart %s: %w", cart.Token, err)
	}

	return nil
}

// ReplaceItems deletes the cart's current items and inserts the given set in
// one transaction. Cart payloads carry full current state, so a replace is
// correct where a diff would drift.
func (r *cartRepository) ReplaceItems(ctx context.Context, cartID string, items []*domain.CartItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cart items transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	query := `
		INSERT INTO cart_items (id, external_id, tenant_id, quantity, price, cart_id, product_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	now := time.Now()
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.CartID = cartID
		item.CreatedAt = now
		_, err := tx.ExecContext(ctx, query,
			item.ID, item.ExternalID, item.TenantID,
			item.Quantity, item.Price, item.CartID, item.ProductID, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cart item %s: %w", item.ExternalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cart items: %w", err)
	}

	return nil
}

// UpdateStatus sets the cart's lifecycle status. Missing row is a no-op.
func (r *cartRepository) UpdateStatus(ctx context.Context, tenantID, token, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE carts SET status = $1, updated_at = $2 WHERE token = $3 AND tenant_id = $4`,
		status, time.Now(), token, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cart %s status: %w", token, err)
	}
	return nil
}

// Delete removes the cart and, via cascade, its items. Missing row is a no-op.
func (r *cartRepository) Delete(ctx context.Context, tenantID, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM carts WHERE token = $1 AND tenant_id = $2`,
		token, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", token, err)
	}
	return nil
}
