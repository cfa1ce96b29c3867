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

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a Postgres-backed order repository.
func NewOrderRepository(db *sql.DB) ports.OrderRepository {
	return &orderRepository{db: db}
}

// Upsert inserts or updates an order keyed on (external_id, tenant_id).
// order_number and customer_id are only set on insert; updates touch the
// mutable payment and fulfillment fields.
func (r *orderRepository) Upsert(ctx context.Context, order *domain.Order) error {
	now := time.Now()

	query := `
		INSERT INTO orders (id, external_id, tenant_id, order_number, total_price, currency, financial_status, fulfillment_status, customer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (external_id, tenant_id) DO UPDATE SET
			total_price        = EXCLUDED.total_price,
			currency           = EXCLUDED.currency,
			financial_status   = EXCLUDED.financial_status,
			fulfillment_status = EXCLUDED.fulfillment_status,
			updated_at         = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		uuid.New().String(), order.ExternalID, order.TenantID, order.OrderNumber,
		order.TotalPrice, order.Currency, order.FinancialStatus,
		order.FulfillmentStatus, order.CustomerID, now,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert order %s: %w", order.ExternalID, err)
	}

	return nil
}

// UpsertItem inserts or updates an order line keyed on (external_id, tenant_id).
func (r *orderRepository) UpsertItem(ctx context.Context, item *domain.OrderItem) error {
	now := time.Now()

	query := `
		INSERT INTO order_items (id, external_id, tenant_id, quantity, price, order_id, product_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (external_id, tenant_id) DO UPDATE SET
			quantity   = EXCLUDED.quantity,
			price      = EXCLUDED.price,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		uuid.New().String(), item.ExternalID, item.TenantID,
		item.Quantity, item.Price, item.OrderID, item.ProductID, now,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert order item %s: %w", item.ExternalID, err)
	}

	return nil
}

// UpsertTransaction inserts or updates a transaction keyed on
// (external_id, tenant_id).
func (r *orderRepository) UpsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	now := time.Now()

	query := `
		INSERT INTO transactions (id, external_id, tenant_id, amount, kind, status, order_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (external_id, tenant_id) DO UPDATE SET
			amount     = EXCLUDED.amount,
			kind       = EXCLUDED.kind,
			status     = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		uuid.New().String(), tx.ExternalID, tx.TenantID,
		tx.Amount, tx.Kind, tx.Status, tx.OrderID, now,
	).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction %s: %w", tx.ExternalID, err)
	}

	return nil
}

// Delete removes the order and, via cascade, its items and transactions.
// Missing row is a no-op.
func (r *orderRepository) Delete(ctx context.Context, tenantID, externalID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM orders WHERE external_id = $1 AND tenant_id = $2`,
		externalID, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete order %s: %w", externalID, err)
	}
	return nil
}
