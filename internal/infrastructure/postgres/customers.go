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

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a Postgres-backed customer repository.
func NewCustomerRepository(db *sql.DB) ports.CustomerRepository {
	return &customerRepository{db: db}
}

// Upsert inserts or updates a customer keyed on (external_id, tenant_id) and
// writes the row's internal id back into customer.ID.
func (r *customerRepository) Upsert(ctx context.Context, customer *domain.Customer) error {
	now := time.Now()

	query := `
		INSERT INTO customers (id, external_id, tenant_id, first_name, last_name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (external_id, tenant_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name,
			email      = EXCLUDED.email,
			phone      = EXCLUDED.phone,
			address    = EXCLUDED.address,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		uuid.New().String(), customer.ExternalID, customer.TenantID,
		customer.FirstName, customer.LastName, customer.Email, customer.Phone,
		customer.Address, now,
	).Scan(&customer.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert customer %s: %w", customer.ExternalID, err)
	}

	return nil
}

// GetByExternalID returns the customer, or nil if none exists.
func (r *customerRepository) GetByExternalID(ctx context.Context, tenantID, externalID string) (*domain.Customer, error) {
	query := `
		SELECT id, external_id, tenant_id, first_name, last_name, email, phone, address, created_at, updated_at
		FROM customers
		WHERE external_id = $1 AND tenant_id = $2
	`

	var c domain.Customer
	err := r.db.QueryRowContext(ctx, query, externalID, tenantID).Scan(
		&c.ID, &c.ExternalID, &c.TenantID, &c.FirstName, &c.LastName,
		&c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer %s: %w", externalID, err)
	}

	return &c, nil
}

// Delete removes the customer. Deleting a customer that was never seen is a
// no-op: delete events can arrive for entities whose create webhook was lost.
func (r *customerRepository) Delete(ctx context.Context, tenantID, externalID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM customers WHERE external_id = $1 AND tenant_id = $2`,
		externalID, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete customer %s: %w", externalID, err)
	}
	return nil
}
