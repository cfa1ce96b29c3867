package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"shopify-insights-core/internal/domain"
	"shopify-insights-core/internal/ports"
)

type tenantRepository struct {
	db *sql.DB
}

// NewTenantRepository creates a Postgres-backed tenant repository.
func NewTenantRepository(db *sql.DB) ports.TenantRepository {
	return &tenantRepository{db: db}
}

// Create inserts a tenant. A uniqueness violation on shop_domain comes back
// as domain.ErrConflict; the resolver treats that as "fetch the existing row".
func (r *tenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	now := time.Now()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	query := `
		INSERT INTO tenants (id, name, shop_domain, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		tenant.ID, tenant.Name, tenant.ShopDomain, tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrConflict
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}

// GetByDomain returns the tenant for a shop domain, or nil if none exists.
func (r *tenantRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	query := `
		SELECT id, name, shop_domain, created_at, updated_at
		FROM tenants
		WHERE shop_domain = $1
	`

	var t domain.Tenant
	err := r.db.QueryRowContext(ctx, query, shopDomain).Scan(
		&t.ID, &t.Name, &t.ShopDomain, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return &t, nil
}
