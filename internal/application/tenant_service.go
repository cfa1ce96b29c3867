package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopify-insights-core/internal/domain"
	"shopify-insights-core/internal/ports"

	"github.com/rs/zerolog"
)

// TenantResolver maps a shop domain to a tenant, creating one on first
// sight. Safe under concurrent resolution of the same new domain: the
// uniqueness constraint on shop_domain is the arbiter, and a create conflict
// falls back to fetching the winner's row.
type TenantResolver struct {
	tenants ports.TenantRepository
	logger  zerolog.Logger
}

// NewTenantResolver creates a tenant resolver.
func NewTenantResolver(tenants ports.TenantRepository, logger zerolog.Logger) *TenantResolver {
	return &TenantResolver{tenants: tenants, logger: logger}
}

// Resolve returns the tenant for shopDomain, creating it if needed.
func (s *TenantResolver) Resolve(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	if shopDomain == "" {
		return nil, fmt.Errorf("shop domain is empty")
	}

	tenant, err := s.tenants.GetByDomain(ctx, shopDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tenant: %w", err)
	}
	if tenant != nil {
		return tenant, nil
	}

	tenant = &domain.Tenant{
		Name:       tenantName(shopDomain),
		ShopDomain: shopDomain,
	}

	err = s.tenants.Create(ctx, tenant)
	if errors.Is(err, domain.ErrConflict) {
		// Another worker created it between our lookup and insert.
		existing, getErr := s.tenants.GetByDomain(ctx, shopDomain)
		if getErr != nil {
			return nil, fmt.Errorf("failed to fetch tenant after create conflict: %w", getErr)
		}
		if existing == nil {
			return nil, fmt.Errorf("tenant for %s vanished after create conflict", shopDomain)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.logger.Info().Str("shop", shopDomain).Str("tenantId", tenant.ID).
		Msg("Created new tenant")

	return tenant, nil
}

// tenantName derives a display name from the domain's first label.
func tenantName(shopDomain string) string {
	if i := strings.IndexByte(shopDomain, '.'); i > 0 {
		return shopDomain[:i]
	}
	return shopDomain
}
