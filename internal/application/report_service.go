package application

import (
	"context"
	"fmt"
	"time"

	"shopify-insights-core/internal/ports"

	"github.com/rs/zerolog"
)

// topN bounds the leaderboard reports, matching what the dashboard charts.
const topN = 5

// ReportService serves the aggregate read models the external dashboard
// consumes. Reads only; the worker is the sole writer.
type ReportService struct {
	tenants ports.TenantRepository
	reports ports.ReportRepository
	logger  zerolog.Logger
}

// NewReportService creates a report service.
func NewReportService(tenants ports.TenantRepository, reports ports.ReportRepository, logger zerolog.Logger) *ReportService {
	return &ReportService{tenants: tenants, reports: reports, logger: logger}
}

// resolveTenant maps a shop domain to its tenant id. Unlike the ingestion
// path this never creates tenants: a report for an unknown shop is an error.
func (s *ReportService) resolveTenant(ctx context.Context, shopDomain string) (string, error) {
	tenant, err := s.tenants.GetByDomain(ctx, shopDomain)
	if err != nil {
		return "", fmt.Errorf("failed to look up tenant: %w", err)
	}
	if tenant == nil {
		return "", fmt.Errorf("unknown shop domain %q", shopDomain)
	}
	return tenant.ID, nil
}

// Stats returns the headline numbers for a shop.
func (s *ReportService) Stats(ctx context.Context, shopDomain string) (*ports.StoreStats, error) {
	tenantID, err := s.resolveTenant(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	return s.reports.Stats(ctx, tenantID)
}

// OrdersByDate returns per-day order counts and revenue in [from, to].
func (s *ReportService) OrdersByDate(ctx context.Context, shopDomain string, from, to time.Time) ([]*ports.DailyOrderStat, error) {
	tenantID, err := s.resolveTenant(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	return s.reports.OrdersByDate(ctx, tenantID, from, to)
}

// NewCustomersByDate returns per-day new-customer counts in [from, to].
func (s *ReportService) NewCustomersByDate(ctx context.Context, shopDomain string, from, to time.Time) ([]*ports.DailyCustomerStat, error) {
	tenantID, err := s.resolveTenant(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	return s.reports.NewCustomersByDate(ctx, tenantID, from, to)
}

// TopProducts returns the highest-revenue products.
func (s *ReportService) TopProducts(ctx context.Context, shopDomain string) ([]*ports.ProductRevenue, error) {
	tenantID, err := s.resolveTenant(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	return s.reports.TopProducts(ctx, tenantID, topN)
}

// TopCustomers returns the highest-spend customers.
func (s *ReportService) TopCustomers(ctx context.Context, shopDomain string) ([]*ports.CustomerSpend, error) {
	tenantID, err := s.resolveTenant(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	return s.reports.TopCustomers(ctx, tenantID, topN)
}

// CategoryRevenue returns paid revenue grouped by product type.
func (s *ReportService) CategoryRevenue(ctx context.Context, shopDomain string) ([]*ports.CategoryRevenue, error) {
	tenantID, err := s.resolveTenant(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	return s.reports.CategoryRevenue(ctx, tenantID)
}

// AbandonedCarts returns the count of carts never converted to orders.
func (s *ReportService) AbandonedCarts(ctx context.Context, shopDomain string) (int64, error) {
	tenantID, err := s.resolveTenant(ctx, shopDomain)
	if err != nil {
		return 0, err
	}
	return s.reports.AbandonedCartCount(ctx, tenantID)
}
