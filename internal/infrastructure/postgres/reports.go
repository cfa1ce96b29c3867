package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shopify-insights-core/internal/domain"
	"shopify-insights-core/internal/ports"
)

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates the Postgres read model for the dashboard
// reports. All queries are simple tenant-scoped group-bys; revenue only
// counts orders marked paid.
func NewReportRepository(db *sql.DB) ports.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Stats(ctx context.Context, tenantID string) (*ports.StoreStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM customers WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM orders WHERE tenant_id = $1),
			(SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE tenant_id = $1 AND financial_status = 'paid')
	`

	var stats ports.StoreStats
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&stats.TotalCustomers, &stats.TotalOrders, &stats.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}

	return &stats, nil
}

func (r *reportRepository) OrdersByDate(ctx context.Context, tenantID string, from, to time.Time) ([]*ports.DailyOrderStat, error) {
	query := `
		SELECT to_char(created_at::date, 'YYYY-MM-DD'), COUNT(*), COALESCE(SUM(total_price), 0)
		FROM orders
		WHERE tenant_id = $1 AND created_at >= $2 AND created_at <= $3
		GROUP BY created_at::date
		ORDER BY created_at::date
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders by date: %w", err)
	}
	defer rows.Close()

	var stats []*ports.DailyOrderStat
	for rows.Next() {
		var s ports.DailyOrderStat
		if err := rows.Scan(&s.Date, &s.Orders, &s.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan daily order stat: %w", err)
		}
		stats = append(stats, &s)
	}

	return stats, rows.Err()
}

func (r *reportRepository) NewCustomersByDate(ctx context.Context, tenantID string, from, to time.Time) ([]*ports.DailyCustomerStat, error) {
	query := `
		SELECT to_char(created_at::date, 'YYYY-MM-DD'), COUNT(*)
		FROM customers
		WHERE tenant_id = $1 AND created_at >= $2 AND created_at <= $3
		GROUP BY created_at::date
		ORDER BY created_at::date
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query new customers by date: %w", err)
	}
	defer rows.Close()

	var stats []*ports.DailyCustomerStat
	for rows.Next() {
		var s ports.DailyCustomerStat
		if err := rows.Scan(&s.Date, &s.Customers); err != nil {
			return nil, fmt.Errorf("failed to scan daily customer stat: %w", err)
		}
		stats = append(stats, &s)
	}

	return stats, rows.Err()
}

func (r *reportRepository) TopProducts(ctx context.Context, tenantID string, limit int) ([]*ports.ProductRevenue, error) {
	query := `
		SELECT p.title, COALESCE(SUM(oi.price * oi.quantity), 0) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE oi.tenant_id = $1 AND o.financial_status = 'paid' AND oi.product_id IS NOT NULL
		GROUP BY p.id, p.title
		ORDER BY revenue DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	var top []*ports.ProductRevenue
	for rows.Next() {
		var p ports.ProductRevenue
		if err := rows.Scan(&p.Title, &p.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan product revenue: %w", err)
		}
		top = append(top, &p)
	}

	return top, rows.Err()
}

func (r *reportRepository) TopCustomers(ctx context.Context, tenantID string, limit int) ([]*ports.CustomerSpend, error) {
	query := `
		SELECT trim(c.first_name || ' ' || c.last_name), c.email, COALESCE(SUM(o.total_price), 0) AS spend
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.tenant_id = $1 AND o.financial_status = 'paid' AND o.customer_id IS NOT NULL
		GROUP BY c.id, c.first_name, c.last_name, c.email
		ORDER BY spend DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top customers: %w", err)
	}
	defer rows.Close()

	var top []*ports.CustomerSpend
	for rows.Next() {
		var c ports.CustomerSpend
		if err := rows.Scan(&c.Name, &c.Email, &c.TotalSpend); err != nil {
			return nil, fmt.Errorf("failed to scan customer spend: %w", err)
		}
		top = append(top, &c)
	}

	return top, rows.Err()
}

func (r *reportRepository) CategoryRevenue(ctx context.Context, tenantID string) ([]*ports.CategoryRevenue, error) {
	query := `
		SELECT COALESCE(NULLIF(p.product_type, ''), 'Uncategorized'), COALESCE(SUM(oi.price * oi.quantity), 0) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE oi.tenant_id = $1 AND o.financial_status = 'paid' AND oi.product_id IS NOT NULL
		GROUP BY 1
		ORDER BY revenue DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category revenue: %w", err)
	}
	defer rows.Close()

	var categories []*ports.CategoryRevenue
	for rows.Next() {
		var c ports.CategoryRevenue
		if err := rows.Scan(&c.Category, &c.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan category revenue: %w", err)
		}
		categories = append(categories, &c)
	}

	return categories, rows.Err()
}

func (r *reportRepository) AbandonedCartCount(ctx context.Context, tenantID string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM carts
		WHERE tenant_id = $1 AND status IN ($2, $3)
	`

	var count int64
	err := r.db.QueryRowContext(ctx, query, tenantID, domain.CartStatusCheckoutStarted, domain.CartStatusAbandoned).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to query abandoned carts: %w", err)
	}

	return count, nil
}
