package ports

import (
	"context"
	"time"

	"shopify-insights-core/internal/domain"

	"github.com/shopspring/decimal"
)

// TenantRepository defines persistence for tenants. Create must surface a
// shop-domain uniqueness violation as domain.ErrConflict so concurrent
// resolvers can fall back to GetByDomain instead of duplicating rows.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error)
}

// CustomerRepository defines persistence for customers. Upsert is keyed on
// (external id, tenant id) and fills in the internal ID on return. Delete of
// a row that does not exist is a no-op.
type CustomerRepository interface {
	Upsert(ctx context.Context, customer *domain.Customer) error
	GetByExternalID(ctx context.Context, tenantID, externalID string) (*domain.Customer, error)
	Delete(ctx context.Context, tenantID, externalID string) error
}

// ProductRepository defines persistence for products and their variants.
type ProductRepository interface {
	Upsert(ctx context.Context, product *domain.Product) error
	GetByExternalID(ctx context.Context, tenantID, externalID string) (*domain.Product, error)
	UpsertVariant(ctx context.Context, variant *domain.Variant) error
	Delete(ctx context.Context, tenantID, externalID string) error
}

// OrderRepository defines persistence for orders, order items, and
// transactions.
type OrderRepository interface {
	Upsert(ctx context.Context, order *domain.Order) error
	UpsertItem(ctx context.Context, item *domain.OrderItem) error
	UpsertTransaction(ctx context.Context, tx *domain.Transaction) error
	Delete(ctx context.Context, tenantID, externalID string) error
}

// CartRepository defines persistence for carts. ReplaceItems deletes the
// cart's current item set and inserts the given one; cart payloads are full
// state, not deltas.
type CartRepository interface {
	Upsert(ctx context.Context, cart *domain.Cart) error
	ReplaceItems(ctx context.Context, cartID string, items []*domain.CartItem) error
	UpdateStatus(ctx context.Context, tenantID, token, status string) error
	Delete(ctx context.Context, tenantID, token string) error
}

// WebhookLogRepository records processed webhook envelopes for auditing.
type WebhookLogRepository interface {
	LogWebhook(ctx context.Context, event *domain.WebhookEvent) error
}

// StoreStats are the dashboard headline numbers.
type StoreStats struct {
	TotalCustomers int64           `json:"totalCustomers"`
	TotalOrders    int64           `json:"totalOrders"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
}

// DailyOrderStat is one day's order count and revenue.
type DailyOrderStat struct {
	Date    string          `json:"date"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DailyCustomerStat is one day's new-customer count.
type DailyCustomerStat struct {
	Date      string `json:"date"`
	Customers int64  `json:"customers"`
}

// ProductRevenue is one product's paid revenue.
type ProductRevenue struct {
	Title   string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
}

// CustomerSpend is one customer's paid spend.
type CustomerSpend struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	TotalSpend decimal.Decimal `json:"totalSpend"`
}

// CategoryRevenue is paid revenue grouped by product type.
type CategoryRevenue struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// ReportRepository exposes the aggregate read queries the dashboard consumes.
// Revenue figures only count orders with financial status "paid".
type ReportRepository interface {
	Stats(ctx context.Context, tenantID string) (*StoreStats, error)
	OrdersByDate(ctx context.Context, tenantID string, from, to time.Time) ([]*DailyOrderStat, error)
	NewCustomersByDate(ctx context.Context, tenantID string, from, to time.Time) ([]*DailyCustomerStat, error)
	TopProducts(ctx context.Context, tenantID string, limit int) ([]*ProductRevenue, error)
	TopCustomers(ctx context.Context, tenantID string, limit int) ([]*CustomerSpend, error)
	CategoryRevenue(ctx context.Context, tenantID string) ([]*CategoryRevenue, error)
	AbandonedCartCount(ctx context.Context, tenantID string) (int64, error)
}
