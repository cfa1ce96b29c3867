package postgres

import (
	"database/sql"
	"fmt"
)

// schema is the full DDL. Every entity table carries the composite unique
// constraint on (external id, tenant id): two tenants may legitimately reuse
// the same external numeric id space, and the upsert keyed on that constraint
// is the concurrency-control primitive for the whole pipeline.
//
// Child links to products and customers are nullable with ON DELETE SET NULL:
// webhook delivery order across related topics is not guaranteed, so a
// missing relation degrades to a null link instead of a rejected row.
const schema = `
CREATE TABLE IF NOT EXISTS tenants (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    shop_domain TEXT NOT NULL UNIQUE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS customers (
    id          TEXT PRIMARY KEY,
    external_id TEXT NOT NULL,
    tenant_id   TEXT NOT NULL REFERENCES tenants(id),
    first_name  TEXT NOT NULL DEFAULT '',
    last_name   TEXT NOT NULL DEFAULT '',
    email       TEXT NOT NULL DEFAULT '',
    phone       TEXT NOT NULL DEFAULT '',
    address     TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (external_id, tenant_id)
);

CREATE TABLE IF NOT EXISTS products (
    id           TEXT PRIMARY KEY,
    external_id  TEXT NOT NULL,
    tenant_id    TEXT NOT NULL REFERENCES tenants(id),
    title        TEXT NOT NULL DEFAULT '',
    handle       TEXT NOT NULL DEFAULT '',
    vendor       TEXT NOT NULL DEFAULT '',
    product_type TEXT NOT NULL DEFAULT '',
    image_url    TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (external_id, tenant_id)
);

CREATE TABLE IF NOT EXISTS variants (
    id          TEXT PRIMARY KEY,
    external_id TEXT NOT NULL,
    tenant_id   TEXT NOT NULL REFERENCES tenants(id),
    title       TEXT NOT NULL DEFAULT '',
    sku         TEXT NOT NULL DEFAULT '',
    price       NUMERIC(12,2) NOT NULL DEFAULT 0,
    product_id  TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (external_id, tenant_id)
);

CREATE TABLE IF NOT EXISTS orders (
    id                 TEXT PRIMARY KEY,
    external_id        TEXT NOT NULL,
    tenant_id          TEXT NOT NULL REFERENCES tenants(id),
    order_number       TEXT NOT NULL DEFAULT '',
    total_price        NUMERIC(12,2) NOT NULL DEFAULT 0,
    currency           TEXT NOT NULL DEFAULT '',
    financial_status   TEXT NOT NULL DEFAULT '',
    fulfillment_status TEXT NOT NULL DEFAULT '',
    customer_id        TEXT REFERENCES customers(id) ON DELETE SET NULL,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (external_id, tenant_id)
);

CREATE TABLE IF NOT EXISTS order_items (
    id          TEXT PRIMARY KEY,
    external_id TEXT NOT NULL,
    tenant_id   TEXT NOT NULL REFERENCES tenants(id),
    quantity    INTEGER NOT NULL DEFAULT 0,
    price       NUMERIC(12,2) NOT NULL DEFAULT 0,
    order_id    TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id  TEXT REFERENCES products(id) ON DELETE SET NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (external_id, tenant_id)
);

CREATE TABLE IF NOT EXISTS transactions (
    id          TEXT PRIMARY KEY,
    external_id TEXT NOT NULL,
    tenant_id   TEXT NOT NULL REFERENCES tenants(id),
    amount      NUMERIC(12,2) NOT NULL DEFAULT 0,
    kind        TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT '',
    order_id    TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (external_id, tenant_id)
);

CREATE TABLE IF NOT EXISTS carts (
    id          TEXT PRIMARY KEY,
    token       TEXT NOT NULL,
    tenant_id   TEXT NOT NULL REFERENCES tenants(id),
    total_price NUMERIC(12,2) NOT NULL DEFAULT 0,
    status      TEXT NOT NULL DEFAULT 'active',
    customer_id TEXT REFERENCES customers(id) ON DELETE SET NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (token, tenant_id)
);

CREATE TABLE IF NOT EXISTS cart_items (
    id          TEXT PRIMARY KEY,
    external_id TEXT NOT NULL,
    tenant_id   TEXT NOT NULL REFERENCES tenants(id),
    quantity    INTEGER NOT NULL DEFAULT 0,
    price       NUMERIC(12,2) NOT NULL DEFAULT 0,
    cart_id     TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
    product_id  TEXT REFERENCES products(id) ON DELETE SET NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_orders_tenant_created ON orders (tenant_id, created_at);
CREATE INDEX IF NOT EXISTS idx_customers_tenant_created ON customers (tenant_id, created_at);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id);
CREATE INDEX IF NOT EXISTS idx_cart_items_cart ON cart_items (cart_id);
`

// Migrate applies the schema. All statements are idempotent.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
