package reconciler

import (
	"context"
	"testing"

	"shopify-insights-core/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenantID = "tenant-1"

type testEnv struct {
	rec       *Reconciler
	customers *fakeCustomers
	products  *fakeProducts
	orders    *fakeOrders
	carts     *fakeCarts
}

func newTestEnv() *testEnv {
	customers := newFakeCustomers()
	products := newFakeProducts()
	orders := newFakeOrders()
	carts := newFakeCarts()
	return &testEnv{
		rec:       New(customers, products, orders, carts, zerolog.Nop()),
		customers: customers,
		products:  products,
		orders:    orders,
		carts:     carts,
	}
}

func TestReconcile_CustomerCreate(t *testing.T) {
	env := newTestEnv()
	payload := []byte(`{"id":123,"email":"a@b.com","first_name":"A"}`)

	err := env.rec.Reconcile(context.Background(), domain.TopicCustomersCreate, tenantID, payload)
	require.NoError(t, err)

	c, err := env.customers.GetByExternalID(context.Background(), tenantID, "123")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "123", c.ExternalID)
	assert.Equal(t, "a@b.com", c.Email)
	assert.Equal(t, "A", c.FirstName)
}

func TestReconcile_Idempotent(t *testing.T) {
	env := newTestEnv()
	payload := []byte(`{"id":123,"email":"a@b.com","first_name":"A"}`)

	for i := 0; i < 3; i++ {
		require.NoError(t, env.rec.Reconcile(context.Background(), domain.TopicCustomersCreate, tenantID, payload))
	}

	assert.Len(t, env.customers.rows, 1)
	c, _ := env.customers.GetByExternalID(context.Background(), tenantID, "123")
	assert.Equal(t, "cust-1", c.ID, "replay must not mint a new row")
}

func TestReconcile_CustomerUpdateKeepsIdentity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.rec.Reconcile(ctx, domain.TopicCustomersCreate, tenantID,
		[]byte(`{"id":123,"email":"a@b.com"}`)))
	require.NoError(t, env.rec.Reconcile(ctx, domain.TopicCustomersUpdate, tenantID,
		[]byte(`{"id":123,"email":"new@b.com"}`)))

	c, _ := env.customers.GetByExternalID(ctx, tenantID, "123")
	assert.Equal(t, "new@b.com", c.Email)
	assert.Len(t, env.customers.rows, 1)
}

func TestReconcile_TenantScoping(t *testing.T) {
	// Two tenants may reuse the same external id space.
	env := newTestEnv()
	ctx := context.Background()
	payload := []byte(`{"id":123,"email":"a@b.com"}`)

	require.NoError(t, env.rec.Reconcile(ctx, domain.TopicCustomersCreate, "tenant-a", payload))
	require.NoError(t, env.rec.Reconcile(ctx, domain.TopicCustomersCreate, "tenant-b", payload))

	assert.Len(t, env.customers.rows, 2)
}

func TestReconcile_DeleteMissingIsNoOp(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	assert.NoError(t, env.rec.Reconcile(ctx, domain.TopicCustomersDelete, tenantID, []byte(`{"id":999}`)))
	assert.NoError(t, env.rec.Reconcile(ctx, domain.TopicProductsDelete, tenantID, []byte(`{"id":999}`)))
	assert.NoError(t, env.rec.Reconcile(ctx, domain.TopicOrdersDelete, tenantID, []byte(`{"id":999}`)))
	assert.NoError(t, env.rec.Reconcile(ctx, domain.TopicCheckoutsDelete, tenantID, []byte(`{"cart_token":"ghost"}`)))
}

func TestReconcile_ProductWithVariants(t *testing.T) {
	env := newTestEnv()
	payload := []byte(`{
		"id": 77,
		"title": "Tea Pot",
		"handle": "tea-pot",
		"vendor": "acme",
		"product_type": "Kitchen",
		"image": {"src": "https://cdn/img.png"},
		"variants": [
			{"id": 771, "title": "Small", "sku": "TP-S", "price": "12.50"},
			{"id": 772, "title": "Large", "sku": "TP-L", "price": "19.90"}
		]
	}`)

	require.NoError(t, env.rec.Reconcile(context.Background(), domain.TopicProductsCreate, tenantID, payload))

	p, _ := env.products.GetByExternalID(context.Background(), tenantID, "77")
	require.NotNil(t, p)
	assert.Equal(t, "Kitchen", p.ProductType)
	assert.Equal(t, "https://cdn/img.png", p.ImageURL)

	require.Len(t, env.products.variants, 2)
	v := env.products.variants[key(tenantID, "771")]
	require.NotNil(t, v)
	assert.Equal(t, p.ID, v.ProductID)
	assert.Equal(t, "12.50", v.Price.StringFixed(2))
}

func TestReconcile_OrderLinksMissingProductAsNull(t *testing.T) {
	env := newTestEnv()
	payload := []byte(`{
		"id": 5001,
		"order_number": 42,
		"total_price": "31.00",
		"currency": "USD",
		"financial_status": "paid",
		"line_items": [
			{"id": 9001, "product_id": 555, "quantity": 2, "price": "15.50"}
		]
	}`)

	require.NoError(t, env.rec.Reconcile(context.Background(), domain.TopicOrdersCreate, tenantID, payload))

	item := env.orders.items[key(tenantID, "9001")]
	require.NotNil(t, item)
	assert.Nil(t, item.ProductID, "unseen product must yield a null link")
	assert.Equal(t, 2, item.Quantity)

	// A later products/create does not retroactively backfill the link.
	require.NoError(t, env.rec.Reconcile(context.Background(), domain.TopicProductsCreate, tenantID,
		[]byte(`{"id":555,"title":"Late Product"}`)))
	assert.Nil(t, env.orders.items[key(tenantID, "9001")].ProductID)
}

func TestReconcile_OrderLinksSeenProduct(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.rec.Reconcile(ctx, domain.TopicProductsCreate, tenantID,
		[]byte(`{"id":555,"title":"Pot"}`)))
	require.NoError(t, env.rec.Reconcile(ctx, domain.TopicOrdersCreate, tenantID,
		[]byte(`{"id":5001,"order_number":42,"total_price":"10.00","line_items":[{"id":9001,"product_id":555,"quantity":1,"price":"10.00"}]}`)))

	item := env.orders.items[key(tenantID, "9001")]
	require.NotNil(t, item)
	require.NotNil(t, item.ProductID)

	p, _ := env.products.GetByExternalID(ctx, tenantID, "555")
	assert.Equal(t, p.ID, *item.ProductID)
}

func TestReconcile_OrderUpsertsEmbeddedCustomer(t *testing.T) {
	env := newTestEnv()
	payload := []byte(`{
		"id": 5001,
		"order_number": 42,
		"total_price": "10.00",
		"financial_status": "paid",
		"customer": {"id": 123, "email": "a@b.com", "first_name": "A"}
	}`)

	require.NoError(t, env.rec.Reconcile(context.Background(), domain.TopicOrdersCreate, tenantID, payload))

	c, _ := env.customers.GetByExternalID(context.Background(), tenantID, "123")
	require.NotNil(t, c, "embedded customer must be upserted")

	order := env.orders.rows[key(tenantID, "5001")]
	require.NotNil(t, order)
	require.NotNil(t, order.CustomerID)
	assert.Equal(t, c.ID, *order.CustomerID)
}

func TestReconcile_GuestOrderHasNullCustomer(t *testing.T) {
	env := newTestEnv()
	payload := []byte(`{"id":5002,"order_number":43,"total_price":"5.00"}`)

	require.NoError(t, env.rec.Reconcile(context.Background(), domain.TopicOrdersCreate, tenantID, payload))

	order := env.orders.rows[key(tenantID, "5002")]
	require.NotNil(t, order)
	assert.Nil(t, order.CustomerID)
}

func TestReconcile_OrderTransactions(t *testing.T) {
	env := newTestEnv()
	payload := []byte(`{
		"id": 5001,
		"order_number": 42,
		"total_price": "10.00",
		"transactions": [{"id": 8001, "amount": "10.00", "kind": "sale", "status": "success"}]
	}`)

	require.NoError(t, env.rec.Reconcile(context.Background(), domain.TopicOrdersCreate, tenantID, payload))

	tx := env.orders.transactions[key(tenantID, "8001")]
	require.NotNil(t, tx)
	assert.Equal(t, "sale", tx.Kind)
	assert.Equal(t, env.orders.rows[key(tenantID, "5001")].ID, tx.OrderID)
}

func TestReconcile_CartItemsFullyReplaced(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	two := []byte(`{"token":"tok-1","total_price":"30.00","line_items":[
		{"id":1,"quantity":1,"price":"10.00"},
		{"id":2,"quantity":2,"price":"10.00"}
	]}`)
	one := []byte(`{"token":"tok-1","total_price":"10.00","line_items":[
		{"id":1,"quantity":1,"price":"10.00"}
	]}`)

	require.NoError(t, env.rec.Reconcile(ctx, domain.TopicCartsCreate, tenantID, two))
	cart := env.carts.rows[key(tenantID, "tok-1")]
	require.NotNil(t, cart)
	assert.Len(t, env.carts.items[cart.ID], 2)

	require.NoError(t, env.rec.Reconcile(ctx, domain.TopicCartsUpdate, tenantID, one))
	assert.Len(t, env.carts.items[cart.ID], 1, "cart items must be replaced, not merged")
}

func TestReconcile_CartItemIDSynthesized(t *testing.T) {
	env := newTestEnv()
	payload := []byte(`{"token":"tok-2","total_price":"10.00","line_items":[
		{"variant_id":771,"quantity":1,"price":"10.00"}
	]}`)

	require.NoError(t, env.rec.Reconcile(context.Background(), domain.TopicCartsCreate, tenantID, payload))

	cart := env.carts.rows[key(tenantID, "tok-2")]
	items := env.carts.items[cart.ID]
	require.Len(t, items, 1)
	assert.Equal(t, "tok-2-771", items[0].ExternalID)
}

func TestReconcile_CheckoutSharesCartRow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.rec.Reconcile(ctx, domain.TopicCartsCreate, tenantID,
		[]byte(`{"token":"tok-3","total_price":"10.00"}`)))
	require.NoError(t, env.rec.Reconcile(ctx, domain.TopicCheckoutsCreate, tenantID,
		[]byte(`{"id":99,"token":"chk-99","cart_token":"tok-3","total_price":"10.00"}`)))

	require.Len(t, env.carts.rows, 1, "a checkout is the same cart, not a new entity")
	cart := env.carts.rows[key(tenantID, "tok-3")]
	assert.Equal(t, domain.CartStatusCheckoutStarted, cart.Status)
}

func TestReconcile_CheckoutDeleteCompletedRemovesCart(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.rec.Reconcile(ctx, domain.TopicCheckoutsCreate, tenantID,
		[]byte(`{"cart_token":"tok-4","total_price":"10.00"}`)))
	require.NoError(t, env.rec.Reconcile(ctx, domain.TopicCheckoutsDelete, tenantID,
		[]byte(`{"cart_token":"tok-4","completed_at":"2026-08-30T10:00:00Z"}`)))

	assert.Empty(t, env.carts.rows)
}

func TestReconcile_CheckoutDeleteUncompletedMarksAbandoned(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.rec.Reconcile(ctx, domain.TopicCheckoutsCreate, tenantID,
		[]byte(`{"cart_token":"tok-5","total_price":"10.00"}`)))
	require.NoError(t, env.rec.Reconcile(ctx, domain.TopicCheckoutsDelete, tenantID,
		[]byte(`{"cart_token":"tok-5","completed_at":null}`)))

	cart := env.carts.rows[key(tenantID, "tok-5")]
	require.NotNil(t, cart)
	assert.Equal(t, domain.CartStatusAbandoned, cart.Status)
}

func TestReconcile_UnknownTopicIgnored(t *testing.T) {
	env := newTestEnv()
	err := env.rec.Reconcile(context.Background(), domain.Topic("themes/publish"), tenantID, []byte(`{}`))
	assert.NoError(t, err, "unknown topics are logged and ignored, not failed")
}

func TestReconcile_MalformedPayloadFails(t *testing.T) {
	env := newTestEnv()
	err := env.rec.Reconcile(context.Background(), domain.TopicCustomersCreate, tenantID, []byte(`{not json`))
	assert.Error(t, err)
}

func TestReconcile_GarbageMoneyDegradesToZero(t *testing.T) {
	env := newTestEnv()
	payload := []byte(`{"id":5003,"order_number":44,"total_price":"not-a-number"}`)

	require.NoError(t, env.rec.Reconcile(context.Background(), domain.TopicOrdersCreate, tenantID, payload))

	order := env.orders.rows[key(tenantID, "5003")]
	require.NotNil(t, order)
	assert.True(t, order.TotalPrice.IsZero())
}
