package reconciler

import (
	"context"
	"fmt"
	"sync"

	"shopify-insights-core/internal/domain"
)

// In-memory store fakes keyed the same way the real repositories are:
// composite (external id, tenant id).

func key(tenantID, externalID string) string {
	return tenantID + "|" + externalID
}

type fakeCustomers struct {
	mu   sync.Mutex
	rows map[string]*domain.Customer
	seq  int
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{rows: make(map[string]*domain.Customer)}
}

func (f *fakeCustomers) Upsert(ctx context.Context, c *domain.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(c.TenantID, c.ExternalID)
	if existing, ok := f.rows[k]; ok {
		c.ID = existing.ID
	} else {
		f.seq++
		c.ID = fmt.Sprintf("cust-%d", f.seq)
	}
	clone := *c
	f.rows[k] = &clone
	return nil
}

func (f *fakeCustomers) GetByExternalID(ctx context.Context, tenantID, externalID string) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[key(tenantID, externalID)]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCustomers) Delete(ctx context.Context, tenantID, externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, key(tenantID, externalID))
	return nil
}

type fakeProducts struct {
	mu       sync.Mutex
	rows     map[string]*domain.Product
	variants map[string]*domain.Variant
	seq      int
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{
		rows:     make(map[string]*domain.Product),
		variants: make(map[string]*domain.Variant),
	}
}

func (f *fakeProducts) Upsert(ctx context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(p.TenantID, p.ExternalID)
	if existing, ok := f.rows[k]; ok {
		p.ID = existing.ID
	} else {
		f.seq++
		p.ID = fmt.Sprintf("prod-%d", f.seq)
	}
	clone := *p
	f.rows[k] = &clone
	return nil
}

func (f *fakeProducts) GetByExternalID(ctx context.Context, tenantID, externalID string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[key(tenantID, externalID)]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProducts) UpsertVariant(ctx context.Context, v *domain.Variant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(v.TenantID, v.ExternalID)
	if existing, ok := f.variants[k]; ok {
		v.ID = existing.ID
	} else {
		f.seq++
		v.ID = fmt.Sprintf("var-%d", f.seq)
	}
	clone := *v
	f.variants[k] = &clone
	return nil
}

func (f *fakeProducts) Delete(ctx context.Context, tenantID, externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, key(tenantID, externalID))
	return nil
}

type fakeOrders struct {
	mu           sync.Mutex
	rows         map[string]*domain.Order
	items        map[string]*domain.OrderItem
	transactions map[string]*domain.Transaction
	seq          int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		rows:         make(map[string]*domain.Order),
		items:        make(map[string]*domain.OrderItem),
		transactions: make(map[string]*domain.Transaction),
	}
}

func (f *fakeOrders) Upsert(ctx context.Context, o *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(o.TenantID, o.ExternalID)
	if existing, ok := f.rows[k]; ok {
		o.ID = existing.ID
	} else {
		f.seq++
		o.ID = fmt.Sprintf("ord-%d", f.seq)
	}
	clone := *o
	f.rows[k] = &clone
	return nil
}

func (f *fakeOrders) UpsertItem(ctx context.Context, item *domain.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(item.TenantID, item.ExternalID)
	if existing, ok := f.items[k]; ok {
		item.ID = existing.ID
	} else {
		f.seq++
		item.ID = fmt.Sprintf("item-%d", f.seq)
	}
	clone := *item
	f.items[k] = &clone
	return nil
}

func (f *fakeOrders) UpsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(tx.TenantID, tx.ExternalID)
	if existing, ok := f.transactions[k]; ok {
		tx.ID = existing.ID
	} else {
		f.seq++
		tx.ID = fmt.Sprintf("tx-%d", f.seq)
	}
	clone := *tx
	f.transactions[k] = &clone
	return nil
}

func (f *fakeOrders) Delete(ctx context.Context, tenantID, externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, key(tenantID, externalID))
	return nil
}

type fakeCarts struct {
	mu    sync.Mutex
	rows  map[string]*domain.Cart
	items map[string][]*domain.CartItem
	seq   int
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{
		rows:  make(map[string]*domain.Cart),
		items: make(map[string][]*domain.CartItem),
	}
}

func (f *fakeCarts) Upsert(ctx context.Context, c *domain.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(c.TenantID, c.Token)
	if existing, ok := f.rows[k]; ok {
		c.ID = existing.ID
	} else {
		f.seq++
		c.ID = fmt.Sprintf("cart-%d", f.seq)
	}
	clone := *c
	f.rows[k] = &clone
	return nil
}

func (f *fakeCarts) ReplaceItems(ctx context.Context, cartID string, items []*domain.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	replaced := make([]*domain.CartItem, len(items))
	for i, item := range items {
		clone := *item
		clone.CartID = cartID
		replaced[i] = &clone
	}
	f.items[cartID] = replaced
	return nil
}

func (f *fakeCarts) UpdateStatus(ctx context.Context, tenantID, token, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.rows[key(tenantID, token)]; ok {
		c.Status = status
	}
	return nil
}

func (f *fakeCarts) Delete(ctx context.Context, tenantID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(tenantID, token)
	if c, ok := f.rows[k]; ok {
		delete(f.items, c.ID)
	}
	delete(f.rows, k)
	return nil
}
