package reconciler

import (
	"context"

	"shopify-insights-core/internal/domain"
	"shopify-insights-core/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// handlerFunc processes one webhook payload for one tenant.
type handlerFunc func(ctx context.Context, tenantID string, payload []byte) error

// Reconciler maps webhook payloads onto the normalized, tenant-scoped
// entities. Dispatch goes through an explicit topic table; a topic outside
// the table is logged and ignored rather than failing the message.
//
// Every upsert is keyed on (external id, tenant id). A reference to a
// related entity that has not been seen yet becomes a null link: webhook
// delivery order across topics is not guaranteed, and a rejected row would
// lose more data than a missing link.
type Reconciler struct {
	customers ports.CustomerRepository
	products  ports.ProductRepository
	orders    ports.OrderRepository
	carts     ports.CartRepository
	logger    zerolog.Logger

	handlers map[domain.Topic]handlerFunc
}

// New creates a reconciler with its topic table.
func New(
	customers ports.CustomerRepository,
	products ports.ProductRepository,
	orders ports.OrderRepository,
	carts ports.CartRepository,
	logger zerolog.Logger,
) *Reconciler {
	r := &Reconciler{
		customers: customers,
		products:  products,
		orders:    orders,
		carts:     carts,
		logger:    logger,
	}

	r.handlers = map[domain.Topic]handlerFunc{
		domain.TopicCustomersCreate: r.upsertCustomer,
		domain.TopicCustomersUpdate: r.upsertCustomer,
		domain.TopicCustomersDelete: r.deleteCustomer,

		domain.TopicProductsCreate: r.upsertProduct,
		domain.TopicProductsUpdate: r.upsertProduct,
		domain.TopicProductsDelete: r.deleteProduct,

		domain.TopicOrdersCreate:  r.upsertOrder,
		domain.TopicOrdersUpdated: r.upsertOrder,
		domain.TopicOrdersDelete:  r.deleteOrder,

		domain.TopicCartsCreate: r.upsertCart,
		domain.TopicCartsUpdate: r.upsertCart,

		domain.TopicCheckoutsCreate: r.upsertCheckout,
		domain.TopicCheckoutsUpdate: r.upsertCheckout,
		domain.TopicCheckoutsDelete: r.deleteCheckout,
	}

	return r
}

// Reconcile applies one webhook payload. Returning an error fails the
// message; the worker rejects it to the dead-letter path.
func (r *Reconciler) Reconcile(ctx context.Context, topic domain.Topic, tenantID string, payload []byte) error {
	handler, ok := r.handlers[topic]
	if !ok {
		r.logger.Warn().Str("topic", string(topic)).Str("tenantId", tenantID).
			Msg("Unhandled webhook topic, ignoring")
		return nil
	}
	return handler(ctx, tenantID, payload)
}

// money parses a monetary string, degrading garbage to zero with a warning
// rather than failing the whole message.
func (r *Reconciler) money(value, field string) decimal.Decimal {
	d, err := parseMoney(value)
	if err != nil {
		r.logger.Warn().Err(err).Str("field", field).Msg("Unparseable monetary field, using zero")
		return decimal.Zero
	}
	return d
}

// linkProduct resolves an external product reference to an internal id, or
// nil when the product has not been seen (or the lookup fails).
func (r *Reconciler) linkProduct(ctx context.Context, tenantID string, externalID ExternalID) *string {
	if externalID == "" {
		return nil
	}
	product, err := r.products.GetByExternalID(ctx, tenantID, externalID.String())
	if err != nil {
		r.logger.Warn().Err(err).Str("productId", externalID.String()).
			Msg("Product lookup failed, storing null link")
		return nil
	}
	if product == nil {
		return nil
	}
	return &product.ID
}

// linkCustomer resolves an embedded or referenced customer to an internal
// id. A payload carrying a full customer profile upserts it first; a bare
// reference is looked up only. Either way absence yields nil, never an error.
func (r *Reconciler) linkCustomer(ctx context.Context, tenantID string, p *customerPayload) *string {
	if p == nil || p.ID == "" {
		return nil
	}

	if p.hasProfile() {
		customer, err := r.saveCustomer(ctx, tenantID, p)
		if err == nil {
			return &customer.ID
		}
		r.logger.Warn().Err(err).Str("customerId", p.ID.String()).
			Msg("Embedded customer upsert failed, falling back to lookup")
	}

	customer, err := r.customers.GetByExternalID(ctx, tenantID, p.ID.String())
	if err != nil {
		r.logger.Warn().Err(err).Str("customerId", p.ID.String()).
			Msg("Customer lookup failed, storing null link")
		return nil
	}
	if customer == nil {
		return nil
	}
	return &customer.ID
}
