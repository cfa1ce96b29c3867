package domain

import "time"

// Topic identifies a webhook topic. Dispatch goes through an explicit
// topic→handler table; a topic outside that table is logged and ignored.
type Topic string

const (
	TopicCustomersCreate Topic = "customers/create"
	TopicCustomersUpdate Topic = "customers/update"
	TopicCustomersDelete Topic = "customers/delete"

	TopicProductsCreate Topic = "products/create"
	TopicProductsUpdate Topic = "products/update"
	TopicProductsDelete Topic = "products/delete"

	TopicOrdersCreate Topic = "orders/create"
	// The platform uses past tense for order updates, unlike every other topic.
	TopicOrdersUpdated Topic = "orders/updated"
	TopicOrdersDelete  Topic = "orders/delete"

	TopicCartsCreate Topic = "carts/create"
	TopicCartsUpdate Topic = "carts/update"

	TopicCheckoutsCreate Topic = "checkouts/create"
	TopicCheckoutsUpdate Topic = "checkouts/update"
	TopicCheckoutsDelete Topic = "checkouts/delete"
)

// Envelope is the queue wire format. Body is the raw JSON text exactly as
// received: signature verification in the worker must run over the original
// bytes, and re-serializing a parsed body would break it.
type Envelope struct {
	Topic      Topic  `json:"topic"`
	ShopDomain string `json:"shopDomain"`
	HMAC       string `json:"hmac"`
	Body       string `json:"body"`
}

// WebhookEvent is the audit-log record of one processed envelope.
type WebhookEvent struct {
	Topic     string    `json:"topic" bson:"topic"`
	Shop      string    `json:"shop" bson:"shop"`
	Payload   []byte    `json:"payload" bson:"payload"`
	Verified  bool      `json:"verified" bson:"verified"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
