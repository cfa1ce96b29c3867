package repository

import (
	"context"
	"fmt"
	"time"

	"shopify-insights-core/internal/domain"
	"shopify-insights-core/internal/ports"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// webhookLogDoc is the MongoDB shape of an audit-log entry.
type webhookLogDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Topic     string             `bson:"topic"`
	Shop      string             `bson:"shop"`
	Payload   []byte             `bson:"payload"`
	Verified  bool               `bson:"verified"`
	CreatedAt time.Time          `bson:"created_at"`
}

// MongoWebhookLogRepository records every processed envelope to MongoDB.
// The log is an operational trail, not a source of truth: a failed write is
// surfaced to the caller, which logs and keeps processing.
type MongoWebhookLogRepository struct {
	collection *mongo.Collection
}

// NewMongoWebhookLogRepository creates the audit-log repository.
func NewMongoWebhookLogRepository(db *mongo.Database) ports.WebhookLogRepository {
	return &MongoWebhookLogRepository{
		collection: db.Collection("webhook_events"),
	}
}

// LogWebhook appends one audit record.
func (r *MongoWebhookLogRepository) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	doc := webhookLogDoc{
		ID:        primitive.NewObjectID(),
		Topic:     event.Topic,
		Shop:      event.Shop,
		Payload:   event.Payload,
		Verified:  event.Verified,
		CreatedAt: event.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to log webhook: %w", err)
	}

	return nil
}
