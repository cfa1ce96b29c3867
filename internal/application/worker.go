package application

import (
	"context"
	"time"

	"shopify-insights-core/internal/domain"
	"shopify-insights-core/internal/infrastructure/metrics"
	"shopify-insights-core/internal/ports"

	"github.com/rs/zerolog"
)

// Verifier checks a raw webhook body against its claimed signature.
type Verifier interface {
	Verify(body []byte, signature string) error
}

// Reconciler applies one webhook payload to the store.
type Reconciler interface {
	Reconcile(ctx context.Context, topic domain.Topic, tenantID string, payload []byte) error
}

// receiveRetryDelay spaces out retries when the broker itself is failing.
const receiveRetryDelay = time.Second

// Worker is the queue consumer. One message is in flight at a time per
// worker process; horizontal scale comes from running more processes against
// the same consumer group.
//
// Per message: verify signature over the raw body, resolve the tenant,
// reconcile, then ack. A signature failure is terminal and acked without
// processing (potentially malicious, never retried). A reconcile failure is
// rejected to the dead-letter path, never requeued in place.
type Worker struct {
	consumer   ports.Consumer
	verifier   Verifier
	resolver   *TenantResolver
	reconciler Reconciler
	auditLog   ports.WebhookLogRepository
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewWorker creates a worker. auditLog may be nil to disable audit logging.
func NewWorker(
	consumer ports.Consumer,
	verifier Verifier,
	resolver *TenantResolver,
	reconciler Reconciler,
	auditLog ports.WebhookLogRepository,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Worker {
	return &Worker{
		consumer:   consumer,
		verifier:   verifier,
		resolver:   resolver,
		reconciler: reconciler,
		auditLog:   auditLog,
		metrics:    m,
		logger:     logger,
	}
}

// Run consumes until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Msg("Worker started, waiting for messages")

	for {
		delivery, err := w.consumer.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info().Msg("Worker stopping")
				return ctx.Err()
			}
			w.logger.Error().Err(err).Msg("Failed to receive message")
			time.Sleep(receiveRetryDelay)
			continue
		}

		w.process(ctx, delivery)
	}
}

func (w *Worker) process(ctx context.Context, delivery *ports.Delivery) {
	env := delivery.Envelope
	start := time.Now()
	logger := w.logger.With().
		Str("topic", string(env.Topic)).
		Str("shop", env.ShopDomain).
		Logger()

	// Structural errors are dropped: redelivery would repeat the same shape.
	if env.ShopDomain == "" || env.Topic == "" {
		logger.Warn().Msg("Envelope missing topic or shop domain, discarding message")
		w.metrics.MessagesProcessed.WithLabelValues(metrics.OutcomeDropped).Inc()
		w.ack(ctx, delivery, logger)
		return
	}

	// Re-verify over the raw body carried in the envelope, independent of
	// whatever the ingress endpoint did.
	if err := w.verifier.Verify([]byte(env.Body), env.HMAC); err != nil {
		logger.Warn().Err(err).Msg("Signature verification failed, discarding message")
		w.metrics.VerifyFailures.Inc()
		w.metrics.MessagesProcessed.WithLabelValues(metrics.OutcomeDropped).Inc()
		w.audit(ctx, env, false)
		w.ack(ctx, delivery, logger)
		return
	}

	tenant, err := w.resolver.Resolve(ctx, env.ShopDomain)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve tenant")
		w.reject(ctx, delivery, logger)
		return
	}

	w.audit(ctx, env, true)

	if err := w.reconciler.Reconcile(ctx, env.Topic, tenant.ID, []byte(env.Body)); err != nil {
		logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Failed to reconcile webhook")
		w.reject(ctx, delivery, logger)
		return
	}

	w.metrics.ProcessingTime.Observe(time.Since(start).Seconds())
	w.metrics.MessagesProcessed.WithLabelValues(metrics.OutcomeAcked).Inc()
	w.ack(ctx, delivery, logger)

	logger.Info().Str("tenantId", tenant.ID).Msg("Processed webhook")
}

func (w *Worker) ack(ctx context.Context, delivery *ports.Delivery, logger zerolog.Logger) {
	if err := w.consumer.Ack(ctx, delivery); err != nil {
		logger.Error().Err(err).Msg("Failed to ack message")
	}
}

func (w *Worker) reject(ctx context.Context, delivery *ports.Delivery, logger zerolog.Logger) {
	w.metrics.MessagesProcessed.WithLabelValues(metrics.OutcomeRejected).Inc()
	if err := w.consumer.Reject(ctx, delivery); err != nil {
		logger.Error().Err(err).Msg("Failed to reject message")
	}
}

// audit records the envelope to the webhook log. Best effort: the log is an
// operational trail, a write failure must not fail the message.
func (w *Worker) audit(ctx context.Context, env *domain.Envelope, verified bool) {
	if w.auditLog == nil {
		return
	}
	event := &domain.WebhookEvent{
		Topic:     string(env.Topic),
		Shop:      env.ShopDomain,
		Payload:   []byte(env.Body),
		Verified:  verified,
		CreatedAt: time.Now(),
	}
	if err := w.auditLog.LogWebhook(ctx, event); err != nil {
		w.logger.Error().Err(err).Msg("Failed to log webhook event")
	}
}
