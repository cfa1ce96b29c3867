package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"shopify-insights-core/internal/domain"
	"shopify-insights-core/internal/infrastructure/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	env    *domain.Envelope
	ctxErr error
	err    error
}

func (p *capturePublisher) Publish(ctx context.Context, env *domain.Envelope) error {
	p.env = env
	p.ctxErr = ctx.Err()
	return p.err
}

func postWebhook(t *testing.T, pub *capturePublisher, ctx context.Context, headers map[string]string, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := webhookHandler(pub, metrics.New(prometheus.NewRegistry()), zerolog.Nop())

	req := httptest.NewRequest("POST", "/webhooks", strings.NewReader(body)).WithContext(ctx)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func shopifyHeaders() map[string]string {
	return map[string]string{
		"X-Shopify-Topic":       "orders/create",
		"X-Shopify-Shop-Domain": "acme.myshopify.com",
		"X-Shopify-Hmac-Sha256": "c2ln",
	}
}

func TestWebhookHandler_PublishesEnvelope(t *testing.T) {
	pub := &capturePublisher{}
	rec := postWebhook(t, pub, context.Background(), shopifyHeaders(), `{"id": 1}`)

	assert.Equal(t, 200, rec.Code)
	require.NotNil(t, pub.env)
	assert.Equal(t, domain.TopicOrdersCreate, pub.env.Topic)
	assert.Equal(t, "acme.myshopify.com", pub.env.ShopDomain)
	assert.Equal(t, "c2ln", pub.env.HMAC)
	assert.Equal(t, `{"id": 1}`, pub.env.Body, "raw body carried forward untouched")
}

func TestWebhookHandler_PublishSurvivesClientCancel(t *testing.T) {
	// The platform may hang up as soon as it sees the 200; the publish must
	// not be cancelled with it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pub := &capturePublisher{}
	rec := postWebhook(t, pub, ctx, shopifyHeaders(), `{"id": 1}`)

	assert.Equal(t, 200, rec.Code)
	require.NotNil(t, pub.env)
	assert.NoError(t, pub.ctxErr, "publish context must outlive the request context")
}

func TestWebhookHandler_MissingHeadersDropped(t *testing.T) {
	pub := &capturePublisher{}
	rec := postWebhook(t, pub, context.Background(), map[string]string{
		"X-Shopify-Topic": "orders/create",
	}, `{"id": 1}`)

	assert.Equal(t, 200, rec.Code, "the platform still gets its 200")
	assert.Nil(t, pub.env, "nothing was published")
}

func TestWebhookHandler_PublishFailureStill200(t *testing.T) {
	pub := &capturePublisher{err: assert.AnError}
	rec := postWebhook(t, pub, context.Background(), shopifyHeaders(), `{"id": 1}`)

	assert.Equal(t, 200, rec.Code, "broker outage leans on the platform retry tier")
}
