package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shopify-insights-core/internal/domain"
	"shopify-insights-core/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// envelopeField is the single stream entry field carrying the JSON envelope.
// Keeping the envelope as one JSON blob preserves the wire format end to end.
const envelopeField = "envelope"

// deadLetterSuffix names the stream rejected messages are moved to.
const deadLetterSuffix = ":dead"

// blockInterval bounds each blocking read so the consumer can notice context
// cancellation between deliveries.
const blockInterval = 5 * time.Second

// claimMinIdle is how long a pending entry owned by another consumer must sit
// untouched before this consumer takes it over. Long enough that a healthy
// worker mid-message is never robbed of it.
const claimMinIdle = time.Minute

// Publisher writes webhook envelopes to a Redis stream. Streams are
// append-only and persisted, so a published message survives restarts.
type Publisher struct {
	client *redis.Client
	stream string
	logger zerolog.Logger
}

// NewPublisher creates a publisher for the named stream.
func NewPublisher(client *redis.Client, stream string, logger zerolog.Logger) *Publisher {
	return &Publisher{client: client, stream: stream, logger: logger}
}

// Publish appends the envelope to the stream.
func (p *Publisher) Publish(ctx context.Context, env *domain.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{envelopeField: payload},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish envelope: %w", err)
	}

	return nil
}

// Consumer reads envelopes from the stream through a consumer group, one
// message in flight at a time. Unacknowledged messages stay pending in the
// group, giving at-least-once delivery two ways: a worker restarting under
// the same consumer name drains its own pending backlog first, and entries
// left pending by a consumer that never comes back are claimed by whoever is
// alive once they sit idle past claimMinIdle. The consumer name must be
// stable across restarts for the first path to work. Reject copies the
// message to the dead-letter stream and acknowledges the original so it can
// never loop in place.
type Consumer struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	logger   zerolog.Logger

	// backlog is true while draining messages this consumer received but
	// never acknowledged before its last shutdown.
	backlog bool
}

// NewConsumer creates the consumer group if needed and returns a consumer.
func NewConsumer(ctx context.Context, client *redis.Client, stream, group, consumer string, logger zerolog.Logger) (*Consumer, error) {
	err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		logger:   logger,
		backlog:  true,
	}, nil
}

// Receive blocks until one message is available or ctx is done. A message
// whose envelope cannot be decoded is acknowledged and skipped: redelivery
// would repeat the same malformed shape.
func (c *Consumer) Receive(ctx context.Context) (*ports.Delivery, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cursor := ">"
		if c.backlog {
			cursor = "0"
		}

		res, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumer,
			Streams:  []string{c.stream, cursor},
			Count:    1,
			Block:    blockInterval,
		}).Result()
		if err == redis.Nil {
			// Block timeout or empty backlog, nothing addressed to us.
			c.backlog = false
			if d := c.claimAbandoned(ctx); d != nil {
				return d, nil
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read from stream: %w", err)
		}

		if len(res) == 0 || len(res[0].Messages) == 0 {
			if c.backlog {
				c.backlog = false
				if d := c.claimAbandoned(ctx); d != nil {
					return d, nil
				}
			}
			continue
		}

		if d := c.decode(ctx, res[0].Messages[0]); d != nil {
			return d, nil
		}
	}
}

// claimAbandoned takes over one entry left pending by a consumer that died
// under another name, once it has sat idle past claimMinIdle. Errors are
// logged, not returned: claiming is opportunistic recovery, the normal read
// path keeps working without it.
func (c *Consumer) claimAbandoned(ctx context.Context) *ports.Delivery {
	msgs, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.stream,
		Group:    c.group,
		Consumer: c.consumer,
		MinIdle:  claimMinIdle,
		Start:    "0-0",
		Count:    1,
	}).Result()
	if err != nil && err != redis.Nil {
		c.logger.Error().Err(err).Msg("Failed to claim pending messages")
		return nil
	}
	if len(msgs) == 0 {
		return nil
	}

	c.logger.Warn().Str("messageId", msgs[0].ID).
		Msg("Claimed message abandoned by another consumer")
	return c.decode(ctx, msgs[0])
}

// decode parses one stream entry into a delivery. A malformed envelope is
// acknowledged and dropped with a log line; redelivering it would repeat the
// same bytes.
func (c *Consumer) decode(ctx context.Context, msg redis.XMessage) *ports.Delivery {
	raw, _ := msg.Values[envelopeField].(string)

	var env domain.Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		c.logger.Error().Err(err).Str("messageId", msg.ID).
			Msg("Malformed envelope, dropping message")
		if ackErr := c.client.XAck(ctx, c.stream, c.group, msg.ID).Err(); ackErr != nil {
			c.logger.Error().Err(ackErr).Str("messageId", msg.ID).
				Msg("Failed to ack malformed message")
		}
		return nil
	}

	return &ports.Delivery{ID: msg.ID, Envelope: &env}
}

// Ack removes the message from the group's pending list.
func (c *Consumer) Ack(ctx context.Context, d *ports.Delivery) error {
	if err := c.client.XAck(ctx, c.stream, c.group, d.ID).Err(); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", d.ID, err)
	}
	return nil
}

// Reject moves the message to the dead-letter stream, then acknowledges the
// original. No requeue: failure is terminal per message, redelivery only
// happens through the platform's own retry tier.
func (c *Consumer) Reject(ctx context.Context, d *ports.Delivery) error {
	payload, err := json.Marshal(d.Envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope for dead-letter: %w", err)
	}

	err = c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.stream + deadLetterSuffix,
		Values: map[string]interface{}{envelopeField: payload},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to dead-letter message %s: %w", d.ID, err)
	}

	if err := c.client.XAck(ctx, c.stream, c.group, d.ID).Err(); err != nil {
		return fmt.Errorf("failed to ack rejected message %s: %w", d.ID, err)
	}

	return nil
}
