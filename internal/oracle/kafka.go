// Package oracle implements the transport collaborator for reserve
// attestations: a Kafka request/response pipe. The engine fires a request
// and, from its point of view, the response arrives whenever it arrives;
// delivery may fail or never happen at all.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"mintguard/internal/platform/config"
)

// requestEnvelope is the outbound wire format on the request topic.
type requestEnvelope struct {
	RequestID string `json:"request_id"`
	Query     string `json:"query"`
}

// responseEnvelope is the inbound wire format on the response topic. Error
// carries a transport-level failure; Payload is the raw attestation body the
// intake layer validates.
type responseEnvelope struct {
	RequestID string          `json:"request_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Client is the Kafka-backed oracle transport.
type Client struct {
	kc     *kgo.Client
	cfg    config.KafkaConfig
	logger *slog.Logger
}

// NewClient connects to the brokers, ensures both topics exist, and returns
// the transport.
func NewClient(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger) (*Client, error) {
	kc, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.ResponseTopic),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopics(ctx, kc, cfg.RequestTopic, cfg.ResponseTopic); err != nil {
		kc.Close()
		return nil, err
	}

	return &Client{kc: kc, cfg: cfg, logger: logger}, nil
}

// ensureTopics creates the request/response topics if missing.
func ensureTopics(ctx context.Context, kc *kgo.Client, topics ...string) error {
	adm := kadm.NewClient(kc)
	resps, err := adm.CreateTopics(ctx, 1, 1, nil, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, resp := range resps.Sorted() {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// SubmitRequest publishes an attestation request keyed by request id.
// Synchronous produce: a request that never reached the pipe should fail the
// Submit call rather than silently vanish.
func (c *Client) SubmitRequest(ctx context.Context, requestID, query string) error {
	value, err := json.Marshal(requestEnvelope{RequestID: requestID, Query: query})
	if err != nil {
		return fmt.Errorf("encode oracle request: %w", err)
	}

	record := &kgo.Record{
		Topic: c.cfg.RequestTopic,
		Key:   []byte(requestID),
		Value: value,
	}
	if err := c.kc.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce oracle request: %w", err)
	}
	return nil
}

// Deliverer receives one decoded delivery at a time. Implemented by the
// intake service.
type Deliverer interface {
	Ingest(ctx context.Context, requestID string, payload []byte, transportErr error) error
}

// Consume polls the response topic and forwards deliveries one at a time
// until the context is cancelled. Rejected deliveries are logged and
// committed: the engine never retries an attestation internally, so
// redelivering a bad record would only reject it again.
func (c *Client) Consume(ctx context.Context, deliverer Deliverer) error {
	for {
		fetches := c.kc.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "oracle fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		fetches.EachRecord(func(record *kgo.Record) {
			c.deliver(ctx, deliverer, record)
		})

		if err := c.kc.CommitUncommittedOffsets(ctx); err != nil && ctx.Err() == nil {
			c.logger.ErrorContext(ctx, "commit oracle offsets failed", "error", err)
		}
	}
}

func (c *Client) deliver(ctx context.Context, deliverer Deliverer, record *kgo.Record) {
	var envelope responseEnvelope
	if err := json.Unmarshal(record.Value, &envelope); err != nil {
		c.logger.WarnContext(ctx, "undecodable oracle response record",
			"key", string(record.Key),
			"error", err,
		)
		return
	}

	requestID := envelope.RequestID
	if requestID == "" {
		requestID = string(record.Key)
	}

	var transportErr error
	if envelope.Error != "" {
		transportErr = errors.New(envelope.Error)
	}

	if err := deliverer.Ingest(ctx, requestID, envelope.Payload, transportErr); err != nil {
		c.logger.WarnContext(ctx, "oracle delivery rejected",
			"request_id", requestID,
			"error", err,
		)
	}
}

// Close releases the Kafka client.
func (c *Client) Close() {
	c.kc.Close()
}
