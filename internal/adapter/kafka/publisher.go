package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/dengue-dashboard/internal/config"
	"github.com/couchcryptid/dengue-dashboard/internal/domain"
	"github.com/couchcryptid/dengue-dashboard/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Message headers set on every snapshot row.
const (
	HeaderLoadID   = "load_id"
	HeaderLevel    = "level"
	HeaderLoadedAt = "loaded_at"
)

// batchSize bounds a single WriteMessages call.
const batchSize = 500

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher exports each successful load to a Kafka topic, one message per
// wide-table row.
type Publisher struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the configured snapshot topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSnapshotTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger, metrics: metrics}
}

// Publish writes every row of the snapshot. Rows are keyed by their raw key so
// a compacted topic keeps the latest value per entity.
func (p *Publisher) Publish(ctx context.Context, snap domain.Snapshot) error {
	rows := snap.Rows()
	if len(rows) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, 0, batchSize)
	flush := func() error {
		if len(msgs) == 0 {
			return nil
		}
		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish snapshot %s: %w", snap.LoadID, err)
		}
		p.metrics.SnapshotMessages.Add(float64(len(msgs)))
		msgs = msgs[:0]
		return nil
	}

	for i := range rows {
		msg, err := serializeToMessage(rows[i], snap.LoadedAt)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
		if len(msgs) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	p.logger.Info("snapshot published", "load_id", snap.LoadID, "rows", len(rows))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a snapshot row into a Kafka message.
func serializeToMessage(row domain.SnapshotRow, loadedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot row %q: %w", row.Key, err)
	}
	return kafkago.Message{
		Key:   []byte(row.Key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderLoadID, Value: []byte(row.LoadID)},
			{Key: HeaderLevel, Value: []byte(row.Level)},
			{Key: HeaderLoadedAt, Value: []byte(loadedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
