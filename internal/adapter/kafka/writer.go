package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/delivery-point-map/internal/config"
	"github.com/couchcryptid/delivery-point-map/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces point change events to a Kafka topic.
// It implements points.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured points topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaPointsTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishChange serializes and publishes a single change. Messages are keyed
// by point id so every change to one point lands on the same partition.
func (w *Writer) PublishChange(ctx context.Context, change domain.PointChange) error {
	msg, err := serializeToMessage(change)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish point change: %w", err)
	}
	w.logger.Debug("point change published", "op", change.Op, "point_id", change.PointID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a PointChange into a Kafka message.
func serializeToMessage(change domain.PointChange) (kafkago.Message, error) {
	data, err := json.Marshal(change)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize point change: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(change.PointID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "op", Value: []byte(change.Op)},
			{Key: "changed_at", Value: []byte(change.At.Format(time.RFC3339))},
		},
	}, nil
}
