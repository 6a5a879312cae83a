package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/khata-ledger/internal/config"
)

// EntryEventProducer publishes entry-recorded events keyed by contact id,
// so every event of one contact lands on the same partition in order.
type EntryEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewEntryEventProducer ensures the events topic exists and returns a producer writing to it
func NewEntryEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*EntryEventProducer, error) {
	if cfg.EventsTopic == "" {
		return nil, fmt.Errorf("kafka events topic is not configured")
	}

	if err := ensureTopic(ctx, cfg, cfg.EventsTopic, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure events topic %s exists: %w", cfg.EventsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.BrokerList()...),
		Topic:        cfg.EventsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write entry events asynchronously", "topic", cfg.EventsTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Wrote entry events", "topic", cfg.EventsTopic, "count", len(messages))
			}
		},
	}

	return &EntryEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.EventsTopic,
	}, nil
}

func (p *EntryEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal entry event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("entry_recorded")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish entry event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish entry event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published entry event", "topic", p.topic, "key", key)
	return nil
}

func (p *EntryEventProducer) Close() error {
	p.logger.Info("Closing entry event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
