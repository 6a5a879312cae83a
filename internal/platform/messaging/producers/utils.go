package producers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/khata-ledger/internal/config"
)

const (
	topicReadAttempts = 5
	topicReadBackoff  = 2 * time.Second
)

// topicAdmin is the part of *kafka.Conn used to inspect and create topics
type topicAdmin interface {
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	CreateTopics(topics ...kafka.TopicConfig) error
}

// ensureTopic dials the first reachable broker and creates topic when it does not exist yet
func ensureTopic(ctx context.Context, cfg *config.KafkaConfig, topic string, logger *slog.Logger) error {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	var dialer kafka.Dialer
	var lastErr error
	for _, broker := range brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		defer conn.Close()
		return createTopicIfNotExists(ctx, conn, topicSpec(topic, cfg), topicReadBackoff, logger)
	}
	return fmt.Errorf("failed to dial kafka: %w", lastErr)
}

func topicSpec(topic string, cfg *config.KafkaConfig) kafka.TopicConfig {
	spec := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	if spec.NumPartitions <= 0 {
		spec.NumPartitions = 1
	}
	if spec.ReplicationFactor <= 0 {
		spec.ReplicationFactor = 1
	}
	return spec
}

// createTopicIfNotExists retries partition reads before concluding the topic is missing
func createTopicIfNotExists(ctx context.Context, admin topicAdmin, spec kafka.TopicConfig, backoff time.Duration, logger *slog.Logger) error {
	var partitions []kafka.Partition
	var err error

	for attempt := 1; attempt <= topicReadAttempts; attempt++ {
		partitions, err = admin.ReadPartitions(spec.Topic)
		if err == nil {
			break
		}
		logger.Warn("Failed to read partitions, retrying", "topic", spec.Topic, "attempt", attempt, "error", err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if attempt == topicReadAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	if len(partitions) > 0 {
		logger.Info("Kafka topic already exists", "topic", spec.Topic, "partitions", len(partitions))
		return nil
	}

	logger.Info("Creating Kafka topic", "topic", spec.Topic, "partitions", spec.NumPartitions, "replication_factor", spec.ReplicationFactor)
	if err := admin.CreateTopics(spec); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", spec.Topic, err)
	}
	return nil
}
