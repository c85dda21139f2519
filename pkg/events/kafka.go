package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/JaimeStill/cliprank/pkg/lifecycle"
)

// KafkaPublisher produces events as JSON messages keyed by Event.Key.
type KafkaPublisher struct {
	producer     *kafka.Producer
	topic        string
	flushTimeout time.Duration
	logger       *slog.Logger
}

// NewKafka creates a producer for the configured brokers.
// Delivery reports are drained once Start is called.
func NewKafka(cfg *Config, logger *slog.Logger) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": strings.Join(cfg.Brokers, ","),
	})
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &KafkaPublisher{
		producer:     producer,
		topic:        cfg.Topic,
		flushTimeout: cfg.FlushTimeoutDuration(),
		logger:       logger.With("system", "kafka"),
	}, nil
}

// Start drains delivery reports and flushes outstanding messages on shutdown.
func (k *KafkaPublisher) Start(lc *lifecycle.Coordinator) error {
	k.logger.Info("starting kafka producer", "topic", k.topic)

	go func() {
		for e := range k.producer.Events() {
			if msg, ok := e.(*kafka.Message); ok && msg.TopicPartition.Error != nil {
				k.logger.Error("event delivery failed", "error", msg.TopicPartition.Error, "key", string(msg.Key))
			}
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		k.logger.Info("flushing kafka producer")

		if remaining := k.producer.Flush(int(k.flushTimeout.Milliseconds())); remaining > 0 {
			k.logger.Warn("events not delivered before shutdown", "remaining", remaining)
		}
		k.producer.Close()

		k.logger.Info("kafka producer closed")
	})

	return nil
}

// Publish enqueues the event for asynchronous delivery.
func (k *KafkaPublisher) Publish(_ context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Type, err)
	}

	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.Key),
		Value:          payload,
		Headers:        []kafka.Header{{Key: "type", Value: []byte(event.Type)}},
	}, nil)
	if err != nil {
		return fmt.Errorf("produce event %s: %w", event.Type, err)
	}
	return nil
}
