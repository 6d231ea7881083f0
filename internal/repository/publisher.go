package repository

import (
	"context"
	"fmt"

	"EmaPull/internal/domain/models"
	"EmaPull/pkg/kafka"
)

// KafkaPublisher forwards finished snapshots to a Kafka topic, keyed by
// symbol so all updates for one symbol land on the same partition.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, snapshot *models.EmaSnapshot) error {
	key := []byte(models.CacheSymbol(snapshot.Symbol))
	if err := p.producer.Publish(ctx, p.topic, key, snapshot); err != nil {
		return fmt.Errorf("publish snapshot for %s: %w", snapshot.Symbol, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
