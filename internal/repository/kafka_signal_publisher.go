package repository

import (
	"context"

	"LimesMS/internal/domain/models"
	domrepo "LimesMS/internal/domain/repository"
	pkgkafka "LimesMS/pkg/kafka"
)

// KafkaSignalPublisher publishes computed signals keyed by symbol, so a
// hash-balanced writer keeps each symbol's signals ordered on one partition.
// The chart is stripped to keep messages small.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, s *models.Signal) error {
	msg := *s
	msg.Chart = nil
	return p.producer.Publish(ctx, p.topic, []byte(s.Symbol), msg)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopSignalPublisher is used when Kafka is disabled.
type NopSignalPublisher struct{}

func (NopSignalPublisher) Publish(context.Context, *models.Signal) error { return nil }
func (NopSignalPublisher) Close() error                                  { return nil }

var (
	_ domrepo.SignalPublisher = (*KafkaSignalPublisher)(nil)
	_ domrepo.SignalPublisher = NopSignalPublisher{}
)
