package repository

import (
	"context"

	pkgkafka "github.com/ybc112/AetherPay/pkg/kafka"
)

// LogTopicPublisher adapts the Kafka producer to the logger's
// aggregated-log publisher interface.
type LogTopicPublisher struct {
	producer *pkgkafka.Producer
}

func NewLogTopicPublisher(producer *pkgkafka.Producer) *LogTopicPublisher {
	return &LogTopicPublisher{producer: producer}
}

func (p *LogTopicPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}
