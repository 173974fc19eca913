package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/slotbook/service-booking/pkg/kafka"
)

// EventProducer is the slice of the Kafka producer the publisher needs.
type EventProducer interface {
	PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error
}

// Publisher emits booking lifecycle events. Publishing is best-effort: a
// broker failure is logged but never fails the request that triggered it.
// A nil-producer Publisher drops all events, which is how the service runs
// when Kafka is not configured.
type Publisher struct {
	producer EventProducer
	source   string
	logger   *zap.Logger
}

// NewPublisher creates a booking event publisher. producer may be nil.
func NewPublisher(producer EventProducer, logger *zap.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		source:   "service-booking",
		logger:   logger,
	}
}

// Publish wraps the payload in a CloudEvent and writes it to the booking
// events topic.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload interface{}) {
	if p == nil || p.producer == nil {
		return
	}

	ce, err := kafka.NewCloudEvent(p.source, eventType, payload)
	if err != nil {
		p.logger.Error("failed to build cloud event",
			zap.String("type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := p.producer.PublishEvent(ctx, TopicBookingEvents, ce); err != nil {
		p.logger.Error("failed to publish booking event",
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}
