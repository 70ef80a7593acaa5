package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/Serai-Stays/service-reservation/internal/kafka"
)

// eventSource identifies this service in outgoing CloudEvents.
const eventSource = "service-reservation"

// EventPublisher publishes CloudEvents to the bus. Satisfied by
// *kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// publishEvent wraps data in a CloudEvent and publishes it. Publishing is
// best-effort: failures are logged and swallowed so the triggering operation
// is never failed by the bus.
func publishEvent(ctx context.Context, producer EventPublisher, logger *zap.Logger, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
