package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Serai-Stays/service-reservation/internal/application"
	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/events"
	"github.com/Serai-Stays/service-reservation/internal/kafka"
)

// PaymentEventConsumer listens to payment events and drives booking
// confirmation, payment-failure flagging and refund execution.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.PaymentService
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service *application.PaymentService,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is
// cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.PaymentCompleted:
		return c.handlePaymentCompleted(ctx, cloudEvent)
	case events.PaymentFailed:
		return c.handlePaymentFailed(ctx, cloudEvent)
	case events.PaymentRefundRequested:
		return c.handleRefundRequested(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentCompleted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.PaymentCompletedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentCompletedEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing payment completed event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)

	if err := c.service.HandlePaymentCompleted(ctx, evt); err != nil {
		return c.classifyError(err, "failed to confirm booking after payment", evt.BookingID.String())
	}
	return nil
}

func (c *PaymentEventConsumer) handlePaymentFailed(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.PaymentFailedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentFailedEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	if err := c.service.HandlePaymentFailed(ctx, evt); err != nil {
		return c.classifyError(err, "failed to flag booking payment failure", evt.BookingID.String())
	}
	return nil
}

func (c *PaymentEventConsumer) handleRefundRequested(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.RefundRequestedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse RefundRequestedEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing refund requested event",
		zap.String("refund_id", evt.RefundID.String()),
		zap.String("booking_id", evt.BookingID.String()),
	)

	if err := c.service.ExecuteRefund(ctx, evt); err != nil {
		return c.classifyError(err, "failed to execute refund", evt.BookingID.String())
	}
	return nil
}

// classifyError decides whether an event is worth retrying. Missing rows
// cannot heal on retry, so those messages are committed and dropped.
func (c *PaymentEventConsumer) classifyError(err error, msg, bookingID string) error {
	if domain.CodeOf(err) == domain.CodeNotFound {
		c.logger.Warn(msg+", dropping event",
			zap.String("booking_id", bookingID),
			zap.Error(err),
		)
		return nil
	}
	c.logger.Error(msg,
		zap.String("booking_id", bookingID),
		zap.Error(err),
	)
	return err
}
