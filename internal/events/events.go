package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics shared across Serai Stays services.
const (
	TopicBookingEvents      = "booking.events"
	TopicPaymentEvents      = "payment.events"
	TopicNotificationEvents = "notification.events"
)

// Event types carried in the CloudEvent envelope.
const (
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
	BookingCancelled     = "booking.cancelled"

	PaymentCompleted       = "payment.completed"
	PaymentFailed          = "payment.failed"
	PaymentRefundRequested = "payment.refund_requested"

	NotificationQueued = "notification.queued"
)

// BookingCreatedEvent announces a new pending booking.
type BookingCreatedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingNumber    string    `json:"booking_number"`
	UserID           uuid.UUID `json:"user_id"`
	AccommodationID  uuid.UUID `json:"accommodation_id"`
	CheckInDate      string    `json:"check_in_date"`
	CheckOutDate     string    `json:"check_out_date"`
	GuestCount       int       `json:"guest_count"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent records a lifecycle transition.
type BookingStatusChangedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    uuid.UUID `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCancelledEvent records a cancellation, with the refund row's ID when
// one was created.
type BookingCancelledEvent struct {
	BookingID  uuid.UUID  `json:"booking_id"`
	UserID     uuid.UUID  `json:"user_id"`
	Reason     string     `json:"reason"`
	RefundID   *uuid.UUID `json:"refund_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// PaymentCompletedEvent signals a vendor-confirmed charge.
type PaymentCompletedEvent struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	Provider    string    `json:"provider"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PaymentFailedEvent signals a vendor-rejected or errored charge.
type PaymentFailedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Provider   string    `json:"provider"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RefundRequestedEvent asks the payment consumer to execute a refund against
// the vendor.
type RefundRequestedEvent struct {
	RefundID          uuid.UUID `json:"refund_id"`
	OriginalPaymentID uuid.UUID `json:"original_payment_id"`
	BookingID         uuid.UUID `json:"booking_id"`
	AmountCents       int64     `json:"amount_cents"`
	Currency          string    `json:"currency"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// NotificationQueuedEvent mirrors a stored notification onto the bus for the
// delivery workers.
type NotificationQueuedEvent struct {
	NotificationID uuid.UUID  `json:"notification_id"`
	UserID         uuid.UUID  `json:"user_id"`
	BookingID      *uuid.UUID `json:"booking_id,omitempty"`
	Type           string     `json:"type"`
	Message        string     `json:"message"`
	OccurredAt     time.Time  `json:"occurred_at"`
}
