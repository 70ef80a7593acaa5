package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Serai-Stays/service-reservation/internal/domain"
)

// Type classifies a notification for rendering on the client.
type Type string

const (
	TypeBookingCreated   Type = "booking_created"
	TypeBookingConfirmed Type = "booking_confirmed"
	TypeBookingCancelled Type = "booking_cancelled"
	TypeStatusChanged    Type = "status_changed"
	TypePaymentReceived  Type = "payment_received"
	TypePaymentFailed    Type = "payment_failed"
	TypeRefundInitiated  Type = "refund_initiated"
	TypeRefundCompleted  Type = "refund_completed"
)

// Notifier queues a user-facing message. Implementations are fire-and-forget:
// failures are logged, never returned, so a notification problem can never
// fail the operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, bookingID *uuid.UUID, notificationType Type, message string)
}

// Notification is one message queued for a user.
type Notification struct {
	id               uuid.UUID
	userID           uuid.UUID
	bookingID        *uuid.UUID
	notificationType Type
	message          string
	read             bool
	createdAt        time.Time
}

// NewNotification creates an unread notification for a user.
func NewNotification(userID uuid.UUID, bookingID *uuid.UUID, notificationType Type, message string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if message == "" {
		return nil, domain.NewValidationError("notification message is required")
	}

	return &Notification{
		id:               uuid.New(),
		userID:           userID,
		bookingID:        bookingID,
		notificationType: notificationType,
		message:          message,
		createdAt:        time.Now().UTC(),
	}, nil
}

// ReconstructNotification rebuilds a Notification from persistence data.
func ReconstructNotification(
	id uuid.UUID,
	userID uuid.UUID,
	bookingID *uuid.UUID,
	notificationType Type,
	message string,
	read bool,
	createdAt time.Time,
) *Notification {
	return &Notification{
		id:               id,
		userID:           userID,
		bookingID:        bookingID,
		notificationType: notificationType,
		message:          message,
		read:             read,
		createdAt:        createdAt,
	}
}

// --- Getters ---

func (n *Notification) ID() uuid.UUID          { return n.id }
func (n *Notification) UserID() uuid.UUID      { return n.userID }
func (n *Notification) BookingID() *uuid.UUID  { return n.bookingID }
func (n *Notification) NotificationType() Type { return n.notificationType }
func (n *Notification) Message() string        { return n.message }
func (n *Notification) Read() bool             { return n.read }
func (n *Notification) CreatedAt() time.Time   { return n.createdAt }

// MarkRead flags the notification as read.
func (n *Notification) MarkRead() {
	n.read = true
}
