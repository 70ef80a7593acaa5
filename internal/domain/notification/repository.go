package notification

import (
	"context"

	"github.com/google/uuid"
)

// NotificationRepository defines the persistence contract for notifications.
type NotificationRepository interface {
	// FindByID retrieves a notification by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindByUserID retrieves a user's notifications with pagination, newest
	// first.
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Notification, int64, error)

	// CountUnread returns the number of unread notifications for a user.
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)

	// Save persists a new notification.
	Save(ctx context.Context, notification *Notification) error

	// Update persists changes to an existing notification.
	Update(ctx context.Context, notification *Notification) error
}
