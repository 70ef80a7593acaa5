package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/notification"
	"github.com/Serai-Stays/service-reservation/internal/domain/store"
	"github.com/Serai-Stays/service-reservation/internal/events"
)

// NotificationDTO is the response representation of a notification.
type NotificationDTO struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	BookingID *uuid.UUID `json:"booking_id,omitempty"`
	Type      string     `json:"type"`
	Message   string     `json:"message"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
}

// NotificationService stores user notifications and mirrors them onto the bus
// for the delivery workers. It is the notification.Notifier used by the other
// services.
type NotificationService struct {
	store    store.Store
	producer EventPublisher
	logger   *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(st store.Store, producer EventPublisher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		store:    st,
		producer: producer,
		logger:   logger,
	}
}

var _ notification.Notifier = (*NotificationService)(nil)

// Notify stores a notification and publishes it. Fire-and-forget: every
// failure is logged and swallowed so the triggering operation never fails on
// a notification problem.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, bookingID *uuid.UUID, notificationType notification.Type, message string) {
	n, err := notification.NewNotification(userID, bookingID, notificationType, message)
	if err != nil {
		s.logger.Error("failed to build notification",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return
	}

	if err := s.store.Repos().Notifications.Save(ctx, n); err != nil {
		s.logger.Error("failed to save notification",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return
	}

	evt := events.NotificationQueuedEvent{
		NotificationID: n.ID(),
		UserID:         n.UserID(),
		BookingID:      n.BookingID(),
		Type:           string(n.NotificationType()),
		Message:        n.Message(),
		OccurredAt:     time.Now().UTC(),
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicNotificationEvents, events.NotificationQueued, evt)
}

// ListNotifications retrieves a user's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[NotificationDTO], error) {
	notifications, total, err := s.store.Repos().Notifications.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = toNotificationDTO(n)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// UnreadCount returns how many unread notifications a user has.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.Repos().Notifications.CountUnread(ctx, userID)
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) (*NotificationDTO, error) {
	repos := s.store.Repos()
	n, err := repos.Notifications.FindByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID() != userID {
		return nil, domain.NewForbiddenError("notification does not belong to this user")
	}

	n.MarkRead()
	if err := repos.Notifications.Update(ctx, n); err != nil {
		return nil, err
	}

	result := toNotificationDTO(n)
	return &result, nil
}

// --- Helpers ---

func toNotificationDTO(n *notification.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID(),
		UserID:    n.UserID(),
		BookingID: n.BookingID(),
		Type:      string(n.NotificationType()),
		Message:   n.Message(),
		Read:      n.Read(),
		CreatedAt: n.CreatedAt(),
	}
}
