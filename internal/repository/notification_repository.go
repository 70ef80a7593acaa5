package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/notification"
)

// NotificationModel is the GORM model for the notifications table.
type NotificationModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	BookingID *uuid.UUID `gorm:"type:uuid;index"`
	Type      string     `gorm:"not null;size:40"`
	Message   string     `gorm:"not null;size:1000"`
	Read      bool       `gorm:"not null;default:false"`
	CreatedAt time.Time  `gorm:"not null;index"`
}

// TableName specifies the table name for GORM.
func (NotificationModel) TableName() string {
	return "notifications"
}

// GormNotificationRepository implements notification.NotificationRepository using GORM.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GORM-backed notification repository.
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByID retrieves a notification by its ID.
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var model NotificationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Notification", id.String())
		}
		return nil, err
	}
	return toDomainNotification(&model), nil
}

// FindByUserID retrieves notifications for a user with pagination, newest first.
func (r *GormNotificationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*notification.Notification, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&NotificationModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []NotificationModel
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	notifications := make([]*notification.Notification, len(models))
	for i := range models {
		notifications[i] = toDomainNotification(&models[i])
	}
	return notifications, total, nil
}

// CountUnread returns the number of unread notifications for a user.
func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&NotificationModel{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists a new notification.
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	model := toNotificationModel(n)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes to an existing notification.
func (r *GormNotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	model := toNotificationModel(n)
	return r.db.WithContext(ctx).Model(&NotificationModel{}).
		Where("id = ?", model.ID).
		Update("read", model.Read).Error
}

// --- Conversion Helpers ---

func toNotificationModel(n *notification.Notification) *NotificationModel {
	return &NotificationModel{
		ID:        n.ID(),
		UserID:    n.UserID(),
		BookingID: n.BookingID(),
		Type:      string(n.NotificationType()),
		Message:   n.Message(),
		Read:      n.Read(),
		CreatedAt: n.CreatedAt(),
	}
}

func toDomainNotification(model *NotificationModel) *notification.Notification {
	return notification.ReconstructNotification(
		model.ID,
		model.UserID,
		model.BookingID,
		notification.Type(model.Type),
		model.Message,
		model.Read,
		model.CreatedAt,
	)
}
