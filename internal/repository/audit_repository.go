package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Serai-Stays/service-reservation/internal/domain/audit"
)

// AuditEntryModel is the GORM model for the audit_entries table. Rows are
// append-only.
type AuditEntryModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	BookingID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Action     string    `gorm:"not null;size:40"`
	FromStatus string    `gorm:"size:20"`
	ToStatus   string    `gorm:"size:20"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM.
func (AuditEntryModel) TableName() string {
	return "audit_entries"
}

// GormAuditRepository implements audit.AuditRepository using GORM.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GORM-backed audit repository.
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Save persists a new audit entry.
func (r *GormAuditRepository) Save(ctx context.Context, entry *audit.Entry) error {
	model := toAuditEntryModel(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByBookingID retrieves all audit entries for a booking, oldest first.
func (r *GormAuditRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*audit.Entry, error) {
	var models []AuditEntryModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*audit.Entry, len(models))
	for i := range models {
		entries[i] = toDomainAuditEntry(&models[i])
	}
	return entries, nil
}

// --- Conversion Helpers ---

func toAuditEntryModel(entry *audit.Entry) *AuditEntryModel {
	return &AuditEntryModel{
		ID:         entry.ID(),
		ActorID:    entry.ActorID(),
		BookingID:  entry.BookingID(),
		Action:     entry.Action(),
		FromStatus: entry.FromStatus(),
		ToStatus:   entry.ToStatus(),
		CreatedAt:  entry.CreatedAt(),
	}
}

func toDomainAuditEntry(model *AuditEntryModel) *audit.Entry {
	return audit.ReconstructEntry(
		model.ID,
		model.ActorID,
		model.BookingID,
		model.Action,
		model.FromStatus,
		model.ToStatus,
		model.CreatedAt,
	)
}
