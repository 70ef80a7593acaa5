package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/accommodation"
)

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccommodationID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name               string    `gorm:"size:200;not null"`
	Description        string    `gorm:"size:2000"`
	Capacity           int       `gorm:"not null;default:2"`
	PricePerNightCents int64     `gorm:"not null"`
	DefaultUnits       int       `gorm:"not null;default:1"`
	Active             bool      `gorm:"not null;default:true;index"`
	Version            int64     `gorm:"not null;default:1"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM.
func (RoomModel) TableName() string {
	return "rooms"
}

// GormRoomRepository implements accommodation.RoomRepository using GORM.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GORM-backed room repository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID retrieves a room by its ID.
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*accommodation.Room, error) {
	var model RoomModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Room", id.String())
		}
		return nil, err
	}
	return toDomainRoom(&model), nil
}

// FindByIDs retrieves the given rooms. IDs with no matching row are absent
// from the result; callers decide whether that is an error.
func (r *GormRoomRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*accommodation.Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []RoomModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	rooms := make([]*accommodation.Room, len(models))
	for i := range models {
		rooms[i] = toDomainRoom(&models[i])
	}
	return rooms, nil
}

// FindByAccommodationID retrieves rooms for an accommodation.
func (r *GormRoomRepository) FindByAccommodationID(ctx context.Context, accommodationID uuid.UUID, activeOnly bool) ([]*accommodation.Room, error) {
	query := r.db.WithContext(ctx).Where("accommodation_id = ?", accommodationID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var models []RoomModel
	if err := query.Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	rooms := make([]*accommodation.Room, len(models))
	for i := range models {
		rooms[i] = toDomainRoom(&models[i])
	}
	return rooms, nil
}

// Save persists a new room.
func (r *GormRoomRepository) Save(ctx context.Context, room *accommodation.Room) error {
	model := toRoomModel(room)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes to an existing room using optimistic locking.
func (r *GormRoomRepository) Update(ctx context.Context, room *accommodation.Room) error {
	model := toRoomModel(room)
	expectedVersion := room.Version() - 1

	result := r.db.WithContext(ctx).Model(&RoomModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":                  model.Name,
			"description":           model.Description,
			"capacity":              model.Capacity,
			"price_per_night_cents": model.PricePerNightCents,
			"default_units":         model.DefaultUnits,
			"active":                model.Active,
			"version":               model.Version,
			"updated_at":            model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("room was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toRoomModel(room *accommodation.Room) *RoomModel {
	return &RoomModel{
		ID:                 room.ID(),
		AccommodationID:    room.AccommodationID(),
		Name:               room.Name(),
		Description:        room.Description(),
		Capacity:           room.Capacity(),
		PricePerNightCents: room.PricePerNightCents(),
		DefaultUnits:       room.DefaultUnits(),
		Active:             room.IsActive(),
		Version:            room.Version(),
		CreatedAt:          room.CreatedAt(),
		UpdatedAt:          room.UpdatedAt(),
	}
}

func toDomainRoom(model *RoomModel) *accommodation.Room {
	return accommodation.ReconstructRoom(
		model.ID,
		model.AccommodationID,
		model.Name,
		model.Description,
		model.Capacity,
		model.PricePerNightCents,
		model.DefaultUnits,
		model.Active,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
