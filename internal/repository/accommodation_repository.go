package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/accommodation"
)

// AccommodationModel is the GORM model for the accommodations table.
type AccommodationModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:200;not null;index"`
	Description string    `gorm:"size:2000"`
	AddressLine string    `gorm:"size:300"`
	City        string    `gorm:"size:100;not null;index"`
	State       string    `gorm:"size:100"`
	Postcode    string    `gorm:"size:20"`
	Country     string    `gorm:"size:100;not null;index"`
	StarRating  int       `gorm:"not null;default:0"`
	Active      bool      `gorm:"not null;default:true;index"`
	Version     int64     `gorm:"not null;default:1"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM.
func (AccommodationModel) TableName() string {
	return "accommodations"
}

// GormAccommodationRepository implements accommodation.AccommodationRepository using GORM.
type GormAccommodationRepository struct {
	db *gorm.DB
}

// NewGormAccommodationRepository creates a new GORM-backed accommodation repository.
func NewGormAccommodationRepository(db *gorm.DB) *GormAccommodationRepository {
	return &GormAccommodationRepository{db: db}
}

// FindByID retrieves an accommodation by its ID.
func (r *GormAccommodationRepository) FindByID(ctx context.Context, id uuid.UUID) (*accommodation.Accommodation, error) {
	var model AccommodationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Accommodation", id.String())
		}
		return nil, err
	}
	return toDomainAccommodation(&model), nil
}

// Search retrieves accommodations matching the filter with pagination.
func (r *GormAccommodationRepository) Search(ctx context.Context, filter accommodation.SearchFilter, page, limit int) ([]*accommodation.Accommodation, int64, error) {
	var total int64
	if err := applyAccommodationFilter(r.db.WithContext(ctx).Model(&AccommodationModel{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []AccommodationModel
	offset := (page - 1) * limit
	err := applyAccommodationFilter(r.db.WithContext(ctx).Model(&AccommodationModel{}), filter).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	accommodations := make([]*accommodation.Accommodation, len(models))
	for i := range models {
		accommodations[i] = toDomainAccommodation(&models[i])
	}
	return accommodations, total, nil
}

func applyAccommodationFilter(db *gorm.DB, filter accommodation.SearchFilter) *gorm.DB {
	if filter.City != "" {
		db = db.Where("LOWER(city) = LOWER(?)", filter.City)
	}
	if filter.Country != "" {
		db = db.Where("LOWER(country) = LOWER(?)", filter.Country)
	}
	if filter.MinStars > 0 {
		db = db.Where("star_rating >= ?", filter.MinStars)
	}
	if filter.Name != "" {
		db = db.Where("name ILIKE ?", "%"+strings.TrimSpace(filter.Name)+"%")
	}
	if filter.ActiveOnly {
		db = db.Where("active = ?", true)
	}
	return db
}

// Save persists a new accommodation.
func (r *GormAccommodationRepository) Save(ctx context.Context, acc *accommodation.Accommodation) error {
	model := toAccommodationModel(acc)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes to an existing accommodation using optimistic locking.
func (r *GormAccommodationRepository) Update(ctx context.Context, acc *accommodation.Accommodation) error {
	model := toAccommodationModel(acc)
	expectedVersion := acc.Version() - 1

	result := r.db.WithContext(ctx).Model(&AccommodationModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":         model.Name,
			"description":  model.Description,
			"address_line": model.AddressLine,
			"city":         model.City,
			"state":        model.State,
			"postcode":     model.Postcode,
			"country":      model.Country,
			"star_rating":  model.StarRating,
			"active":       model.Active,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("accommodation was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toAccommodationModel(acc *accommodation.Accommodation) *AccommodationModel {
	return &AccommodationModel{
		ID:          acc.ID(),
		Name:        acc.Name(),
		Description: acc.Description(),
		AddressLine: acc.AddressLine(),
		City:        acc.City(),
		State:       acc.State(),
		Postcode:    acc.Postcode(),
		Country:     acc.Country(),
		StarRating:  acc.StarRating(),
		Active:      acc.IsActive(),
		Version:     acc.Version(),
		CreatedAt:   acc.CreatedAt(),
		UpdatedAt:   acc.UpdatedAt(),
	}
}

func toDomainAccommodation(model *AccommodationModel) *accommodation.Accommodation {
	return accommodation.Reconstruct(
		model.ID,
		model.Name,
		model.Description,
		model.AddressLine,
		model.City,
		model.State,
		model.Postcode,
		model.Country,
		model.StarRating,
		model.Active,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
