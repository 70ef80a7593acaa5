package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingNumber    string     `gorm:"uniqueIndex;not null;size:20"`
	UserID           uuid.UUID  `gorm:"type:uuid;index;not null"`
	AccommodationID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	Status           string     `gorm:"not null;size:20;index"`
	PaymentState     string     `gorm:"not null;size:20"`
	CheckInDate      time.Time  `gorm:"type:date;not null;index"`
	CheckOutDate     time.Time  `gorm:"type:date;not null"`
	GuestCount       int        `gorm:"not null;default:1"`
	TotalAmountCents int64      `gorm:"not null"`
	Currency         string     `gorm:"not null;size:3;default:'MYR'"`
	Notes            string     `gorm:"size:1000"`
	CheckedInAt      *time.Time `gorm:""`
	CheckedOutAt     *time.Time `gorm:""`
	CancelledAt      *time.Time `gorm:""`
	CancelReason     string     `gorm:"size:500"`
	Version          int64      `gorm:"not null;default:1"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`

	Items []BookingItemModel `gorm:"foreignKey:BookingID;references:ID"`
}

// TableName specifies the table name for GORM.
func (BookingModel) TableName() string {
	return "bookings"
}

// BookingItemModel is the GORM model for the booking_items table.
type BookingItemModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID       uuid.UUID `gorm:"type:uuid;index;not null"`
	RoomID          uuid.UUID `gorm:"type:uuid;index;not null"`
	Quantity        int       `gorm:"not null"`
	UnitPriceCents  int64     `gorm:"not null"`
	TotalPriceCents int64     `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM.
func (BookingItemModel) TableName() string {
	return "booking_items"
}

// GormBookingRepository implements booking.BookingRepository using GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GORM-backed booking repository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking with its items by ID.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, err
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking with its items by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*booking.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Preload("Items").Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, err
	}
	return toDomainBooking(&model)
}

// FindByUserID retrieves bookings for a user with pagination, newest first.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*booking.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []BookingModel
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// ListAll retrieves bookings matching the filter with pagination, newest first.
func (r *GormBookingRepository) ListAll(ctx context.Context, filter booking.ListFilter, page, limit int) ([]*booking.Booking, int64, error) {
	var total int64
	if err := applyBookingFilter(r.db.WithContext(ctx).Model(&BookingModel{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []BookingModel
	offset := (page - 1) * limit
	err := applyBookingFilter(r.db.WithContext(ctx).Preload("Items"), filter).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func applyBookingFilter(db *gorm.DB, filter booking.ListFilter) *gorm.DB {
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status.String())
	}
	if filter.AccommodationID != uuid.Nil {
		db = db.Where("accommodation_id = ?", filter.AccommodationID)
	}
	if filter.UserID != uuid.Nil {
		db = db.Where("user_id = ?", filter.UserID)
	}
	return db
}

// CountByStatus returns booking counts grouped by status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var results []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(results))
	for _, result := range results {
		counts[result.Status] = result.Count
	}
	return counts, nil
}

// Save persists a new booking together with its items.
func (r *GormBookingRepository) Save(ctx context.Context, bk *booking.Booking) error {
	model := toBookingModel(bk)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes to an existing booking using optimistic locking.
// Items are immutable after creation and are left untouched.
func (r *GormBookingRepository) Update(ctx context.Context, bk *booking.Booking) error {
	model := toBookingModel(bk)
	expectedVersion := bk.Version() - 1

	result := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"payment_state":  model.PaymentState,
			"guest_count":    model.GuestCount,
			"notes":          model.Notes,
			"checked_in_at":  model.CheckedInAt,
			"checked_out_at": model.CheckedOutAt,
			"cancelled_at":   model.CancelledAt,
			"cancel_reason":  model.CancelReason,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *booking.Booking) *BookingModel {
	items := make([]BookingItemModel, len(bk.Items()))
	for i, item := range bk.Items() {
		items[i] = BookingItemModel{
			ID:              item.ID(),
			BookingID:       item.BookingID(),
			RoomID:          item.RoomID(),
			Quantity:        item.Quantity(),
			UnitPriceCents:  item.UnitPriceCents(),
			TotalPriceCents: item.TotalPriceCents(),
			CreatedAt:       item.CreatedAt(),
		}
	}

	return &BookingModel{
		ID:               bk.ID(),
		BookingNumber:    bk.BookingNumber(),
		UserID:           bk.UserID(),
		AccommodationID:  bk.AccommodationID(),
		Status:           bk.Status().String(),
		PaymentState:     bk.PaymentState().String(),
		CheckInDate:      bk.Stay().CheckIn(),
		CheckOutDate:     bk.Stay().CheckOut(),
		GuestCount:       bk.GuestCount(),
		TotalAmountCents: bk.TotalAmountCents(),
		Currency:         bk.Currency(),
		Notes:            bk.Notes(),
		CheckedInAt:      bk.CheckedInAt(),
		CheckedOutAt:     bk.CheckedOutAt(),
		CancelledAt:      bk.CancelledAt(),
		CancelReason:     bk.CancelReason(),
		Version:          bk.Version(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
		Items:            items,
	}
}

func toDomainBooking(model *BookingModel) (*booking.Booking, error) {
	stay, err := booking.NewStayRange(model.CheckInDate, model.CheckOutDate)
	if err != nil {
		return nil, err
	}

	items := make([]*booking.BookingItem, len(model.Items))
	for i := range model.Items {
		items[i] = booking.ReconstructBookingItem(
			model.Items[i].ID,
			model.Items[i].BookingID,
			model.Items[i].RoomID,
			model.Items[i].Quantity,
			model.Items[i].UnitPriceCents,
			model.Items[i].TotalPriceCents,
			model.Items[i].CreatedAt,
		)
	}

	return booking.ReconstructBooking(
		model.ID,
		model.BookingNumber,
		model.UserID,
		model.AccommodationID,
		booking.BookingStatus(model.Status),
		booking.PaymentState(model.PaymentState),
		stay,
		model.GuestCount,
		items,
		model.TotalAmountCents,
		model.Currency,
		model.Notes,
		model.CheckedInAt,
		model.CheckedOutAt,
		model.CancelledAt,
		model.CancelReason,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*booking.Booking, error) {
	bookings := make([]*booking.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
