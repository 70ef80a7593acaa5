package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/availability"
	"github.com/Serai-Stays/service-reservation/internal/domain/booking"
)

// RoomInventoryModel is the GORM model for the room_inventory table. Rows are
// sparse: a (room, date) pair without a row falls back to the room's default
// unit count.
type RoomInventoryModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_inventory_room_date"`
	Date           time.Time `gorm:"type:date;not null;uniqueIndex:idx_room_inventory_room_date"`
	TotalUnits     int       `gorm:"not null"`
	AvailableUnits int       `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM.
func (RoomInventoryModel) TableName() string {
	return "room_inventory"
}

// GormInventoryRepository implements availability.InventoryRepository using GORM.
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GORM-backed inventory repository.
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// OverrideUnits returns available_units for every inventory row covering the
// stay, keyed by (room, date).
func (r *GormInventoryRepository) OverrideUnits(ctx context.Context, roomIDs []uuid.UUID, stay booking.StayRange) (map[availability.RoomDate]int, error) {
	if len(roomIDs) == 0 {
		return map[availability.RoomDate]int{}, nil
	}

	var models []RoomInventoryModel
	err := r.db.WithContext(ctx).
		Where("room_id IN ? AND date >= ? AND date < ?", roomIDs, stay.CheckIn(), stay.CheckOut()).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	units := make(map[availability.RoomDate]int, len(models))
	for i := range models {
		key := availability.RoomDate{
			RoomID: models[i].RoomID,
			Date:   booking.NormalizeDate(models[i].Date),
		}
		units[key] = models[i].AvailableUnits
	}
	return units, nil
}

// ReservedUnits sums the item quantities of non-cancelled bookings covering
// each night of the stay. Bookings are fetched by overlap and expanded to
// per-night counts here; only cancellation returns units, so no_show and
// checked_out stays still count.
func (r *GormInventoryRepository) ReservedUnits(ctx context.Context, roomIDs []uuid.UUID, stay booking.StayRange) (map[availability.RoomDate]int, error) {
	if len(roomIDs) == 0 {
		return map[availability.RoomDate]int{}, nil
	}

	type reservedRow struct {
		RoomID       uuid.UUID
		Quantity     int
		CheckInDate  time.Time
		CheckOutDate time.Time
	}

	var rows []reservedRow
	err := r.db.WithContext(ctx).
		Table("booking_items AS bi").
		Select("bi.room_id AS room_id, bi.quantity AS quantity, b.check_in_date AS check_in_date, b.check_out_date AS check_out_date").
		Joins("JOIN bookings b ON b.id = bi.booking_id").
		Where("bi.room_id IN ?", roomIDs).
		Where("b.status <> ?", booking.StatusCancelled.String()).
		Where("b.check_in_date < ? AND b.check_out_date > ?", stay.CheckOut(), stay.CheckIn()).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	reserved := make(map[availability.RoomDate]int)
	for _, row := range rows {
		from := booking.NormalizeDate(row.CheckInDate)
		to := booking.NormalizeDate(row.CheckOutDate)
		if from.Before(stay.CheckIn()) {
			from = stay.CheckIn()
		}
		if to.After(stay.CheckOut()) {
			to = stay.CheckOut()
		}
		for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
			reserved[availability.RoomDate{RoomID: row.RoomID, Date: d}] += row.Quantity
		}
	}
	return reserved, nil
}

// Reserve holds quantity units of the room for every night of the stay.
// Existing rows are decremented with a guard on spare capacity; missing rows
// are seeded from the room's default unit count. A concurrent seed loses the
// insert and falls back to the guarded decrement.
func (r *GormInventoryRepository) Reserve(ctx context.Context, stock availability.RoomStock, stay booking.StayRange, quantity int) error {
	for _, date := range stay.Dates() {
		decremented, err := r.decrementAvailable(ctx, stock.RoomID, date, quantity)
		if err != nil {
			return err
		}
		if decremented {
			continue
		}

		if stock.DefaultUnits < quantity {
			return domain.NewInsufficientAvailabilityError(stock.RoomID.String(), quantity, stock.DefaultUnits)
		}
		now := time.Now().UTC()
		seed := RoomInventoryModel{
			ID:             uuid.New(),
			RoomID:         stock.RoomID,
			Date:           date,
			TotalUnits:     stock.DefaultUnits,
			AvailableUnits: stock.DefaultUnits - quantity,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&seed)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			continue
		}

		// Lost the seed race; the row now exists, so decrement it.
		decremented, err = r.decrementAvailable(ctx, stock.RoomID, date, quantity)
		if err != nil {
			return err
		}
		if !decremented {
			available, err := r.availableOn(ctx, stock.RoomID, date)
			if err != nil {
				return err
			}
			return domain.NewInsufficientAvailabilityError(stock.RoomID.String(), quantity, available)
		}
	}
	return nil
}

func (r *GormInventoryRepository) decrementAvailable(ctx context.Context, roomID uuid.UUID, date time.Time, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&RoomInventoryModel{}).
		Where("room_id = ? AND date = ? AND available_units >= ?", roomID, date, quantity).
		Updates(map[string]interface{}{
			"available_units": gorm.Expr("available_units - ?", quantity),
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	// Distinguish "no row" from "not enough units" so the caller can seed.
	var count int64
	err := r.db.WithContext(ctx).Model(&RoomInventoryModel{}).
		Where("room_id = ? AND date = ?", roomID, date).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}
	available, err := r.availableOn(ctx, roomID, date)
	if err != nil {
		return false, err
	}
	return false, domain.NewInsufficientAvailabilityError(roomID.String(), quantity, available)
}

func (r *GormInventoryRepository) availableOn(ctx context.Context, roomID uuid.UUID, date time.Time) (int, error) {
	var model RoomInventoryModel
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND date = ?", roomID, date).
		First(&model).Error
	if err != nil {
		return 0, err
	}
	return model.AvailableUnits, nil
}

// Release gives quantity units back for every night of the stay. Rows always
// exist for reserved nights because Reserve seeds them, but missing rows are
// tolerated.
func (r *GormInventoryRepository) Release(ctx context.Context, roomID uuid.UUID, stay booking.StayRange, quantity int) error {
	for _, date := range stay.Dates() {
		err := r.db.WithContext(ctx).Model(&RoomInventoryModel{}).
			Where("room_id = ? AND date = ?", roomID, date).
			Updates(map[string]interface{}{
				"available_units": gorm.Expr("available_units + ?", quantity),
				"updated_at":      time.Now().UTC(),
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// SetOverride pins the total unit count for one room-night. Units already
// reserved against the row carry over: the new available count is the new
// total minus the reserved delta, floored at zero.
func (r *GormInventoryRepository) SetOverride(ctx context.Context, stock availability.RoomStock, date time.Time, totalUnits int) error {
	if totalUnits < 0 {
		return domain.NewValidationError("total units must not be negative")
	}
	day := booking.NormalizeDate(date)

	result := r.db.WithContext(ctx).Model(&RoomInventoryModel{}).
		Where("room_id = ? AND date = ?", stock.RoomID, day).
		Updates(map[string]interface{}{
			"total_units":     totalUnits,
			"available_units": gorm.Expr("GREATEST(? - (total_units - available_units), 0)", totalUnits),
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	now := time.Now().UTC()
	row := RoomInventoryModel{
		ID:             uuid.New(),
		RoomID:         stock.RoomID,
		Date:           day,
		TotalUnits:     totalUnits,
		AvailableUnits: totalUnits,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	insert := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if insert.Error != nil {
		return insert.Error
	}
	if insert.RowsAffected > 0 {
		return nil
	}

	// Lost the insert race; apply the override to the row that won.
	return r.db.WithContext(ctx).Model(&RoomInventoryModel{}).
		Where("room_id = ? AND date = ?", stock.RoomID, day).
		Updates(map[string]interface{}{
			"total_units":     totalUnits,
			"available_units": gorm.Expr("GREATEST(? - (total_units - available_units), 0)", totalUnits),
			"updated_at":      time.Now().UTC(),
		}).Error
}
