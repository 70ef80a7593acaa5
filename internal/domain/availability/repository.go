package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Serai-Stays/service-reservation/internal/domain/booking"
)

// RoomDate identifies one room-night. Date must be normalized to UTC midnight
// (booking.NormalizeDate) so values compare equal as map keys.
type RoomDate struct {
	RoomID uuid.UUID
	Date   time.Time
}

// RoomStock carries the default unit count a room falls back to for dates
// that have no inventory row.
type RoomStock struct {
	RoomID       uuid.UUID
	DefaultUnits int
}

// RoomRequest pairs a room's stock with the quantity a caller wants to hold.
type RoomRequest struct {
	Stock    RoomStock
	Quantity int
}

// InventoryRepository defines the persistence contract for room-date inventory.
// Rows are sparse: absence of a (room, date) row means the room's default unit
// count is untouched for that date.
type InventoryRepository interface {
	// OverrideUnits returns available_units for every inventory row that
	// exists for the given rooms across the stay, keyed by (room, date).
	OverrideUnits(ctx context.Context, roomIDs []uuid.UUID, stay booking.StayRange) (map[RoomDate]int, error)

	// ReservedUnits returns the summed item quantity of non-cancelled
	// bookings covering each (room, date) pair of the stay.
	ReservedUnits(ctx context.Context, roomIDs []uuid.UUID, stay booking.StayRange) (map[RoomDate]int, error)

	// Reserve holds quantity units of the room for every night of the stay.
	// Existing rows are decremented only while they have enough spare
	// capacity; missing rows are seeded from the room's default unit count
	// minus the quantity. Fails with InsufficientAvailability otherwise.
	Reserve(ctx context.Context, stock RoomStock, stay booking.StayRange, quantity int) error

	// Release gives quantity units back for every night of the stay. Only
	// rows created or touched by a reservation exist, so missing rows are
	// skipped rather than created.
	Release(ctx context.Context, roomID uuid.UUID, stay booking.StayRange, quantity int) error

	// SetOverride pins the total unit count for one room-night, keeping the
	// units already reserved against the row intact.
	SetOverride(ctx context.Context, stock RoomStock, date time.Time, totalUnits int) error
}
