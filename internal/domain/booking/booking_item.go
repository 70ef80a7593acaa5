package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/Serai-Stays/service-reservation/internal/domain"
)

// BookingItem is one room line on a booking. The nightly rate is snapshotted
// at creation time so later price changes on the room never move the total
// of an existing booking.
type BookingItem struct {
	id              uuid.UUID
	bookingID       uuid.UUID
	roomID          uuid.UUID
	quantity        int
	unitPriceCents  int64
	totalPriceCents int64
	createdAt       time.Time
}

// NewBookingItem creates a booking line for quantity units of a room at the
// given nightly rate across the given number of nights.
func NewBookingItem(roomID uuid.UUID, quantity int, unitPriceCents int64, nights int) (*BookingItem, error) {
	if roomID == uuid.Nil {
		return nil, domain.NewValidationError("room ID is required")
	}
	if quantity <= 0 {
		return nil, domain.NewValidationError("room quantity must be positive")
	}
	if unitPriceCents < 0 {
		return nil, domain.NewValidationError("unit price cannot be negative")
	}
	if nights <= 0 {
		return nil, domain.NewValidationError("nights must be positive")
	}

	return &BookingItem{
		id:              uuid.New(),
		roomID:          roomID,
		quantity:        quantity,
		unitPriceCents:  unitPriceCents,
		totalPriceCents: unitPriceCents * int64(nights) * int64(quantity),
		createdAt:       time.Now(),
	}, nil
}

// ReconstructBookingItem rebuilds a booking item from persistence.
func ReconstructBookingItem(
	id uuid.UUID,
	bookingID uuid.UUID,
	roomID uuid.UUID,
	quantity int,
	unitPriceCents int64,
	totalPriceCents int64,
	createdAt time.Time,
) *BookingItem {
	return &BookingItem{
		id:              id,
		bookingID:       bookingID,
		roomID:          roomID,
		quantity:        quantity,
		unitPriceCents:  unitPriceCents,
		totalPriceCents: totalPriceCents,
		createdAt:       createdAt,
	}
}

// --- Getters ---

func (i *BookingItem) ID() uuid.UUID          { return i.id }
func (i *BookingItem) BookingID() uuid.UUID   { return i.bookingID }
func (i *BookingItem) RoomID() uuid.UUID      { return i.roomID }
func (i *BookingItem) Quantity() int          { return i.quantity }
func (i *BookingItem) UnitPriceCents() int64  { return i.unitPriceCents }
func (i *BookingItem) TotalPriceCents() int64 { return i.totalPriceCents }
func (i *BookingItem) CreatedAt() time.Time   { return i.createdAt }

// AttachTo links the item to its parent booking.
func (i *BookingItem) AttachTo(bookingID uuid.UUID) {
	i.bookingID = bookingID
}
