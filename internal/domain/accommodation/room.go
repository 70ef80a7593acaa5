package accommodation

import (
	"time"

	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/google/uuid"
)

// Room is a bookable room type within an accommodation. DefaultUnits is the
// number of physical units that exist when no inventory override row is
// present for a date.
type Room struct {
	id                 uuid.UUID
	accommodationID    uuid.UUID
	name               string
	description        string
	capacity           int
	pricePerNightCents int64
	defaultUnits       int
	active             bool
	version            int64
	createdAt          time.Time
	updatedAt          time.Time
}

// NewRoom creates a new active room with validated fields.
func NewRoom(accommodationID uuid.UUID, name, description string, capacity int, pricePerNightCents int64, defaultUnits int) (*Room, error) {
	if accommodationID == uuid.Nil {
		return nil, domain.NewValidationError("accommodation ID is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("room name is required")
	}
	if capacity <= 0 {
		return nil, domain.NewValidationError("room capacity must be positive")
	}
	if pricePerNightCents <= 0 {
		return nil, domain.NewValidationError("price per night must be positive")
	}
	if defaultUnits <= 0 {
		return nil, domain.NewValidationError("default unit count must be positive")
	}

	now := time.Now().UTC()
	return &Room{
		id:                 uuid.New(),
		accommodationID:    accommodationID,
		name:               name,
		description:        description,
		capacity:           capacity,
		pricePerNightCents: pricePerNightCents,
		defaultUnits:       defaultUnits,
		active:             true,
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// ReconstructRoom rebuilds a Room from persistence data (no validation).
func ReconstructRoom(
	id, accommodationID uuid.UUID,
	name, description string,
	capacity int,
	pricePerNightCents int64,
	defaultUnits int,
	active bool,
	version int64,
	createdAt, updatedAt time.Time,
) *Room {
	return &Room{
		id:                 id,
		accommodationID:    accommodationID,
		name:               name,
		description:        description,
		capacity:           capacity,
		pricePerNightCents: pricePerNightCents,
		defaultUnits:       defaultUnits,
		active:             active,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

func (r *Room) ID() uuid.UUID              { return r.id }
func (r *Room) AccommodationID() uuid.UUID { return r.accommodationID }
func (r *Room) Name() string               { return r.name }
func (r *Room) Description() string        { return r.description }
func (r *Room) Capacity() int              { return r.capacity }
func (r *Room) PricePerNightCents() int64  { return r.pricePerNightCents }
func (r *Room) DefaultUnits() int          { return r.defaultUnits }
func (r *Room) IsActive() bool             { return r.active }
func (r *Room) Version() int64             { return r.version }
func (r *Room) CreatedAt() time.Time       { return r.createdAt }
func (r *Room) UpdatedAt() time.Time       { return r.updatedAt }

// --- Behavior ---

// BelongsTo checks whether the room is part of the given accommodation.
func (r *Room) BelongsTo(accommodationID uuid.UUID) bool {
	return r.accommodationID == accommodationID
}

// Update applies partial updates; zero values are ignored.
func (r *Room) Update(name, description string, capacity int, pricePerNightCents int64, defaultUnits int) error {
	if capacity < 0 {
		return domain.NewValidationError("room capacity must be positive")
	}
	if pricePerNightCents < 0 {
		return domain.NewValidationError("price per night must be positive")
	}
	if defaultUnits < 0 {
		return domain.NewValidationError("default unit count must be positive")
	}
	if name != "" {
		r.name = name
	}
	if description != "" {
		r.description = description
	}
	if capacity > 0 {
		r.capacity = capacity
	}
	if pricePerNightCents > 0 {
		r.pricePerNightCents = pricePerNightCents
	}
	if defaultUnits > 0 {
		r.defaultUnits = defaultUnits
	}
	r.version++
	r.updatedAt = time.Now().UTC()
	return nil
}

// Deactivate logically deletes the room.
func (r *Room) Deactivate() {
	r.active = false
	r.version++
	r.updatedAt = time.Now().UTC()
}
