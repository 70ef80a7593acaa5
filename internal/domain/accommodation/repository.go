package accommodation

import (
	"context"

	"github.com/google/uuid"
)

// SearchFilter narrows accommodation searches. Zero values mean "no
// constraint"; the repository compiles the filter into a parameterized query.
type SearchFilter struct {
	City       string
	Country    string
	MinStars   int
	Name       string
	ActiveOnly bool
}

// AccommodationRepository defines the persistence contract for accommodations.
type AccommodationRepository interface {
	// FindByID retrieves an accommodation by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Accommodation, error)

	// Search retrieves accommodations matching the filter with pagination.
	Search(ctx context.Context, filter SearchFilter, page, limit int) ([]*Accommodation, int64, error)

	// Save persists a new accommodation.
	Save(ctx context.Context, acc *Accommodation) error

	// Update persists changes to an existing accommodation with optimistic locking.
	Update(ctx context.Context, acc *Accommodation) error
}

// RoomRepository defines the persistence contract for rooms.
type RoomRepository interface {
	// FindByID retrieves a room by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)

	// FindByIDs retrieves the given rooms; missing IDs are simply absent from
	// the result.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Room, error)

	// FindByAccommodationID retrieves rooms for an accommodation. When
	// activeOnly is set, deactivated rooms are excluded.
	FindByAccommodationID(ctx context.Context, accommodationID uuid.UUID, activeOnly bool) ([]*Room, error)

	// Save persists a new room.
	Save(ctx context.Context, room *Room) error

	// Update persists changes to an existing room with optimistic locking.
	Update(ctx context.Context, room *Room) error
}
