package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Serai-Stays/service-reservation/internal/cache"
	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/accommodation"
	"github.com/Serai-Stays/service-reservation/internal/domain/store"
)

// CreateAccommodationRequest holds the data for a new property.
type CreateAccommodationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	AddressLine string `json:"address_line"`
	City        string `json:"city" binding:"required"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
	Country     string `json:"country" binding:"required"`
	StarRating  int    `json:"star_rating" binding:"gte=0,lte=5"`
}

// UpdateAccommodationRequest holds a partial property edit; empty fields are
// left unchanged.
type UpdateAccommodationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
	Country     string `json:"country"`
	StarRating  int    `json:"star_rating" binding:"gte=0,lte=5"`
}

// CreateRoomRequest holds the data for a new room type.
type CreateRoomRequest struct {
	Name               string `json:"name" binding:"required"`
	Description        string `json:"description"`
	Capacity           int    `json:"capacity" binding:"required,min=1"`
	PricePerNightCents int64  `json:"price_per_night_cents" binding:"required,min=1"`
	DefaultUnits       int    `json:"default_units" binding:"required,min=1"`
}

// UpdateRoomRequest holds a partial room edit; zero fields are left unchanged.
type UpdateRoomRequest struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	Capacity           int    `json:"capacity" binding:"gte=0"`
	PricePerNightCents int64  `json:"price_per_night_cents" binding:"gte=0"`
	DefaultUnits       int    `json:"default_units" binding:"gte=0"`
}

// AccommodationDTO is the response representation of a property.
type AccommodationDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	AddressLine string    `json:"address_line,omitempty"`
	City        string    `json:"city"`
	State       string    `json:"state,omitempty"`
	Postcode    string    `json:"postcode,omitempty"`
	Country     string    `json:"country"`
	StarRating  int       `json:"star_rating"`
	Active      bool      `json:"active"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoomDTO is the response representation of a room type.
type RoomDTO struct {
	ID                 uuid.UUID `json:"id"`
	AccommodationID    uuid.UUID `json:"accommodation_id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	Capacity           int       `json:"capacity"`
	PricePerNightCents int64     `json:"price_per_night_cents"`
	DefaultUnits       int       `json:"default_units"`
	Active             bool      `json:"active"`
	Version            int64     `json:"version"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// AccommodationService is the application service for property and room
// management.
type AccommodationService struct {
	store  store.Store
	cache  cache.Cache
	logger *zap.Logger
}

// NewAccommodationService creates a new AccommodationService.
func NewAccommodationService(st store.Store, ch cache.Cache, logger *zap.Logger) *AccommodationService {
	return &AccommodationService{
		store:  st,
		cache:  ch,
		logger: logger,
	}
}

// SearchAccommodations retrieves properties matching the filter.
func (s *AccommodationService) SearchAccommodations(ctx context.Context, filter accommodation.SearchFilter, page, limit int) (*domain.PaginatedResult[AccommodationDTO], error) {
	accommodations, total, err := s.store.Repos().Accommodations.Search(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]AccommodationDTO, len(accommodations))
	for i, acc := range accommodations {
		dtos[i] = toAccommodationDTO(acc)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetAccommodation retrieves one property by ID.
func (s *AccommodationService) GetAccommodation(ctx context.Context, id uuid.UUID) (*AccommodationDTO, error) {
	acc, err := s.store.Repos().Accommodations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toAccommodationDTO(acc)
	return &result, nil
}

// ListRooms retrieves the rooms of a property.
func (s *AccommodationService) ListRooms(ctx context.Context, accommodationID uuid.UUID, activeOnly bool) ([]RoomDTO, error) {
	repos := s.store.Repos()
	if _, err := repos.Accommodations.FindByID(ctx, accommodationID); err != nil {
		return nil, err
	}

	rooms, err := repos.Rooms.FindByAccommodationID(ctx, accommodationID, activeOnly)
	if err != nil {
		return nil, err
	}

	dtos := make([]RoomDTO, len(rooms))
	for i, room := range rooms {
		dtos[i] = toRoomDTO(room)
	}
	return dtos, nil
}

// GetRoom retrieves one room by ID.
func (s *AccommodationService) GetRoom(ctx context.Context, roomID uuid.UUID) (*RoomDTO, error) {
	room, err := s.store.Repos().Rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	result := toRoomDTO(room)
	return &result, nil
}

// --- Admin methods ---

// CreateAccommodation registers a new property.
func (s *AccommodationService) CreateAccommodation(ctx context.Context, req CreateAccommodationRequest) (*AccommodationDTO, error) {
	acc, err := accommodation.NewAccommodation(
		req.Name,
		req.Description,
		req.AddressLine,
		req.City,
		req.State,
		req.Postcode,
		req.Country,
		req.StarRating,
	)
	if err != nil {
		return nil, err
	}

	if err := s.store.Repos().Accommodations.Save(ctx, acc); err != nil {
		return nil, err
	}

	result := toAccommodationDTO(acc)
	return &result, nil
}

// UpdateAccommodation applies a partial edit to a property.
func (s *AccommodationService) UpdateAccommodation(ctx context.Context, id uuid.UUID, req UpdateAccommodationRequest) (*AccommodationDTO, error) {
	repos := s.store.Repos()
	acc, err := repos.Accommodations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = acc.Update(
		req.Name,
		req.Description,
		req.AddressLine,
		req.City,
		req.State,
		req.Postcode,
		req.Country,
		req.StarRating,
	)
	if err != nil {
		return nil, err
	}

	if err := repos.Accommodations.Update(ctx, acc); err != nil {
		return nil, err
	}

	result := toAccommodationDTO(acc)
	return &result, nil
}

// DeactivateAccommodation hides a property from search and booking.
func (s *AccommodationService) DeactivateAccommodation(ctx context.Context, id uuid.UUID) error {
	repos := s.store.Repos()
	acc, err := repos.Accommodations.FindByID(ctx, id)
	if err != nil {
		return err
	}

	acc.Deactivate()
	if err := repos.Accommodations.Update(ctx, acc); err != nil {
		return err
	}

	s.invalidateAvailability(ctx, id)
	return nil
}

// ActivateAccommodation brings a deactivated property back.
func (s *AccommodationService) ActivateAccommodation(ctx context.Context, id uuid.UUID) error {
	repos := s.store.Repos()
	acc, err := repos.Accommodations.FindByID(ctx, id)
	if err != nil {
		return err
	}

	acc.Activate()
	return repos.Accommodations.Update(ctx, acc)
}

// CreateRoom adds a room type to a property.
func (s *AccommodationService) CreateRoom(ctx context.Context, accommodationID uuid.UUID, req CreateRoomRequest) (*RoomDTO, error) {
	repos := s.store.Repos()
	if _, err := repos.Accommodations.FindByID(ctx, accommodationID); err != nil {
		return nil, err
	}

	room, err := accommodation.NewRoom(
		accommodationID,
		req.Name,
		req.Description,
		req.Capacity,
		req.PricePerNightCents,
		req.DefaultUnits,
	)
	if err != nil {
		return nil, err
	}

	if err := repos.Rooms.Save(ctx, room); err != nil {
		return nil, err
	}

	result := toRoomDTO(room)
	return &result, nil
}

// UpdateRoom applies a partial edit to a room type. Price and default unit
// changes invalidate cached availability for the property.
func (s *AccommodationService) UpdateRoom(ctx context.Context, roomID uuid.UUID, req UpdateRoomRequest) (*RoomDTO, error) {
	repos := s.store.Repos()
	room, err := repos.Rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	err = room.Update(
		req.Name,
		req.Description,
		req.Capacity,
		req.PricePerNightCents,
		req.DefaultUnits,
	)
	if err != nil {
		return nil, err
	}

	if err := repos.Rooms.Update(ctx, room); err != nil {
		return nil, err
	}

	s.invalidateAvailability(ctx, room.AccommodationID())

	result := toRoomDTO(room)
	return &result, nil
}

// DeactivateRoom stops a room type from being offered.
func (s *AccommodationService) DeactivateRoom(ctx context.Context, roomID uuid.UUID) error {
	repos := s.store.Repos()
	room, err := repos.Rooms.FindByID(ctx, roomID)
	if err != nil {
		return err
	}

	room.Deactivate()
	if err := repos.Rooms.Update(ctx, room); err != nil {
		return err
	}

	s.invalidateAvailability(ctx, room.AccommodationID())
	return nil
}

// --- Helpers ---

func (s *AccommodationService) invalidateAvailability(ctx context.Context, accommodationID uuid.UUID) {
	if err := s.cache.DelPattern(ctx, availabilityCachePattern(accommodationID)); err != nil {
		s.logger.Warn("failed to invalidate availability cache",
			zap.String("accommodation_id", accommodationID.String()),
			zap.Error(err),
		)
	}
}

func toAccommodationDTO(acc *accommodation.Accommodation) AccommodationDTO {
	return AccommodationDTO{
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

func toRoomDTO(room *accommodation.Room) RoomDTO {
	return RoomDTO{
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
