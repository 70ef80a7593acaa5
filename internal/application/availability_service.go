package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Serai-Stays/service-reservation/internal/cache"
	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/availability"
	"github.com/Serai-Stays/service-reservation/internal/domain/booking"
	"github.com/Serai-Stays/service-reservation/internal/domain/store"
)

// availabilityCacheTTL bounds how stale a cached availability answer can get.
// The booking path re-checks inside its transaction, so the cache is latency
// reduction only.
const availabilityCacheTTL = 5 * time.Minute

// SetInventoryRequest pins the sellable unit count of a room for one date.
type SetInventoryRequest struct {
	Date       string `json:"date" binding:"required"`
	TotalUnits int    `json:"total_units" binding:"gte=0"`
}

// RoomAvailabilityDTO is one room's availability over a requested stay.
type RoomAvailabilityDTO struct {
	RoomID             uuid.UUID `json:"room_id"`
	Name               string    `json:"name"`
	Capacity           int       `json:"capacity"`
	PricePerNightCents int64     `json:"price_per_night_cents"`
	AvailableUnits     int       `json:"available_units"`
}

// AvailabilityDTO is the response representation of an availability check.
type AvailabilityDTO struct {
	AccommodationID uuid.UUID             `json:"accommodation_id"`
	CheckInDate     string                `json:"check_in_date"`
	CheckOutDate    string                `json:"check_out_date"`
	Nights          int                   `json:"nights"`
	Rooms           []RoomAvailabilityDTO `json:"rooms"`
}

// InventoryOverrideDTO is the response representation of an inventory pin.
type InventoryOverrideDTO struct {
	RoomID     uuid.UUID `json:"room_id"`
	Date       string    `json:"date"`
	TotalUnits int       `json:"total_units"`
}

// AvailabilityService answers availability questions and manages per-date
// inventory pins.
type AvailabilityService struct {
	store  store.Store
	cache  cache.Cache
	logger *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(st store.Store, ch cache.Cache, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		store:  st,
		cache:  ch,
		logger: logger,
	}
}

// CheckAvailability computes each active room's bookable unit count across the
// stay. Answers are cached briefly; booking creation never trusts this path
// and re-checks inside its own transaction.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, accommodationID uuid.UUID, checkIn, checkOut string) (*AvailabilityDTO, error) {
	stay, err := booking.ParseStayRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	key := availabilityCacheKey(accommodationID, stay)
	var cached AvailabilityDTO
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("availability cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	repos := s.store.Repos()
	acc, err := repos.Accommodations.FindByID(ctx, accommodationID)
	if err != nil {
		return nil, err
	}
	if !acc.IsActive() {
		return nil, domain.NewNotFoundError("Accommodation", accommodationID.String())
	}

	rooms, err := repos.Rooms.FindByAccommodationID(ctx, accommodationID, true)
	if err != nil {
		return nil, err
	}

	stocks := make([]availability.RoomStock, len(rooms))
	for i, room := range rooms {
		stocks[i] = availability.RoomStock{RoomID: room.ID(), DefaultUnits: room.DefaultUnits()}
	}

	engine := availability.NewEngine(repos.Inventory)
	minUnits, err := engine.MinAvailable(ctx, stocks, stay)
	if err != nil {
		return nil, err
	}

	roomDTOs := make([]RoomAvailabilityDTO, len(rooms))
	for i, room := range rooms {
		roomDTOs[i] = RoomAvailabilityDTO{
			RoomID:             room.ID(),
			Name:               room.Name(),
			Capacity:           room.Capacity(),
			PricePerNightCents: room.PricePerNightCents(),
			AvailableUnits:     minUnits[room.ID()],
		}
	}

	result := AvailabilityDTO{
		AccommodationID: accommodationID,
		CheckInDate:     stay.CheckIn().Format(time.DateOnly),
		CheckOutDate:    stay.CheckOut().Format(time.DateOnly),
		Nights:          stay.Nights(),
		Rooms:           roomDTOs,
	}

	if err := s.cache.Set(ctx, key, result, availabilityCacheTTL); err != nil {
		s.logger.Warn("availability cache write failed", zap.String("key", key), zap.Error(err))
	}
	return &result, nil
}

// --- Admin methods ---

// SetInventoryOverride pins the sellable unit count for one room-night and
// invalidates cached availability for the property.
func (s *AvailabilityService) SetInventoryOverride(ctx context.Context, roomID uuid.UUID, req SetInventoryRequest) (*InventoryOverrideDTO, error) {
	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		return nil, domain.NewValidationError("date must be formatted as YYYY-MM-DD")
	}

	repos := s.store.Repos()
	room, err := repos.Rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	stock := availability.RoomStock{RoomID: room.ID(), DefaultUnits: room.DefaultUnits()}
	if err := repos.Inventory.SetOverride(ctx, stock, date, req.TotalUnits); err != nil {
		return nil, err
	}

	if err := s.cache.DelPattern(ctx, availabilityCachePattern(room.AccommodationID())); err != nil {
		s.logger.Warn("failed to invalidate availability cache",
			zap.String("accommodation_id", room.AccommodationID().String()),
			zap.Error(err),
		)
	}

	return &InventoryOverrideDTO{
		RoomID:     room.ID(),
		Date:       booking.NormalizeDate(date).Format(time.DateOnly),
		TotalUnits: req.TotalUnits,
	}, nil
}

// --- Helpers ---

func availabilityCacheKey(accommodationID uuid.UUID, stay booking.StayRange) string {
	return fmt.Sprintf("availability:acc:%s:%s:%s",
		accommodationID,
		stay.CheckIn().Format(time.DateOnly),
		stay.CheckOut().Format(time.DateOnly),
	)
}

func availabilityCachePattern(accommodationID uuid.UUID) string {
	return fmt.Sprintf("availability:acc:%s:*", accommodationID)
}
