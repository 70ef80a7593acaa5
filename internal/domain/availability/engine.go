package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/booking"
)

// Engine computes effective room availability over a stay range. It is a pure
// read with no side effects; serializing conflicting writers is the booking
// orchestrator's job, not the engine's.
type Engine struct {
	inventory InventoryRepository
}

// NewEngine creates an availability engine over the given inventory source.
// Callers that need reads consistent with in-flight writes construct the
// engine over a transaction-scoped repository.
func NewEngine(inventory InventoryRepository) *Engine {
	return &Engine{inventory: inventory}
}

// MinAvailable returns, for each room, the minimum spare unit count across
// every night of the stay.
//
// The spare count for one room-night is the inventory row's available_units
// when a row exists, and otherwise the room's default unit count minus the
// quantity held by non-cancelled bookings covering that night. A stay is only
// as available as its tightest night.
func (e *Engine) MinAvailable(ctx context.Context, rooms []RoomStock, stay booking.StayRange) (map[uuid.UUID]int, error) {
	if stay.Nights() <= 0 {
		return nil, domain.NewInvalidDateRangeError(
			stay.CheckIn().Format(time.DateOnly),
			stay.CheckOut().Format(time.DateOnly),
		)
	}

	roomIDs := make([]uuid.UUID, 0, len(rooms))
	for _, room := range rooms {
		roomIDs = append(roomIDs, room.RoomID)
	}

	overrides, err := e.inventory.OverrideUnits(ctx, roomIDs, stay)
	if err != nil {
		return nil, err
	}
	reserved, err := e.inventory.ReservedUnits(ctx, roomIDs, stay)
	if err != nil {
		return nil, err
	}

	dates := stay.Dates()
	result := make(map[uuid.UUID]int, len(rooms))
	for _, room := range rooms {
		minUnits := 0
		for i, date := range dates {
			key := RoomDate{RoomID: room.RoomID, Date: date}
			units, ok := overrides[key]
			if !ok {
				units = room.DefaultUnits - reserved[key]
			}
			if i == 0 || units < minUnits {
				minUnits = units
			}
		}
		result[room.RoomID] = minUnits
	}
	return result, nil
}

// EnsureAvailable validates every requested quantity against the minimum
// spare units over the stay. The first shortfall rejects the whole request;
// partial admission is never allowed.
func (e *Engine) EnsureAvailable(ctx context.Context, requests []RoomRequest, stay booking.StayRange) error {
	stocks := make([]RoomStock, 0, len(requests))
	for _, req := range requests {
		stocks = append(stocks, req.Stock)
	}

	minimums, err := e.MinAvailable(ctx, stocks, stay)
	if err != nil {
		return err
	}

	for _, req := range requests {
		if available := minimums[req.Stock.RoomID]; req.Quantity > available {
			return domain.NewInsufficientAvailabilityError(req.Stock.RoomID.String(), req.Quantity, available)
		}
	}
	return nil
}
