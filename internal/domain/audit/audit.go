package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Serai-Stays/service-reservation/internal/domain"
)

// Actions recorded against bookings.
const (
	ActionStatusChanged = "status_changed"
	ActionCancelled     = "cancelled"
	ActionUpdated       = "updated"
)

// Entry is one audit record: who did what to which booking, and the status
// it moved between.
type Entry struct {
	id         uuid.UUID
	actorID    uuid.UUID
	bookingID  uuid.UUID
	action     string
	fromStatus string
	toStatus   string
	createdAt  time.Time
}

// NewEntry creates an audit entry for an action on a booking.
func NewEntry(actorID, bookingID uuid.UUID, action, fromStatus, toStatus string) (*Entry, error) {
	if actorID == uuid.Nil {
		return nil, domain.NewValidationError("actor ID is required")
	}
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if action == "" {
		return nil, domain.NewValidationError("audit action is required")
	}

	return &Entry{
		id:         uuid.New(),
		actorID:    actorID,
		bookingID:  bookingID,
		action:     action,
		fromStatus: fromStatus,
		toStatus:   toStatus,
		createdAt:  time.Now().UTC(),
	}, nil
}

// ReconstructEntry rebuilds an audit entry from persistence data.
func ReconstructEntry(
	id uuid.UUID,
	actorID uuid.UUID,
	bookingID uuid.UUID,
	action string,
	fromStatus string,
	toStatus string,
	createdAt time.Time,
) *Entry {
	return &Entry{
		id:         id,
		actorID:    actorID,
		bookingID:  bookingID,
		action:     action,
		fromStatus: fromStatus,
		toStatus:   toStatus,
		createdAt:  createdAt,
	}
}

// --- Getters ---

func (e *Entry) ID() uuid.UUID        { return e.id }
func (e *Entry) ActorID() uuid.UUID   { return e.actorID }
func (e *Entry) BookingID() uuid.UUID { return e.bookingID }
func (e *Entry) Action() string       { return e.action }
func (e *Entry) FromStatus() string   { return e.fromStatus }
func (e *Entry) ToStatus() string     { return e.toStatus }
func (e *Entry) CreatedAt() time.Time { return e.createdAt }

// AuditRepository defines the persistence contract for audit entries.
type AuditRepository interface {
	// Save persists a new audit entry.
	Save(ctx context.Context, entry *Entry) error

	// FindByBookingID retrieves all audit entries for a booking, oldest
	// first.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Entry, error)
}
