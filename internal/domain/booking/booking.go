package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/Serai-Stays/service-reservation/internal/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// minNoticeBeforeCheckIn is the cancellation policy window. Guests may cancel
// or modify a booking only up to this long before check-in.
const minNoticeBeforeCheckIn = 24 * time.Hour

// Booking is the aggregate root for the reservation domain. It owns the stay
// range, the room lines and the rolled-up payment state.
type Booking struct {
	id              uuid.UUID
	bookingNumber   string
	userID          uuid.UUID
	accommodationID uuid.UUID
	status          BookingStatus
	paymentState    PaymentState
	stay            StayRange
	guestCount      int
	items           []*BookingItem

	totalAmountCents int64
	currency         string

	notes        string
	checkedInAt  *time.Time
	checkedOutAt *time.Time
	cancelledAt  *time.Time
	cancelReason string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "BK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending. The caller
// computes totalAmountCents through its pricing strategy; it must equal the
// sum of the item line totals.
func NewBooking(
	userID uuid.UUID,
	accommodationID uuid.UUID,
	stay StayRange,
	guestCount int,
	items []*BookingItem,
	totalAmountCents int64,
	currency string,
	notes string,
) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if accommodationID == uuid.Nil {
		return nil, domain.NewValidationError("accommodation ID is required")
	}
	if stay.Nights() <= 0 {
		return nil, domain.NewInvalidDateRangeError(
			stay.CheckIn().Format(time.DateOnly),
			stay.CheckOut().Format(time.DateOnly),
		)
	}
	if guestCount <= 0 {
		return nil, domain.NewValidationError("guest count must be positive")
	}
	if len(items) == 0 {
		return nil, domain.NewValidationError("at least one room is required")
	}
	if currency == "" {
		currency = domain.CurrencyMYR
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	var sum int64
	for _, item := range items {
		item.AttachTo(id)
		sum += item.TotalPriceCents()
	}
	if totalAmountCents != sum {
		return nil, domain.NewValidationError("total amount does not match booking items")
	}

	now := time.Now().UTC()
	return &Booking{
		id:               id,
		bookingNumber:    bookingNumber,
		userID:           userID,
		accommodationID:  accommodationID,
		status:           StatusPending,
		paymentState:     PaymentStateUnpaid,
		stay:             stay,
		guestCount:       guestCount,
		items:            items,
		totalAmountCents: totalAmountCents,
		currency:         currency,
		notes:            notes,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	userID uuid.UUID,
	accommodationID uuid.UUID,
	status BookingStatus,
	paymentState PaymentState,
	stay StayRange,
	guestCount int,
	items []*BookingItem,
	totalAmountCents int64,
	currency string,
	notes string,
	checkedInAt *time.Time,
	checkedOutAt *time.Time,
	cancelledAt *time.Time,
	cancelReason string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:               id,
		bookingNumber:    bookingNumber,
		userID:           userID,
		accommodationID:  accommodationID,
		status:           status,
		paymentState:     paymentState,
		stay:             stay,
		guestCount:       guestCount,
		items:            items,
		totalAmountCents: totalAmountCents,
		currency:         currency,
		notes:            notes,
		checkedInAt:      checkedInAt,
		checkedOutAt:     checkedOutAt,
		cancelledAt:      cancelledAt,
		cancelReason:     cancelReason,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// UserID returns the booking guest's user ID.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// AccommodationID returns the booked accommodation's ID.
func (b *Booking) AccommodationID() uuid.UUID { return b.accommodationID }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PaymentState returns the rolled-up payment state of the booking.
func (b *Booking) PaymentState() PaymentState { return b.paymentState }

// Stay returns the booked stay range.
func (b *Booking) Stay() StayRange { return b.stay }

// GuestCount returns the number of guests on the booking.
func (b *Booking) GuestCount() int { return b.guestCount }

// Items returns the room lines of the booking.
func (b *Booking) Items() []*BookingItem { return b.items }

// TotalAmountCents returns the booking total in cents.
func (b *Booking) TotalAmountCents() int64 { return b.totalAmountCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// CheckedInAt returns the time the guest checked in.
func (b *Booking) CheckedInAt() *time.Time { return b.checkedInAt }

// CheckedOutAt returns the time the guest checked out.
func (b *Booking) CheckedOutAt() *time.Time { return b.checkedOutAt }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// CancelReason returns the cancellation reason.
func (b *Booking) CancelReason() string { return b.cancelReason }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// IsOwnedBy reports whether the booking belongs to the given user.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.userID == userID
}

// --- Behavior ---

// Confirm transitions the booking from pending to confirmed.
func (b *Booking) Confirm() error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	b.status = StatusConfirmed
	b.updatedAt = time.Now().UTC()
	return nil
}

// CheckIn transitions the booking from confirmed to checked_in.
func (b *Booking) CheckIn() error {
	if !b.status.CanTransitionTo(StatusCheckedIn) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCheckedIn))
	}
	now := time.Now().UTC()
	b.status = StatusCheckedIn
	b.checkedInAt = &now
	b.updatedAt = now
	return nil
}

// CheckOut transitions the booking from checked_in to checked_out.
func (b *Booking) CheckOut() error {
	if !b.status.CanTransitionTo(StatusCheckedOut) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCheckedOut))
	}
	now := time.Now().UTC()
	b.status = StatusCheckedOut
	b.checkedOutAt = &now
	b.updatedAt = now
	return nil
}

// MarkNoShow transitions the booking to no_show when the guest never arrived.
func (b *Booking) MarkNoShow() error {
	if !b.status.CanTransitionTo(StatusNoShow) {
		return domain.NewInvalidStateError(string(b.status), string(StatusNoShow))
	}
	b.status = StatusNoShow
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking to cancelled if it is not in a terminal state.
func (b *Booking) Cancel(reason string) error {
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelReason = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// CancelByUser applies the guest-facing cancellation policy before cancelling:
// only pending or confirmed bookings, and no later than 24 hours before
// check-in.
func (b *Booking) CancelByUser(now time.Time, reason string) error {
	if !b.status.CanBeCancelled() {
		return domain.NewCancellationNotAllowedError(
			fmt.Sprintf("booking in status %s cannot be cancelled", b.status),
		)
	}
	if b.stay.CheckIn().Sub(now) < minNoticeBeforeCheckIn {
		return domain.NewCancellationNotAllowedError(
			"bookings must be cancelled at least 24 hours before check-in",
		)
	}
	return b.Cancel(reason)
}

// TransitionTo applies an operator-driven status change after validating the
// target value and the transition.
func (b *Booking) TransitionTo(target BookingStatus) error {
	if !target.IsValid() {
		return domain.NewInvalidStatusError(string(target))
	}
	switch target {
	case StatusConfirmed:
		return b.Confirm()
	case StatusCheckedIn:
		return b.CheckIn()
	case StatusCheckedOut:
		return b.CheckOut()
	case StatusNoShow:
		return b.MarkNoShow()
	case StatusCancelled:
		return b.Cancel("")
	default:
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
}

// UpdateDetails changes the guest count and notes of a pending booking. Dates
// and rooms are immutable once booked; guests rebook to change them.
func (b *Booking) UpdateDetails(guestCount int, notes string, now time.Time) error {
	if b.status != StatusPending {
		return domain.NewBookingNotModifiableError(
			fmt.Sprintf("booking in status %s can no longer be modified", b.status),
		)
	}
	if b.stay.CheckIn().Sub(now) < minNoticeBeforeCheckIn {
		return domain.NewBookingNotModifiableError(
			"bookings can no longer be modified within 24 hours of check-in",
		)
	}
	if guestCount <= 0 {
		return domain.NewValidationError("guest count must be positive")
	}
	b.guestCount = guestCount
	b.notes = notes
	b.updatedAt = now
	return nil
}

// MarkPaid records that the booking's payment completed.
func (b *Booking) MarkPaid() {
	b.paymentState = PaymentStatePaid
	b.updatedAt = time.Now().UTC()
}

// MarkPaymentFailed records that the latest payment attempt failed.
func (b *Booking) MarkPaymentFailed() {
	b.paymentState = PaymentStateFailed
	b.updatedAt = time.Now().UTC()
}

// MarkRefundPending records that a refund has been initiated.
func (b *Booking) MarkRefundPending() {
	b.paymentState = PaymentStateRefundPending
	b.updatedAt = time.Now().UTC()
}

// MarkRefunded records that the booking's payment was refunded.
func (b *Booking) MarkRefunded() {
	b.paymentState = PaymentStateRefunded
	b.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
