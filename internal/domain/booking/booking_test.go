package booking_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/booking"
)

func mustBookingItem(t *testing.T, roomID uuid.UUID, quantity int, unitPriceCents int64, nights int) *booking.BookingItem {
	t.Helper()
	item, err := booking.NewBookingItem(roomID, quantity, unitPriceCents, nights)
	require.NoError(t, err)
	return item
}

// newTestBooking builds a two-night, one-room pending booking checking in on
// the given date.
func newTestBooking(t *testing.T, checkIn string) *booking.Booking {
	t.Helper()
	stay, err := booking.ParseStayRange(checkIn, nextDays(t, checkIn, 2))
	require.NoError(t, err)

	item := mustBookingItem(t, uuid.New(), 1, 20000, stay.Nights())
	bk, err := booking.NewBooking(uuid.New(), uuid.New(), stay, 2, []*booking.BookingItem{item}, 40000, "MYR", "sea view please")
	require.NoError(t, err)
	return bk
}

func nextDays(t *testing.T, date string, days int) string {
	t.Helper()
	day, err := time.Parse(time.DateOnly, date)
	require.NoError(t, err)
	return day.AddDate(0, 0, days).Format(time.DateOnly)
}

func TestNewBooking(t *testing.T) {
	userID := uuid.New()
	accommodationID := uuid.New()
	roomID := uuid.New()
	stay, err := booking.ParseStayRange("2026-09-10", "2026-09-12")
	require.NoError(t, err)

	item := mustBookingItem(t, roomID, 2, 15000, stay.Nights())
	bk, err := booking.NewBooking(userID, accommodationID, stay, 4, []*booking.BookingItem{item}, 60000, "MYR", "")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, bk.ID())
	assert.True(t, strings.HasPrefix(bk.BookingNumber(), "BK-"))
	assert.Len(t, bk.BookingNumber(), 9)
	assert.Equal(t, userID, bk.UserID())
	assert.Equal(t, accommodationID, bk.AccommodationID())
	assert.Equal(t, booking.StatusPending, bk.Status())
	assert.Equal(t, booking.PaymentStateUnpaid, bk.PaymentState())
	assert.Equal(t, 4, bk.GuestCount())
	assert.Equal(t, int64(60000), bk.TotalAmountCents())
	assert.Equal(t, "MYR", bk.Currency())
	assert.Equal(t, int64(1), bk.Version())

	// Items are attached to the new aggregate.
	require.Len(t, bk.Items(), 1)
	assert.Equal(t, bk.ID(), bk.Items()[0].BookingID())
}

func TestNewBooking_DefaultsCurrency(t *testing.T) {
	stay, err := booking.ParseStayRange("2026-09-10", "2026-09-11")
	require.NoError(t, err)
	item := mustBookingItem(t, uuid.New(), 1, 10000, 1)

	bk, err := booking.NewBooking(uuid.New(), uuid.New(), stay, 1, []*booking.BookingItem{item}, 10000, "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyMYR, bk.Currency())
}

func TestNewBooking_Validation(t *testing.T) {
	stay, err := booking.ParseStayRange("2026-09-10", "2026-09-12")
	require.NoError(t, err)
	item := func() *booking.BookingItem { return mustBookingItem(t, uuid.New(), 1, 20000, 2) }

	tests := []struct {
		name string
		run  func() error
		code string
	}{
		{
			"nil user",
			func() error {
				_, err := booking.NewBooking(uuid.Nil, uuid.New(), stay, 1, []*booking.BookingItem{item()}, 40000, "MYR", "")
				return err
			},
			domain.CodeValidation,
		},
		{
			"nil accommodation",
			func() error {
				_, err := booking.NewBooking(uuid.New(), uuid.Nil, stay, 1, []*booking.BookingItem{item()}, 40000, "MYR", "")
				return err
			},
			domain.CodeValidation,
		},
		{
			"empty stay",
			func() error {
				_, err := booking.NewBooking(uuid.New(), uuid.New(), booking.StayRange{}, 1, []*booking.BookingItem{item()}, 40000, "MYR", "")
				return err
			},
			domain.CodeInvalidDateRange,
		},
		{
			"zero guests",
			func() error {
				_, err := booking.NewBooking(uuid.New(), uuid.New(), stay, 0, []*booking.BookingItem{item()}, 40000, "MYR", "")
				return err
			},
			domain.CodeValidation,
		},
		{
			"no items",
			func() error {
				_, err := booking.NewBooking(uuid.New(), uuid.New(), stay, 1, nil, 40000, "MYR", "")
				return err
			},
			domain.CodeValidation,
		},
		{
			"total mismatch",
			func() error {
				_, err := booking.NewBooking(uuid.New(), uuid.New(), stay, 1, []*booking.BookingItem{item()}, 41000, "MYR", "")
				return err
			},
			domain.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.Equal(t, tt.code, domain.CodeOf(err))
		})
	}
}

func TestNewBookingItem_Validation(t *testing.T) {
	_, err := booking.NewBookingItem(uuid.Nil, 1, 10000, 2)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = booking.NewBookingItem(uuid.New(), 0, 10000, 2)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = booking.NewBookingItem(uuid.New(), 1, -1, 2)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = booking.NewBookingItem(uuid.New(), 1, 10000, 0)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	item, err := booking.NewBookingItem(uuid.New(), 2, 10000, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), item.TotalPriceCents())
}

func TestBooking_Lifecycle(t *testing.T) {
	bk := newTestBooking(t, "2026-09-10")

	require.NoError(t, bk.Confirm())
	assert.Equal(t, booking.StatusConfirmed, bk.Status())

	require.NoError(t, bk.CheckIn())
	assert.Equal(t, booking.StatusCheckedIn, bk.Status())
	require.NotNil(t, bk.CheckedInAt())

	require.NoError(t, bk.CheckOut())
	assert.Equal(t, booking.StatusCheckedOut, bk.Status())
	require.NotNil(t, bk.CheckedOutAt())
}

func TestBooking_CheckInRequiresConfirmed(t *testing.T) {
	bk := newTestBooking(t, "2026-09-10")

	err := bk.CheckIn()
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidState, domain.CodeOf(err))
	assert.Equal(t, booking.StatusPending, bk.Status())
}

func TestBooking_Cancel(t *testing.T) {
	bk := newTestBooking(t, "2026-09-10")

	require.NoError(t, bk.Cancel("overbooked"))
	assert.Equal(t, booking.StatusCancelled, bk.Status())
	assert.Equal(t, "overbooked", bk.CancelReason())
	require.NotNil(t, bk.CancelledAt())

	// Cancelling twice is rejected.
	err := bk.Cancel("again")
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidState, domain.CodeOf(err))
}

func TestBooking_CancelByUser(t *testing.T) {
	bk := newTestBooking(t, "2026-09-10")
	checkIn := bk.Stay().CheckIn()

	// 48 hours of notice is enough.
	require.NoError(t, bk.CancelByUser(checkIn.Add(-48*time.Hour), "change of plans"))
	assert.Equal(t, booking.StatusCancelled, bk.Status())
}

func TestBooking_CancelByUser_TooLate(t *testing.T) {
	bk := newTestBooking(t, "2026-09-10")
	checkIn := bk.Stay().CheckIn()

	err := bk.CancelByUser(checkIn.Add(-10*time.Hour), "change of plans")
	require.Error(t, err)
	assert.Equal(t, domain.CodeCancellationNotAllowed, domain.CodeOf(err))
	assert.Equal(t, booking.StatusPending, bk.Status())
}

func TestBooking_CancelByUser_WrongStatus(t *testing.T) {
	bk := newTestBooking(t, "2026-09-10")
	require.NoError(t, bk.Confirm())
	require.NoError(t, bk.CheckIn())

	err := bk.CancelByUser(bk.Stay().CheckIn().Add(-72*time.Hour), "")
	require.Error(t, err)
	assert.Equal(t, domain.CodeCancellationNotAllowed, domain.CodeOf(err))
}

func TestBooking_TransitionTo(t *testing.T) {
	bk := newTestBooking(t, "2026-09-10")

	require.NoError(t, bk.TransitionTo(booking.StatusConfirmed))
	assert.Equal(t, booking.StatusConfirmed, bk.Status())

	err := bk.TransitionTo(booking.BookingStatus("shipped"))
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidStatus, domain.CodeOf(err))

	err = bk.TransitionTo(booking.StatusCheckedOut)
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidState, domain.CodeOf(err))
}

func TestBooking_UpdateDetails(t *testing.T) {
	bk := newTestBooking(t, "2026-09-10")
	now := bk.Stay().CheckIn().Add(-72 * time.Hour)

	require.NoError(t, bk.UpdateDetails(3, "late arrival", now))
	assert.Equal(t, 3, bk.GuestCount())
	assert.Equal(t, "late arrival", bk.Notes())
	assert.Equal(t, now, bk.UpdatedAt())

	// Empty notes clear the previous value.
	require.NoError(t, bk.UpdateDetails(2, "", now))
	assert.Equal(t, 2, bk.GuestCount())
	assert.Empty(t, bk.Notes())
}

func TestBooking_UpdateDetails_Guards(t *testing.T) {
	t.Run("non-pending booking", func(t *testing.T) {
		bk := newTestBooking(t, "2026-09-10")
		require.NoError(t, bk.Confirm())

		err := bk.UpdateDetails(3, "", bk.Stay().CheckIn().Add(-72*time.Hour))
		require.Error(t, err)
		assert.Equal(t, domain.CodeInvalidState, domain.CodeOf(err))
	})

	t.Run("within 24 hours of check-in", func(t *testing.T) {
		bk := newTestBooking(t, "2026-09-10")

		err := bk.UpdateDetails(3, "", bk.Stay().CheckIn().Add(-2*time.Hour))
		require.Error(t, err)
		assert.Equal(t, domain.CodeInvalidState, domain.CodeOf(err))
	})

	t.Run("zero guest count", func(t *testing.T) {
		bk := newTestBooking(t, "2026-09-10")

		err := bk.UpdateDetails(0, "", bk.Stay().CheckIn().Add(-72*time.Hour))
		require.Error(t, err)
		assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
	})
}

func TestBooking_PaymentMarks(t *testing.T) {
	bk := newTestBooking(t, "2026-09-10")

	bk.MarkPaid()
	assert.Equal(t, booking.PaymentStatePaid, bk.PaymentState())

	bk.MarkPaymentFailed()
	assert.Equal(t, booking.PaymentStateFailed, bk.PaymentState())

	bk.MarkRefundPending()
	assert.Equal(t, booking.PaymentStateRefundPending, bk.PaymentState())

	bk.MarkRefunded()
	assert.Equal(t, booking.PaymentStateRefunded, bk.PaymentState())
}

func TestBooking_IncrementVersion(t *testing.T) {
	bk := newTestBooking(t, "2026-09-10")
	require.Equal(t, int64(1), bk.Version())

	bk.IncrementVersion()
	assert.Equal(t, int64(2), bk.Version())
}

func TestBooking_IsOwnedBy(t *testing.T) {
	bk := newTestBooking(t, "2026-09-10")
	assert.True(t, bk.IsOwnedBy(bk.UserID()))
	assert.False(t, bk.IsOwnedBy(uuid.New()))
}
