package payment

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository defines the persistence contract for payments.
type PaymentRepository interface {
	// FindByID retrieves a payment by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByBookingID retrieves all payment rows for a booking, charges and
	// refunds alike, newest first.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Payment, error)

	// FindByProviderReference locates the payment a vendor webhook refers to.
	FindByProviderReference(ctx context.Context, provider Provider, reference string) (*Payment, error)

	// FindCompletedByBookingID retrieves the completed charge for a booking,
	// or a not-found error when the booking was never paid.
	FindCompletedByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error)

	// Save persists a new payment.
	Save(ctx context.Context, payment *Payment) error

	// Update persists changes to an existing payment with optimistic locking.
	Update(ctx context.Context, payment *Payment) error
}
