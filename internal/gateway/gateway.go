package gateway

import (
	"context"

	"github.com/google/uuid"

	"github.com/Serai-Stays/service-reservation/internal/domain/payment"
)

// ChargeRequest asks a vendor to collect payment for a booking.
type ChargeRequest struct {
	PaymentID   uuid.UUID
	BookingID   uuid.UUID
	AmountCents int64
	Currency    string
	Description string
}

// ChargeResult carries the vendor's transaction reference and, for redirect
// flows, the URL the guest completes payment at.
type ChargeResult struct {
	ProviderReference string
	RedirectURL       string
}

// RefundRequest asks a vendor to return a completed charge.
type RefundRequest struct {
	ProviderReference string
	AmountCents       int64
	Currency          string
}

// RefundResult carries the refund's own vendor reference.
type RefundResult struct {
	ProviderReference string
}

// Gateway is one payment vendor adapter.
type Gateway interface {
	// Provider identifies the vendor this adapter talks to.
	Provider() payment.Provider

	// CreateCharge initiates a charge with the vendor.
	CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)

	// Refund returns a completed charge to the guest.
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}
