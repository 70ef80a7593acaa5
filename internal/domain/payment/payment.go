package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/Serai-Stays/service-reservation/internal/domain"
)

// Payment is one payment attempt or refund against a booking. Refunds are new
// rows linked to the original through originalPaymentID; a payment row's
// amount is never mutated after creation.
type Payment struct {
	id                uuid.UUID
	bookingID         uuid.UUID
	provider          Provider
	providerReference string
	status            PaymentStatus
	amountCents       int64
	currency          string
	originalPaymentID *uuid.UUID
	failureReason     string
	paidAt            *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewPayment creates a pending payment attempt for a booking.
func NewPayment(bookingID uuid.UUID, provider Provider, amountCents int64, currency string) (*Payment, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if !provider.IsValid() {
		return nil, domain.NewValidationError("unsupported payment provider: " + string(provider))
	}
	if amountCents <= 0 {
		return nil, domain.NewValidationError("payment amount must be positive")
	}
	if currency == "" {
		currency = domain.CurrencyMYR
	}

	now := time.Now().UTC()
	return &Payment{
		id:          uuid.New(),
		bookingID:   bookingID,
		provider:    provider,
		status:      StatusPending,
		amountCents: amountCents,
		currency:    currency,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// NewRefund creates a pending refund mirroring a completed payment's amount,
// currency and provider. The original row is left untouched.
func NewRefund(original *Payment) (*Payment, error) {
	if original == nil {
		return nil, domain.NewValidationError("original payment is required")
	}
	if original.status != StatusCompleted {
		return nil, domain.NewInvalidStateError(string(original.status), string(StatusRefunded))
	}

	originalID := original.id
	now := time.Now().UTC()
	return &Payment{
		id:                uuid.New(),
		bookingID:         original.bookingID,
		provider:          original.provider,
		status:            StatusPending,
		amountCents:       original.amountCents,
		currency:          original.currency,
		originalPaymentID: &originalID,
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// ReconstructPayment rebuilds a Payment from persistence data (no validation).
func ReconstructPayment(
	id uuid.UUID,
	bookingID uuid.UUID,
	provider Provider,
	providerReference string,
	status PaymentStatus,
	amountCents int64,
	currency string,
	originalPaymentID *uuid.UUID,
	failureReason string,
	paidAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Payment {
	return &Payment{
		id:                id,
		bookingID:         bookingID,
		provider:          provider,
		providerReference: providerReference,
		status:            status,
		amountCents:       amountCents,
		currency:          currency,
		originalPaymentID: originalPaymentID,
		failureReason:     failureReason,
		paidAt:            paidAt,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// --- Getters ---

// ID returns the payment's unique identifier.
func (p *Payment) ID() uuid.UUID { return p.id }

// BookingID returns the booking the payment belongs to.
func (p *Payment) BookingID() uuid.UUID { return p.bookingID }

// Provider returns the payment vendor.
func (p *Payment) Provider() Provider { return p.provider }

// ProviderReference returns the vendor's opaque transaction identifier, or
// empty if the vendor has not been contacted yet.
func (p *Payment) ProviderReference() string { return p.providerReference }

// Status returns the current payment status.
func (p *Payment) Status() PaymentStatus { return p.status }

// AmountCents returns the payment amount in cents.
func (p *Payment) AmountCents() int64 { return p.amountCents }

// Currency returns the currency code.
func (p *Payment) Currency() string { return p.currency }

// OriginalPaymentID returns the refunded payment's ID when this row is a
// refund, or nil for a regular charge.
func (p *Payment) OriginalPaymentID() *uuid.UUID { return p.originalPaymentID }

// FailureReason returns the vendor or gateway failure message, if any.
func (p *Payment) FailureReason() string { return p.failureReason }

// PaidAt returns the completion time, or nil if not completed.
func (p *Payment) PaidAt() *time.Time { return p.paidAt }

// Version returns the entity version for optimistic locking.
func (p *Payment) Version() int64 { return p.version }

// CreatedAt returns the creation timestamp.
func (p *Payment) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (p *Payment) UpdatedAt() time.Time { return p.updatedAt }

// IsRefund reports whether this row refunds another payment.
func (p *Payment) IsRefund() bool { return p.originalPaymentID != nil }

// --- Behavior ---

// MarkProcessing records that the vendor accepted the charge and attaches its
// transaction reference.
func (p *Payment) MarkProcessing(providerReference string) error {
	if !p.status.CanTransitionTo(StatusProcessing) {
		return domain.NewInvalidStateError(string(p.status), string(StatusProcessing))
	}
	if providerReference == "" {
		return domain.NewValidationError("provider reference is required")
	}
	p.status = StatusProcessing
	p.providerReference = providerReference
	p.updatedAt = time.Now().UTC()
	return nil
}

// BeginProcessing records that the row is being handed to the vendor before
// the vendor has answered, so a redelivered refund event can tell "vendor
// already invoked" apart from "never started". The vendor's reference is
// attached once known.
func (p *Payment) BeginProcessing() error {
	if !p.status.CanTransitionTo(StatusProcessing) {
		return domain.NewInvalidStateError(string(p.status), string(StatusProcessing))
	}
	p.status = StatusProcessing
	p.updatedAt = time.Now().UTC()
	return nil
}

// AttachProviderReference records the vendor's transaction identifier. Empty
// references are ignored.
func (p *Payment) AttachProviderReference(reference string) {
	if reference == "" {
		return
	}
	p.providerReference = reference
	p.updatedAt = time.Now().UTC()
}

// Complete transitions the payment to completed.
func (p *Payment) Complete() error {
	if !p.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(p.status), string(StatusCompleted))
	}
	now := time.Now().UTC()
	p.status = StatusCompleted
	p.paidAt = &now
	p.updatedAt = now
	return nil
}

// Fail transitions the payment to failed recording the vendor's reason.
func (p *Payment) Fail(reason string) error {
	if !p.status.CanTransitionTo(StatusFailed) {
		return domain.NewInvalidStateError(string(p.status), string(StatusFailed))
	}
	p.status = StatusFailed
	p.failureReason = reason
	p.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the payment to cancelled before any money moved.
func (p *Payment) Cancel() error {
	if !p.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(p.status), string(StatusCancelled))
	}
	p.status = StatusCancelled
	p.updatedAt = time.Now().UTC()
	return nil
}

// MarkRefunded transitions a completed payment to refunded once its refund
// row settles.
func (p *Payment) MarkRefunded() error {
	if !p.status.CanTransitionTo(StatusRefunded) {
		return domain.NewInvalidStateError(string(p.status), string(StatusRefunded))
	}
	p.status = StatusRefunded
	p.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (p *Payment) IncrementVersion() {
	p.version++
	p.updatedAt = time.Now().UTC()
}
