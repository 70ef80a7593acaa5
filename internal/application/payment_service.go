package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/audit"
	"github.com/Serai-Stays/service-reservation/internal/domain/booking"
	"github.com/Serai-Stays/service-reservation/internal/domain/notification"
	"github.com/Serai-Stays/service-reservation/internal/domain/payment"
	"github.com/Serai-Stays/service-reservation/internal/domain/store"
	"github.com/Serai-Stays/service-reservation/internal/events"
	"github.com/Serai-Stays/service-reservation/internal/gateway"
)

// Webhook statuses the vendor adapters normalize to.
const (
	webhookStatusCompleted = "completed"
	webhookStatusFailed    = "failed"
)

// InitiatePaymentRequest selects the vendor to charge through.
type InitiatePaymentRequest struct {
	Provider string `json:"provider" binding:"required"`
}

// WebhookRequest is the normalized vendor callback payload.
type WebhookRequest struct {
	Reference string `json:"reference" binding:"required"`
	Status    string `json:"status" binding:"required"`
	Reason    string `json:"reason"`
}

// PaymentDTO is the response representation of a payment row.
type PaymentDTO struct {
	ID                uuid.UUID  `json:"id"`
	BookingID         uuid.UUID  `json:"booking_id"`
	Provider          string     `json:"provider"`
	ProviderReference string     `json:"provider_reference,omitempty"`
	Status            string     `json:"status"`
	AmountCents       int64      `json:"amount_cents"`
	Currency          string     `json:"currency"`
	OriginalPaymentID *uuid.UUID `json:"original_payment_id,omitempty"`
	FailureReason     string     `json:"failure_reason,omitempty"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// PaymentInitiatedDTO carries the created payment and the vendor's checkout
// redirect.
type PaymentInitiatedDTO struct {
	Payment     PaymentDTO `json:"payment"`
	RedirectURL string     `json:"redirect_url,omitempty"`
}

// PaymentService orchestrates charges, vendor webhooks and refunds.
type PaymentService struct {
	store    store.Store
	gateways *gateway.Registry
	notifier notification.Notifier
	producer EventPublisher
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	st store.Store,
	gateways *gateway.Registry,
	notifier notification.Notifier,
	producer EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		store:    st,
		gateways: gateways,
		notifier: notifier,
		producer: producer,
		logger:   logger,
	}
}

// InitiatePayment charges the booking's total through the chosen vendor and
// returns the vendor's checkout redirect. Only a pending, unpaid (or
// previously failed) booking is payable.
func (s *PaymentService) InitiatePayment(ctx context.Context, bookingID, userID uuid.UUID, req InitiatePaymentRequest) (*PaymentInitiatedDTO, error) {
	provider, err := payment.ParseProvider(req.Provider)
	if err != nil {
		return nil, err
	}
	gw, err := s.gateways.Get(provider)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("payment provider %s is not available", provider))
	}

	repos := s.store.Repos()
	bk, err := repos.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(userID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	if bk.Status() != booking.StatusPending {
		return nil, domain.NewPaymentNotPayableError(fmt.Sprintf("booking in status %s cannot be paid", bk.Status()))
	}
	switch bk.PaymentState() {
	case booking.PaymentStateUnpaid, booking.PaymentStateFailed:
	default:
		return nil, domain.NewPaymentNotPayableError(fmt.Sprintf("booking payment state is %s", bk.PaymentState()))
	}

	pay, err := payment.NewPayment(bookingID, provider, bk.TotalAmountCents(), bk.Currency())
	if err != nil {
		return nil, err
	}
	if err := repos.Payments.Save(ctx, pay); err != nil {
		return nil, err
	}

	res, err := gw.CreateCharge(ctx, gateway.ChargeRequest{
		PaymentID:   pay.ID(),
		BookingID:   bookingID,
		AmountCents: pay.AmountCents(),
		Currency:    pay.Currency(),
		Description: fmt.Sprintf("Serai Stays booking %s", bk.BookingNumber()),
	})
	if err != nil {
		if failErr := pay.Fail(err.Error()); failErr == nil {
			pay.IncrementVersion()
			if updateErr := repos.Payments.Update(ctx, pay); updateErr != nil {
				s.logger.Error("failed to record charge failure",
					zap.String("payment_id", pay.ID().String()),
					zap.Error(updateErr),
				)
			}
		}
		return nil, err
	}

	if err := pay.MarkProcessing(res.ProviderReference); err != nil {
		return nil, err
	}
	pay.IncrementVersion()
	if err := repos.Payments.Update(ctx, pay); err != nil {
		return nil, err
	}

	return &PaymentInitiatedDTO{
		Payment:     toPaymentDTO(pay),
		RedirectURL: res.RedirectURL,
	}, nil
}

// ListPayments retrieves a booking's payment rows, newest first. Non-admin
// callers only see their own bookings'.
func (s *PaymentService) ListPayments(ctx context.Context, bookingID, requesterID uuid.UUID, admin bool) ([]PaymentDTO, error) {
	repos := s.store.Repos()
	bk, err := repos.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !admin && !bk.IsOwnedBy(requesterID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	payments, err := repos.Payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, pay := range payments {
		dtos[i] = toPaymentDTO(pay)
	}
	return dtos, nil
}

// HandleWebhook settles the payment row a vendor callback refers to and puts
// the outcome on the bus. Duplicate deliveries are acknowledged without
// re-processing.
func (s *PaymentService) HandleWebhook(ctx context.Context, providerName string, req WebhookRequest) error {
	provider, err := payment.ParseProvider(providerName)
	if err != nil {
		return err
	}

	pay, err := s.store.Repos().Payments.FindByProviderReference(ctx, provider, req.Reference)
	if err != nil {
		return err
	}

	switch req.Status {
	case webhookStatusCompleted:
		if pay.Status() == payment.StatusCompleted {
			return nil
		}
		if err := pay.Complete(); err != nil {
			return err
		}
		pay.IncrementVersion()
		if err := s.store.Repos().Payments.Update(ctx, pay); err != nil {
			return err
		}

		evt := events.PaymentCompletedEvent{
			PaymentID:   pay.ID(),
			BookingID:   pay.BookingID(),
			Provider:    pay.Provider().String(),
			AmountCents: pay.AmountCents(),
			Currency:    pay.Currency(),
			OccurredAt:  time.Now().UTC(),
		}
		publishEvent(ctx, s.producer, s.logger, events.TopicPaymentEvents, events.PaymentCompleted, evt)
		return nil

	case webhookStatusFailed:
		if pay.Status() == payment.StatusFailed {
			return nil
		}
		if err := pay.Fail(req.Reason); err != nil {
			return err
		}
		pay.IncrementVersion()
		if err := s.store.Repos().Payments.Update(ctx, pay); err != nil {
			return err
		}

		evt := events.PaymentFailedEvent{
			PaymentID:  pay.ID(),
			BookingID:  pay.BookingID(),
			Provider:   pay.Provider().String(),
			Reason:     req.Reason,
			OccurredAt: time.Now().UTC(),
		}
		publishEvent(ctx, s.producer, s.logger, events.TopicPaymentEvents, events.PaymentFailed, evt)
		return nil

	default:
		return domain.NewValidationError(fmt.Sprintf("unsupported webhook status %q", req.Status))
	}
}

// HandlePaymentCompleted confirms the paid booking. Consumed off the payment
// topic; re-deliveries for an already-confirmed booking are no-ops.
func (s *PaymentService) HandlePaymentCompleted(ctx context.Context, evt events.PaymentCompletedEvent) error {
	var bk *booking.Booking
	confirmed := false

	err := s.store.Transaction(ctx, func(tx store.Repositories) error {
		var err error
		bk, err = tx.Bookings.FindByID(ctx, evt.BookingID)
		if err != nil {
			return err
		}
		if bk.Status() != booking.StatusPending {
			return nil
		}

		if err := bk.Confirm(); err != nil {
			return err
		}
		bk.MarkPaid()
		bk.IncrementVersion()
		if err := tx.Bookings.Update(ctx, bk); err != nil {
			return err
		}

		entry, err := audit.NewEntry(bk.UserID(), bk.ID(), audit.ActionStatusChanged,
			booking.StatusPending.String(), bk.Status().String())
		if err != nil {
			return err
		}
		if err := tx.Audit.Save(ctx, entry); err != nil {
			return err
		}
		confirmed = true
		return nil
	})
	if err != nil || !confirmed {
		return err
	}

	bookingID := bk.ID()
	s.notifier.Notify(ctx, bk.UserID(), &bookingID, notification.TypePaymentReceived,
		fmt.Sprintf("Payment received, booking %s is confirmed", bk.BookingNumber()))

	statusEvt := events.BookingStatusChangedEvent{
		BookingID:  bk.ID(),
		FromStatus: booking.StatusPending.String(),
		ToStatus:   bk.Status().String(),
		ActorID:    bk.UserID(),
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicBookingEvents, events.BookingStatusChanged, statusEvt)
	return nil
}

// HandlePaymentFailed flags the booking's payment state so the guest can retry.
func (s *PaymentService) HandlePaymentFailed(ctx context.Context, evt events.PaymentFailedEvent) error {
	repos := s.store.Repos()
	bk, err := repos.Bookings.FindByID(ctx, evt.BookingID)
	if err != nil {
		return err
	}
	if bk.PaymentState() == booking.PaymentStateFailed {
		return nil
	}

	bk.MarkPaymentFailed()
	bk.IncrementVersion()
	if err := repos.Bookings.Update(ctx, bk); err != nil {
		return err
	}

	bookingID := bk.ID()
	s.notifier.Notify(ctx, bk.UserID(), &bookingID, notification.TypePaymentFailed,
		fmt.Sprintf("Payment for booking %s failed, please try again", bk.BookingNumber()))
	return nil
}

// ExecuteRefund sends a queued refund to the vendor and settles the refund
// row, the original charge and the booking's payment state. Re-deliveries for
// a settled refund are no-ops: the refund row is persisted as processing
// before the vendor is contacted, so a redelivered event never hands the same
// refund to the vendor twice, and the settlement writes run in one store
// transaction so a partial settlement can only be retried, never stranded.
func (s *PaymentService) ExecuteRefund(ctx context.Context, evt events.RefundRequestedEvent) error {
	repos := s.store.Repos()
	refund, err := repos.Payments.FindByID(ctx, evt.RefundID)
	if err != nil {
		return err
	}

	switch refund.Status() {
	case payment.StatusPending:
		// Not yet handed to the vendor; proceed below.
	case payment.StatusProcessing, payment.StatusCompleted:
		// The vendor was already invoked on an earlier delivery; only the
		// settlement writes may be outstanding.
		return s.settleRefund(ctx, evt, "")
	default:
		return nil
	}

	original, err := repos.Payments.FindByID(ctx, evt.OriginalPaymentID)
	if err != nil {
		return err
	}

	gw, err := s.gateways.Get(refund.Provider())
	if err != nil {
		return err
	}

	// Persist the in-flight marker before contacting the vendor.
	if err := refund.BeginProcessing(); err != nil {
		return err
	}
	refund.IncrementVersion()
	if err := repos.Payments.Update(ctx, refund); err != nil {
		return err
	}

	res, err := gw.Refund(ctx, gateway.RefundRequest{
		ProviderReference: original.ProviderReference(),
		AmountCents:       refund.AmountCents(),
		Currency:          refund.Currency(),
	})
	if err != nil {
		if failErr := refund.Fail(err.Error()); failErr == nil {
			refund.IncrementVersion()
			if updateErr := repos.Payments.Update(ctx, refund); updateErr != nil {
				s.logger.Error("failed to record refund failure",
					zap.String("refund_id", refund.ID().String()),
					zap.Error(updateErr),
				)
			}
		}
		return err
	}

	return s.settleRefund(ctx, evt, res.ProviderReference)
}

// settleRefund completes the refund row, marks the original charge refunded
// and flips the booking's payment state, all inside one transaction. Each
// write is skipped once its row has already settled, so the method converges
// under redelivery and notifies the guest at most once.
func (s *PaymentService) settleRefund(ctx context.Context, evt events.RefundRequestedEvent, providerRef string) error {
	var bk *booking.Booking
	settled := false

	err := s.store.Transaction(ctx, func(tx store.Repositories) error {
		refund, err := tx.Payments.FindByID(ctx, evt.RefundID)
		if err != nil {
			return err
		}
		if refund.Status() != payment.StatusCompleted {
			refund.AttachProviderReference(providerRef)
			if err := refund.Complete(); err != nil {
				return err
			}
			refund.IncrementVersion()
			if err := tx.Payments.Update(ctx, refund); err != nil {
				return err
			}
			settled = true
		}

		original, err := tx.Payments.FindByID(ctx, evt.OriginalPaymentID)
		if err != nil {
			return err
		}
		if original.Status() != payment.StatusRefunded {
			if err := original.MarkRefunded(); err != nil {
				return err
			}
			original.IncrementVersion()
			if err := tx.Payments.Update(ctx, original); err != nil {
				return err
			}
			settled = true
		}

		bk, err = tx.Bookings.FindByID(ctx, refund.BookingID())
		if err != nil {
			return err
		}
		if bk.PaymentState() != booking.PaymentStateRefunded {
			bk.MarkRefunded()
			bk.IncrementVersion()
			if err := tx.Bookings.Update(ctx, bk); err != nil {
				return err
			}
			settled = true
		}
		return nil
	})
	if err != nil || !settled {
		return err
	}

	bookingID := bk.ID()
	s.notifier.Notify(ctx, bk.UserID(), &bookingID, notification.TypeRefundCompleted,
		fmt.Sprintf("Your refund for booking %s has been processed", bk.BookingNumber()))
	return nil
}

// --- Helpers ---

func toPaymentDTO(pay *payment.Payment) PaymentDTO {
	return PaymentDTO{
		ID:                pay.ID(),
		BookingID:         pay.BookingID(),
		Provider:          pay.Provider().String(),
		ProviderReference: pay.ProviderReference(),
		Status:            pay.Status().String(),
		AmountCents:       pay.AmountCents(),
		Currency:          pay.Currency(),
		OriginalPaymentID: pay.OriginalPaymentID(),
		FailureReason:     pay.FailureReason(),
		PaidAt:            pay.PaidAt(),
		CreatedAt:         pay.CreatedAt(),
		UpdatedAt:         pay.UpdatedAt(),
	}
}
