package booking

// PaymentState tracks the booking-level payment position. The per-attempt
// detail lives on Payment rows; this is the rolled-up view shown to guests.
type PaymentState string

const (
	PaymentStateUnpaid        PaymentState = "unpaid"
	PaymentStatePaid          PaymentState = "paid"
	PaymentStateFailed        PaymentState = "failed"
	PaymentStateRefundPending PaymentState = "refund_pending"
	PaymentStateRefunded      PaymentState = "refunded"
)

// IsValid returns true if the payment state is recognized.
func (p PaymentState) IsValid() bool {
	switch p {
	case PaymentStateUnpaid, PaymentStatePaid, PaymentStateFailed,
		PaymentStateRefundPending, PaymentStateRefunded:
		return true
	}
	return false
}

// String returns the string representation of the payment state.
func (p PaymentState) String() string {
	return string(p)
}
