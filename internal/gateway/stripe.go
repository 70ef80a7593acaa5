package gateway

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Serai-Stays/service-reservation/internal/domain/payment"
)

// StripeGateway charges cards through Stripe's PaymentIntents API.
type StripeGateway struct {
	client *client
}

// NewStripeGateway creates the Stripe adapter.
func NewStripeGateway(apiKey string, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{
		client: newClient("stripe", "https://api.stripe.com/v1", apiKey, logger),
	}
}

// Provider identifies this adapter as Stripe.
func (g *StripeGateway) Provider() payment.Provider {
	return payment.ProviderStripe
}

// CreateCharge initiates a Stripe payment intent.
func (g *StripeGateway) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body := map[string]interface{}{
		"amount":      req.AmountCents,
		"currency":    strings.ToLower(req.Currency),
		"description": req.Description,
		"metadata": map[string]string{
			"booking_id": req.BookingID.String(),
			"payment_id": req.PaymentID.String(),
		},
	}

	var res struct {
		ID          string `json:"id"`
		RedirectURL string `json:"url"`
	}
	if err := g.client.post(ctx, "/payment_intents", body, &res); err != nil {
		return nil, err
	}

	return &ChargeResult{ProviderReference: res.ID, RedirectURL: res.RedirectURL}, nil
}

// Refund returns a completed Stripe charge.
func (g *StripeGateway) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	body := map[string]interface{}{
		"payment_intent": req.ProviderReference,
		"amount":         req.AmountCents,
	}

	var res struct {
		ID string `json:"id"`
	}
	if err := g.client.post(ctx, "/refunds", body, &res); err != nil {
		return nil, err
	}

	return &RefundResult{ProviderReference: res.ID}, nil
}
