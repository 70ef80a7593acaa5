package gateway

import (
	"context"

	"go.uber.org/zap"

	"github.com/Serai-Stays/service-reservation/internal/domain/payment"
)

// BillplzGateway collects payment through Billplz bills (FPX bank transfer).
type BillplzGateway struct {
	client *client
}

// NewBillplzGateway creates the Billplz adapter.
func NewBillplzGateway(apiKey string, logger *zap.Logger) *BillplzGateway {
	return &BillplzGateway{
		client: newClient("billplz", "https://www.billplz.com/api/v3", apiKey, logger),
	}
}

// Provider identifies this adapter as Billplz.
func (g *BillplzGateway) Provider() payment.Provider {
	return payment.ProviderBillplz
}

// CreateCharge creates a Billplz bill the guest pays via bank transfer.
func (g *BillplzGateway) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body := map[string]interface{}{
		"amount":      req.AmountCents,
		"description": req.Description,
		"reference_1": req.BookingID.String(),
		"reference_2": req.PaymentID.String(),
	}

	var res struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := g.client.post(ctx, "/bills", body, &res); err != nil {
		return nil, err
	}

	return &ChargeResult{ProviderReference: res.ID, RedirectURL: res.URL}, nil
}

// Refund reverses a paid Billplz bill.
func (g *BillplzGateway) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	body := map[string]interface{}{
		"bill_id": req.ProviderReference,
		"amount":  req.AmountCents,
	}

	var res struct {
		ID string `json:"id"`
	}
	if err := g.client.post(ctx, "/refunds", body, &res); err != nil {
		return nil, err
	}

	return &RefundResult{ProviderReference: res.ID}, nil
}
