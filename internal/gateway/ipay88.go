package gateway

import (
	"context"

	"go.uber.org/zap"

	"github.com/Serai-Stays/service-reservation/internal/domain/payment"
)

// IPay88Gateway collects payment through the iPay88 Malaysian aggregator.
type IPay88Gateway struct {
	client *client
}

// NewIPay88Gateway creates the iPay88 adapter.
func NewIPay88Gateway(apiKey string, logger *zap.Logger) *IPay88Gateway {
	return &IPay88Gateway{
		client: newClient("ipay88", "https://payment.ipay88.com.my/api/v1", apiKey, logger),
	}
}

// Provider identifies this adapter as iPay88.
func (g *IPay88Gateway) Provider() payment.Provider {
	return payment.ProviderIPay88
}

// CreateCharge initiates an iPay88 payment entry.
func (g *IPay88Gateway) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body := map[string]interface{}{
		"amount":   req.AmountCents,
		"currency": req.Currency,
		"ref_no":   req.PaymentID.String(),
		"remark":   req.Description,
	}

	var res struct {
		TransID    string `json:"trans_id"`
		PaymentURL string `json:"payment_url"`
	}
	if err := g.client.post(ctx, "/entry", body, &res); err != nil {
		return nil, err
	}

	return &ChargeResult{ProviderReference: res.TransID, RedirectURL: res.PaymentURL}, nil
}

// Refund reverses a settled iPay88 transaction.
func (g *IPay88Gateway) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	body := map[string]interface{}{
		"trans_id": req.ProviderReference,
		"amount":   req.AmountCents,
	}

	var res struct {
		RefundID string `json:"refund_id"`
	}
	if err := g.client.post(ctx, "/refund", body, &res); err != nil {
		return nil, err
	}

	return &RefundResult{ProviderReference: res.RefundID}, nil
}
