package gateway

import (
	"fmt"

	"github.com/Serai-Stays/service-reservation/internal/domain/payment"
)

// Registry resolves a payment provider to its gateway adapter.
type Registry struct {
	gateways map[payment.Provider]Gateway
}

// NewRegistry builds a registry from the given adapters.
func NewRegistry(gateways ...Gateway) *Registry {
	m := make(map[payment.Provider]Gateway, len(gateways))
	for _, g := range gateways {
		m[g.Provider()] = g
	}
	return &Registry{gateways: m}
}

// Get returns the adapter for the provider.
func (r *Registry) Get(provider payment.Provider) (Gateway, error) {
	g, ok := r.gateways[provider]
	if !ok {
		return nil, fmt.Errorf("no gateway registered for provider %s", provider)
	}
	return g, nil
}
