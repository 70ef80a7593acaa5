package payment

import (
	"fmt"

	"github.com/Serai-Stays/service-reservation/internal/domain"
)

// Provider identifies a supported payment vendor.
type Provider string

const (
	ProviderStripe  Provider = "stripe"
	ProviderBillplz Provider = "billplz"
	ProviderIPay88  Provider = "ipay88"
)

// IsValid returns true if the provider is one of the supported vendors.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderStripe, ProviderBillplz, ProviderIPay88:
		return true
	}
	return false
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// ParseProvider converts a string to a Provider, failing on unknown vendors.
func ParseProvider(s string) (Provider, error) {
	provider := Provider(s)
	if !provider.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("unsupported payment provider: %s", s))
	}
	return provider, nil
}
