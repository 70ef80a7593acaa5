package booking

import "fmt"

// PricingStrategy defines the interface for calculating booking totals.
type PricingStrategy interface {
	// Calculate returns the total price in cents for the given parameters.
	Calculate(params PricingParams) (int64, error)
}

// PricingLine is one room line entering the price calculation.
type PricingLine struct {
	UnitPriceCents int64
	Quantity       int
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	Nights int
	Lines  []PricingLine
}

// StandardPricingStrategy implements the default pricing logic for Serai Stays.
type StandardPricingStrategy struct{}

// NewStandardPricingStrategy creates a new StandardPricingStrategy.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{}
}

// Calculate computes the total price in cents (sen for MYR).
//
// Pricing formula:
//   - Each room line: nightly rate x nights x quantity
//   - Booking total: sum of all lines
//
// Rates are snapshotted from the room at booking time, so the result is
// stable against later price changes.
func (s *StandardPricingStrategy) Calculate(params PricingParams) (int64, error) {
	if params.Nights <= 0 {
		return 0, fmt.Errorf("nights must be positive")
	}
	if len(params.Lines) == 0 {
		return 0, fmt.Errorf("at least one room line is required")
	}

	var totalCents int64
	for _, line := range params.Lines {
		if line.Quantity <= 0 {
			return 0, fmt.Errorf("room quantity must be positive")
		}
		if line.UnitPriceCents < 0 {
			return 0, fmt.Errorf("unit price cannot be negative")
		}
		totalCents += line.UnitPriceCents * int64(params.Nights) * int64(line.Quantity)
	}

	return totalCents, nil
}
