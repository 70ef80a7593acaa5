package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Serai-Stays/service-reservation/internal/domain/booking"
)

func TestStandardPricingStrategy_Calculate(t *testing.T) {
	strategy := booking.NewStandardPricingStrategy()

	total, err := strategy.Calculate(booking.PricingParams{
		Nights: 3,
		Lines: []booking.PricingLine{
			{UnitPriceCents: 20000, Quantity: 2}, // 120000
			{UnitPriceCents: 35000, Quantity: 1}, // 105000
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(225000), total)
}

func TestStandardPricingStrategy_SingleNightSingleRoom(t *testing.T) {
	strategy := booking.NewStandardPricingStrategy()

	total, err := strategy.Calculate(booking.PricingParams{
		Nights: 1,
		Lines:  []booking.PricingLine{{UnitPriceCents: 9900, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9900), total)
}

func TestStandardPricingStrategy_Validation(t *testing.T) {
	strategy := booking.NewStandardPricingStrategy()

	_, err := strategy.Calculate(booking.PricingParams{Nights: 0, Lines: []booking.PricingLine{{UnitPriceCents: 100, Quantity: 1}}})
	assert.ErrorContains(t, err, "nights must be positive")

	_, err = strategy.Calculate(booking.PricingParams{Nights: 2})
	assert.ErrorContains(t, err, "at least one room line is required")

	_, err = strategy.Calculate(booking.PricingParams{Nights: 2, Lines: []booking.PricingLine{{UnitPriceCents: 100, Quantity: 0}}})
	assert.ErrorContains(t, err, "room quantity must be positive")

	_, err = strategy.Calculate(booking.PricingParams{Nights: 2, Lines: []booking.PricingLine{{UnitPriceCents: -5, Quantity: 1}}})
	assert.ErrorContains(t, err, "unit price cannot be negative")
}
