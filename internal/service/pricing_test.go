package service

import (
	"testing"

	"digistore/internal/domain"
	"digistore/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestPricer_Stars(t *testing.T) {
	pricer := NewPricer(testutil.NewTestPriceList())

	tests := []struct {
		name          string
		quantity      int
		expectedRUB   float64
		expectedUSD   float64
		expectedError bool
	}{
		{name: "lower bound", quantity: 50, expectedRUB: 75, expectedUSD: 75 / 84.0},
		{name: "hundred stars", quantity: 100, expectedRUB: 150, expectedUSD: 1.7857},
		{name: "upper bound", quantity: 1_000_000, expectedRUB: 1_500_000, expectedUSD: 1_500_000 / 84.0},
		{name: "below minimum", quantity: 49, expectedError: true},
		{name: "above maximum", quantity: 1_000_001, expectedError: true},
		{name: "zero", quantity: 0, expectedError: true},
		{name: "negative", quantity: -100, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := pricer.Stars(tt.quantity)

			if tt.expectedError {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
			assert.InDelta(t, tt.expectedRUB, quote.RUB, 1e-9)
			assert.InDelta(t, tt.expectedUSD, quote.USD, 1e-4)
		})
	}
}

func TestPricer_Stars_Deterministic(t *testing.T) {
	pricer := NewPricer(testutil.NewTestPriceList())

	first, err := pricer.Stars(777)
	assert.NoError(t, err)
	second, err := pricer.Stars(777)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPricer_Premium(t *testing.T) {
	pricer := NewPricer(testutil.NewTestPriceList())

	quote, err := pricer.Premium("3months")
	assert.NoError(t, err)
	assert.Equal(t, domain.Quote{RUB: 1124.11, USD: 14.12}, quote)

	quote, err = pricer.Premium("1year")
	assert.NoError(t, err)
	assert.Equal(t, domain.Quote{RUB: 2716.59, USD: 34.12}, quote)

	_, err = pricer.Premium("2weeks")
	assert.ErrorIs(t, err, domain.ErrUnknownPeriod)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPricer_Exchange(t *testing.T) {
	pricer := NewPricer(testutil.NewTestPriceList())

	tests := []struct {
		name          string
		amount        float64
		expectedUSD   float64
		expectedError bool
	}{
		{name: "minimum", amount: 100, expectedUSD: 1.1905},
		{name: "fractional", amount: 168.5, expectedUSD: 168.5 / 84.0},
		{name: "below minimum", amount: 50, expectedError: true},
		{name: "just below minimum", amount: 99.99, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := pricer.Exchange(tt.amount)

			if tt.expectedError {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.amount, quote.RUB)
			assert.InDelta(t, tt.expectedUSD, quote.USD, 1e-4)
		})
	}
}
