package service

import (
	"fmt"

	"digistore/internal/domain"
)

const (
	MinStars       = 50
	MaxStars       = 1_000_000
	MinExchangeRUB = 100.0
)

// Pricer computes order amounts from the static price list
type Pricer struct {
	prices domain.PriceList
}

// NewPricer creates a new pricer
func NewPricer(prices domain.PriceList) *Pricer {
	return &Pricer{prices: prices}
}

// Prices returns the price list the pricer works with
func (p *Pricer) Prices() domain.PriceList {
	return p.prices
}

// Stars prices a quantity of stars
func (p *Pricer) Stars(quantity int) (domain.Quote, error) {
	if quantity < MinStars || quantity > MaxStars {
		return domain.Quote{}, domain.NewInputError(
			fmt.Sprintf("количество звезд должно быть от %d до %d", MinStars, MaxStars),
		)
	}
	rub := float64(quantity) * p.prices.StarRate
	return domain.Quote{RUB: rub, USD: rub / p.prices.USDRate}, nil
}

// Premium looks up the price of a premium period.
// An unknown period is a deployment defect, not bad user input.
func (p *Pricer) Premium(period string) (domain.Quote, error) {
	price, ok := p.prices.Premium[period]
	if !ok {
		return domain.Quote{}, fmt.Errorf("%w: %q", domain.ErrUnknownPeriod, period)
	}
	return domain.Quote{RUB: price.RUB, USD: price.USD}, nil
}

// Exchange converts a RUB amount to USD
func (p *Pricer) Exchange(amountRUB float64) (domain.Quote, error) {
	if amountRUB < MinExchangeRUB {
		return domain.Quote{}, domain.NewInputError(fmt.Sprintf("минимум %.0f RUB", MinExchangeRUB))
	}
	return domain.Quote{RUB: amountRUB, USD: amountRUB / p.prices.USDRate}, nil
}
