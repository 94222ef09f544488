package testutil

import (
	"time"

	"digistore/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestPriceList returns the default storefront prices
func NewTestPriceList() domain.PriceList {
	return domain.PriceList{
		StarRate: 1.5,
		USDRate:  84.0,
		Premium: map[string]domain.PremiumPrice{
			"3months": {Name: "3 месяца", RUB: 1124.11, USD: 14.12},
			"6months": {Name: "6 месяцев", RUB: 1498.81, USD: 14.12},
			"1year":   {Name: "1 год", RUB: 2716.59, USD: 34.12},
		},
		PremiumOrder: []string{"3months", "6months", "1year"},
	}
}

// NewTestUser creates a test user
func NewTestUser(userID int64, username string) domain.User {
	return domain.User{
		ID:          userID,
		Username:    username,
		DisplayName: "Test User",
		JoinedAt:    time.Now(),
	}
}

// NewTestOrder creates a test stars order in the given status
func NewTestOrder(id, ownerID int64, status domain.Status) *domain.Order {
	return &domain.Order{
		ID:            id,
		OwnerID:       ownerID,
		Kind:          domain.KindStars,
		Recipient:     "friend",
		Details:       domain.StarsDetails{Quantity: 100},
		AmountRUB:     150,
		AmountUSD:     150 / 84.0,
		PaymentMethod: domain.PaymentCard,
		Status:        status,
		CreatedAt:     time.Now(),
	}
}
