package repository

import (
	"context"

	"digistore/internal/domain"
)

// UserRepository defines user data operations
type UserRepository interface {
	EnsureUserExists(ctx context.Context, user domain.User) error
}

// OrderRepository defines order ledger operations
type OrderRepository interface {
	// CreateOrder stores a new pending order and fills in ID, Status and CreatedAt
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	// TransitionOrder atomically moves the order to target if its current status allows it
	// and returns the updated order. Fails with domain.ErrOrderNotFound or a *domain.TransitionError.
	TransitionOrder(ctx context.Context, orderID int64, target domain.Status) (*domain.Order, error)
	// ListOrdersByStatus returns the most recent orders first
	ListOrdersByStatus(ctx context.Context, statuses []domain.Status, limit int) ([]domain.Order, error)
	GetStats(ctx context.Context) (*domain.Stats, error)
}
