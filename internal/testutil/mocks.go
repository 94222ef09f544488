package testutil

import (
	"context"

	"digistore/internal/domain"
	"digistore/internal/notify"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) EnsureUserExists(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockOrderRepository is a mock for OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) TransitionOrder(ctx context.Context, id int64, target domain.Status) (*domain.Order, error) {
	args := m.Called(ctx, id, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOrdersByStatus(ctx context.Context, statuses []domain.Status, limit int) ([]domain.Order, error) {
	args := m.Called(ctx, statuses, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetStats(ctx context.Context) (*domain.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}

// MockNotifier is a mock for the order notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderStatusChanged(ctx context.Context, order *domain.Order) notify.Result {
	args := m.Called(ctx, order)
	return args.Get(0).(notify.Result)
}

func (m *MockNotifier) OrderAwaitingReview(ctx context.Context, order *domain.Order, requester domain.User) notify.Result {
	args := m.Called(ctx, order, requester)
	return args.Get(0).(notify.Result)
}
