// Package memory implements the repositories on top of a mutex-guarded map.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"digistore/internal/domain"
)

// Store implements repository.UserRepository and repository.OrderRepository
type Store struct {
	mu     sync.Mutex
	users  map[int64]domain.User
	orders map[int64]*domain.Order
	nextID int64
	now    func() time.Time
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		users:  make(map[int64]domain.User),
		orders: make(map[int64]*domain.Order),
		now:    time.Now,
	}
}

// EnsureUserExists records the user on first sight
func (s *Store) EnsureUserExists(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		user.JoinedAt = s.now()
		s.users[user.ID] = user
	}
	return nil
}

// CreateOrder stores a new pending order
func (s *Store) CreateOrder(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[order.OwnerID]; !ok {
		return fmt.Errorf("create order for user %d: %w", order.OwnerID, domain.ErrUserNotFound)
	}

	s.nextID++
	order.ID = s.nextID
	order.Status = domain.StatusPending
	order.CreatedAt = s.now()
	order.PaidAt = nil
	order.CompletedAt = nil

	stored := *order
	s.orders[order.ID] = &stored
	return nil
}

// GetOrder returns a copy of the order
func (s *Store) GetOrder(_ context.Context, orderID int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	out := *order
	return &out, nil
}

// TransitionOrder checks and applies the status change under the store lock
func (s *Store) TransitionOrder(_ context.Context, orderID int64, target domain.Status) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	updated := *order
	if err := updated.Apply(target, s.now()); err != nil {
		return nil, err
	}
	s.orders[orderID] = &updated

	out := updated
	return &out, nil
}

// ListOrdersByStatus returns matching orders, newest first
func (s *Store) ListOrdersByStatus(_ context.Context, statuses []domain.Status, limit int) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[domain.Status]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}

	var orders []domain.Order
	for _, o := range s.orders {
		if wanted[o.Status] {
			orders = append(orders, *o)
		}
	}

	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

// GetStats aggregates over the stored users and orders
func (s *Store) GetStats(_ context.Context) (*domain.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &domain.Stats{TotalUsers: len(s.users)}
	for _, o := range s.orders {
		switch o.Status {
		case domain.StatusCompleted:
			stats.CompletedOrders++
			stats.CompletedRevenueRUB += o.AmountRUB
		case domain.StatusPending, domain.StatusWaiting:
			stats.PendingOrders++
		case domain.StatusPaid:
			stats.PaidOrders++
		}
	}
	return stats, nil
}
