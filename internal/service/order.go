package service

import (
	"context"
	"errors"
	"fmt"

	"digistore/internal/domain"
	"digistore/internal/notify"
	"digistore/internal/repository"

	"go.uber.org/zap"
)

// DashboardPageSize caps the admin order listings
const DashboardPageSize = 10

// Notifier delivers order notifications; failures are reported, never returned as errors
type Notifier interface {
	OrderStatusChanged(ctx context.Context, order *domain.Order) notify.Result
	OrderAwaitingReview(ctx context.Context, order *domain.Order, requester domain.User) notify.Result
}

// OrderService drives the order lifecycle on top of the ledger
type OrderService struct {
	orderRepo repository.OrderRepository
	notifier  Notifier
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo repository.OrderRepository, notifier Notifier, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreateOrder hands a fully priced draft over to the ledger as a pending order
func (s *OrderService) CreateOrder(ctx context.Context, ownerID int64, draft domain.Draft, method domain.PaymentMethod) (*domain.Order, error) {
	if !draft.Kind.Valid() {
		return nil, fmt.Errorf("unknown order kind %q", draft.Kind)
	}
	if draft.Kind.NeedsRecipient() && draft.Recipient == "" {
		return nil, fmt.Errorf("%s order without recipient", draft.Kind)
	}

	order := &domain.Order{
		OwnerID:       ownerID,
		Kind:          draft.Kind,
		Details:       draft.Details(),
		AmountRUB:     draft.Quote.RUB,
		AmountUSD:     draft.Quote.USD,
		PaymentMethod: method,
	}
	if draft.Kind.NeedsRecipient() {
		order.Recipient = draft.Recipient
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", ownerID),
		zap.String("kind", string(order.Kind)),
		zap.Float64("amount_rub", order.AmountRUB),
	)
	return order, nil
}

// GetOrder returns an order by id
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.orderRepo.GetOrder(ctx, orderID)
}

// SubmitPayment records the owner's claim of a completed bank transfer and asks admins to verify it
func (s *OrderService) SubmitPayment(ctx context.Context, requester domain.User, orderID int64) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OwnerID != requester.ID {
		return nil, domain.ErrOrderNotFound
	}

	order, err = s.orderRepo.TransitionOrder(ctx, orderID, domain.StatusWaiting)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment submitted for review",
		zap.Int64("order_id", orderID),
		zap.Int64("user_id", requester.ID),
	)

	res := s.notifier.OrderAwaitingReview(ctx, order, requester)
	s.logNotification(order, res)

	return order, nil
}

// Advance applies an administrator action and notifies the owner on success
func (s *OrderService) Advance(ctx context.Context, orderID int64, action domain.Action) (*domain.Order, error) {
	target := action.Target()
	if target == "" {
		return nil, fmt.Errorf("unknown action %q", action)
	}

	order, err := s.orderRepo.TransitionOrder(ctx, orderID, target)
	if err != nil {
		if !errors.Is(err, domain.ErrOrderNotFound) && !errors.Is(err, domain.ErrIllegalTransition) {
			s.logger.Error("Failed to transition order",
				zap.Int64("order_id", orderID),
				zap.String("target", string(target)),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("Order status changed",
		zap.Int64("order_id", orderID),
		zap.String("status", string(order.Status)),
	)

	res := s.notifier.OrderStatusChanged(ctx, order)
	s.logNotification(order, res)

	return order, nil
}

// ListPendingReview returns the most recent pending and waiting orders
func (s *OrderService) ListPendingReview(ctx context.Context, limit int) ([]domain.Order, error) {
	return s.orderRepo.ListOrdersByStatus(ctx, []domain.Status{domain.StatusPending, domain.StatusWaiting}, limit)
}

// ListAwaitingFulfillment returns the most recent paid orders
func (s *OrderService) ListAwaitingFulfillment(ctx context.Context, limit int) ([]domain.Order, error) {
	return s.orderRepo.ListOrdersByStatus(ctx, []domain.Status{domain.StatusPaid}, limit)
}

func (s *OrderService) logNotification(order *domain.Order, res notify.Result) {
	if res.OK() {
		return
	}
	s.logger.Warn("Notification partially failed",
		zap.Int64("order_id", order.ID),
		zap.Int("attempted", res.Attempted),
		zap.Int("delivered", res.Delivered()),
		zap.Error(res.Err()),
	)
}
