package service

import (
	"context"

	"digistore/internal/domain"

	"go.uber.org/zap"
)

// AdminService is the administrator verification workflow.
// Every method checks the caller against the allow-list before touching the ledger.
type AdminService struct {
	auth   *AuthService
	orders *OrderService
	stats  *StatsService
	logger *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(auth *AuthService, orders *OrderService, stats *StatsService, logger *zap.Logger) *AdminService {
	return &AdminService{
		auth:   auth,
		orders: orders,
		stats:  stats,
		logger: logger,
	}
}

func (s *AdminService) authorize(callerID int64, op string) error {
	if err := s.auth.Authorize(callerID); err != nil {
		s.logger.Warn("Admin operation denied",
			zap.Int64("user_id", callerID),
			zap.String("operation", op),
		)
		return err
	}
	return nil
}

// Inspect returns the order and the actions valid for its current status
func (s *AdminService) Inspect(ctx context.Context, callerID, orderID int64) (*domain.Order, []domain.Action, error) {
	if err := s.authorize(callerID, "check"); err != nil {
		return nil, nil, err
	}
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, order.Status.NextActions(), nil
}

// Apply runs an administrator action against an order
func (s *AdminService) Apply(ctx context.Context, callerID, orderID int64, action domain.Action) (*domain.Order, error) {
	if err := s.authorize(callerID, string(action)); err != nil {
		return nil, err
	}
	order, err := s.orders.Advance(ctx, orderID, action)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Admin action applied",
		zap.Int64("admin_id", callerID),
		zap.Int64("order_id", orderID),
		zap.String("action", string(action)),
	)
	return order, nil
}

// ConfirmPayment moves a waiting order to paid
func (s *AdminService) ConfirmPayment(ctx context.Context, callerID, orderID int64) (*domain.Order, error) {
	return s.Apply(ctx, callerID, orderID, domain.ActionConfirm)
}

// Complete moves a paid order to completed
func (s *AdminService) Complete(ctx context.Context, callerID, orderID int64) (*domain.Order, error) {
	return s.Apply(ctx, callerID, orderID, domain.ActionComplete)
}

// Cancel cancels a non-terminal order
func (s *AdminService) Cancel(ctx context.Context, callerID, orderID int64) (*domain.Order, error) {
	return s.Apply(ctx, callerID, orderID, domain.ActionCancel)
}

// PendingReview lists orders awaiting payment verification
func (s *AdminService) PendingReview(ctx context.Context, callerID int64) ([]domain.Order, error) {
	if err := s.authorize(callerID, "pending"); err != nil {
		return nil, err
	}
	return s.orders.ListPendingReview(ctx, DashboardPageSize)
}

// AwaitingFulfillment lists paid orders that still have to be delivered
func (s *AdminService) AwaitingFulfillment(ctx context.Context, callerID int64) ([]domain.Order, error) {
	if err := s.authorize(callerID, "paid"); err != nil {
		return nil, err
	}
	return s.orders.ListAwaitingFulfillment(ctx, DashboardPageSize)
}

// Stats returns the aggregate dashboard numbers
func (s *AdminService) Stats(ctx context.Context, callerID int64) (*domain.Stats, error) {
	if err := s.authorize(callerID, "stats"); err != nil {
		return nil, err
	}
	return s.stats.GetStats(ctx)
}
