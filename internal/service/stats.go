package service

import (
	"context"

	"digistore/internal/domain"
	"digistore/internal/repository"

	"go.uber.org/zap"
)

// StatsService computes dashboard statistics
type StatsService struct {
	orderRepo repository.OrderRepository
	logger    *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(orderRepo repository.OrderRepository, logger *zap.Logger) *StatsService {
	return &StatsService{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// GetStats recomputes the aggregates on every call
func (s *StatsService) GetStats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.orderRepo.GetStats(ctx)
	if err != nil {
		s.logger.Error("Failed to compute stats", zap.Error(err))
		return nil, err
	}
	return stats, nil
}
