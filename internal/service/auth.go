package service

import (
	"context"

	"digistore/internal/domain"
	"digistore/internal/repository"
)

// AuthService handles user registration and the administrator allow-list
type AuthService struct {
	userRepo repository.UserRepository
	admins   map[int64]struct{}
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, adminIDs []int64) *AuthService {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &AuthService{
		userRepo: userRepo,
		admins:   admins,
	}
}

// IsAdmin checks if user is on the administrator allow-list
func (s *AuthService) IsAdmin(userID int64) bool {
	_, ok := s.admins[userID]
	return ok
}

// Authorize returns domain.ErrUnauthorized for non-administrators
func (s *AuthService) Authorize(userID int64) error {
	if !s.IsAdmin(userID) {
		return domain.ErrUnauthorized
	}
	return nil
}

// EnsureUserExists creates user record if doesn't exist
func (s *AuthService) EnsureUserExists(ctx context.Context, user domain.User) error {
	return s.userRepo.EnsureUserExists(ctx, user)
}
