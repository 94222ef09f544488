package service

import (
	"context"
	"errors"
	"testing"

	"digistore/internal/domain"
	"digistore/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestAuthService_IsAdmin(t *testing.T) {
	tests := []struct {
		name           string
		admins         []int64
		userID         int64
		expectedResult bool
	}{
		{
			name:           "configured admin",
			admins:         []int64{1, 2},
			userID:         2,
			expectedResult: true,
		},
		{
			name:           "regular user",
			admins:         []int64{1, 2},
			userID:         3,
			expectedResult: false,
		},
		{
			name:           "empty allow-list",
			admins:         nil,
			userID:         1,
			expectedResult: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(testutil.MockUserRepository)
			service := NewAuthService(mockRepo, tt.admins)

			assert.Equal(t, tt.expectedResult, service.IsAdmin(tt.userID))

			err := service.Authorize(tt.userID)
			if tt.expectedResult {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
			}
		})
	}
}

func TestAuthService_EnsureUserExists(t *testing.T) {
	user := testutil.NewTestUser(123, "alice")

	mockRepo := new(testutil.MockUserRepository)
	mockRepo.On("EnsureUserExists", context.Background(), user).Return(nil)

	service := NewAuthService(mockRepo, nil)

	err := service.EnsureUserExists(context.Background(), user)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_EnsureUserExists_Error(t *testing.T) {
	user := testutil.NewTestUser(123, "alice")

	mockRepo := new(testutil.MockUserRepository)
	mockRepo.On("EnsureUserExists", context.Background(), user).Return(errors.New("db down"))

	service := NewAuthService(mockRepo, nil)

	err := service.EnsureUserExists(context.Background(), user)

	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}
