package middleware

import (
	"context"
	"strings"
	"time"

	"digistore/internal/domain"
	"digistore/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const registerTimeout = 5 * time.Second

// RegisterUserMiddleware records every sender in the user registry on first sight.
// A registry failure is logged and the update is still handled.
func RegisterUserMiddleware(authService *service.AuthService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(context.Background(), registerTimeout)
			defer cancel()

			user := domain.User{
				ID:          sender.ID,
				Username:    sender.Username,
				DisplayName: strings.TrimSpace(sender.FirstName + " " + sender.LastName),
			}
			if err := authService.EnsureUserExists(ctx, user); err != nil {
				logger.Error("Failed to ensure user exists in middleware",
					zap.Int64("user_id", sender.ID),
					zap.Error(err),
				)
			}

			return next(c)
		}
	}
}
