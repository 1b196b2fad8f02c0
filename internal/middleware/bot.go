package middleware

import (
	"context"
	"time"

	"dailyhub/internal/initdata"
	"dailyhub/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// EnsureUser records every human sender before the bot handles the update
func EnsureUser(authService *service.AuthService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || sender.IsBot {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_, err := authService.EnsureTelegramUser(ctx, initdata.TelegramUser{
				ID:        sender.ID,
				FirstName: sender.FirstName,
				Username:  sender.Username,
			})
			if err != nil {
				logger.Error("Failed to ensure user exists in middleware",
					zap.Int64("telegram_id", sender.ID),
					zap.Error(err),
				)
				return c.Send("Something went wrong. Please try again later.")
			}

			return next(c)
		}
	}
}
