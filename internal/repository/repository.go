package repository

import (
	"context"

	"dailyhub/internal/domain"
	"dailyhub/internal/initdata"
)

// UserRepository defines user data operations
type UserRepository interface {
	UpsertTelegramUser(ctx context.Context, tg initdata.TelegramUser) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
}
