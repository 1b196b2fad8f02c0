package postgres

import (
	"context"
	"database/sql"

	"dailyhub/internal/domain"
	"dailyhub/internal/initdata"
)

const userColumns = `id, telegram_id, username, first_name, created_at, updated_at`

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// UpsertTelegramUser creates the user or refreshes its Telegram profile fields
func (r *UserRepo) UpsertTelegramUser(ctx context.Context, tg initdata.TelegramUser) (*domain.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, first_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id)
		DO UPDATE SET username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			updated_at = NOW()
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, tg.ID, tg.Username, tg.FirstName))
}

// GetByTelegramID returns the user or nil if it doesn't exist
func (r *UserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`
	return optionalUser(scanUser(r.db.QueryRowContext(ctx, query, telegramID)))
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func optionalUser(u *domain.User, err error) (*domain.User, error) {
	if err == sql.ErrNoRows {
		// User doesn't exist yet
		return nil, nil
	}
	return u, err
}
