package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"dailyhub/internal/initdata"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var userRowColumns = []string{"id", "telegram_id", "username", "first_name", "created_at", "updated_at"}

func TestUserRepo_UpsertTelegramUser(t *testing.T) {
	tests := []struct {
		name          string
		tg            initdata.TelegramUser
		mockRows      *sqlmock.Rows
		mockError     error
		expectedError bool
	}{
		{
			name: "new user",
			tg:   initdata.TelegramUser{ID: 12345, FirstName: "Ann", Username: "ann"},
			mockRows: sqlmock.NewRows(userRowColumns).
				AddRow(1, 12345, "ann", "Ann", time.Now(), time.Now()),
		},
		{
			name: "user without optional fields",
			tg:   initdata.TelegramUser{ID: 7},
			mockRows: sqlmock.NewRows(userRowColumns).
				AddRow(2, 7, "", "", time.Now(), time.Now()),
		},
		{
			name:          "database error",
			tg:            initdata.TelegramUser{ID: 9},
			mockError:     fmt.Errorf("db error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewUserRepo(db)

			expect := mock.ExpectQuery("INSERT INTO users .* ON CONFLICT \\(telegram_id\\)").
				WithArgs(tt.tg.ID, tt.tg.Username, tt.tg.FirstName)
			if tt.mockError != nil {
				expect.WillReturnError(tt.mockError)
			} else {
				expect.WillReturnRows(tt.mockRows)
			}

			user, err := repo.UpsertTelegramUser(context.Background(), tt.tg)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.tg.ID, user.TelegramID)
				assert.Equal(t, tt.tg.Username, user.Username)
				assert.Equal(t, tt.tg.FirstName, user.FirstName)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_GetByTelegramID(t *testing.T) {
	tests := []struct {
		name          string
		telegramID    int64
		mockRows      *sqlmock.Rows
		mockError     error
		expectedNil   bool
		expectedError bool
	}{
		{
			name:       "user found",
			telegramID: 12345,
			mockRows:   sqlmock.NewRows(userRowColumns).AddRow(1, 12345, "ann", "Ann", time.Now(), time.Now()),
		},
		{
			name:        "user not exists",
			telegramID:  999,
			mockError:   sql.ErrNoRows,
			expectedNil: true,
		},
		{
			name:          "database error",
			telegramID:    3,
			mockError:     fmt.Errorf("db error"),
			expectedNil:   true,
			expectedError: true,
		},
		{
			name:          "scan error",
			telegramID:    4,
			mockRows:      sqlmock.NewRows(userRowColumns).AddRow("invalid", 4, "ann", "Ann", time.Now(), time.Now()),
			expectedNil:   true,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewUserRepo(db)

			query := "SELECT id, telegram_id, username, first_name, created_at, updated_at FROM users WHERE telegram_id = \\$1"

			if tt.mockError != nil {
				mock.ExpectQuery(query).WithArgs(tt.telegramID).WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WithArgs(tt.telegramID).WillReturnRows(tt.mockRows)
			}

			user, err := repo.GetByTelegramID(context.Background(), tt.telegramID)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.expectedNil {
				assert.Nil(t, user)
			} else {
				assert.Equal(t, tt.telegramID, user.TelegramID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
