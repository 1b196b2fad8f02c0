package testutil

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"dailyhub/internal/domain"
	"dailyhub/internal/initdata"

	"go.uber.org/zap"
)

// TestBotToken signs every init data fixture
const TestBotToken = "TEST_SECRET"

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user
func NewTestUser(id, telegramID int64, username, firstName string) *domain.User {
	return &domain.User{
		ID:         id,
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// SignedInitData builds init data for tg signed with TestBotToken
func SignedInitData(tg initdata.TelegramUser, authDate time.Time) string {
	user, _ := json.Marshal(tg)

	vals := url.Values{}
	vals.Set("user", string(user))
	vals.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	vals.Set("query_id", "AAHdF6IQAAAAAN0XohDhrOrc")
	vals.Set("hash", initdata.Sign(vals, TestBotToken))
	return vals.Encode()
}
