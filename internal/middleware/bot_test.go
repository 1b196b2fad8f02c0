package middleware

import (
	"fmt"
	"testing"
	"time"

	"dailyhub/internal/initdata"
	"dailyhub/internal/service"
	"dailyhub/internal/session"
	"dailyhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	tele "gopkg.in/telebot.v3"
)

func TestEnsureUser(t *testing.T) {
	tests := []struct {
		name         string
		sender       *tele.User
		mockError    error
		expectUpsert bool
		expectNext   bool
	}{
		{
			name:         "new sender is stored",
			sender:       &tele.User{ID: 123, FirstName: "Ann", Username: "ann"},
			expectUpsert: true,
			expectNext:   true,
		},
		{
			name:         "storage failure stops the chain",
			sender:       &tele.User{ID: 123, FirstName: "Ann", Username: "ann"},
			mockError:    fmt.Errorf("db error"),
			expectUpsert: true,
			expectNext:   false,
		},
		{
			name:       "bots are skipped",
			sender:     &tele.User{ID: 99, IsBot: true},
			expectNext: true,
		},
		{
			name:       "updates without sender are skipped",
			expectNext: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(testutil.MockUserRepository)
			if tt.expectUpsert {
				tg := initdata.TelegramUser{ID: tt.sender.ID, FirstName: tt.sender.FirstName, Username: tt.sender.Username}
				var stored interface{}
				if tt.mockError == nil {
					stored = testutil.NewTestUser(1, tt.sender.ID, tt.sender.Username, tt.sender.FirstName)
				}
				mockRepo.On("UpsertTelegramUser", mock.Anything, tg).Return(stored, tt.mockError)
			}

			authService := service.NewAuthService(mockRepo, session.NewIssuer("s", time.Hour), "token", testutil.NewTestLogger())

			called := false
			next := func(c tele.Context) error {
				called = true
				return nil
			}

			c := &testutil.FakeBotContext{User: tt.sender}
			err := EnsureUser(authService, testutil.NewTestLogger())(next)(c)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectNext, called)
			if !tt.expectNext {
				assert.Len(t, c.Sent, 1)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
