package handler

import (
	"testing"

	"dailyhub/internal/metrics"
	"dailyhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

func webAppButton(t *testing.T, opts []interface{}) tele.InlineButton {
	require.Len(t, opts, 1)
	markup, ok := opts[0].(*tele.ReplyMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 1)
	return markup.InlineKeyboard[0][0]
}

func TestHandleStart(t *testing.T) {
	tests := []struct {
		name         string
		webAppURL    string
		sender       *tele.User
		expectedText string
		expectButton bool
	}{
		{
			name:         "greets by first name",
			webAppURL:    "https://app.example.com",
			sender:       &tele.User{ID: 1, FirstName: "Ann", Username: "ann"},
			expectedText: "👋 Hi, Ann!\n\nOpen the app to plan your day, log workouts and keep recipes.",
			expectButton: true,
		},
		{
			name:         "falls back to username",
			webAppURL:    "https://app.example.com",
			sender:       &tele.User{ID: 1, Username: "ann"},
			expectedText: "👋 Hi, @ann!\n\nOpen the app to plan your day, log workouts and keep recipes.",
			expectButton: true,
		},
		{
			name:         "no web app configured",
			sender:       &tele.User{ID: 1, FirstName: "Ann"},
			expectedText: "The app is not available right now. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New()
			h := NewHandler(nil, nil, tt.webAppURL, m, testutil.NewTestLogger())
			c := &testutil.FakeBotContext{User: tt.sender}

			err := h.handleStart(c)

			require.NoError(t, err)
			require.Len(t, c.Sent, 1)
			assert.Equal(t, tt.expectedText, c.Sent[0])
			if tt.expectButton {
				btn := webAppButton(t, c.SentOpts[0])
				require.NotNil(t, btn.WebApp)
				assert.Equal(t, tt.webAppURL, btn.WebApp.URL)
			} else {
				assert.Empty(t, c.SentOpts[0])
			}
		})
	}
}

func TestHandleStart_NoSender(t *testing.T) {
	h := NewHandler(nil, nil, "https://app.example.com", metrics.New(), testutil.NewTestLogger())
	c := &testutil.FakeBotContext{}

	require.NotPanics(t, func() {
		assert.NoError(t, h.handleStart(c))
	})
	assert.Empty(t, c.Sent)
}

func TestHandleText(t *testing.T) {
	tests := []struct {
		name         string
		webAppURL    string
		text         string
		expectButton bool
	}{
		{name: "free text", webAppURL: "https://app.example.com", text: "hello", expectButton: true},
		{name: "unknown command", webAppURL: "https://app.example.com", text: "/tasks"},
		{name: "no web app configured", text: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(nil, nil, tt.webAppURL, nil, testutil.NewTestLogger())
			c := &testutil.FakeBotContext{User: &tele.User{ID: 1}, TextValue: tt.text}

			err := h.handleText(c)

			require.NoError(t, err)
			require.Len(t, c.Sent, 1)
			assert.Equal(t, helpText, c.Sent[0])
			if tt.expectButton {
				btn := webAppButton(t, c.SentOpts[0])
				assert.Equal(t, "📋 Open app", btn.Text)
			} else {
				assert.Empty(t, c.SentOpts[0])
			}
		})
	}
}

func TestHandleHelp(t *testing.T) {
	h := NewHandler(nil, nil, "", nil, testutil.NewTestLogger())
	c := &testutil.FakeBotContext{User: &tele.User{ID: 1}}

	require.NoError(t, h.handleHelp(c))
	assert.Equal(t, []interface{}{helpText}, c.Sent)
}
