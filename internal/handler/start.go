package handler

import (
	"fmt"
	"strings"

	"dailyhub/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const helpText = "Tasks, workouts and recipes live in the app. Send /start to open it."

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	h.metrics.BotStart()

	h.logger.Info("User started bot",
		zap.Int64("telegram_id", sender.ID),
		zap.String("username", sender.Username),
	)

	if h.webAppURL == "" {
		return c.Send("The app is not available right now. Please try again later.")
	}

	name := domain.User{FirstName: sender.FirstName, Username: sender.Username}.DisplayName()
	return c.Send(
		fmt.Sprintf("👋 Hi, %s!\n\nOpen the app to plan your day, log workouts and keep recipes.", name),
		h.openAppMarkup(),
	)
}

// handleHelp handles /help command
func (h *Handler) handleHelp(c tele.Context) error {
	return c.Send(helpText)
}

// handleText answers free text with a pointer to the app
func (h *Handler) handleText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())

	// Unknown commands get the same hint
	if strings.HasPrefix(text, "/") {
		return c.Send(helpText)
	}

	if h.webAppURL == "" {
		return c.Send(helpText)
	}
	return c.Send(helpText, h.openAppMarkup())
}
