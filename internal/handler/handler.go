package handler

import (
	"dailyhub/internal/metrics"
	"dailyhub/internal/middleware"
	"dailyhub/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Handler manages all bot interactions
type Handler struct {
	bot         *tele.Bot
	authService *service.AuthService
	webAppURL   string
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	authService *service.AuthService,
	webAppURL string,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:         bot,
		authService: authService,
		webAppURL:   webAppURL,
		metrics:     m,
		logger:      logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	h.bot.Use(middleware.EnsureUser(h.authService, h.logger))

	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/help", h.handleHelp)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)
}

// openAppMarkup returns the keyboard with the Mini-App launch button
func (h *Handler) openAppMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(tele.Btn{
			Text:   "📋 Open app",
			WebApp: &tele.WebApp{URL: h.webAppURL},
		}),
	)
	return menu
}
