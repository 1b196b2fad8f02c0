package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"dailyhub/internal/domain"
	"dailyhub/internal/initdata"
	"dailyhub/internal/metrics"
	"dailyhub/internal/repository"
	"dailyhub/internal/session"

	"go.uber.org/zap"
)

// ReasonExpired rejects init data whose auth_date is outside the configured window
const ReasonExpired = "AUTH_DATE_EXPIRED"

var (
	// ErrUnauthorized is wrapped by every login rejection
	ErrUnauthorized = errors.New("unauthorized")
	ErrUserNotFound = errors.New("user not found")
)

// AuthError is a login rejection; Reason is an initdata.Reason or ReasonExpired
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "unauthorized: " + e.Reason
}

func (e *AuthError) Unwrap() error {
	return ErrUnauthorized
}

// LoginResult is what a successful Mini-App login produces
type LoginResult struct {
	User     *domain.User
	Session  domain.Session
	AuthDate string
}

// AuthService handles authentication logic
type AuthService struct {
	userRepo repository.UserRepository
	issuer   *session.Issuer
	botToken string
	maxAge   time.Duration
	now      func() time.Time
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	issuer *session.Issuer,
	botToken string,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		issuer:   issuer,
		botToken: botToken,
		now:      time.Now,
		logger:   logger,
	}
}

// WithMaxAge enables the auth_date freshness check; zero disables it
func (s *AuthService) WithMaxAge(d time.Duration) *AuthService {
	s.maxAge = d
	return s
}

// WithMetrics records login outcomes in m
func (s *AuthService) WithMetrics(m *metrics.Metrics) *AuthService {
	s.metrics = m
	return s
}

// Login exchanges Telegram init data for a session
func (s *AuthService) Login(ctx context.Context, rawInitData string) (*LoginResult, error) {
	verified, err := initdata.Verify(rawInitData, s.botToken)
	if err != nil {
		reason, ok := initdata.ReasonOf(err)
		if !ok {
			return nil, fmt.Errorf("verify init data: %w", err)
		}
		return nil, s.reject(string(reason))
	}

	if !s.fresh(verified.AuthDate) {
		return nil, s.reject(ReasonExpired)
	}

	user, err := s.userRepo.UpsertTelegramUser(ctx, verified.User)
	if err != nil {
		s.metrics.AuthAttempt("error")
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	sess, err := s.issuer.Issue(user.TelegramID)
	if err != nil {
		s.metrics.AuthAttempt("error")
		return nil, fmt.Errorf("issue session: %w", err)
	}

	s.metrics.AuthAttempt("ok")
	s.logger.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", user.TelegramID),
	)

	return &LoginResult{
		User:     user,
		Session:  sess,
		AuthDate: verified.AuthDate,
	}, nil
}

// CurrentUser loads the user a session was issued for
func (s *AuthService) CurrentUser(ctx context.Context, telegramID int64) (*domain.User, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// EnsureTelegramUser creates or refreshes the record of a user seen by the bot
func (s *AuthService) EnsureTelegramUser(ctx context.Context, tg initdata.TelegramUser) (*domain.User, error) {
	return s.userRepo.UpsertTelegramUser(ctx, tg)
}

func (s *AuthService) reject(reason string) error {
	s.metrics.AuthAttempt(reason)
	s.logger.Info("Login rejected", zap.String("reason", reason))
	return &AuthError{Reason: reason}
}

// fresh reports whether authDate is inside the max age window
func (s *AuthService) fresh(authDate string) bool {
	if s.maxAge <= 0 {
		return true
	}
	ts, err := strconv.ParseInt(authDate, 10, 64)
	if err != nil || ts <= 0 {
		return false
	}
	return s.now().Sub(time.Unix(ts, 0)) <= s.maxAge
}
