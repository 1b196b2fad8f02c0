package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dailyhub/internal/domain"
	"dailyhub/internal/middleware"
	"dailyhub/internal/service"

	"go.uber.org/zap"
)

const initDataHeader = "X-Telegram-Init-Data"

type loginRequest struct {
	InitData string `json:"initData"`
}

type loginResponse struct {
	OK        bool         `json:"ok"`
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	AuthDate  string       `json:"authDate,omitempty"`
}

type meResponse struct {
	OK   bool         `json:"ok"`
	User *domain.User `json:"user"`
}

// handleTelegramLogin exchanges init data for a session cookie
func (s *Server) handleTelegramLogin(w http.ResponseWriter, r *http.Request) {
	raw, err := initDataFromRequest(w, r)
	if err != nil {
		s.logger.Debug("Malformed login request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	result, err := s.authService.Login(r.Context(), raw)
	if err != nil {
		var authErr *service.AuthError
		if errors.As(err, &authErr) {
			code := "UNAUTHORIZED"
			if s.opts.ExposeReason {
				code = authErr.Reason
			}
			writeError(w, http.StatusUnauthorized, code)
			return
		}

		s.logger.Error("Failed to log in",
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    result.Session.Token,
		Path:     "/",
		Expires:  result.Session.ExpiresAt,
		MaxAge:   int(s.issuer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, loginResponse{
		OK:        true,
		User:      result.User,
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt,
		AuthDate:  result.AuthDate,
	})
}

// handleLogout drops the session cookie
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleMe returns the user of the current session
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	telegramID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED")
		return
	}

	user, err := s.authService.CurrentUser(r.Context(), telegramID)
	if errors.Is(err, service.ErrUserNotFound) {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED")
		return
	}
	if err != nil {
		s.logger.Error("Failed to load current user",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{OK: true, User: user})
}

// initDataFromRequest reads init data from the header, a JSON body or a form body
func initDataFromRequest(w http.ResponseWriter, r *http.Request) (string, error) {
	if v := r.Header.Get(initDataHeader); v != "" {
		return v, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", fmt.Errorf("decode login request: %w", err)
		}
		return req.InitData, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", fmt.Errorf("parse login form: %w", err)
	}
	return r.PostForm.Get("initData"), nil
}
