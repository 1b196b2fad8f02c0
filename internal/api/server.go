package api

import (
	"context"
	"net/http"

	"dailyhub/internal/metrics"
	"dailyhub/internal/middleware"
	"dailyhub/internal/ratelimit"
	"dailyhub/internal/service"
	"dailyhub/internal/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// maxBodyBytes caps login request bodies; real init data is well under 4 KiB
const maxBodyBytes = 64 << 10

// Pinger reports database availability
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options controls cookie, error exposure and client address behaviour
type Options struct {
	CookieName   string
	CookieSecure bool
	ExposeReason bool

	// TrustProxyHeaders rewrites RemoteAddr from proxy headers; enable only behind a proxy that sets them
	TrustProxyHeaders bool
}

// Server serves the Mini-App REST API
type Server struct {
	authService *service.AuthService
	issuer      *session.Issuer
	limiter     ratelimit.Limiter
	db          Pinger
	metrics     *metrics.Metrics
	opts        Options
	logger      *zap.Logger
}

// NewServer creates a new API server
func NewServer(
	authService *service.AuthService,
	issuer *session.Issuer,
	limiter ratelimit.Limiter,
	db Pinger,
	m *metrics.Metrics,
	opts Options,
	logger *zap.Logger,
) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}
	return &Server{
		authService: authService,
		issuer:      issuer,
		limiter:     limiter,
		db:          db,
		metrics:     m,
		opts:        opts,
		logger:      logger,
	}
}

// Routes builds the HTTP handler tree
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	if s.opts.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(s.logger, s.metrics))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(s.limiter, "auth", s.logger)).
			Post("/auth/telegram", s.handleTelegramLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(s.issuer, s.opts.CookieName, s.logger))
			r.Get("/me", s.handleMe)
		})
	})

	return r
}
