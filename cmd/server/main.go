package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"dailyhub/internal/api"
	"dailyhub/internal/config"
	"dailyhub/internal/handler"
	"dailyhub/internal/initdata"
	"dailyhub/internal/metrics"
	"dailyhub/internal/ratelimit"
	"dailyhub/internal/repository/postgres"
	"dailyhub/internal/service"
	"dailyhub/internal/session"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	signUser := flag.String("sign-initdata", "", "print init data signed with BOT_TOKEN for the given user JSON and exit")
	flag.Parse()

	if *signUser != "" {
		if err := printSignedInitData(*signUser); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to sign init data: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting DailyHub", zap.String("env", cfg.AppEnv))

	// Connect to database with retries
	db, err := connectDatabase(cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Run migrations
	if err := runMigrations(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Database migrations completed")

	m := metrics.New()

	userRepo := postgres.NewUserRepo(db)
	issuer := session.NewIssuer(cfg.Session.Secret, cfg.Session.TTL)
	authService := service.NewAuthService(userRepo, issuer, cfg.BotToken, logger).
		WithMaxAge(cfg.Auth.InitDataMaxAge).
		WithMetrics(m)

	limiter, closeLimiter := newLimiter(cfg, logger)
	defer closeLimiter()

	srv := api.NewServer(authService, issuer, limiter, db, m, api.Options{
		CookieName:   cfg.Session.CookieName,
		CookieSecure: cfg.Session.CookieSecure,
		ExposeReason: cfg.Auth.ExposeReason,

		TrustProxyHeaders: cfg.TrustProxyHeaders,
	}, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// The bot only advertises the Mini-App, so it is skipped without a URL
	var bot *tele.Bot
	if cfg.WebAppURL != "" {
		bot, err = tele.NewBot(tele.Settings{
			Token:  cfg.BotToken,
			Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		})
		if err != nil {
			logger.Fatal("Failed to create bot", zap.Error(err))
		}

		h := handler.NewHandler(bot, authService, cfg.WebAppURL, m, logger)
		h.RegisterHandlers()

		go func() {
			logger.Info("Bot started successfully")
			bot.Start()
		}()
	} else {
		logger.Info("WEBAPP_URL is not set, bot disabled")
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping...")

	if bot != nil {
		bot.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	logger.Info("Stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newLimiter shares counters through Redis when REDIS_ADDR is set
func newLimiter(cfg *config.Config, logger *zap.Logger) (ratelimit.Limiter, func()) {
	if cfg.Redis.Addr == "" {
		logger.Info("Using in-memory rate limiter")
		return ratelimit.NewMemoryLimiter(cfg.Auth.RateLimit, cfg.Auth.RateWindow), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, rate limiting will fail open until it recovers",
			zap.String("addr", cfg.Redis.Addr),
			zap.Error(err),
		)
	} else {
		logger.Info("Using Redis rate limiter", zap.String("addr", cfg.Redis.Addr))
	}

	limiter := ratelimit.NewRedisLimiter(client, "dailyhub:rl:", cfg.Auth.RateLimit, cfg.Auth.RateWindow)
	return limiter, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations applies pending migrations from ./migrations
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}

	return nil
}

// printSignedInitData writes init data for userJSON signed with BOT_TOKEN to stdout
func printSignedInitData(userJSON string) error {
	_ = godotenv.Load()

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}

	var tg initdata.TelegramUser
	if err := json.Unmarshal([]byte(userJSON), &tg); err != nil {
		return fmt.Errorf("invalid user JSON: %w", err)
	}
	if tg.ID <= 0 {
		return fmt.Errorf("user id must be positive")
	}

	vals := url.Values{}
	vals.Set("user", userJSON)
	vals.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	vals.Set("hash", initdata.Sign(vals, botToken))

	fmt.Println(vals.Encode())
	return nil
}
