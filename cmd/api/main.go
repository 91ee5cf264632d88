// Package main is the entrypoint for the ticklist API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ticklist/ticklist/internal/config"
	"github.com/ticklist/ticklist/internal/handler"
	"github.com/ticklist/ticklist/internal/metrics"
	"github.com/ticklist/ticklist/internal/middleware"
	"github.com/ticklist/ticklist/internal/ratelimit"
	"github.com/ticklist/ticklist/internal/repository"
	"github.com/ticklist/ticklist/internal/server"
	"github.com/ticklist/ticklist/internal/service"
	"github.com/ticklist/ticklist/internal/session"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize session store
	sessions, err := session.New(ctx, cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	authService := service.NewAuthService(repo, sessions, metricsRecorder)
	todoService := service.NewTodoService(repo, metricsRecorder)
	loginLimiter := ratelimit.New(sessions.Client(), cfg.RateLimitLoginRPM, cfg.RateLimitLoginBurst)

	// Initialize handlers
	cookieCfg := handler.CookieConfig{Secure: cfg.CookieSecure, TTL: cfg.SessionTTL}
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, sessions)
	sessionHandler := handler.NewSessionHandler(authService, cookieCfg, logger)
	userHandler := handler.NewUserHandler(authService, cookieCfg, logger)
	todoHandler := handler.NewTodoHandler(todoService, logger)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	// Setup router
	r := setupRouter(h, healthHandler, sessionHandler, userHandler, todoHandler, metricsHandler, authService, loginLimiter, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(ctx context.Context) error {
		return sessions.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"session_ttl", cfg.SessionTTL.String(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	sessionHandler *handler.SessionHandler,
	userHandler *handler.UserHandler,
	todoHandler *handler.TodoHandler,
	metricsHandler *handler.MetricsHandler,
	authService *service.AuthService,
	loginLimiter *ratelimit.Limiter,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	// Metrics endpoint
	r.Get("/metrics", metricsHandler.Metrics)

	// Session middleware configuration
	requireSession := middleware.Session(middleware.SessionConfig{
		Logger:   logger,
		Resolver: authService,
	})

	// Rate limit middleware for credential endpoints
	rateLimitLogin := middleware.RateLimitLogin(middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: loginLimiter,
		Enabled: cfg.RateLimitLoginEnabled,
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Credential endpoints: unauthenticated, rate limited per IP
		r.With(rateLimitLogin).Post("/session", sessionHandler.SignIn)
		r.With(rateLimitLogin).Post("/user", userHandler.SignUp)

		// Sign-out destroys the session named by the cookie; it stays
		// outside the session middleware so a stale cookie still gets
		// cleared with a 204 instead of a 401.
		r.Delete("/session", sessionHandler.SignOut)

		r.With(requireSession).Get("/user", userHandler.Current)

		// Todo management (requires a valid session)
		r.Route("/todo", func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/", todoHandler.List)
			r.Post("/", todoHandler.Create)
			r.Patch("/{id}", todoHandler.Update)
			r.Delete("/{id}", todoHandler.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
