// Package main is the entrypoint for the casefile API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/casefile/casefile/internal/auth"
	"github.com/casefile/casefile/internal/config"
	"github.com/casefile/casefile/internal/handler"
	"github.com/casefile/casefile/internal/middleware"
	"github.com/casefile/casefile/internal/migrations"
	"github.com/casefile/casefile/internal/repository"
	"github.com/casefile/casefile/internal/server"
	"github.com/casefile/casefile/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := migrations.Run(ctx, cfg.DatabaseURL); err != nil {
		logger.Error(
			"failed to run migrations",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	hasher := auth.NewHasher(0)
	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL(), time.Now)

	accountService, err := service.NewAccountService(repo, hasher, tokens)
	if err != nil {
		logger.Error("failed to initialize account service", "error", err)
		os.Exit(1)
	}
	recordsService := service.NewRecordsService(repo, cfg.MaxUploadBytes)

	accountHandler := handler.NewAccountHandler(accountService, logger)
	recordsHandler := handler.NewRecordsHandler(recordsService, logger)

	r := setupRouter(accountHandler, recordsHandler, tokens, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
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
	accountHandler *handler.AccountHandler,
	recordsHandler *handler.RecordsHandler,
	tokens *auth.TokenIssuer,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment()))

	corsCfg := middleware.DefaultCORSConfig()
	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg.AllowedOrigins = origins
	}
	r.Use(middleware.CORS(corsCfg))

	// Root info endpoint
	r.Get("/", handler.Root)

	// Account endpoints (no auth required)
	r.Post("/sign_up", accountHandler.SignUp)
	r.Post("/login", accountHandler.Login)

	authCfg := middleware.AuthConfig{
		Logger: logger,
		Tokens: tokens,
	}

	// Everything under /home requires a valid bearer token.
	r.Route("/home", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		r.Post("/category", recordsHandler.CreateCategory)
		r.Get("/categories", recordsHandler.ListCategories)
		r.Delete("/category/{id}", recordsHandler.DeleteCategory)
		r.Get("/category/{id}/people", recordsHandler.ListPeople)

		r.Post("/person", recordsHandler.CreatePerson)
		r.Delete("/person/{id}", recordsHandler.DeletePerson)
		r.Post("/person/{id}/upload", recordsHandler.Upload)
		r.Get("/person/{id}/files", recordsHandler.ListFiles)
		r.Get("/person/{id}/files/{file_id}", recordsHandler.Download)
		r.Delete("/person/{id}/files/{file_id}", recordsHandler.DeleteFile)

		r.Get("/user/structure", recordsHandler.Structure)
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

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
