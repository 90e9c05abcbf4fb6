package di

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/wire"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lmittmann/tint"

	"github.com/coachbase/backend/internal/clock"
	"github.com/coachbase/backend/internal/config"
	"github.com/coachbase/backend/internal/crypto"
	"github.com/coachbase/backend/internal/domain"
	"github.com/coachbase/backend/internal/handler"
	"github.com/coachbase/backend/internal/middleware"
	"github.com/coachbase/backend/internal/repository"
	"github.com/coachbase/backend/internal/server"
	"github.com/coachbase/backend/internal/session"
)

const Version = "0.1.0"

var ConfigSet = wire.NewSet(
	config.Load,
)

var LoggerSet = wire.NewSet(
	ProvideLogger,
)

var DatabaseSet = wire.NewSet(
	ProvideDatabase,
)

var RepositorySet = wire.NewSet(
	repository.NewPostgresUserRepository,
	wire.Bind(new(domain.UserRepository), new(*repository.PostgresUserRepository)),
	repository.NewPostgresSessionRepository,
	wire.Bind(new(domain.SessionRepository), new(*repository.PostgresSessionRepository)),
	repository.NewPostgresAthleteRepository,
	wire.Bind(new(domain.AthleteRepository), new(*repository.PostgresAthleteRepository)),
	repository.NewPostgresWorkoutRepository,
	wire.Bind(new(domain.WorkoutRepository), new(*repository.PostgresWorkoutRepository)),
)

var SessionSet = wire.NewSet(
	clock.System,
	ProvideTokenSource,
	ProvideSessionPolicy,
	ProvideSessionManager,
	ProvideSweeper,
)

var MiddlewareSet = wire.NewSet(
	ProvideAuthMiddleware,
)

var HandlerSet = wire.NewSet(
	ProvideHealthHandler,
	ProvideAuthHandler,
	handler.NewAthleteHandler,
	handler.NewWorkoutHandler,
)

var ServerSet = wire.NewSet(
	ProvideServerConfig,
	server.New,
)

var AppSet = wire.NewSet(
	ConfigSet,
	LoggerSet,
	DatabaseSet,
	RepositorySet,
	SessionSet,
	MiddlewareSet,
	HandlerSet,
	ServerSet,
	wire.Struct(new(Application), "*"),
)

func ProvideLogger(cfg *config.Config) *slog.Logger {
	var logLevel slog.Level
	switch cfg.Server.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var h slog.Handler
	if cfg.Server.Env == "development" {
		h = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.Kitchen,
		})
	} else {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	}
	return slog.New(h)
}

func ProvideDatabase(cfg *config.Config) (*sql.DB, func(), error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, cleanup, nil
}

func ProvideTokenSource(cfg *config.Config) (*crypto.TokenSource, error) {
	return crypto.NewTokenSource(cfg.Auth.TokenByteLength)
}

func ProvideSessionPolicy(cfg *config.Config) session.Policy {
	return session.Policy{
		TokenByteLength:    cfg.Auth.TokenByteLength,
		AbsoluteTTL:        cfg.Auth.AbsoluteTTL,
		RollingTTL:         cfg.Auth.RollingTTL,
		MaxSessionsPerUser: cfg.Auth.MaxSessionsPerUser,
	}
}

func ProvideSessionManager(
	sessions domain.SessionRepository,
	users domain.UserRepository,
	tokens *crypto.TokenSource,
	policy session.Policy,
	clk clock.Clock,
	logger *slog.Logger,
) *session.Manager {
	return session.NewManager(session.ManagerConfig{
		Sessions: sessions,
		Users:    users,
		Tokens:   tokens,
		Policy:   policy,
		Clock:    clk,
		Logger:   logger,
	})
}

func ProvideSweeper(manager *session.Manager, cfg *config.Config, logger *slog.Logger) *session.Sweeper {
	return session.NewSweeper(manager, cfg.Auth.SweepInterval, logger)
}

func ProvideAuthMiddleware(sessions *session.Manager, cfg *config.Config, logger *slog.Logger) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(middleware.AuthMiddlewareConfig{
		Sessions:          sessions,
		Logger:            logger,
		SessionCookieName: cfg.Auth.SessionCookieName,
	})
}

func ProvideAuthHandler(users domain.UserRepository, sessions *session.Manager, cfg *config.Config, logger *slog.Logger) *handler.AuthHandler {
	return handler.NewAuthHandler(handler.AuthHandlerConfig{
		Users:             users,
		Sessions:          sessions,
		Logger:            logger,
		BcryptCost:        cfg.Auth.BcryptCost,
		SessionCookieName: cfg.Auth.SessionCookieName,
		CookieMaxAge:      cfg.Auth.AbsoluteTTL,
		SecureCookie:      cfg.Auth.SecureCookie,
		CookieDomain:      cfg.Auth.CookieDomain,
	})
}

func ProvideHealthHandler() *handler.HealthHandler {
	return handler.NewHealthHandler(Version)
}

func ProvideServerConfig(cfg *config.Config) server.Config {
	return server.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		CorsOrigins: cfg.Server.CorsOrigins,
	}
}

type Application struct {
	Config         *config.Config
	Logger         *slog.Logger
	DB             *sql.DB
	Server         *server.Server
	Sweeper        *session.Sweeper
	AuthMiddleware *middleware.AuthMiddleware
	HealthHandler  *handler.HealthHandler
	AuthHandler    *handler.AuthHandler
	AthleteHandler *handler.AthleteHandler
	WorkoutHandler *handler.WorkoutHandler
}
