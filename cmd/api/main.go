package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/coachbase/backend/internal/database"
	"github.com/coachbase/backend/internal/di"
	"github.com/coachbase/backend/internal/handler"
	"github.com/coachbase/backend/internal/server"
)

func main() {
	_ = godotenv.Load()

	app, cleanup, err := di.InitializeApplication()
	if err != nil {
		panic(err)
	}
	defer cleanup()

	app.Logger.Info("Starting CoachBase API", "version", di.Version)

	migrationsPath := getMigrationsPath()
	if err := database.RunMigrations(app.DB, migrationsPath, app.Logger); err != nil {
		app.Logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	fiberApp := app.Server.App()

	app.HealthHandler.Register(fiberApp)

	auth := fiberApp.Group("/auth", server.AuthRateLimiter())
	app.AuthHandler.Register(auth)

	api := fiberApp.Group(handler.APIPrefix, app.AuthMiddleware.Require())
	app.AuthHandler.RegisterProtected(api)

	coachOnly := app.AuthMiddleware.RequireCoach()
	app.AthleteHandler.RegisterCoach(api, coachOnly)
	app.WorkoutHandler.RegisterCoach(api, coachOnly)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app.Sweeper.Start(ctx)

	go func() {
		if err := app.Server.Start(); err != nil {
			app.Logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Sweeper.Stop()

	if err := app.Server.Shutdown(); err != nil {
		app.Logger.Error("Server forced to shutdown", "error", err)
	}

	app.Logger.Info("Server stopped")
}

func getMigrationsPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return "migrations"
	}

	execDir := filepath.Dir(execPath)

	possiblePaths := []string{
		filepath.Join(execDir, "migrations"),
		filepath.Join(execDir, "..", "..", "migrations"),
		"migrations",
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "migrations"
}
