package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/social-graph/backend/internal/config"
	"github.com/emilythestrangee/social-graph/backend/internal/database"
	"github.com/emilythestrangee/social-graph/backend/internal/server"
	"github.com/emilythestrangee/social-graph/backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	opts := logger.Options{Level: "info"}
	if cfg != nil {
		opts = logger.Options{Level: cfg.LogLevel, Development: cfg.AppEnv == "development"}
	}
	logger.Init(opts)
	defer logger.Sync()

	if err != nil {
		logger.Fatal("Failed to load config", err)
	}
	logger.Info("Starting social graph API...", "env", cfg.AppEnv)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
		if err := cfg.ValidateProductionSecurity(); err != nil {
			logger.Fatal("Production security validation failed", err)
		}
		logger.Info("Production security validation passed")
	}

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := database.AutoMigrate(db.GetDB()); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	srv, err := server.NewServer(cfg, db)
	if err != nil {
		logger.Fatal("Failed to build server", err)
	}

	go func() {
		logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server stopped unexpectedly", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}
