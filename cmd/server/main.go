package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"smsguard/docs" // swagger docs

	"smsguard/internal/auth"
	"smsguard/internal/cache"
	"smsguard/internal/classifier"
	"smsguard/internal/config"
	"smsguard/internal/db"
	"smsguard/internal/handler"
	"smsguard/internal/logger"
	"smsguard/internal/middleware"
	"smsguard/internal/repository"
	"smsguard/internal/router"
	"smsguard/internal/service"
)

// @title SMS Guard API
// @version 1.0
// @description Spam classification API with JWT authentication and per-user scan history.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "smsguard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	gormDB, err := db.Open(cfg)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	if cfg.ResetDB {
		log.Warn(ctx, "RESET_DB=true detected, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Warn(ctx, "redis unreachable, user lookups will not be cached", zap.Error(err))
	}
	cancel()

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	scanRepo := repository.NewScanRepository(gormDB)

	// Services
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	classifierClient := classifier.NewClient(cfg.ClassifierURL, cfg.ClassifierTimeout)
	userService := service.NewUserService(userRepo, cacheClient, cfg.UserCacheTTL)
	authService := service.NewAuthService(userRepo, jwtService)
	scanService := service.NewScanService(scanRepo, classifierClient, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, cfg, log, middleware.AuthGate(jwtService, userService, log), router.Handlers{
		Auth: handler.NewAuthHandler(authService, log),
		Scan: handler.NewScanHandler(scanService, log, cfg.ExposeUpstreamDetails),
		User: handler.NewUserHandler(),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}

	addr := ":" + cfg.ServerPort
	log.Info(ctx, "server starting",
		zap.String("addr", addr),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("classifier_url", cfg.ClassifierURL),
		zap.String("swagger", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server start: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	log.Info(ctx, "shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 15*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
