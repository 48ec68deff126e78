package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/userhub/userhub/internal/app"
	"github.com/userhub/userhub/internal/auth"
	"github.com/userhub/userhub/internal/health"
	"github.com/userhub/userhub/internal/platform/db"
	"github.com/userhub/userhub/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	userRepo := users.NewRepository(pool)

	hasher := auth.NewHasher(cfg.BcryptCost)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewService(userRepo, hasher, tokens)
	authHandler := auth.NewHandler(logger, authService)
	authenticator := auth.NewAuthenticator(logger, tokens, userRepo)

	usersService := users.NewService(userRepo)
	usersHandler := users.NewHandler(logger, usersService)

	healthHandler := health.NewHandler(logger, pool, cfg.AppEnv)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		Authenticator: authenticator,
		AuthHandler:   authHandler,
		UsersHandler:  usersHandler,
		HealthHandler: healthHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
