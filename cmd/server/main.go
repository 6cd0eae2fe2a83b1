package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"basic_authn/internal/app/config"
	"basic_authn/internal/app/di"
	"basic_authn/internal/app/router"
	"basic_authn/internal/feature/auth/transport/http/dto"
	authhandler "basic_authn/internal/feature/auth/transport/handler"
	authusecase "basic_authn/internal/feature/auth/usecase"
	"basic_authn/internal/platform/basicauth"
	infradb "basic_authn/internal/platform/db"
	"basic_authn/internal/platform/http/handler"
	"basic_authn/internal/platform/logging"
	infraredis "basic_authn/internal/platform/redis"
	"basic_authn/internal/platform/validation"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// バリデーションタグを gin に登録
	if err := validation.RegisterGin(dto.SignupRules); err != nil {
		return err
	}

	// db
	db, err := infradb.Open(cfg.DB)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer func() { _ = sqlDB.Close() }()
	}
	checks := []handler.Check{handler.DBCheck(db)}

	// Redis (任意)
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			checks = append(checks, handler.RedisCheck(rdb))
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("Failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// Repository / Hasher
	userRepo := di.NewUserRepository(db, rdb, cfg.UserCacheTTL)
	hasher, err := di.NewPasswordHasher(cfg.Hasher)
	if err != nil {
		return err
	}

	// Usecase
	authUC, err := authusecase.NewAuthUsecase(userRepo, hasher)
	if err != nil {
		return err
	}

	// Handler
	authH := authhandler.NewAuthHandler(authUC)

	// CORS は許可オリジンが設定されたときだけ有効
	opts := router.Options{}
	if len(cfg.CORSOrigins) > 0 {
		if opts.CORS, err = router.NewCORS(cfg.CORSOrigins); err != nil {
			return err
		}
	}

	// ルータ生成
	r := router.NewRouter(authH, basicauth.Required(authUC), handler.NewHealth(checks...), opts)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
