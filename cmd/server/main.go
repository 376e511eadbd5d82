// Command server runs the MindWell web application: the HTML auth
// surface, the member and admin dashboards, and the Prometheus scrape
// endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mindwell-hq/mindwell/internal/activity"
	"github.com/mindwell-hq/mindwell/internal/auth"
	"github.com/mindwell-hq/mindwell/internal/config"
	"github.com/mindwell-hq/mindwell/internal/logger"
	"github.com/mindwell-hq/mindwell/internal/metrics"
	"github.com/mindwell-hq/mindwell/internal/password"
	"github.com/mindwell-hq/mindwell/internal/session"
	"github.com/mindwell-hq/mindwell/internal/storage/postgres"
	"github.com/mindwell-hq/mindwell/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Server.Environment)
	defer func() { _ = log.Sync() }()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.Migrate(cfg.Database.URL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("migrations applied")

	pool, err := postgres.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	users := postgres.NewUserRepository(pool)
	progress := postgres.NewProgressRepository(pool)
	activities := postgres.NewActivityRepository(pool)
	sessions := session.NewStore(redisClient, cfg.Session.KeyPrefix, cfg.Session.TTL)

	recorder := activity.NewRecorder(activity.Config{
		BufferSize: cfg.Activity.BufferSize,
		OnDrop:     metrics.ActivityDropped.Inc,
	}, activity.NewStoreSink(activities), log)
	defer recorder.Close()

	svc := auth.NewService(users, progress, activities, sessions, recorder, password.NewBcrypt(), log)

	handler := web.NewHandler(svc, web.CookieConfig{
		Name:   cfg.Session.CookieName,
		MaxAge: int(cfg.Session.TTL.Seconds()),
		Secure: cfg.Session.CookieSecure,
	}, log)

	router, err := web.NewRouter(handler, log)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	// The deferred recorder.Close drains any buffered activity records
	// before the pool closes.
	return nil
}
