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

	"learnhub_backend/internal/auth"
	"learnhub_backend/internal/courses"
	"learnhub_backend/internal/enrollments"
	"learnhub_backend/internal/events"
	apphttp "learnhub_backend/internal/http"
	"learnhub_backend/internal/http/router"
	"learnhub_backend/internal/notify"
	"learnhub_backend/internal/scheduler"
	"learnhub_backend/internal/storage"
	"learnhub_backend/internal/users"
	"learnhub_backend/migrations"
	"learnhub_backend/platform/cache"
	"learnhub_backend/platform/config"
	"learnhub_backend/platform/db"
	"learnhub_backend/platform/httpkit"
	"learnhub_backend/platform/logger"
	"learnhub_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	if !strings.EqualFold(cfg.Env, "development") {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	var redisClient *redis.Client
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		client, err := cache.NewClient(ctx, cfg.GetRedisURL())
		if err != nil {
			return err
		}
		redisClient = client
		return nil
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer redisClient.Close()
	redisCache := cache.New(redisClient)
	log.Info("redis connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for presigned uploads (MinIO)
	var storageSvc *storage.Service
	if cfg.IsMinIOEnabled() {
		storageSvc, err = storage.New(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure storage buckets", 5, 2*time.Second, func() error {
			return storageSvc.EnsureBuckets(ctx)
		}); err != nil {
			log.Error("failed to ensure storage buckets", "error", err)
			panic("failed to ensure storage buckets: " + err.Error())
		}
		log.Info("storage service initialized",
			"thumbnailsBucket", cfg.GetBucketThumbnails(),
			"avatarsBucket", cfg.GetBucketAvatars())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; file uploads disabled")
	}

	// Background task client for the welcome email queue
	taskClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Warn("task queue disabled", "error", err)
		taskClient = nil
	} else {
		defer taskClient.Close()
	}

	loginLimiter := httpkit.NewLoginRateLimiter(redisCache,
		cfg.GetLoginRateLimit(), cfg.GetLoginRateWindow(), log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notify module subscribes to domain events (not HTTP-facing)
	notifyModule := notify.NewModule(enqueuerOrNil(taskClient), log)
	notifyModule.RegisterHandlers(eventBus)

	authModule := auth.NewModule(pool, cfg, redisCache, eventBus, val, log)
	coursesModule := courses.NewModule(pool, redisCache, storageSvc, eventBus, val, log)
	usersModule := users.NewModule(pool, storageSvc, val, log)
	enrollmentsModule := enrollments.NewModule(pool, eventBus, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:       cfg,
		Logger:       log,
		Health:       db.NewPoolAdapter(pool),
		EventBus:     eventBus,
		LoginLimiter: loginLimiter,
		Modules: []apphttp.Module{
			authModule,
			coursesModule,
			usersModule,
			enrollmentsModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// enqueuerOrNil avoids handing the notify module a typed-nil interface.
func enqueuerOrNil(client *scheduler.Client) scheduler.Enqueuer {
	if client == nil {
		return nil
	}
	return client
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
