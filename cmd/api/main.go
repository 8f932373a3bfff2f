// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/neighborly/internal/admin"
	"github.com/carterperez-dev/neighborly/internal/auth"
	"github.com/carterperez-dev/neighborly/internal/category"
	"github.com/carterperez-dev/neighborly/internal/community"
	"github.com/carterperez-dev/neighborly/internal/config"
	"github.com/carterperez-dev/neighborly/internal/core"
	"github.com/carterperez-dev/neighborly/internal/health"
	"github.com/carterperez-dev/neighborly/internal/listing"
	"github.com/carterperez-dev/neighborly/internal/middleware"
	"github.com/carterperez-dev/neighborly/internal/payment"
	"github.com/carterperez-dev/neighborly/internal/rating"
	"github.com/carterperez-dev/neighborly/internal/review"
	"github.com/carterperez-dev/neighborly/internal/server"
	"github.com/carterperez-dev/neighborly/internal/subscription"
	"github.com/carterperez-dev/neighborly/internal/user"
	"github.com/carterperez-dev/neighborly/migrations"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	genKeys := flag.Bool("genkeys", false, "write a new ES256 key pair and exit")
	privateKey := flag.String("private-key", "keys/private.pem", "private key path for -genkeys")
	publicKey := flag.String("public-key", "keys/public.pem", "public key path for -genkeys")
	flag.Parse()

	if *genKeys {
		if err := writeKeyPair(*privateKey, *publicKey); err != nil {
			slog.Error("generate keys", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func writeKeyPair(privatePath, publicPath string) error {
	for _, p := range []string{privatePath, publicPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			return err
		}
	}
	if err := auth.GenerateKeyPair(privatePath, publicPath); err != nil {
		return err
	}
	slog.Info("key pair written", "private", privatePath, "public", publicPath)
	return nil
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, migrations.FS); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	ratingRepo := rating.NewRepository(db.DB)
	staleQueue := rating.NewRedisQueue(redis.Client, cfg.Rating.QueueKey)
	aggregator := rating.NewAggregator(ratingRepo, staleQueue, cfg.Rating, logger)
	repairer := rating.NewRepairer(ratingRepo, staleQueue, cfg.Rating, logger)

	gateway := payment.NewRazorpay(cfg.Payment)

	subRepo := subscription.NewRepository(db.DB)
	subSvc := subscription.NewService(subRepo, gateway, cfg.Subscription, logger)
	subHandler := subscription.NewHandler(subSvc)
	sweeper := subscription.NewSweeper(
		subRepo,
		subscription.NewRedisNotifier(redis.Client, cfg.Subscription.NotifyChannel),
		cfg.Subscription,
		logger,
	)

	communitySvc := community.NewService(community.NewRepository(db.DB))
	communityHandler := community.NewHandler(communitySvc)

	categorySvc := category.NewService(category.NewRepository(db.DB))
	categoryHandler := category.NewHandler(categorySvc)

	listingSvc := listing.NewService(
		listing.NewRepository(db.DB),
		listing.NewGate(subSvc),
		categorySvc,
		logger,
	)
	listingHandler := listing.NewHandler(listingSvc)

	reviewSvc := review.NewService(review.NewRepository(db.DB), listingSvc, aggregator, logger)
	reviewHandler := review.NewHandler(reviewSvc)

	userSvc := user.NewService(user.NewRepository(db.DB), communitySvc)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(jwtManager, userSvc, communitySvc, logger)
	authHandler := auth.NewHandler(authSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:       db.Stats,
		RedisStats:    redis.PoolStats,
		DBPing:        db.Ping,
		RedisPing:     redis.Ping,
		Ratings:       aggregator,
		Repairer:      repairer,
		Subscriptions: subSvc,
		Sweeper:       sweeper,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	limiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
		),
		FailOpen: true,
	})

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(limiter.Handler)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticate := middleware.Authenticator(jwtManager)
	perRole := limiter.PerRole(middleware.DefaultRoleLimits)
	authenticator := func(next http.Handler) http.Handler {
		return authenticate(perRole(next))
	}
	adminOnly := middleware.RequireAdmin

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)

		communityHandler.RegisterRoutes(r)
		categoryHandler.RegisterRoutes(r)
		listingHandler.RegisterRoutes(r, authenticator, reviewHandler.ListingRoutes(authenticator))
		reviewHandler.RegisterRoutes(r, authenticator)
		subHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator)

		communityHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		categoryHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		reviewHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	workerCtx, stopWorkers := context.WithCancel(ctx)
	var workers sync.WaitGroup
	workers.Add(2)
	go func() {
		defer workers.Done()
		repairer.Run(workerCtx)
	}()
	go func() {
		defer workers.Done()
		sweeper.Run(workerCtx)
	}()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	var runErr error
	select {
	case runErr = <-errChan:
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if runErr == nil {
		if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}

	stopWorkers()
	workers.Wait()

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return runErr
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
