package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flashmart/storefront/pkg/health"
	"github.com/flashmart/storefront/pkg/httpclient"
	pkgkafka "github.com/flashmart/storefront/pkg/kafka"

	"github.com/flashmart/storefront/internal/config"
	"github.com/flashmart/storefront/internal/event"
	handler "github.com/flashmart/storefront/internal/handler/http"
	"github.com/flashmart/storefront/internal/repository/memory"
	redisrepo "github.com/flashmart/storefront/internal/repository/redis"
	"github.com/flashmart/storefront/internal/sender"
	"github.com/flashmart/storefront/internal/service"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg           *config.Config
	logger        *slog.Logger
	rdb           *redis.Client
	producer      *pkgkafka.Producer
	poller        *service.SalePoller
	carts         *service.CartStore
	notifications *service.NotificationService
	httpServer    *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize Redis client (authoritative sale-state store).
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	saleRepo := redisrepo.NewSaleRepository(rdb)
	productRepo := memory.NewSeededProductRepository()
	eventProducer := event.NewProducer(producer, logger)

	carts := service.NewCartStore(logger, time.Duration(cfg.SessionIdleTTL)*time.Hour)
	poller := service.NewSalePoller(saleRepo, time.Duration(cfg.SalePollInterval)*time.Second, logger)
	saleAdmin := service.NewSaleAdminService(saleRepo, eventProducer, logger)

	// Push support is decided once here: no delivery endpoint, no push.
	var dispatcher sender.Dispatcher
	var registrar sender.Registrar
	if cfg.PushServiceURL != "" {
		pushClient := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("push-delivery"),
			logger,
		)
		webpush := sender.NewWebPushSender(pushClient, cfg.PushServiceURL, logger)
		dispatcher = webpush
		registrar = webpush
		logger.Info("push delivery enabled", slog.String("endpoint", cfg.PushServiceURL))
	} else {
		logger.Info("push delivery disabled, no endpoint configured")
	}

	notifications := service.NewNotificationService(dispatcher, registrar, service.NotificationConfig{
		SubscribeTimeout: time.Duration(cfg.SubscribeTimeout) * time.Second,
		DispatchTimeout:  time.Duration(cfg.DispatchTimeout) * time.Second,
	}, logger)

	checkout := service.NewCheckoutService(carts, notifications, eventProducer, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	// HTTP router.
	storefrontHandler := handler.NewStorefrontHandler(productRepo, carts, checkout, notifications, poller, logger)
	adminHandler := handler.NewAdminHandler(saleAdmin, logger)
	router := handler.NewRouter(storefrontHandler, adminHandler, healthHandler, cfg.AdminToken, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:           cfg,
		logger:        logger,
		rdb:           rdb,
		producer:      producer,
		poller:        poller,
		carts:         carts,
		notifications: notifications,
		httpServer:    httpServer,
	}, nil
}

// Run starts the sale poller and the HTTP server, and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	if err := a.poller.Start(ctx); err != nil {
		return fmt.Errorf("start sale poller: %w", err)
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.poller.Stop()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Stop polling before tearing down shared state so no late fetch result
	// is applied to a disposed view.
	a.poller.Stop()

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Drain in-flight notification dispatches.
	a.notifications.Close()

	// Stop the session janitor.
	a.carts.Close()

	// Close Kafka producer.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	// Close Redis client.
	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
