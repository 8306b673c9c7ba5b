package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	producer        *pkgkafka.Producer
	consumers       []*pkgkafka.Consumer
	carts           *cart.Registry
	health          *health.Handler
	services        handler.Services
	shutdownTracing func(context.Context) error
	httpServer      *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Tracing.
	traceCfg := tracing.DefaultConfig(serviceName)
	traceCfg.Environment = cfg.Environment
	traceCfg.Enabled = cfg.OTELEnabled
	traceCfg.OTLPEndpoint = cfg.OTELEndpoint
	traceCfg.SampleRate = cfg.OTELSampleRate
	shutdownTracing, err := tracing.InitTracer(ctx, traceCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Redis holds cart slots, checkout steps and the catalog cache.
	redisCfg := database.DefaultRedisConfig()
	redisCfg.Addr = cfg.RedisAddr
	redisCfg.Password = cfg.RedisPass
	redisCfg.DB = cfg.RedisDB
	rdb, err := database.NewRedisClient(ctx, redisCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, rdb, serviceName); err != nil {
		logger.Warn("redis pool metrics not registered", slog.String("error", err.Error()))
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	a := &App{
		cfg:             cfg,
		logger:          logger,
		rdb:             rdb,
		shutdownTracing: shutdownTracing,
		health:          health.NewHandler(),
	}

	// Events are optional; without brokers they are dropped.
	var publisher event.Publisher = event.NoopPublisher{}
	if cfg.EventsEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		a.health.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	events := event.NewProducer(publisher, logger)

	// Catalog client: retrying transport behind a circuit breaker, cached in Redis.
	transport := httpclient.New(httpclient.Config{
		Timeout:         cfg.CatalogTimeout,
		MaxRetries:      cfg.CatalogMaxRetries,
		RetryWaitMin:    200 * time.Millisecond,
		RetryWaitMax:    2 * time.Second,
		MaxConnsPerHost: 50,
		UserAgent:       serviceName + "/1.0",
	})
	breaker := httpclient.NewCircuitBreakerClient(transport, httpclient.CircuitBreakerConfig{
		Name:         "catalog",
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     time.Duration(cfg.CBInterval) * time.Second,
		Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}, logger)
	catalogClient := catalog.NewClient(breaker, redisrepo.NewCatalogCache(rdb), catalog.Config{
		BaseURL:   cfg.CatalogBaseURL,
		ListTTL:   cfg.CatalogListTTL,
		SearchTTL: cfg.CatalogSearchTTL,
		DetailTTL: cfg.CatalogDetailTTL,
	}, logger)

	if cfg.CatalogInvalidationEnabled {
		a.consumers = append(a.consumers, pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers: cfg.KafkaBrokers,
			GroupID: cfg.ConsumerGroup,
			Topic:   catalog.ProductChangedTopic,
		}, catalog.InvalidationHandler(catalogClient, logger), logger))
		logger.Info("catalog invalidation consumer initialized",
			slog.String("topic", catalog.ProductChangedTopic),
		)
	}

	// Build the dependency graph.
	cartTTL := cfg.CartTTLDuration()
	a.carts = cart.NewRegistry(redisrepo.NewCartSlotRepository(rdb, cartTTL), cfg.CartIdleTimeout, logger)
	carts := service.NewCartService(a.carts, events, logger)
	a.services = handler.Services{
		Products: service.NewProductService(catalogClient, logger),
		Carts:    carts,
		Checkout: service.NewCheckoutService(redisrepo.NewCheckoutStepRepository(rdb, cfg.CheckoutStepTTL), carts, events, logger),
	}

	// Health checks. The catalog degrades readiness but cart and checkout
	// keep working without it.
	a.health.RegisterCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	a.health.RegisterNonCritical("catalog", func(context.Context) error {
		if breaker.State() == gobreaker.StateOpen {
			return errors.New("catalog circuit breaker is open")
		}
		return nil
	})

	return a, nil
}

// Run starts the HTTP server, the cart store sweeper and the Kafka
// consumers, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = a.cfg.CORSAllowedOrigins
	cors.Environment = a.cfg.Environment

	router := handler.NewRouter(runCtx, handler.RouterConfig{
		RequestTimeout: a.cfg.RequestTimeout,
		CORS:           cors,
		RateLimitRPS:   a.cfg.RateLimitRPS,
		RateLimitBurst: a.cfg.RateLimitBurst,
		ProductMaxAge:  a.cfg.CatalogMaxAge,
	}, a.services, a.health, a.logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: a.cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1+len(a.consumers))

	go a.carts.Run(runCtx)

	// Start Kafka consumers in background goroutines. Each closes its reader
	// when runCtx is done.
	for _, c := range a.consumers {
		go func() {
			if err := c.Start(runCtx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	// Start HTTP server.
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		cancel()
		return errors.Join(err, a.Shutdown())
	}

	cancel()
	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.shutdownTracing(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
