package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ktecheletronicos/loja/internal/cart"
	"github.com/ktecheletronicos/loja/internal/catalog"
	"github.com/ktecheletronicos/loja/internal/config"
	"github.com/ktecheletronicos/loja/internal/domain"
	"github.com/ktecheletronicos/loja/internal/event"
	handler "github.com/ktecheletronicos/loja/internal/handler/http"
	"github.com/ktecheletronicos/loja/internal/location"
	"github.com/ktecheletronicos/loja/internal/order"
	redisrepo "github.com/ktecheletronicos/loja/internal/repository/redis"
	"github.com/ktecheletronicos/loja/internal/search"
	"github.com/ktecheletronicos/loja/pkg/database"
	"github.com/ktecheletronicos/loja/pkg/health"
	"github.com/ktecheletronicos/loja/pkg/httpclient"
	pkgkafka "github.com/ktecheletronicos/loja/pkg/kafka"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	rdb        *redis.Client
	producer   *pkgkafka.Producer
	resolver   *location.Resolver
	catalog    *catalog.Service
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize Redis client.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Kafka is optional: without brokers the storefront runs standalone
	// and events are only logged.
	var producer *pkgkafka.Producer
	var events *event.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Outbound HTTP clients. The catalog feed and OSRM sit behind circuit
	// breakers; geocoding and webhooks are best-effort and keep the plain
	// retrying client.
	baseClient := httpclient.New(httpclient.DefaultConfig())
	feedClient := httpclient.NewCircuitBreakerClient(
		baseClient, httpclient.DefaultCircuitBreakerConfig("catalog-feed"), logger)
	osrmClient := httpclient.NewCircuitBreakerClient(
		baseClient, httpclient.DefaultCircuitBreakerConfig("osrm"), logger)

	// Catalog snapshot refreshed from the external feed.
	catalogSvc := catalog.NewService(
		catalog.NewClient(cfg.CatalogFeedURL, feedClient, logger),
		rdb,
		catalog.Config{
			RefreshInterval: cfg.CatalogRefreshInterval,
			CacheTTL:        cfg.CatalogCacheTTL,
		},
		logger,
	)

	// Location resolution.
	geocoder := location.NewGeocoder(location.GeocoderConfig{
		PrimaryURL:     cfg.GeocodePrimaryURL,
		FallbackURL:    cfg.GeocodeFallbackURL,
		PrimaryTimeout: cfg.GeocodeTimeout,
	}, baseClient, logger)

	// Session pins live as long as the cart they price.
	cartTTL := time.Duration(cfg.CartTTL) * time.Hour

	resolver := location.NewResolver(location.ResolverConfig{
		Reference:       domain.Coordinate{Latitude: cfg.ReferenceLat, Longitude: cfg.ReferenceLng},
		TelemetryURL:    cfg.TelemetryURL,
		AddressDebounce: cfg.AddressDebounce,
		SessionTTL:      cartTTL,
	}, location.NewRouteClient(cfg.OSRMBaseURL, osrmClient, logger), geocoder, baseClient, logger)

	if events != nil {
		resolver.OnDistance(events.PublishDistanceCalculated)
	}

	feeCfg := location.FeeConfig{
		BaseFee:          cfg.FeeBase,
		PerKm:            cfg.FeePerKm,
		IncludedRadiusKm: cfg.FeeIncludedRadius,
		MaxRadiusKm:      cfg.FeeMaxRadius,
	}

	// Cart and order services.
	cartSvc := cart.NewService(redisrepo.NewCartRepository(rdb, cartTTL), catalogSvc, events, logger, cartTTL)

	orderSvc := order.NewService(order.Config{
		WebhookURL:    cfg.OrderWebhookURL,
		WhatsAppPhone: cfg.WhatsAppPhone,
		Fee:           feeCfg,
	}, cartSvc, resolver, baseClient, events, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("catalog", func(ctx context.Context) error {
		if catalogSvc.Count() == 0 {
			return fmt.Errorf("catalog not loaded")
		}
		return nil
	})
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	// HTTP router.
	router := handler.NewRouter(handler.RouterDeps{
		Catalog:     catalogSvc,
		Engine:      search.NewEngine(),
		Cart:        cartSvc,
		Resolver:    resolver,
		Fee:         feeCfg,
		Orders:      orderSvc,
		Health:      healthHandler,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		PprofCIDRs:  cfg.PprofAllowedCIDRs,

		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		rdb:        rdb,
		producer:   producer,
		resolver:   resolver,
		catalog:    catalogSvc,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and the catalog refresher, blocking until the
// context is canceled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting catalog refresher",
			slog.Duration("interval", a.cfg.CatalogRefreshInterval),
		)
		return a.catalog.Run(ctx)
	})

	g.Go(func() error {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Stop pending debounced address lookups.
	a.resolver.Close()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
