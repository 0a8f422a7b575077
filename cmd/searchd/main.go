package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/niveshhub/fundsearch/internal/api"
	"github.com/niveshhub/fundsearch/internal/cache"
	"github.com/niveshhub/fundsearch/internal/catalog"
	"github.com/niveshhub/fundsearch/internal/engine"
	"github.com/niveshhub/fundsearch/internal/service"
	"github.com/niveshhub/fundsearch/pkg/config"
	"github.com/niveshhub/fundsearch/pkg/health"
	"github.com/niveshhub/fundsearch/pkg/kafka"
	"github.com/niveshhub/fundsearch/pkg/logger"
	"github.com/niveshhub/fundsearch/pkg/metrics"
	"github.com/niveshhub/fundsearch/pkg/middleware"
	"github.com/niveshhub/fundsearch/pkg/postgres"
	pkgredis "github.com/niveshhub/fundsearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting fund search service", "port", cfg.Server.Port, "catalog_source", cfg.Catalog.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pgClient *postgres.Client
	var source catalog.Source
	switch cfg.Catalog.Source {
	case "postgres":
		pgClient, err = postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to catalog database", "error", err)
			os.Exit(1)
		}
		defer pgClient.Close()
		source = catalog.NewPostgresSource(pgClient, cfg.Catalog.Table)
	default:
		source = catalog.NewFileSource(cfg.Catalog.Path, cfg.Catalog.ChunkSize)
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	opts := []service.Option{
		service.WithLimits(engine.Limits{
			DefaultLimit:   cfg.Search.DefaultLimit,
			MaxLimit:       cfg.Search.MaxLimit,
			MaxSuggestions: cfg.Search.MaxSuggestions,
		}),
	}
	if queryCache != nil {
		opts = append(opts, service.WithCache(queryCache))
	}
	if m != nil {
		opts = append(opts, service.WithMetrics(m))
	}
	svc := service.New(source, opts...)

	// Warm the index at boot so the first query does not pay the build
	// cost. A failed build leaves the service unhealthy; queries surface
	// the stored error.
	go func() {
		if err := svc.Initialize(ctx); err != nil {
			slog.Error("initial catalog build failed", "error", err)
		}
	}()

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexBuilt)
		defer producer.Close()
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.CatalogRefresh,
			func(ctx context.Context, key, value []byte) error {
				slog.Info("catalog refresh requested", "key", string(key))
				if err := svc.Rebuild(ctx); err != nil {
					return err
				}
				h := svc.Health()
				return producer.Publish(ctx, kafka.Event{
					Key: "index-built",
					Value: map[string]any{
						"documentsIndexed": h.DocumentsIndexed,
						"indexSize":        h.IndexSize,
					},
				})
			})
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("catalog refresh consumer error", "error", err)
			}
		}()
		slog.Info("catalog refresh consumer started", "topic", cfg.Kafka.Topics.CatalogRefresh)
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		h := svc.Health()
		switch h.Status {
		case service.StatusHealthy:
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d documents, %d tokens", h.DocumentsIndexed, h.IndexSize),
			}
		case service.StatusInitializing:
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "index building"}
		default:
			return health.ComponentHealth{Status: health.StatusDown, Message: "index build failed"}
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			// Caching is optional; an unconfigured cache must not hold the
			// service out of rotation.
			return health.ComponentHealth{Status: health.StatusUp, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	if pgClient != nil {
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pgClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	h := api.New(svc, queryCache)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/funds/search", h.Search)
	mux.HandleFunc("GET /api/v1/funds/suggest", h.Suggest)
	mux.HandleFunc("GET /api/v1/funds/health", h.Health)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("fund search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("fund search service stopped")
}
