// Package main is the entrypoint for the itemledger API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/itemledger/itemledger/internal/cache"
	"github.com/itemledger/itemledger/internal/config"
	"github.com/itemledger/itemledger/internal/handler"
	"github.com/itemledger/itemledger/internal/metrics"
	"github.com/itemledger/itemledger/internal/middleware"
	"github.com/itemledger/itemledger/internal/repository"
	"github.com/itemledger/itemledger/internal/server"
	"github.com/itemledger/itemledger/internal/service"
	"github.com/itemledger/itemledger/internal/tracing"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Initialize tracing
	var tp *sdktrace.TracerProvider
	if cfg.TracingEnabled() {
		var err error
		tp, err = tracing.Init(ctx, tracing.Config{
			ServiceName: cfg.ServiceName,
			Version:     cfg.Version,
			Environment: cfg.AppEnv,
			Endpoint:    cfg.JaegerEndpoint,
		})
		if err != nil {
			return err
		}
		logger.Info("tracing enabled", "endpoint", redactURL(cfg.JaegerEndpoint))
	}

	// Initialize store
	dsn := cfg.StoreDSN()
	var store repository.Store
	store, err := repository.Open(ctx, cfg.StoreDriver, dsn, cfg.AutoMigrate)
	if err != nil {
		logger.Error(
			"failed to open store",
			slog.String("driver", cfg.StoreDriver),
			slog.String("error", sanitizeError(err, dsn)),
			slog.String("dsn", redactURL(dsn)),
		)
		_ = tracing.Shutdown(ctx, tp)
		return err
	}
	if tp != nil {
		store = repository.NewTracingStore(store, cfg.StoreDriver, tp)
	}
	logger.Info("store ready", "driver", cfg.StoreDriver)

	// Initialize cache. Redis is optional; without it rate limits are per process.
	var cacheClient *cache.Cache
	var cacheChecker handler.HealthChecker
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			store.Close()
			_ = tracing.Shutdown(ctx, tp)
			return err
		}
		cacheChecker = cacheClient
		logger.Info("connected to Redis")
	}

	// Initialize services
	recorder := metrics.NewPrometheus()
	userService := service.NewUserService(store, recorder, logger)
	itemService := service.NewItemService(store, recorder, logger)
	reportService := service.NewReportService(store, recorder, logger)

	// Initialize handlers
	routes := handler.Routes{
		Root:    handler.New(cfg.ServiceName, cfg.Version),
		Health:  handler.NewHealthHandler(store, cacheChecker),
		Metrics: handler.NewMetricsHandler(recorder.Handler()),
		Users:   handler.NewUserHandler(userService, logger),
		Items:   handler.NewItemHandler(itemService, logger),
		Reports: handler.NewReportHandler(reportService, logger),
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Metrics: recorder,
		Enabled: cfg.RateLimitEnabled,
		RPS:     cfg.RateLimitRPS,
		Burst:   cfg.RateLimitBurst,
	}
	if cacheClient != nil {
		rateLimitCfg.Limiter = cacheClient
	}
	routes.APIMiddleware = append(routes.APIMiddleware, middleware.RateLimit(rateLimitCfg))

	// Setup router
	r := setupRouter(routes, cfg, logger, recorder)

	var root http.Handler = r
	if tp != nil {
		root = otelhttp.NewHandler(r, cfg.ServiceName, otelhttp.WithTracerProvider(tp))
	}

	// Create server; components close in reverse order.
	srv := server.New(root, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	if tp != nil {
		srv.OnShutdown("tracer", func(ctx context.Context) error {
			return tracing.Shutdown(ctx, tp)
		})
	}
	srv.OnShutdown("store", func(ctx context.Context) error {
		return store.Close()
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store", cfg.StoreDriver,
		"redis", cacheClient != nil,
		"tracing", tp != nil,
	)

	return srv.Run(ctx)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with global middleware and all routes.
func setupRouter(routes handler.Routes, cfg *config.Config, logger *slog.Logger, recorder metrics.Recorder) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, recorder))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	routes.Register(r)
	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
