package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/UnknownOlympus/pinpoint/internal/config"
	"github.com/UnknownOlympus/pinpoint/internal/device"
	"github.com/UnknownOlympus/pinpoint/internal/geocoding"
	"github.com/UnknownOlympus/pinpoint/internal/handoff"
	"github.com/UnknownOlympus/pinpoint/internal/mapview"
	"github.com/UnknownOlympus/pinpoint/internal/metrics"
	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/navigation"
	"github.com/UnknownOlympus/pinpoint/internal/permission"
	"github.com/UnknownOlympus/pinpoint/internal/repository"
	"github.com/UnknownOlympus/pinpoint/internal/resolver"
	"github.com/UnknownOlympus/pinpoint/internal/server"
	"github.com/UnknownOlympus/pinpoint/internal/service"
	"github.com/UnknownOlympus/pinpoint/internal/viewport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

func main() {
	// Cancelled on interrupt for a graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dtb, err := repository.NewDatabase(
		ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	repo := repository.NewRepository(dtb, logger)
	if err = repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare DB schema: %v", err)
	}

	providerConfig := geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Provider.Type),
		APIKey:    cfg.Provider.APIKey,
		RateLimit: cfg.Provider.RateLimit,
		Logger:    logger,
	}
	if rdb := openCache(ctx, cfg.Redis, logger); rdb != nil {
		defer rdb.Close()
		providerConfig.Cache = rdb
		providerConfig.CacheTTL = cfg.Geocode.CacheTTL
	}

	geoProvider, err := geocoding.NewProvider(providerConfig)
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized",
		"type", cfg.Provider.Type, "cache", providerConfig.Cache != nil && providerConfig.CacheTTL > 0)

	publisher, drain := openPublisher(ctx, cfg.NATS, logger)
	defer drain()

	var fix *models.Coordinates
	if cfg.Device.Located {
		fix = &models.Coordinates{Latitude: cfg.Device.Latitude, Longitude: cfg.Device.Longitude}
	}
	locator := device.NewStaticLocator(cfg.Device.Permission, fix, logger)

	defaultRegion := viewport.DefaultRegion(cfg.Map.AspectRatio)
	widget := mapview.New(defaultRegion, 0, logger)
	defer widget.Close()

	nav := navigation.NewParamsBridge(logger)
	ctrl := viewport.New(
		logger,
		permission.NewGate(locator, cfg.Position.Timeout, logger),
		resolver.New(logger, geoProvider, cfg.Provider.Type, appMetrics),
		widget,
		nav,
		viewport.NewLogNotifier(logger),
		appMetrics,
		viewport.Options{DefaultRegion: defaultRegion, QuietWindow: cfg.Debounce.QuietWindow},
	)
	defer ctrl.Close()
	widget.SetListener(ctrl)

	if err = ctrl.Mount(ctx); err != nil {
		logger.WarnContext(ctx, "Initial centering did not complete", "error", err)
	}

	srv := server.New(logger, server.Deps{
		Viewport:  ctrl,
		Map:       widget,
		Selection: nav,
		Locator:   locator,
		Confirmer: service.NewConfirmationService(logger, repo, publisher, appMetrics),
		DB:        dtb,
		Registry:  reg,
	})

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	if err = srv.Run(ctx, cfg.Port); err != nil {
		logger.ErrorContext(ctx, "Server stopped with error", "error", err)
	}

	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// setupLogger builds the process logger for env. Unknown envs log errors only.
func setupLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelError, ReplaceAttr: dropTime}

	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true}))
	case envDev:
		opts = &slog.HandlerOptions{Level: slog.LevelInfo}
	case envProd:
		opts.Level = slog.LevelWarn
	default:
		logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
		logger.Error("The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", strings.Join([]string{envLocal, envDev, envProd}, ", ")))
		return logger
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

// openCache returns nil when no Redis address is configured.
func openCache(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WarnContext(ctx, "Redis is unreachable, lookups will miss the cache", "error", err)
	}
	return rdb
}

// openPublisher connects the confirmation hand-off. Without a NATS url the
// returned publisher is nil and confirmations are only stored.
func openPublisher(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (service.Publisher, func()) {
	if cfg.URL == "" {
		logger.WarnContext(ctx, "NATS url is not set, confirmed locations will not be handed off")
		return nil, func() {}
	}

	conn, err := handoff.Connect(cfg.URL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	return handoff.NewPublisher(conn, cfg.Subject, logger), func() { _ = conn.Drain() }
}
