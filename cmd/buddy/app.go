package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/config"
	"github.com/bobby-s-dev/weather-buddy/internal/location"
	"github.com/bobby-s-dev/weather-buddy/internal/metrics"
	"github.com/bobby-s-dev/weather-buddy/internal/notify"
	"github.com/bobby-s-dev/weather-buddy/internal/search"
	"github.com/bobby-s-dev/weather-buddy/internal/storage"
	"github.com/bobby-s-dev/weather-buddy/internal/store"
	"github.com/bobby-s-dev/weather-buddy/pkg/client"
)

// app holds the wired components shared by the subcommands.
type app struct {
	logger    *zap.Logger
	kv        storage.KV
	repo      *storage.Repository
	openMeteo *client.OpenMeteoClient
	registry  *prometheus.Registry
	metrics   *metrics.BuddyMetrics
	notifier  *notify.Local
	searcher  *search.Searcher
	store     *store.Store
}

func clientConfig(cfg *config.Config) client.ClientConfig {
	return client.ClientConfig{
		Timeout:            cfg.WeatherAPI.ClientTimeout,
		UserAgent:          cfg.WeatherAPI.UserAgent,
		MaxRetries:         cfg.Retry.MaxRetries,
		RetryDelay:         cfg.Retry.Delay,
		Multiplier:         cfg.Retry.Multiplier,
		BreakerTimeout:     cfg.CircuitBreaker.Timeout,
		BreakerMinRequests: uint32(max(cfg.CircuitBreaker.Threshold, 0)),
	}
}

func openKV(ctx context.Context, path string, logger *zap.Logger) (storage.KV, error) {
	if path == "" || path == config.MemoryStorePath {
		logger.Info("Using in-memory store; preferences will not survive a restart")
		return storage.NewMemoryKV(logger), nil
	}
	return storage.OpenSQLite(ctx, path, logger)
}

// newSink prefers the configured shoutrrr URLs and falls back to the log.
func newSink(cfg *config.Config, logger *zap.Logger) notify.Sink {
	if len(cfg.Notify.URLs) == 0 {
		return notify.NewLogSink(logger)
	}
	sink, err := notify.NewShoutrrrSink(cfg.Notify.URLs, cfg.Notify.Timeout)
	if err != nil {
		logger.Warn("Invalid notification URLs, logging notifications instead", zap.Error(err))
		return notify.NewLogSink(logger)
	}
	logger.Info("Notifications enabled", zap.Int("services", len(cfg.Notify.URLs)))
	return sink
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	kv, err := openKV(ctx, cfg.Store.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.NewBuddyMetrics(registry)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	ccfg := clientConfig(cfg)
	openMeteo := client.NewOpenMeteoClient(cfg.WeatherAPI.OpenMeteoURL, cfg.WeatherAPI.GeocodingURL, ccfg, logger)
	nominatim := client.NewNominatimClient(cfg.WeatherAPI.NominatimURL, ccfg, logger)

	var pos *location.Position
	if cfg.Location != nil {
		pos = &location.Position{Latitude: cfg.Location.Latitude, Longitude: cfg.Location.Longitude}
	}

	notifier := notify.NewLocal(newSink(cfg, logger), cfg.Notify.Timeout, logger)
	repo := storage.NewRepository(kv, logger)

	st := store.New(openMeteo, repo, store.Options{
		Notifier: notifier,
		Sound:    notify.NewLogPlayer(logger),
		Locator:  location.NewStatic(pos, nominatim),
		Metrics:  m,
	}, logger)

	searcher := search.New(openMeteo, search.Options{
		Debounce: cfg.Search.Debounce,
		CacheTTL: cfg.Search.CacheTTL,
	}, logger, m)

	return &app{
		logger:    logger,
		kv:        kv,
		repo:      repo,
		openMeteo: openMeteo,
		registry:  registry,
		metrics:   m,
		notifier:  notifier,
		searcher:  searcher,
		store:     st,
	}, nil
}

// close stops background work before the storage goes away.
func (a *app) close() {
	a.searcher.Close()
	a.store.Close()
	a.notifier.Stop()
	if mem, ok := a.kv.(*storage.MemoryKV); ok {
		a.logger.Debug("In-memory store discarded", zap.Any("stats", mem.GetStats()))
	}
	if err := a.kv.Close(); err != nil {
		a.logger.Warn("Failed to close store", zap.Error(err))
	}
}
