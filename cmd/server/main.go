// Command server runs the address eligibility HTTP service. main wires
// dependencies and owns the server lifecycle; business logic lives in the
// internal packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"addresseligibility/internal/address"
	"addresseligibility/internal/cache"
	"addresseligibility/internal/eligibility/rules"
	"addresseligibility/internal/eligibility/service"
	"addresseligibility/internal/geocode"
	"addresseligibility/internal/lookup"
	"addresseligibility/internal/platform/config"
	"addresseligibility/internal/platform/httpserver"
	"addresseligibility/internal/platform/logger"
	"addresseligibility/internal/platform/metrics"
	"addresseligibility/internal/platform/postgres"
	"addresseligibility/internal/platform/redis"
	"addresseligibility/internal/property"
	"addresseligibility/internal/region"
	httptransport "addresseligibility/internal/transport/http"
	"addresseligibility/internal/zone"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()
	m := metrics.New()

	// Region directory and preloaded address book, loaded once at startup.
	directory, err := region.LoadDirectory(cfg.RegionsFile, log)
	if err != nil {
		log.Warn("could not load eligible regions, starting with an empty directory",
			"file", cfg.RegionsFile, "error", err)
		directory = region.NewDirectory(nil)
	}
	preloaded, err := lookup.LoadPreloadedDirectory(cfg.PreloadedFile, log)
	if err != nil {
		return err
	}

	// Backing stores fall back to in-memory implementations when Redis or
	// Postgres are not configured.
	var kv cache.KeyValue = cache.NewMemoryKV()
	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		kv = cache.NewRedisKV(redisClient.Client)
		log.Info("using redis cache backend")
	} else {
		log.Info("redis not configured, using in-memory cache")
	}
	addrCache := cache.New(kv, cfg.CacheTTL, log, cache.WithMetrics(m))

	var zoneStore service.ZoneStore = zone.NewInMemoryStore()
	var addressStore service.AddressStore = address.NewInMemoryStore()
	pool, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()

		zones := zone.NewPostgresStore(pool)
		if err := zones.Migrate(ctx); err != nil {
			return err
		}
		addresses := address.NewPostgresStore(pool)
		if err := addresses.Migrate(ctx); err != nil {
			return err
		}
		zoneStore, addressStore = zones, addresses
		log.Info("using postgres stores")
	} else {
		log.Info("postgres not configured, using in-memory stores")
	}

	// Geocoder: Google when enabled, otherwise the fixtures file.
	var geocoder geocode.Geocoder
	if cfg.GoogleMapsEnabled {
		geocoder = geocode.NewGoogleClient(cfg.GoogleMapsAPIKey, log, geocode.WithMetrics(m))
	} else {
		fixtures, err := geocode.NewFixtureGeocoder(cfg.FixturesFile, log)
		if err != nil {
			log.Warn("could not load address fixtures, lookups will always miss",
				"file", cfg.FixturesFile, "error", err)
			fixtures = geocode.NewFixtureGeocoderFromMap(nil, log)
		}
		geocoder = fixtures
	}

	engine := rules.New(rules.Config{
		Enabled:            cfg.RulesEnabled,
		MinConfidenceScore: cfg.MinConfidenceScore,
	}, log)

	eligibility := service.New(zoneStore, addressStore, addrCache, preloaded,
		engine, log, service.WithMetrics(m))
	lookups := lookup.NewService(addrCache, geocoder, log)
	properties := property.NewService(region.NewService(directory, log), log)

	handler := httptransport.NewHandler(eligibility, lookups, properties, addrCache, log)
	router := httptransport.NewRouter(handler, cfg.APIToken, log)

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting address eligibility service", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
