package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
	"github.com/caustin-usgs/lcmap-gaia/internal/domain/landcover"
	"github.com/caustin-usgs/lcmap-gaia/internal/infra/ccdc"
	"github.com/caustin-usgs/lcmap-gaia/internal/infra/config"
	"github.com/caustin-usgs/lcmap-gaia/internal/infra/inputcache"
	"github.com/caustin-usgs/lcmap-gaia/internal/infra/runrepo"
	"github.com/caustin-usgs/lcmap-gaia/internal/infra/storage"
	"github.com/caustin-usgs/lcmap-gaia/internal/infra/telemetry"
)

func provideLandcoverConfig(cfg *config.Config) (landcover.Config, error) {
	c := cfg.Classification
	lc := landcover.Config{
		Classes:    append([]string(nil), c.Classes...),
		ClassCodes: make(map[string]int, len(c.ClassCodes)),
		NoneClass:  c.NoneClass,
		GrassClass: c.GrassClass,
		TreeClass:  c.TreeClass,
		Fill: landcover.FillPolicy{
			Begin:  c.Fill.Begin,
			End:    c.Fill.End,
			SameLC: c.Fill.SameLC,
			DiffLC: c.Fill.DiffLC,
		},
		Landcover: landcover.LandcoverDefaults{
			Insufficient: c.Landcover.Insufficient,
			Between:      c.Landcover.Between,
			NoModel:      c.Landcover.NoModel,
		},
		Confidence: landcover.ConfidenceDefaults{
			Back:       c.Confidence.Back,
			AfterBreak: c.Confidence.AfterBreak,
			Forwards:   c.Confidence.Forwards,
			Growth:     c.Confidence.Growth,
			Decline:    c.Confidence.Decline,
			SameLC:     c.Confidence.SameLC,
			DiffLC:     c.Confidence.DiffLC,
			None:       c.Confidence.None,
			NoModel:    c.Confidence.NoModel,
		},
	}
	for name, code := range c.ClassCodes {
		lc.ClassCodes[name] = code
	}
	if err := lc.Validate(); err != nil {
		return landcover.Config{}, fmt.Errorf("classification config: %w", err)
	}
	return lc, nil
}

func provideChipConfig(cfg *config.Config) (chip.Config, error) {
	format, err := chip.ParseFormat(cfg.Chip.Format)
	if err != nil {
		return chip.Config{}, err
	}
	return chip.Config{
		Product:  cfg.Chip.Product,
		Format:   format,
		Workers:  cfg.Chip.Workers,
		QueryDay: cfg.Chip.QueryDay,
		Retry: chip.RetryPolicy{
			MaxAttempts: cfg.Chip.Retry.MaxAttempts,
			BaseBackoff: cfg.Chip.Retry.BaseBackoff,
			MaxBackoff:  cfg.Chip.Retry.MaxBackoff,
			Multiplier:  cfg.Chip.Retry.Multiplier,
		},
	}, nil
}

func provideCCDCClient(cfg *config.Config, logger *slog.Logger) *ccdc.Client {
	return ccdc.NewClient(cfg.Upstream.BaseURL, ccdc.Options{
		Timeout:           cfg.Upstream.Timeout,
		RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
		Burst:             cfg.Upstream.Burst,
	}, logger)
}

// provideSource wraps the upstream client with the chip input cache when enabled.
func provideSource(cfg *config.Config, client *ccdc.Client, logger *slog.Logger) (chip.Source, func()) {
	if !cfg.Cache.Enabled {
		return client, func() {}
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return inputcache.NewCachedSource(client, inputcache.NewMemoryStore(), cfg.Cache.TTL, logger), func() {}
	}
	vc, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return inputcache.NewCachedSource(client, inputcache.NewMemoryStore(), cfg.Cache.TTL, logger), func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := vc.Do(ctx, vc.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		vc.Close()
		return inputcache.NewCachedSource(client, inputcache.NewMemoryStore(), cfg.Cache.TTL, logger), func() {}
	}
	logger.Info("chip input cache enabled", "addr", cfg.Cache.Addr)
	store := inputcache.NewValkeyStore(vc, cfg.Cache.Prefix)
	return inputcache.NewCachedSource(client, store, cfg.Cache.TTL, logger), vc.Close
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Cache.Addr, "://") {
		return valkey.ParseURL(cfg.Cache.Addr)
	}
	if strings.TrimSpace(cfg.Cache.Addr) == "" {
		return valkey.ClientOption{}, fmt.Errorf("cache addr is required")
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}, nil
}

func provideObjectStorage(cfg *config.Config, logger *slog.Logger) (chip.ObjectStorage, func(), error) {
	switch strings.ToLower(cfg.Storage.Backend) {
	case "", "memory":
		logger.Info("using in-memory product storage")
		return storage.NewMemoryStorage(), func() {}, nil
	case "s3":
		s3 := cfg.Storage.S3
		store, err := storage.NewS3Storage(s3.Endpoint, s3.AccessKeyID, s3.SecretAccessKey, cfg.Storage.Bucket, s3.Region, s3.UseSSL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init s3 storage: %w", err)
		}
		return store, func() {}, nil
	case "gcs":
		store, err := storage.NewGCSStorage(context.Background(), cfg.Storage.Bucket, cfg.Storage.GCS.CredentialsFile, cfg.Storage.GCS.Endpoint, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init gcs storage: %w", err)
		}
		cleanup := func() {
			if err := store.Close(); err != nil {
				logger.Warn("close gcs client", "error", err)
			}
		}
		return store, cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

func provideRunRepository(cfg *config.Config, logger *slog.Logger) (chip.RunRepository, func()) {
	fallback := runrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory run ledger")
		return fallback, func() {}
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory run ledger", "error", err)
		return fallback, func() {}
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory run ledger", "error", err)
		return fallback, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory run ledger", "error", err)
		pool.Close()
		return fallback, func() {}
	}
	repo := runrepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("run ledger schema setup failed, using memory run ledger", "error", err)
		pool.Close()
		return fallback, func() {}
	}
	logger.Info("postgres run ledger enabled")
	return repo, pool.Close
}

// provideTracerProvider installs the SDK provider globally; cleanup flushes pending spans.
func provideTracerProvider(cfg *config.Config, logger *slog.Logger) (trace.TracerProvider, func(), error) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		ServiceName:  cfg.Telemetry.ServiceName,
		Exporter:     cfg.Telemetry.TraceExporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init tracing: %w", err)
	}
	otel.SetTracerProvider(tp)
	logger.Info("tracing enabled", "exporter", cfg.Telemetry.TraceExporter)
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("shutdown tracer provider", "error", err)
		}
	}
	return tp, cleanup, nil
}
