package di

import (
	"context"
	"fmt"
	"time"

	"LimesMS/internal/domain/repository"
	"LimesMS/internal/handler/api"
	"LimesMS/internal/handler/ws"
	internalrepo "LimesMS/internal/repository"
	svccache "LimesMS/internal/service/cache"
	"LimesMS/internal/service/ratelimit"
	"LimesMS/internal/services/signal"
	"LimesMS/internal/usecase"
	pkgcache "LimesMS/pkg/cache"
	pkgch "LimesMS/pkg/clickhouse"
	"LimesMS/pkg/config"
	xhttp "LimesMS/pkg/http"
	pkgkafka "LimesMS/pkg/kafka"
	applogger "LimesMS/pkg/logger"
	"LimesMS/pkg/metrics"
	"LimesMS/pkg/server"
)

// ProvideLogger builds the app logger. With the collector enabled, repeated
// errors are aggregated and shipped to Kafka through producer.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: "limes",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Log.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Log.Collector.Interval,
			CountThreshold: cfg.Log.Collector.Threshold,
			Topic:          cfg.Log.Collector.Topic,
			IncludeWarn:    cfg.Log.Collector.IncludeWarn,
			Publisher:      producer,
		})
	}
	return l, l.RemoveCollector, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient connects only when a component reads or writes
// ClickHouse; otherwise it returns nil.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.Series.Source != "clickhouse" && cfg.History.Backend != "clickhouse" {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.ClickHouseSchema(cfg.ClickHouse.PricesTable, cfg.ClickHouse.HistoryTable)); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideKafkaProducer returns nil when Kafka is disabled. The producer is
// closed by its cleanup, after the logger's collector has flushed.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideCacheService builds the shared cache: process memory, Redis, or
// Redis fronted by a short-lived memory layer.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, func(), error) {
	if cfg.Cache.Backend == "memory" {
		mem := pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize))
		return mem, func() { _ = mem.Close() }, nil
	}

	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
		pkgcache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
		pkgcache.WithRedisPool(cfg.Cache.Redis.PoolSize, cfg.Cache.Redis.PoolSize/2, 5*time.Second),
		pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	if cfg.Cache.Backend == "redis" {
		return rc, func() { _ = rc.Close() }, nil
	}
	layered := pkgcache.NewLayeredCache(rc,
		pkgcache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
		pkgcache.WithLayeredMemoryTTL(cfg.Series.CacheTTL),
	)
	return layered, func() { _ = layered.Close() }, nil
}

// ProvideBytesCache holds fetched series documents. The memory backend gets
// its own TTL map; otherwise documents are shared through the cache service.
func ProvideBytesCache(cfg *config.Config, shared pkgcache.Service) svccache.BytesCache {
	if cfg.Cache.Backend == "memory" {
		return svccache.NewTTLCache()
	}
	return svccache.NewSharedCache(shared, "series")
}

func ProvideSeriesStore(cfg *config.Config, ch *pkgch.Client, bc svccache.BytesCache, l *applogger.Logger) (repository.SeriesStore, error) {
	naming := internalrepo.NewSeriesNaming(cfg.Series.IntradaySuffix, cfg.Series.IntradaySuffixes)
	switch cfg.Series.Source {
	case "http":
		client := xhttp.NewClient(
			xhttp.WithTimeout(cfg.Series.Timeout),
			xhttp.WithRetry(3, 200*time.Millisecond),
		)
		return internalrepo.NewHTTPSeriesStore(cfg.Series.BaseURL, naming, client, bc, cfg.Series.CacheTTL, l), nil
	case "clickhouse":
		if ch == nil {
			return nil, fmt.Errorf("series source clickhouse: client not configured")
		}
		return internalrepo.NewCHSeriesStore(ch, cfg.ClickHouse.PricesTable, 0, l), nil
	default:
		return internalrepo.NewFileSeriesStore(cfg.Series.Dir, naming, l), nil
	}
}

func ProvideOverrideStore(cfg *config.Config, shared pkgcache.Service) (repository.OverrideStore, func(), error) {
	switch cfg.Overrides.Backend {
	case "cache":
		return internalrepo.NewCacheOverrideStore(shared, cfg.Overrides.TTL), func() {}, nil
	case "sqlite":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := internalrepo.NewSQLiteOverrideStore(ctx, cfg.Overrides.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("override store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	default:
		mem := pkgcache.NewMemoryCache()
		return internalrepo.NewCacheOverrideStore(mem, cfg.Overrides.TTL), func() { _ = mem.Close() }, nil
	}
}

func ProvideSignalHistory(cfg *config.Config, ch *pkgch.Client) repository.SignalHistory {
	switch cfg.History.Backend {
	case "clickhouse":
		if ch != nil {
			return internalrepo.NewCHSignalHistory(ch, cfg.ClickHouse.HistoryTable)
		}
	case "none":
		return nil
	}
	return internalrepo.NewMemorySignalHistory(cfg.History.Size)
}

func ProvideSignalPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.SignalPublisher {
	if producer == nil {
		return internalrepo.NopSignalPublisher{}
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
}

func ProvideAssetCatalog(cfg *config.Config) (repository.AssetCatalog, error) {
	c, err := internalrepo.LoadAssetCatalog(cfg.Series.TickersFile)
	if err != nil {
		return nil, fmt.Errorf("asset catalog: %w", err)
	}
	return c, nil
}

func ProvideProfiles(cfg *config.Config) (*signal.Registry, error) {
	reg, err := signal.NewRegistry(cfg.Signal.Profiles)
	if err != nil {
		return nil, err
	}
	if cfg.Signal.DefaultProfile != "" {
		if err := reg.SetDefault(cfg.Signal.DefaultProfile); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func ProvideSignalService(
	cfg *config.Config,
	series repository.SeriesStore,
	overrides repository.OverrideStore,
	history repository.SignalHistory,
	publisher repository.SignalPublisher,
	catalog repository.AssetCatalog,
	m repository.Metrics,
	profiles *signal.Registry,
	l *applogger.Logger,
) *usecase.SignalService {
	return usecase.NewSignalService(usecase.SignalServiceDeps{
		Series:    series,
		Overrides: overrides,
		History:   history,
		Publisher: publisher,
		Catalog:   catalog,
		Metrics:   m,
		Profiles:  profiles,
		Timeout:   cfg.Signal.ComputeTimeout,
		Logger:    l,
	})
}

func ProvideSignalsHandler(l *applogger.Logger, svc *usecase.SignalService) *api.SignalsEchoHandler {
	return api.NewSignalsEchoHandler(l, svc)
}

func ProvideHub(cfg *config.Config, svc *usecase.SignalService, m repository.Metrics, l *applogger.Logger) *ws.Hub {
	return ws.NewHub(svc, ws.Config{
		RefreshInterval: cfg.Signal.RefreshInterval,
		PingInterval:    cfg.WebSocket.PingInterval,
		WriteTimeout:    cfg.WebSocket.WriteTimeout,
		SendBuffer:      cfg.WebSocket.SendBuffer,
		MaxSessions:     cfg.WebSocket.MaxSessions,
		AllowOrigins:    cfg.Server.AllowOrigins,
	}, m, l)
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
}

func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	signals *api.SignalsEchoHandler,
	hub *ws.Hub,
	limiter *ratelimit.Limiter,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.AllowOrigins...),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	if limiter != nil {
		opts = append(opts, xhttp.WithMiddleware(limiter.Middleware()))
	}
	return xhttp.NewServer(xhttp.Handlers{signals, hub}, l, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	hub *ws.Hub,
) *server.App {
	return server.New(cfg, l, srv, hub)
}
