package di

import (
	"context"
	"fmt"
	"time"

	"EnergyView/internal/domain/repository"
	"EnergyView/internal/handler/api"
	internalrepo "EnergyView/internal/repository"
	icache "EnergyView/internal/service/cache"
	"EnergyView/internal/service/ratelimit"
	"EnergyView/internal/services/partition"
	"EnergyView/internal/usecase"
	pkgch "EnergyView/pkg/clickhouse"
	"EnergyView/pkg/config"
	xhttp "EnergyView/pkg/http"
	pkgkafka "EnergyView/pkg/kafka"
	applogger "EnergyView/pkg/logger"
	"EnergyView/pkg/metrics"
	"EnergyView/pkg/server"
)

// ttlCacheEntries bounds the in-process history cache when redis is off.
const ttlCacheEntries = 512

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

func needsClickHouse(cfg *config.Config) bool {
	return cfg.History.Source == "clickhouse" || (cfg.Kafka.Enabled && cfg.Kafka.Topics.PartitionSums != "")
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema.
// It returns nil when neither the history store nor ingestion uses ClickHouse.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, error) {
	if !needsClickHouse(cfg) {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.Schema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse ready", applogger.String("host", cfg.ClickHouse.Host), applogger.String("db", cfg.ClickHouse.Database))
	return client, nil
}

// ProvideRedisCache returns nil when redis is disabled.
func ProvideRedisCache(cfg *config.Config) *icache.RedisCache {
	if !cfg.Cache.Redis.Enabled {
		return nil
	}
	return icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
}

// ProvideHistoryCache layers an in-process cache over redis, or uses the
// in-process cache alone when redis is off.
func ProvideHistoryCache(rc *icache.RedisCache) icache.BytesCache {
	if rc != nil {
		return icache.NewLayeredCache(rc, ttlCacheEntries, 30*time.Second)
	}
	return icache.NewTTLCache(ttlCacheEntries)
}

// ProvideHistoryStore selects the configured history source and puts the
// cache in front of it.
func ProvideHistoryStore(cfg *config.Config, chClient *pkgch.Client, cache icache.BytesCache, l *applogger.Logger) (repository.HistoryStore, error) {
	var store repository.HistoryStore
	switch cfg.History.Source {
	case "clickhouse":
		if chClient == nil {
			return nil, fmt.Errorf("history store: clickhouse client not configured")
		}
		store = internalrepo.NewCHHistoryStore(chClient.DB(), l)
	case "http":
		client := xhttp.NewClient(
			xhttp.WithBaseURL(cfg.Upstream.BaseURL),
			xhttp.WithTimeout(cfg.Upstream.Timeout),
			xhttp.WithRetry(cfg.Upstream.MaxRetries, cfg.Upstream.RetryDelay),
		)
		store = internalrepo.NewHTTPHistoryStore(client, l)
	default:
		return nil, fmt.Errorf("history store: unknown source %q", cfg.History.Source)
	}
	return internalrepo.NewCachedHistoryStore(store, cache, cfg.Cache.TTL, l), nil
}

// ProvidePieChartBuilder creates the chart builder with the configured base colour.
func ProvidePieChartBuilder(cfg *config.Config) (*usecase.PieChartBuilder, error) {
	b, err := usecase.NewPieChartBuilder(cfg.Chart.BaseColor)
	if err != nil {
		return nil, fmt.Errorf("chart builder: %w", err)
	}
	return b, nil
}

// ProvideKafkaProducer creates the shared producer, or nil when kafka is off.
// With the log digest enabled it also starts forwarding warnings and errors.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	if cfg.Logging.Digest.Enabled {
		l.AttachDigest(&applogger.DigestConfig{
			Interval:  cfg.Logging.Digest.Interval,
			Threshold: cfg.Logging.Digest.Threshold,
			Topic:     cfg.Logging.Digest.Topic,
			Publisher: producer,
		})
	}
	return producer, nil
}

// ProvideHistoryService creates the chart use case. Insights are published
// when a producer and an insights topic are configured.
func ProvideHistoryService(
	cfg *config.Config,
	store repository.HistoryStore,
	builder *usecase.PieChartBuilder,
	m repository.Metrics,
	producer *pkgkafka.Producer,
	l *applogger.Logger,
) *usecase.HistoryService {
	svc := usecase.NewHistoryService(store, builder, m, l)
	if producer != nil && cfg.Kafka.Topics.Insights != "" {
		svc.SetPublisher(internalrepo.NewKafkaInsightPublisher(producer, cfg.Kafka.Topics.Insights))
	}
	return svc
}

// ProvideKafkaConsumer creates the partition-sum ingestion consumer, or nil
// when there is nothing to ingest.
func ProvideKafkaConsumer(cfg *config.Config, chClient *pkgch.Client, m repository.Metrics, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.Topics.PartitionSums == "" {
		return nil, nil
	}
	if chClient == nil {
		return nil, fmt.Errorf("kafka consumer: clickhouse client not configured")
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers, cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	writer := internalrepo.NewCHPartitionWriter(chClient.DB())
	consumer.RegisterHandler(usecase.NewPartitionSumsHandler(cfg.Kafka.Topics.PartitionSums, writer, m))
	return consumer, nil
}

// ProvideHandlers creates the REST and WebSocket handlers.
func ProvideHandlers(
	cfg *config.Config,
	svc *usecase.HistoryService,
	chClient *pkgch.Client,
	rc *icache.RedisCache,
	l *applogger.Logger,
) ([]xhttp.Handler, error) {
	view, err := partition.ParseView(cfg.Chart.DefaultView)
	if err != nil {
		return nil, fmt.Errorf("chart.default_view: %w", err)
	}

	pie := api.NewPieEchoHandler(l, svc, view)
	if cfg.Server.RateLimit.Enabled {
		pie.SetRateLimiter(ratelimit.New(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst))
	}
	if chClient != nil {
		pie.AddHealthCheck("clickhouse", chClient)
	}
	if rc != nil {
		pie.AddHealthCheck("redis", rc)
	}

	ws := api.NewPieSocketHandler(l, svc, view, cfg.Server.AllowOrigins)
	return []xhttp.Handler{pie, ws}, nil
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, handlers []xhttp.Handler, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(l, handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(cfg.Server.AllowOrigins),
		xhttp.WithMetricsPath(metricsPath),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	rc *icache.RedisCache,
) *server.App {
	return server.New(cfg, l, srv, consumer, producer, chClient, rc)
}
