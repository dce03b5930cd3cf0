package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	icache "EnergyView/internal/service/cache"
	pkgch "EnergyView/pkg/clickhouse"
	"EnergyView/pkg/config"
	xhttp "EnergyView/pkg/http"
	pkgkafka "EnergyView/pkg/kafka"
	applogger "EnergyView/pkg/logger"
)

// App encapsulates the entire application lifecycle. Every infrastructure
// client except the HTTP server is optional and may be nil.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	producer   *pkgkafka.Producer
	chClient   *pkgch.Client
	redis      *icache.RedisCache
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	redis *icache.RedisCache,
) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		httpServer: httpServer,
		consumer:   consumer,
		producer:   producer,
		chClient:   chClient,
		redis:      redis,
	}
}

// Run starts the application and blocks until ctx is cancelled or an
// interrupt arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.consumer != nil {
		if err := a.consumer.Start(ctx); err != nil {
			a.l.Error("kafka consumer start error", applogger.Error(err))
			a.shutdown()
			return err
		}
		a.l.Info("kafka consumer started", applogger.String("group", a.cfg.Kafka.Consumer.GroupID))
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		a.shutdown()
		return err
	}
	a.l.Info("energyview started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("history_source", a.cfg.History.Source),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	a.shutdown()
	return nil
}

// shutdown stops intake first, then flushes and closes outbound clients.
func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// the digest publishes through the producer, so it goes first
	a.l.DetachDigest()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.l.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.l.Warn("redis close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
}
