//go:build wireinject
// +build wireinject

package di

import (
	"EnergyView/pkg/config"
	"EnergyView/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisCache,
		ProvideKafkaProducer,

		// Repositories
		ProvideHistoryCache,
		ProvideHistoryStore,

		// Use cases
		ProvidePieChartBuilder,
		ProvideHistoryService,
		ProvideKafkaConsumer,

		// Transport
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
