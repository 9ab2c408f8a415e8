//go:build wireinject
// +build wireinject

package di

import (
	"FinFold/pkg/config"
	"FinFold/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisCache,
		ProvideCacheService,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideDatasetSource,
		ProvideResultStore,
		ProvidePublisher,

		// Use cases
		ProvideRegistry,
		ProvideProgressPipeline,
		ProvideRunner,
		ProvideQueue,
		ProvideKafkaRunsHandler,

		// Transport
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
