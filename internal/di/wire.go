//go:build wireinject
// +build wireinject

package di

import (
	"LimesMS/pkg/config"
	"LimesMS/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvideCacheService,
		ProvideBytesCache,

		// Repositories
		ProvideSeriesStore,
		ProvideOverrideStore,
		ProvideSignalHistory,
		ProvideSignalPublisher,
		ProvideAssetCatalog,
		ProvideProfiles,

		// Use cases
		ProvideSignalService,

		// Transport
		ProvideSignalsHandler,
		ProvideHub,
		ProvideRateLimiter,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
