//go:build wireinject
// +build wireinject

package di

import (
	"EmaPull/pkg/config"
	"EmaPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideSnapshotStore,
		ProvideCandleArchive,
		ProvideSnapshotPublisher,
		ProvideCandleSource,

		// Use cases
		ProvidePipeline,
		ProvideStreamUpdater,
		ProvideSnapshotReader,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
