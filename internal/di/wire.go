//go:build wireinject
// +build wireinject

package di

import (
	"github.com/ybc112/AetherPay/pkg/config"
	"github.com/ybc112/AetherPay/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideRateStore,
		ProvideRatePublisher,
		ProvideRateStream,

		// Ingestion use cases
		ProvideRateProcessor,
		ProvideRateCollector,
		ProvideKafkaRatesHandler,

		// Quote pipeline
		ProvidePriceSources,
		ProvidePredictor,
		ProvideCache,
		ProvidePairClassifier,
		ProvideQuoteAggregator,
		ProvideStrategySelector,
		ProvidePathOptimizer,
		ProvideQuoteService,

		// HTTP layer
		ProvideRateLimiter,
		ProvideHandlers,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
