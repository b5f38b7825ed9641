//go:build wireinject
// +build wireinject

package di

import (
	"CoinDash/pkg/config"
	"CoinDash/pkg/server"

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
		ProvideRedisClient,
		ProvideJobQueue,

		// Repositories
		ProvidePriceStorage,
		ProvidePricePublisher,
		ProvideEventPublisher,
		ProvideHistoryStore,
		ProvideMarketStream,
		ProvideRESTClient,
		ProvideQuoteProvider,
		ProvideNewsProvider,

		// Use cases
		ProvidePriceProcessor,
		ProvidePriceCollector,
		ProvideKafkaPricesHandler,
		ProvideRunStore,
		ProvideSyntheticFactory,
		ProvideBacktestJobUseCase,
		ProvideCandlesUseCase,
		ProvidePortfolioUseCase,
		ProvideNewsUseCase,

		// HTTP surface and application server
		ProvideDashboardHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
