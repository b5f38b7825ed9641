package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"CoinDash/internal/domain/repository"
	domsvc "CoinDash/internal/domain/service"
	"CoinDash/internal/handler/api"
	mid "CoinDash/internal/middleware"
	internalrepo "CoinDash/internal/repository"
	"CoinDash/internal/service/marketdata"
	"CoinDash/internal/usecase"
	pkgcache "CoinDash/pkg/cache"
	pkgch "CoinDash/pkg/clickhouse"
	"CoinDash/pkg/config"
	pkgkafka "CoinDash/pkg/kafka"
	applogger "CoinDash/pkg/logger"
	"CoinDash/pkg/metrics"
	"CoinDash/pkg/queue"
	"CoinDash/pkg/server"
)

// ProvideLogger creates the application logger from config.
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

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
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
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS coindash",
		"CREATE TABLE IF NOT EXISTS coindash.prices_raw (ts DateTime64(3), symbol String, price Float64, volume Float64, source String, event_id String) ENGINE=MergeTree ORDER BY (symbol, ts)",
		"CREATE TABLE IF NOT EXISTS coindash.prices_1h (ts DateTime, symbol String, price Float64, volume Float64) ENGINE=ReplacingMergeTree ORDER BY (symbol, ts)",
		"CREATE TABLE IF NOT EXISTS coindash.prices_4h (ts DateTime, symbol String, price Float64, volume Float64) ENGINE=ReplacingMergeTree ORDER BY (symbol, ts)",
		"CREATE TABLE IF NOT EXISTS coindash.prices_1d (ts DateTime, symbol String, price Float64, volume Float64) ENGINE=ReplacingMergeTree ORDER BY (symbol, ts)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
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
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePriceStorage creates ClickHouse storage repository.
func ProvidePriceStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".prices_raw")
}

// ProvidePricePublisher creates Kafka publisher repository.
func ProvidePricePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideEventPublisher creates the Kafka publisher for signal and trade events.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.SignalsTopic, cfg.Kafka.TradesTopic)
}

// ProvideKafkaPricesHandler registers the handler for the prices topic.
func ProvideKafkaPricesHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaPricesHandler {
	return usecase.NewKafkaPricesHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideMarketStream creates the exchange WebSocket stream.
func ProvideMarketStream(cfg *config.Config) repository.MarketStream {
	return marketdata.NewStream(
		cfg.MarketData.APIKey,
		cfg.MarketData.WebSocketURL,
		cfg.MarketData.Symbols,
		cfg.MarketData.ReconnectDelay,
		cfg.MarketData.PingInterval,
	)
}

// ProvideRESTClient creates the rate-limited exchange REST client.
func ProvideRESTClient(cfg *config.Config) *marketdata.RESTClient {
	return marketdata.NewRESTClient(marketdata.RESTConfig{
		BaseURL:        cfg.MarketData.RESTBaseURL,
		APIKey:         cfg.MarketData.APIKey,
		RequestsPerMin: cfg.MarketData.RequestsPerMin,
		QuoteCacheTTL:  cfg.MarketData.QuoteCacheTTL,
		NewsCacheTTL:   cfg.MarketData.NewsCacheTTL,
	})
}

// ProvideQuoteProvider exposes the REST client as a quote source.
func ProvideQuoteProvider(rc *marketdata.RESTClient) domsvc.QuoteProvider { return rc }

// ProvideNewsProvider exposes the REST client as a headline source.
func ProvideNewsProvider(rc *marketdata.RESTClient) domsvc.NewsProvider { return rc }

// ProvideHistoryStore creates the ClickHouse historical series store.
func ProvideHistoryStore(chClient *pkgch.Client, l *applogger.Logger) repository.HistoryStore {
	store := internalrepo.NewCHHistoryStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideRedisClient creates the Redis client backing the job queue.
// Returns nil when Redis is disabled; the app then runs without the
// asynchronous backtest path.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideJobQueue creates the Redis-backed job queue in combined
// publisher/worker mode.
func ProvideJobQueue(l *applogger.Logger, cfg *config.Config, client *redis.Client) *queue.RedisQueue {
	if client == nil {
		return nil
	}
	opts := []queue.RedisQueueOption{}
	if cfg.Queue.Name != "" {
		opts = append(opts, queue.WithKeyPrefix("coindash:queue:"+cfg.Queue.Name))
	}
	return queue.NewRedisQueue(l, &queue.QueueConfig{Workers: cfg.Queue.Workers}, client, queue.ModeProducerConsumer, opts...)
}

// ProvideRunStore creates the store for run records. When Redis is enabled
// the records are written through to a shared cache so status queries work
// across replicas; otherwise they live in process memory only.
func ProvideRunStore(cfg *config.Config, l *applogger.Logger) *usecase.RunStore {
	if cfg.Redis.Enabled {
		host, port := splitHostPort(cfg.Redis.Addr, 6379)
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(host),
			pkgcache.WithRedisPort(port),
			pkgcache.WithRedisPassword(cfg.Redis.Password),
			pkgcache.WithRedisDB(cfg.Redis.DB),
		)
		if err != nil {
			l.Warn("redis cache unavailable, run records kept in memory", applogger.Error(err))
		} else {
			return usecase.NewSharedRunStore(rc, cfg.Queue.ResultTTL)
		}
	}
	return usecase.NewRunStore(cfg.Queue.ResultTTL)
}

func splitHostPort(addr string, defPort int) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, defPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, defPort
	}
	return host, port
}

// ProvideSyntheticFactory enables the deterministic synthetic data source
// when configured. Nil disables synthetic runs.
func ProvideSyntheticFactory(cfg *config.Config) func(seed int64) repository.HistoryStore {
	if !cfg.Backtest.AllowSynthetic {
		return nil
	}
	return func(seed int64) repository.HistoryStore {
		return marketdata.NewSyntheticHistory(seed)
	}
}

// ProvideBacktestJobUseCase creates the backtest runner use case.
func ProvideBacktestJobUseCase(
	jobQueue *queue.RedisQueue,
	history repository.HistoryStore,
	synthetic func(seed int64) repository.HistoryStore,
	events repository.EventPublisher,
	m repository.Metrics,
	store *usecase.RunStore,
	l *applogger.Logger,
) *usecase.BacktestJobUseCase {
	var publisher queue.QueueService
	if jobQueue != nil {
		publisher = jobQueue
	}
	return usecase.NewBacktestJobUseCase(publisher, history, synthetic, events, m, store, l)
}

// ProvideCandlesUseCase creates the historical series use case.
func ProvideCandlesUseCase(history repository.HistoryStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(history)
}

// ProvidePortfolioUseCase creates the portfolio valuation use case.
func ProvidePortfolioUseCase(quotes domsvc.QuoteProvider, l *applogger.Logger) *usecase.PortfolioUseCase {
	return usecase.NewPortfolioUseCase(quotes, l)
}

// ProvideNewsUseCase creates the headline sentiment use case.
func ProvideNewsUseCase(news domsvc.NewsProvider) *usecase.NewsUseCase {
	return usecase.NewNewsUseCase(news)
}

// ProvideDashboardHandler creates the Echo HTTP handler.
func ProvideDashboardHandler(
	l *applogger.Logger,
	backtests *usecase.BacktestJobUseCase,
	candles *usecase.CandlesUseCase,
	portfolio *usecase.PortfolioUseCase,
	quotes domsvc.QuoteProvider,
	news *usecase.NewsUseCase,
) *api.DashboardHandler {
	return api.NewDashboardHandler(l, backtests, candles, portfolio, quotes, news)
}

// ProvidePriceProcessor creates the price processor use case.
func ProvidePriceProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.PriceProcessor {
	return usecase.NewPriceProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvidePriceCollector creates the realtime price collector use case.
func ProvidePriceCollector(
	stream repository.MarketStream,
	processor *usecase.PriceProcessor,
	metrics repository.Metrics,
) *usecase.PriceCollector {
	// Build middleware pipeline between WebSocket and the backend
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewPriceCollector(stream, processor, metrics, pipe)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.PriceCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaPricesHandler,
	chClient *pkgch.Client,
	jobQueue *queue.RedisQueue,
	backtests *usecase.BacktestJobUseCase,
	handler *api.DashboardHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	if jobQueue != nil {
		jobQueue.RegisterJob(backtests)
	}
	app := server.New(cfg, l, collector, consumer, kh, chClient, jobQueue)
	app.SetHTTPHandler(handler)
	if collector != nil {
		app.PriceProc = collector.Processor()
	}
	return app
}
