package di

import (
	"context"
	"fmt"
	"time"

	drepo "github.com/ybc112/AetherPay/internal/domain/repository"
	domsvc "github.com/ybc112/AetherPay/internal/domain/service"
	"github.com/ybc112/AetherPay/internal/handler/api"
	mid "github.com/ybc112/AetherPay/internal/middleware"
	internalrepo "github.com/ybc112/AetherPay/internal/repository"
	"github.com/ybc112/AetherPay/internal/service/binancews"
	"github.com/ybc112/AetherPay/internal/service/ratelimit"
	"github.com/ybc112/AetherPay/internal/services/inference"
	"github.com/ybc112/AetherPay/internal/services/pricefeed"
	"github.com/ybc112/AetherPay/internal/usecase"
	"github.com/ybc112/AetherPay/pkg/cache"
	pkgch "github.com/ybc112/AetherPay/pkg/clickhouse"
	"github.com/ybc112/AetherPay/pkg/config"
	pkgkafka "github.com/ybc112/AetherPay/pkg/kafka"
	applogger "github.com/ybc112/AetherPay/pkg/logger"
	"github.com/ybc112/AetherPay/pkg/metrics"
	"github.com/ybc112/AetherPay/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client when storage is configured.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.ClickHouse.Host == "" {
		return nil, nil
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
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideRateStore creates the ClickHouse-backed rate store and its schema.
func ProvideRateStore(chClient *pkgch.Client, cfg *config.Config) (drepo.RateStore, error) {
	if chClient == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseRateStore(chClient.DB(), cfg.ClickHouse.Database+".exchange_rates")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := chClient.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
	}); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("rate store schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer when brokers are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
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
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer for the ticks topic.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Consumer.GroupID == "" {
		return nil, nil
	}
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

// ProvideRatePublisher creates the Kafka publisher repository.
func ProvideRatePublisher(producer *pkgkafka.Producer, cfg *config.Config) drepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.TicksTopic, cfg.Kafka.DecisionsTopic)
}

// ProvideKafkaRatesHandler registers the handler for the ticks topic.
// The handler needs ClickHouse to land ticks, so it is nil without storage.
func ProvideKafkaRatesHandler(store drepo.RateStore, m drepo.Metrics, cfg *config.Config) *usecase.KafkaRatesHandler {
	if store == nil {
		return nil
	}
	return usecase.NewKafkaRatesHandler(cfg.Kafka.TicksTopic, store, m)
}

// ProvideRateStream creates the exchange WebSocket stream.
func ProvideRateStream(cfg *config.Config) drepo.RateStream {
	if cfg.Stream.URL == "" {
		return nil
	}
	return binancews.New(
		cfg.Stream.URL,
		cfg.Stream.Pairs,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
	)
}

// ProvideRateProcessor creates the rate processor use case.
func ProvideRateProcessor(
	pub drepo.Publisher,
	store drepo.RateStore,
	m drepo.Metrics,
	cfg *config.Config,
) *usecase.RateProcessor {
	return usecase.NewRateProcessor(
		pub,
		store,
		m,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideRateCollector creates the rate collector with the throttling pipeline.
func ProvideRateCollector(
	stream drepo.RateStream,
	processor *usecase.RateProcessor,
	m drepo.Metrics,
) *usecase.RateCollector {
	if stream == nil {
		return nil
	}
	pipe := mid.NewRealtimePipeline(processor, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewRateCollector(stream, processor, m, pipe)
}

// ProvidePriceSources builds the REST price sources from config.
func ProvidePriceSources(cfg *config.Config) []domsvc.PriceSource {
	return pricefeed.Build(cfg.Sources.Enabled, cfg.Sources.Timeout)
}

// ProvidePredictor creates the HTTP model client.
func ProvidePredictor(cfg *config.Config) domsvc.Predictor {
	return inference.NewHTTPPredictor(cfg.Inference.ServiceURL, cfg.Inference.Timeout, cfg.Oracle.Horizon)
}

// ProvideCache creates the quote cache, layered over Redis when enabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return cache.NewLayeredCache(redisCache), nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvidePairClassifier creates the pair classifier.
func ProvidePairClassifier() *usecase.PairClassifier {
	return usecase.NewPairClassifier()
}

// ProvideQuoteAggregator creates the multi-source aggregator.
func ProvideQuoteAggregator(
	sources []domsvc.PriceSource,
	cfg *config.Config,
	m drepo.Metrics,
	l *applogger.Logger,
) *usecase.QuoteAggregator {
	return usecase.NewQuoteAggregator(
		sources,
		cfg.Aggregator.ReferencePrices,
		cfg.Aggregator.MaxDeviation,
		cfg.Sources.Timeout,
		m,
		l,
	)
}

// ProvideStrategySelector creates the prediction strategy selector.
func ProvideStrategySelector(cfg *config.Config) *usecase.StrategySelector {
	return usecase.NewStrategySelector(cfg.Oracle.Horizon, cfg.Oracle.HorizonScale, cfg.Oracle.ModelQuality)
}

// ProvidePathOptimizer creates the settlement path optimizer.
func ProvidePathOptimizer() *usecase.PathOptimizer {
	return usecase.NewPathOptimizer(nil)
}

// ProvideQuoteService creates the quote orchestrator.
func ProvideQuoteService(
	classifier *usecase.PairClassifier,
	aggregator *usecase.QuoteAggregator,
	strategy *usecase.StrategySelector,
	optimizer *usecase.PathOptimizer,
	store drepo.RateStore,
	predictor domsvc.Predictor,
	cacheSvc cache.Service,
	publisher drepo.Publisher,
	m drepo.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.QuoteService {
	return usecase.NewQuoteService(
		classifier,
		aggregator,
		strategy,
		optimizer,
		store,
		predictor,
		cacheSvc,
		publisher,
		m,
		l,
		cfg.Cache.QuoteTTL,
		cfg.Cache.AmountBucket,
	)
}

// ProvideRateLimiter creates the per-client token bucket limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideHandlers creates the HTTP route groups.
func ProvideHandlers(
	l *applogger.Logger,
	qs *usecase.QuoteService,
	limiter *ratelimit.Limiter,
	store drepo.RateStore,
	collector *usecase.RateCollector,
	cfg *config.Config,
) *api.Handlers {
	quote := api.NewQuoteEchoHandler(l, qs, limiter, cfg.RateLimit.Enabled, cfg.RateLimit.Max, cfg.RateLimit.Window)

	var health *api.HealthEchoHandler
	if collector != nil {
		health = api.NewHealthEchoHandler(store, collector)
	} else {
		health = api.NewHealthEchoHandler(store, nil)
	}
	return api.NewHandlers(quote, health)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.RateCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaRatesHandler,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	processor *usecase.RateProcessor,
	handlers *api.Handlers,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	var handler pkgkafka.MessageHandler
	if kh != nil {
		handler = kh
	}
	app := server.New(cfg, l, collector, consumer, handler, producer, chClient)
	app.SetHTTPHandler(handlers)
	app.RateProc = processor
	return app
}
