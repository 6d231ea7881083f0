package di

import (
	"context"
	"fmt"
	"time"

	domrepo "EmaPull/internal/domain/repository"
	"EmaPull/internal/handler/api"
	internalrepo "EmaPull/internal/repository"
	"EmaPull/internal/service/binance"
	"EmaPull/internal/service/stream"
	"EmaPull/internal/usecase"
	"EmaPull/pkg/cache"
	pkgch "EmaPull/pkg/clickhouse"
	"EmaPull/pkg/config"
	xhttp "EmaPull/pkg/http"
	pkgkafka "EmaPull/pkg/kafka"
	applogger "EmaPull/pkg/logger"
	"EmaPull/pkg/metrics"
	"EmaPull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideRedisCache creates the Redis client backing the snapshot cache.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	client, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, cfg.Redis.PoolTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return client, nil
}

// ProvideSnapshotStore creates the snapshot repository over Redis.
func ProvideSnapshotStore(redis *cache.RedisCache) domrepo.SnapshotStore {
	return internalrepo.NewSnapshotStore(redis)
}

// ProvideClickHouseClient creates a ClickHouse client when the candle
// archive is enabled, nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.CandleSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideCandleArchive creates the ClickHouse candle archive, nil when
// disabled.
func ProvideCandleArchive(chClient *pkgch.Client) domrepo.CandleArchive {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseArchive(chClient)
}

// ProvideKafkaProducer creates a Kafka producer when publishing is
// enabled, nil otherwise.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSnapshotPublisher creates the Kafka snapshot publisher, nil
// when Kafka is disabled.
func ProvideSnapshotPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideCandleSource creates the Binance candle source.
func ProvideCandleSource(cfg *config.Config, log *applogger.Logger) domrepo.CandleSource {
	return binance.NewClient(cfg, log)
}

// ProvidePipeline creates the compute pipeline use case.
func ProvidePipeline(
	source domrepo.CandleSource,
	store domrepo.SnapshotStore,
	publisher domrepo.Publisher,
	archive domrepo.CandleArchive,
	rec *metrics.Recorder,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.Pipeline {
	return usecase.NewPipeline(source, store, publisher, archive, usecase.PipelineConfig{
		Symbols:   cfg.Pipeline.Symbols,
		Timeframe: cfg.Pipeline.Timeframe,
		Periods:   cfg.Pipeline.Periods,
		Lookback:  cfg.Pipeline.Lookback,
		TTL:       cfg.Pipeline.TTL,
		PairDelay: cfg.Pipeline.PairDelay,
	}, rec, log)
}

// ProvideStreamUpdater creates the kline stream updater, nil when the
// stream is disabled.
func ProvideStreamUpdater(cfg *config.Config, pipeline *usecase.Pipeline, log *applogger.Logger) *stream.Updater {
	if !cfg.Stream.Enabled {
		return nil
	}
	return stream.NewUpdater(
		cfg.Stream.URL,
		cfg.Pipeline.Timeframe,
		cfg.Pipeline.Symbols,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		pipeline,
		log,
	)
}

// ProvideSnapshotReader creates the read side use case.
func ProvideSnapshotReader(store domrepo.SnapshotStore, cfg *config.Config) *usecase.SnapshotReader {
	return usecase.NewSnapshotReader(store, cfg.Pipeline.Symbols)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	pipeline *usecase.Pipeline,
	updater *stream.Updater,
	redis *cache.RedisCache,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	reader *usecase.SnapshotReader,
	log *applogger.Logger,
) *server.App {
	app := server.New(cfg, pipeline, updater, redis, chClient, log)

	var handler xhttp.Handler = api.NewSnapshotsHandler(log, reader)
	app.SetHTTPHandler(handler)

	if producer != nil {
		app.AddCloser(producer.Close)
	}
	return app
}
