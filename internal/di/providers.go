package di

import (
	"context"
	"fmt"
	"time"

	domrepo "FinFold/internal/domain/repository"
	"FinFold/internal/handler/api"
	"FinFold/internal/handler/ws"
	mid "FinFold/internal/middleware"
	internalrepo "FinFold/internal/repository"
	"FinFold/internal/strategy"
	"FinFold/internal/usecase"
	"FinFold/pkg/cache"
	pkgch "FinFold/pkg/clickhouse"
	"FinFold/pkg/config"
	xhttp "FinFold/pkg/http"
	pkgkafka "FinFold/pkg/kafka"
	applogger "FinFold/pkg/logger"
	"FinFold/pkg/metrics"
	"FinFold/pkg/queue"
	"FinFold/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when no host
// is configured (pure CSV deployments).
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

// ProvideDatasetSource selects the configured dataset backend.
func ProvideDatasetSource(cfg *config.Config, ch *pkgch.Client, log *applogger.Logger) (domrepo.DatasetSource, error) {
	switch cfg.Dataset.Source {
	case "csv":
		return internalrepo.NewCSVDatasetStore(cfg.Dataset.CSVPath, cfg.Dataset.TimestampColumn), nil
	case "clickhouse":
		if ch == nil {
			return nil, fmt.Errorf("dataset.source is clickhouse but no clickhouse.host configured")
		}
		valCols := append(append([]string{}, cfg.Evaluation.FeatureColumns...), cfg.Evaluation.TargetColumn)
		store := internalrepo.NewCHDatasetStore(ch, cfg.Dataset.Table, cfg.Dataset.TimestampColumn, valCols)
		store.SetLogger(log)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Dataset.Source)
	}
}

// ProvideResultStore creates the ClickHouse result sink, or nil without a
// ClickHouse client. Rows then live only in the cache.
func ProvideResultStore(cfg *config.Config, ch *pkgch.Client) (*internalrepo.CHResultStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewCHResultStore(ch, cfg.ClickHouse.ResultTable)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("result store init: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer when Kafka is enabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatch(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher creates the results publisher over Kafka.
func ProvidePublisher(cfg *config.Config, producer *pkgkafka.Producer) domrepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.ResultsTopic)
}

// ProvideKafkaConsumer creates the runs-topic consumer when Kafka is enabled.
func ProvideKafkaConsumer(cfg *config.Config, log *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.RunsTopic == "" {
		return nil, nil
	}

	consumer, err := pkgkafka.NewConsumer(log,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaRunsHandler builds the handler for queued run requests.
func ProvideKafkaRunsHandler(cfg *config.Config, runner *usecase.Runner, log *applogger.Logger) *usecase.KafkaRunsHandler {
	return usecase.NewKafkaRunsHandler(cfg.Kafka.RunsTopic, runner, log)
}

// ProvideRedisCache connects to Redis when enabled.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCacheService layers an in-process cache over Redis. Without Redis
// there is no shared cache; run results stay in the runner's memory.
func ProvideCacheService(rc *cache.RedisCache) cache.Service {
	if rc == nil {
		return nil
	}
	return cache.NewLayeredCache(rc)
}

// ProvideRegistry builds the strategy registry from config.
func ProvideRegistry(cfg *config.Config) *strategy.Registry {
	opts := []strategy.Option{}
	if cfg.RemoteModel.BaseURL != "" {
		opts = append(opts, strategy.WithRemote(cfg.RemoteModel.BaseURL, cfg.RemoteModel.Timeout))
	}
	return strategy.NewRegistry(opts...)
}

// ProvideProgressPipeline builds the per-run event fan-out.
func ProvideProgressPipeline(m domrepo.Metrics) *mid.ProgressPipeline {
	return mid.NewProgressPipeline(m)
}

// ProvideRunner assembles the evaluation runner with whatever optional
// plumbing the config enables.
func ProvideRunner(
	cfg *config.Config,
	source domrepo.DatasetSource,
	registry *strategy.Registry,
	m domrepo.Metrics,
	log *applogger.Logger,
	store *internalrepo.CHResultStore,
	publisher domrepo.Publisher,
	cacheSvc cache.Service,
	pipeline *mid.ProgressPipeline,
) *usecase.Runner {
	opts := []usecase.RunnerOption{usecase.WithProgress(pipeline)}
	if store != nil {
		opts = append(opts, usecase.WithSink(store), usecase.WithRowFetcher(store))
	}
	if publisher != nil {
		opts = append(opts, usecase.WithPublisher(publisher))
	}
	if cacheSvc != nil {
		ttl := cfg.Redis.CacheTTL
		if ttl <= 0 {
			ttl = time.Hour
		}
		opts = append(opts, usecase.WithCache(cacheSvc, ttl))
	}
	return usecase.NewRunner(source, registry, m, log, opts...)
}

// ProvideQueue builds the Redis-backed job queue with the run job
// registered, or nil when Redis is disabled.
func ProvideQueue(cfg *config.Config, log *applogger.Logger, rc *cache.RedisCache, runner *usecase.Runner) *queue.RedisQueue {
	if rc == nil {
		return nil
	}
	qcfg := &queue.Config{
		Workers:    cfg.Redis.Queue.Workers,
		RetryLimit: cfg.Redis.Queue.RetryLimit,
		RetryDelay: cfg.Redis.Queue.RetryDelay,
	}
	q := queue.NewRedisQueue(log, qcfg, rc.Client(), queue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewRunJob(runner, log))
	return q
}

// ProvideHTTPServer wires the API, websocket, and health handlers into the
// Echo server.
func ProvideHTTPServer(
	cfg *config.Config,
	log *applogger.Logger,
	runner *usecase.Runner,
	q *queue.RedisQueue,
	pipeline *mid.ProgressPipeline,
	ch *pkgch.Client,
	rc *cache.RedisCache,
) *xhttp.Server {
	var qs queue.Service
	if q != nil {
		qs = q
	}

	checks := map[string]api.HealthCheck{}
	if ch != nil {
		checks["clickhouse"] = ch.Health
	}
	if rc != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rc.Client().Ping(ctx).Err()
		}
	}

	handlers := []xhttp.Handler{
		api.NewRunsHandler(log, runner, qs),
		api.NewHealthHandler(checks),
		ws.NewProgressHandler(log, runner, pipeline),
	}

	return xhttp.NewServer(handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(log),
	)
}

// kafkaLogSink adapts the producer to the log collector's publisher.
type kafkaLogSink struct {
	producer *pkgkafka.Producer
}

func (s kafkaLogSink) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return s.producer.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaRunsHandler,
	q *queue.RedisQueue,
	ch *pkgch.Client,
	rc *cache.RedisCache,
	store *internalrepo.CHResultStore,
	publisher domrepo.Publisher,
	runner *usecase.Runner,
	producer *pkgkafka.Producer,
) *server.App {
	if producer != nil && cfg.Kafka.LogsTopic != "" {
		log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      kafkaLogSink{producer: producer},
		})
	}

	return server.New(cfg, log, httpServer,
		server.WithKafka(consumer, kh),
		server.WithQueue(q),
		server.WithClickHouse(ch),
		server.WithRedis(rc),
		server.WithResultStore(store),
		server.WithPublisher(publisher),
		server.WithRunner(runner),
	)
}
