package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FinFold/internal/domain/models"
	domrepo "FinFold/internal/domain/repository"
	internalrepo "FinFold/internal/repository"
	"FinFold/internal/usecase"
	"FinFold/pkg/cache"
	pkgch "FinFold/pkg/clickhouse"
	"FinFold/pkg/config"
	xhttp "FinFold/pkg/http"
	pkgkafka "FinFold/pkg/kafka"
	applogger "FinFold/pkg/logger"
	"FinFold/pkg/queue"
	"FinFold/pkg/util"
)

// AppOption attaches optional infrastructure to the App.
type AppOption func(*App)

// WithKafka attaches the runs-topic consumer.
func WithKafka(consumer *pkgkafka.Consumer, handler pkgkafka.MessageHandler) AppOption {
	return func(a *App) {
		a.consumer = consumer
		a.kafkaHandler = handler
	}
}

// WithQueue attaches the Redis job queue.
func WithQueue(q *queue.RedisQueue) AppOption {
	return func(a *App) { a.queue = q }
}

// WithClickHouse attaches the ClickHouse client for shutdown.
func WithClickHouse(ch *pkgch.Client) AppOption {
	return func(a *App) { a.chClient = ch }
}

// WithRedis attaches the Redis cache for shutdown.
func WithRedis(rc *cache.RedisCache) AppOption {
	return func(a *App) { a.redisCache = rc }
}

// WithResultStore attaches the result sink for shutdown.
func WithResultStore(store *internalrepo.CHResultStore) AppOption {
	return func(a *App) { a.resultStore = store }
}

// WithPublisher attaches the results publisher for shutdown.
func WithPublisher(p domrepo.Publisher) AppOption {
	return func(a *App) { a.publisher = p }
}

// WithRunner attaches the evaluation runner for one-shot mode.
func WithRunner(r *usecase.Runner) AppOption {
	return func(a *App) { a.runner = r }
}

// App owns the process lifecycle: it starts the HTTP server and the
// optional Kafka and queue consumers, then tears everything down in
// reverse order on SIGINT/SIGTERM.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server

	consumer     *pkgkafka.Consumer
	kafkaHandler pkgkafka.MessageHandler
	queue        *queue.RedisQueue
	chClient     *pkgch.Client
	redisCache   *cache.RedisCache
	resultStore  *internalrepo.CHResultStore
	publisher    domrepo.Publisher
	runner       *usecase.Runner
}

// New creates the application.
func New(cfg *config.Config, log *applogger.Logger, httpServer *xhttp.Server, opts ...AppOption) *App {
	a := &App{cfg: cfg, log: log, httpServer: httpServer}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunOnce executes a single evaluation built from the config's evaluation
// section, then tears down. Used for batch runs without the HTTP surface.
func (a *App) RunOnce(ctx context.Context) error {
	spec, err := a.specFromConfig()
	if err != nil {
		return err
	}

	result, err := a.runner.Execute(ctx, spec)
	if err != nil {
		a.shutdown()
		return err
	}

	a.log.Info("evaluation finished",
		applogger.String("run_id", result.Summary.RunID),
		applogger.Int("windows", result.Summary.Windows),
		applogger.Int("rows", result.Summary.Rows),
	)
	return a.shutdown()
}

func (a *App) specFromConfig() (models.RunSpec, error) {
	ev := a.cfg.Evaluation

	initialTrain, err := util.ParseSpan(ev.InitialTrainSpan)
	if err != nil {
		return models.RunSpec{}, fmt.Errorf("evaluation.initial_train_span: %w", err)
	}
	test, err := util.ParseSpan(ev.TestSpan)
	if err != nil {
		return models.RunSpec{}, fmt.Errorf("evaluation.test_span: %w", err)
	}
	step, err := util.ParseSpan(ev.StepSpan)
	if err != nil {
		return models.RunSpec{}, fmt.Errorf("evaluation.step_span: %w", err)
	}

	return models.RunSpec{
		ID:               usecase.NewRunID(),
		InitialTrainSpan: initialTrain,
		TestSpan:         test,
		StepSpan:         step,
		FeatureColumns:   ev.FeatureColumns,
		TargetColumn:     ev.TargetColumn,
		Scaler:           ev.Scaler,
		Model:            ev.Model,
		PnLUpper:         ev.PnLUpper,
		PnLLower:         ev.PnLLower,
	}, nil
}

// Run starts all services and blocks until interrupted.
func (a *App) Run() error {
	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			return err
		}
		a.log.Info("job queue started", applogger.Int("workers", a.cfg.Redis.Queue.Workers))
	}

	if a.consumer != nil && a.kafkaHandler != nil {
		a.consumer.RegisterHandler(a.kafkaHandler)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kafkaHandler.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.log.Info("http server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops intake first (HTTP, consumers), then closes clients.
func (a *App) shutdown() error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop", applogger.Error(err))
		}
	}

	if a.queue != nil {
		if err := a.queue.Stop(ctx); err != nil {
			a.log.Warn("queue stop", applogger.Error(err))
		}
	}

	// Flush aggregated logs while the producer is still open.
	a.log.RemoveCollector()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close", applogger.Error(err))
		}
	}

	if a.resultStore != nil {
		if err := a.resultStore.Close(); err != nil {
			a.log.Warn("result store close", applogger.Error(err))
		}
	}

	if a.redisCache != nil {
		if err := a.redisCache.Close(); err != nil {
			a.log.Warn("redis close", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
