package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"FinFold/internal/domain/models"
	domrepo "FinFold/internal/domain/repository"
	"FinFold/internal/middleware"
	"FinFold/internal/strategy"
	"FinFold/internal/walkforward"
	"FinFold/pkg/cache"
	applogger "FinFold/pkg/logger"
)

// ErrRunNotFound is returned for unknown run IDs.
var ErrRunNotFound = errors.New("run not found")

// RowFetcher pages stored prediction rows. Satisfied by the ClickHouse
// result store.
type RowFetcher interface {
	FetchRows(ctx context.Context, runID string, offset, limit int) ([]models.PredictionRecord, int64, error)
}

// RunnerOption configures Runner.
type RunnerOption func(*Runner)

// WithSink persists prediction rows after each run.
func WithSink(sink domrepo.ResultSink) RunnerOption {
	return func(r *Runner) { r.sink = sink }
}

// WithRowFetcher enables paged row reads for finished runs.
func WithRowFetcher(f RowFetcher) RunnerOption {
	return func(r *Runner) { r.fetcher = f }
}

// WithPublisher emits summaries and row batches downstream.
func WithPublisher(p domrepo.Publisher) RunnerOption {
	return func(r *Runner) { r.publisher = p }
}

// WithCache enables result caching and duplicate-run suppression.
func WithCache(c cache.Service, ttl time.Duration) RunnerOption {
	return func(r *Runner) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithProgress streams per-window events to live subscribers.
func WithProgress(p *middleware.ProgressPipeline) RunnerOption {
	return func(r *Runner) { r.progress = p }
}

// Runner owns the full lifecycle of evaluation runs: resolve strategies,
// load and normalize the dataset, drive the walk, then persist, publish,
// and cache the output. Run state is tracked in-memory by ID.
type Runner struct {
	source    domrepo.DatasetSource
	registry  *strategy.Registry
	metrics   domrepo.Metrics
	log       *applogger.Logger
	sink      domrepo.ResultSink
	fetcher   RowFetcher
	publisher domrepo.Publisher
	cache     cache.Service
	cacheTTL  time.Duration
	progress  *middleware.ProgressPipeline

	mu   sync.RWMutex
	runs map[string]models.RunSummary
}

// NewRunner builds a runner. Source, registry, metrics, and logger are
// required; everything else is optional plumbing.
func NewRunner(source domrepo.DatasetSource, registry *strategy.Registry, metrics domrepo.Metrics, log *applogger.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		source:   source,
		registry: registry,
		metrics:  metrics,
		log:      log,
		cacheTTL: time.Hour,
		runs:     make(map[string]models.RunSummary),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRunID mints a unique run identifier.
func NewRunID() string {
	return "run-" + strconv.FormatInt(time.Now().UnixNano(), 36)
}

// Execute runs one evaluation synchronously and returns the full result.
// Identical specs hit the result cache: the walk is deterministic, so the
// replay would produce byte-identical output anyway.
func (r *Runner) Execute(ctx context.Context, spec models.RunSpec) (*models.RunResult, error) {
	if spec.ID == "" {
		spec.ID = NewRunID()
	}

	if cached := r.lookupCached(ctx, spec); cached != nil {
		r.log.Info("run served from cache",
			applogger.String("run_id", spec.ID),
			applogger.String("cached_run_id", cached.Summary.RunID),
		)
		return cached, nil
	}

	summary := models.RunSummary{
		RunID:     spec.ID,
		Status:    models.RunRunning,
		StartedAt: time.Now().UTC(),
	}
	r.setSummary(summary)

	rows, windows, err := r.evaluate(ctx, spec)
	summary.CompletedAt = time.Now().UTC()
	summary.Windows = windows
	summary.Rows = len(rows)

	if err != nil {
		summary.Status = models.RunFailed
		summary.Error = err.Error()
		r.setSummary(summary)
		r.metrics.RecordError(errorKind(err))
		r.finish(ctx, &summary)
		return nil, fmt.Errorf("run %s: %w", spec.ID, err)
	}

	summary.Status = models.RunCompleted
	r.setSummary(summary)
	r.metrics.RecordRowsPredicted(spec.ID, len(rows))

	result := &models.RunResult{Summary: summary, Rows: rows}
	r.persist(ctx, spec, result)
	r.finish(ctx, &summary)

	r.log.Info("run completed",
		applogger.String("run_id", spec.ID),
		applogger.Int("windows", windows),
		applogger.Int("rows", len(rows)),
		applogger.Duration("elapsed", summary.CompletedAt.Sub(summary.StartedAt)),
	)
	return result, nil
}

func (r *Runner) evaluate(ctx context.Context, spec models.RunSpec) ([]models.PredictionRecord, int, error) {
	newScaler, err := r.registry.Scaler(spec.Scaler)
	if err != nil {
		return nil, 0, err
	}
	newModel, err := r.registry.Model(spec.Model)
	if err != nil {
		return nil, 0, err
	}

	obs, err := r.source.Load(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load dataset: %w", err)
	}
	frame, err := walkforward.NewFrame(obs)
	if err != nil {
		return nil, 0, err
	}

	windows := 0
	hook := func(w walkforward.Window, trainRows, testRows int) {
		windows++
		r.metrics.RecordWindowEvaluated(spec.ID)
		r.metrics.RecordTrainSize(spec.ID, trainRows)
		if r.progress != nil {
			r.progress.Publish(models.WindowEvent{
				RunID:      spec.ID,
				Window:     w.Index,
				TrainStart: w.TrainStart,
				TrainEnd:   w.TrainEnd,
				TestEnd:    w.TestEnd,
				TrainRows:  trainRows,
				TestRows:   testRows,
			})
		}
	}

	eval, err := walkforward.NewEvaluator(walkforward.Config{
		InitialTrain:   spec.InitialTrainSpan,
		Test:           spec.TestSpan,
		Step:           spec.StepSpan,
		FeatureColumns: spec.FeatureColumns,
		TargetColumn:   spec.TargetColumn,
		NewScaler:      newScaler,
		NewModel:       newModel,
		PnLUpper:       spec.PnLUpper,
		PnLLower:       spec.PnLLower,
	},
		walkforward.WithLogger(r.log),
		walkforward.WithMetrics(r.metrics),
		walkforward.WithWindowHook(hook),
	)
	if err != nil {
		return nil, 0, err
	}

	rows, err := eval.Run(ctx, frame)
	if err != nil {
		return nil, windows, err
	}
	return rows, windows, nil
}

// persist stores, publishes, and caches a completed result. Failures here
// are logged, not fatal: the evaluation itself succeeded.
func (r *Runner) persist(ctx context.Context, spec models.RunSpec, result *models.RunResult) {
	runID := result.Summary.RunID

	if r.sink != nil {
		if err := r.sink.StoreRows(ctx, runID, result.Rows); err != nil {
			r.log.Error("store rows", applogger.String("run_id", runID), applogger.Error(err))
			r.metrics.RecordError("sink_store")
		}
	}
	if r.publisher != nil {
		if err := r.publisher.PublishRows(ctx, runID, result.Rows); err != nil {
			r.log.Error("publish rows", applogger.String("run_id", runID), applogger.Error(err))
			r.metrics.RecordError("publish_rows")
		}
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, resultKey(runID), result, r.cacheTTL); err != nil {
			r.log.Error("cache result", applogger.String("run_id", runID), applogger.Error(err))
		}
		if err := r.cache.Set(ctx, specKey(spec), runID, r.cacheTTL); err != nil {
			r.log.Error("cache spec mapping", applogger.String("run_id", runID), applogger.Error(err))
		}
	}
}

// finish publishes the terminal summary and closes progress streams.
func (r *Runner) finish(ctx context.Context, summary *models.RunSummary) {
	if r.publisher != nil {
		if err := r.publisher.PublishSummary(ctx, summary); err != nil {
			r.log.Error("publish summary", applogger.String("run_id", summary.RunID), applogger.Error(err))
			r.metrics.RecordError("publish_summary")
		}
	}
	if r.progress != nil {
		r.progress.CloseRun(summary.RunID)
	}
}

func (r *Runner) lookupCached(ctx context.Context, spec models.RunSpec) *models.RunResult {
	if r.cache == nil {
		return nil
	}

	var cachedID string
	if err := r.cache.Get(ctx, specKey(spec), &cachedID); err != nil {
		return nil
	}
	var result models.RunResult
	if err := r.cache.Get(ctx, resultKey(cachedID), &result); err != nil {
		return nil
	}
	return &result
}

// TrackPending registers a queued run so it is visible to polling before
// a worker picks it up.
func (r *Runner) TrackPending(id string) {
	r.mu.Lock()
	if _, exists := r.runs[id]; !exists {
		r.runs[id] = models.RunSummary{RunID: id, Status: models.RunPending}
	}
	r.mu.Unlock()
}

// GetRun returns the tracked summary for a run ID.
func (r *Runner) GetRun(id string) (models.RunSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.runs[id]
	if !ok {
		return models.RunSummary{}, ErrRunNotFound
	}
	return s, nil
}

// GetResult returns a completed run's full result from the cache.
func (r *Runner) GetResult(ctx context.Context, id string) (*models.RunResult, error) {
	if r.cache != nil {
		var result models.RunResult
		if err := r.cache.Get(ctx, resultKey(id), &result); err == nil {
			return &result, nil
		}
	}
	return nil, ErrRunNotFound
}

// GetRows pages stored rows for a run.
func (r *Runner) GetRows(ctx context.Context, id string, offset, limit int) ([]models.PredictionRecord, int64, error) {
	if _, err := r.GetRun(id); err != nil {
		return nil, 0, err
	}
	if r.fetcher == nil {
		// Fall back to the cached result when no row store is wired.
		result, err := r.GetResult(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		total := int64(len(result.Rows))
		if offset >= len(result.Rows) {
			return []models.PredictionRecord{}, total, nil
		}
		end := offset + limit
		if end > len(result.Rows) {
			end = len(result.Rows)
		}
		return result.Rows[offset:end], total, nil
	}
	return r.fetcher.FetchRows(ctx, id, offset, limit)
}

func (r *Runner) setSummary(s models.RunSummary) {
	r.mu.Lock()
	r.runs[s.RunID] = s
	r.mu.Unlock()
}

// specKey hashes the evaluation-relevant fields of a spec; the ID is
// excluded so identical configurations collide on purpose.
func specKey(spec models.RunSpec) string {
	clone := spec
	clone.ID = ""
	encoded, _ := json.Marshal(clone)
	return cache.GenerateKey("run:spec", cache.HashKey(string(encoded)))
}

func resultKey(runID string) string {
	return cache.GenerateKey("run:result", runID)
}

func errorKind(err error) string {
	var stageErr *walkforward.StageError
	if errors.As(err, &stageErr) {
		return "stage_" + stageErr.Stage
	}
	return "run"
}
