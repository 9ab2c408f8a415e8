package walkforward

import (
	"context"
	"fmt"
	"time"

	"FinFold/internal/domain/models"
	drepo "FinFold/internal/domain/repository"
	"FinFold/internal/domain/service"
	applogger "FinFold/pkg/logger"
)

// Config drives one walk-forward evaluation.
type Config struct {
	InitialTrain time.Duration
	Test         time.Duration
	Step         time.Duration

	FeatureColumns []string
	TargetColumn   string

	// Factories construct fresh strategy instances per run; fitting is
	// destructive, so instances are never shared between runs.
	NewScaler service.ScalerFactory
	NewModel  service.ModelFactory

	// Optional training-start policy; nil means pinned (expanding window).
	TrainStart TrainStartFunc

	// PnL thresholds are accepted for interface compatibility. Nothing
	// consumes them; they are logged once and otherwise inert.
	PnLUpper float64
	PnLLower float64
}

func (c Config) validate() error {
	if len(c.FeatureColumns) == 0 {
		return fmt.Errorf("feature columns are required")
	}
	if c.TargetColumn == "" {
		return fmt.Errorf("target column is required")
	}
	if c.NewScaler == nil || c.NewModel == nil {
		return fmt.Errorf("scaler and model factories are required")
	}
	if c.InitialTrain <= 0 || c.Test <= 0 || c.Step <= 0 {
		return fmt.Errorf("spans must be positive")
	}
	return nil
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger attaches a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(e *Evaluator) { e.log = l }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m drepo.Metrics) Option {
	return func(e *Evaluator) { e.metrics = m }
}

// WithWindowHook registers a callback invoked after every completed window.
func WithWindowHook(fn func(w Window, trainRows, testRows int)) Option {
	return func(e *Evaluator) { e.onWindow = fn }
}

// Evaluator runs the fit-predict-aggregate loop over a scheduled window
// sequence. It holds no state between Run calls, but a single Run is
// strictly sequential: each window depends on the cumulative step count and
// reuses the ever-growing training slice.
type Evaluator struct {
	cfg      Config
	log      *applogger.Logger
	metrics  drepo.Metrics
	onWindow func(w Window, trainRows, testRows int)
}

// NewEvaluator validates the config and builds an evaluator.
func NewEvaluator(cfg Config, opts ...Option) (*Evaluator, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("evaluator config: %w", err)
	}
	e := &Evaluator{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.log != nil && (cfg.PnLUpper != 0 || cfg.PnLLower != 0) {
		e.log.Warn("pnl thresholds are accepted but not consumed by any computation",
			applogger.Float64("pnl_upper", cfg.PnLUpper),
			applogger.Float64("pnl_lower", cfg.PnLLower),
		)
	}
	return e, nil
}

// Run walks the frame window by window: slice train/test, fit the scaler on
// the training slice only, transform both, fit a fresh model, predict, and
// collect one prediction batch per window. The flattened batches are returned
// in window-then-time order.
//
// An empty training slice aborts the run. An empty test slice ends the walk
// normally: the data ran out, and emitting zero-row batches would silently
// change the output shape. Strategy errors propagate unmodified, wrapped only
// with window and stage context.
func (e *Evaluator) Run(ctx context.Context, frame *Frame) ([]models.PredictionRecord, error) {
	if frame == nil || frame.Len() == 0 {
		return []models.PredictionRecord{}, nil
	}

	sched, err := NewSchedule(frame.MinTime(), frame.MaxTime(), e.cfg.InitialTrain, e.cfg.Test, e.cfg.Step)
	if err != nil {
		return nil, err
	}
	sched.WithTrainStart(e.cfg.TrainStart)

	var batches [][]models.PredictionRecord

	for {
		w, ok := sched.Next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("window %d: %w", w.Index, err)
		}

		batch, testRows, err := e.evaluateWindow(w, frame)
		if err != nil {
			return nil, err
		}
		if testRows == 0 {
			// Data ran out mid-schedule; terminate rather than skip.
			if e.log != nil {
				e.log.Debug("walk terminated",
					applogger.Int("window", w.Index),
					applogger.Time("train_end", w.TrainEnd),
					applogger.Error(ErrEmptyTestWindow),
				)
			}
			break
		}

		batches = append(batches, batch)
	}

	return flatten(batches), nil
}

func (e *Evaluator) evaluateWindow(w Window, frame *Frame) ([]models.PredictionRecord, int, error) {
	train := frame.Between(w.TrainStart, w.TrainEnd)
	test := frame.Between(w.TrainEnd, w.TestEnd)

	if train.Len() == 0 {
		return nil, 0, stageErr(w.Index, StageSlice, ErrInsufficientTrainingData)
	}
	if test.Len() == 0 {
		return nil, 0, nil
	}

	xTrain, err := train.Matrix(e.cfg.FeatureColumns)
	if err != nil {
		return nil, 0, stageErr(w.Index, StageSlice, err)
	}
	yTrain, err := train.Column(e.cfg.TargetColumn)
	if err != nil {
		return nil, 0, stageErr(w.Index, StageSlice, err)
	}
	xTest, err := test.Matrix(e.cfg.FeatureColumns)
	if err != nil {
		return nil, 0, stageErr(w.Index, StageSlice, err)
	}
	yTest, err := test.Column(e.cfg.TargetColumn)
	if err != nil {
		return nil, 0, stageErr(w.Index, StageSlice, err)
	}

	// Scaler statistics come from the training slice only; the test slice is
	// transformed, never fit, so its distribution cannot leak in.
	start := time.Now()
	scaler := e.cfg.NewScaler()
	if err := scaler.Fit(xTrain); err != nil {
		return nil, 0, stageErr(w.Index, StageScale, err)
	}
	xTrainScaled, err := scaler.Transform(xTrain)
	if err != nil {
		return nil, 0, stageErr(w.Index, StageScale, err)
	}
	xTestScaled, err := scaler.Transform(xTest)
	if err != nil {
		return nil, 0, stageErr(w.Index, StageScale, err)
	}
	e.observeStage(StageScale, start)

	// Fresh model per window; no state carries over between windows.
	start = time.Now()
	model := e.cfg.NewModel()
	if err := model.Fit(xTrainScaled, yTrain); err != nil {
		return nil, 0, stageErr(w.Index, StageFit, err)
	}
	e.observeStage(StageFit, start)

	start = time.Now()
	preds, err := model.Predict(xTestScaled)
	if err != nil {
		return nil, 0, stageErr(w.Index, StagePredict, err)
	}
	if len(preds) != test.Len() {
		return nil, 0, stageErr(w.Index, StagePredict,
			fmt.Errorf("model returned %d predictions for %d rows", len(preds), test.Len()))
	}
	e.observeStage(StagePredict, start)

	times := test.Times()
	batch := make([]models.PredictionRecord, test.Len())
	for i := range batch {
		batch[i] = models.PredictionRecord{
			Timestamp: times[i],
			Actual:    yTest[i],
			Predicted: preds[i],
		}
	}

	if e.onWindow != nil {
		e.onWindow(w, train.Len(), test.Len())
	}

	return batch, test.Len(), nil
}

func (e *Evaluator) observeStage(stage string, start time.Time) {
	if e.metrics != nil {
		e.metrics.RecordStageLatency(stage, time.Since(start).Seconds())
	}
}

func flatten(batches [][]models.PredictionRecord) []models.PredictionRecord {
	n := 0
	for _, b := range batches {
		n += len(b)
	}
	out := make([]models.PredictionRecord, 0, n)
	for _, b := range batches {
		out = append(out, b...)
	}
	return out
}
