package repository

import (
	"context"

	"FinFold/internal/domain/models"
)

// DatasetSource loads the raw time series to evaluate against.
type DatasetSource interface {
	Load(ctx context.Context) ([]models.Observation, error)
}

// ResultSink persists out-of-sample prediction rows.
type ResultSink interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreRows(ctx context.Context, runID string, rows []models.PredictionRecord) error
	Health(ctx context.Context) error
	Close() error
}

// Publisher emits run lifecycle events and prediction batches.
type Publisher interface {
	PublishSummary(ctx context.Context, s *models.RunSummary) error
	PublishRows(ctx context.Context, runID string, rows []models.PredictionRecord) error
	Close() error
}

// Metrics records evaluation telemetry.
type Metrics interface {
	RecordWindowEvaluated(runID string)
	RecordRowsPredicted(runID string, n int)
	RecordError(kind string)
	RecordTrainSize(runID string, rows int)
	RecordStageLatency(stage string, seconds float64)
}
