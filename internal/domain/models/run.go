package models

import "time"

// RunStatus describes the lifecycle of an evaluation run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunSpec is the full configuration of one walk-forward evaluation run.
type RunSpec struct {
	ID               string        `json:"id"`
	InitialTrainSpan time.Duration `json:"initial_train_span"`
	TestSpan         time.Duration `json:"test_span"`
	StepSpan         time.Duration `json:"step_span"`
	FeatureColumns   []string      `json:"feature_columns"`
	TargetColumn     string        `json:"target_column"`
	Scaler           string        `json:"scaler"`
	Model            string        `json:"model"`
	// PnL thresholds are carried through for interface compatibility; no
	// computation reads them.
	PnLUpper float64 `json:"pnl_upper"`
	PnLLower float64 `json:"pnl_lower"`
}

// RunSummary is the terminal state of a run, without the row payload.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	Status      RunStatus `json:"status"`
	Windows     int       `json:"windows"`
	Rows        int       `json:"rows"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// RunResult is a completed run with its flattened prediction table.
type RunResult struct {
	Summary RunSummary         `json:"summary"`
	Rows    []PredictionRecord `json:"rows"`
}

// WindowEvent is a per-window progress notification emitted during a run.
type WindowEvent struct {
	RunID      string    `json:"run_id"`
	Window     int       `json:"window"`
	TrainStart time.Time `json:"train_start"`
	TrainEnd   time.Time `json:"train_end"`
	TestEnd    time.Time `json:"test_end"`
	TrainRows  int       `json:"train_rows"`
	TestRows   int       `json:"test_rows"`
}
