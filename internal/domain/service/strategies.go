package service

// Scaler is a feature-scaling strategy. Fit learns statistics from training
// features only; Transform applies them without refitting. Fitting mutates
// internal state, so an instance must not be shared across concurrent runs.
type Scaler interface {
	Fit(x [][]float64) error
	Transform(x [][]float64) ([][]float64, error)
}

// Model is a prediction strategy over the minimal fit/predict capability set.
// Fit is destructive to internal state; construct a fresh instance per run.
type Model interface {
	Fit(x [][]float64, y []float64) error
	Predict(x [][]float64) ([]float64, error)
}

// Factories guarantee construct-per-call isolation: strategy instances are
// never reused as shared defaults across independent runs.
type (
	ScalerFactory func() Scaler
	ModelFactory  func() Model
)
