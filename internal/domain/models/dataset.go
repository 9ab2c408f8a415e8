package models

import "time"

// Observation is a single raw record of the input time series. The timestamp
// is kept in its source form and coerced during normalization; Values holds
// every named numeric column, features and target alike.
type Observation struct {
	Timestamp string
	Values    map[string]float64
}

// PredictionRecord pairs one out-of-sample observation with its prediction.
// Immutable once created.
type PredictionRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Actual    float64   `json:"actual"`
	Predicted float64   `json:"predicted"`
}
