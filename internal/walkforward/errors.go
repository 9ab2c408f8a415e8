package walkforward

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTimestamp marks input that cannot be temporally ordered.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrInsufficientTrainingData marks a window whose training slice is
	// empty; the scaler and model cannot fit and the run aborts.
	ErrInsufficientTrainingData = errors.New("insufficient training data")

	// ErrEmptyTestWindow marks a window whose test slice is empty. Data has
	// run out, so it terminates the walk normally rather than failing it.
	ErrEmptyTestWindow = errors.New("empty test window")

	// ErrMissingColumn marks a configured column absent from the dataset.
	ErrMissingColumn = errors.New("missing column")
)

// Evaluation stages, used to attribute per-window failures.
const (
	StageSlice   = "slice"
	StageScale   = "scale"
	StageFit     = "fit"
	StagePredict = "predict"
)

// StageError attributes a failure to a specific window and stage. Strategy
// errors are carried unmodified and remain matchable via errors.Is/As.
type StageError struct {
	Window int
	Stage  string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("window %d: stage %s: %v", e.Window, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(window int, stage string, err error) error {
	return &StageError{Window: window, Stage: stage, Err: err}
}
