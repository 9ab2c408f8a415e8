package walkforward

import (
	"fmt"
	"time"
)

// Window is one train/test boundary pair. The training range is
// [TrainStart, TrainEnd] and the test range [TrainEnd, TestEnd], sliced with
// the inclusive semantics of Frame.Between.
type Window struct {
	Index      int
	TrainStart time.Time
	TrainEnd   time.Time
	TestEnd    time.Time
}

// TrainStartFunc decides where window i's training range begins. The default
// pins it to the dataset minimum, producing an expanding training window.
type TrainStartFunc func(datasetMin time.Time, step time.Duration, window int) time.Time

// PinnedStart keeps the training start at the dataset minimum (expanding window).
func PinnedStart(datasetMin time.Time, _ time.Duration, _ int) time.Time {
	return datasetMin
}

// SlidingStart advances the training start by one step per window, keeping
// the training span fixed-width.
func SlidingStart(datasetMin time.Time, step time.Duration, window int) time.Time {
	return datasetMin.Add(time.Duration(window) * step)
}

// Schedule lazily generates the walk-forward window sequence from the
// dataset's time bounds and the three spans.
type Schedule struct {
	min, max   time.Time
	step       time.Duration
	trainStart TrainStartFunc

	trainEnd time.Time
	testEnd  time.Time
	idx      int
}

// NewSchedule builds a schedule over [min, max]. The first window trains on
// [min, min+initialTrain] and tests on the following test span; each Next
// call after that advances both boundaries by step.
func NewSchedule(min, max time.Time, initialTrain, test, step time.Duration) (*Schedule, error) {
	if initialTrain <= 0 || test <= 0 || step <= 0 {
		return nil, fmt.Errorf("spans must be positive (train=%v test=%v step=%v)", initialTrain, test, step)
	}
	return &Schedule{
		min:        min,
		max:        max,
		step:       step,
		trainStart: PinnedStart,
		trainEnd:   min.Add(initialTrain),
		testEnd:    min.Add(initialTrain).Add(test),
	}, nil
}

// WithTrainStart overrides the training-start policy. Returns s for chaining.
func (s *Schedule) WithTrainStart(fn TrainStartFunc) *Schedule {
	if fn != nil {
		s.trainStart = fn
	}
	return s
}

// Next returns the next window, or false once the test end would pass the
// dataset maximum. That window is never emitted.
func (s *Schedule) Next() (Window, bool) {
	if s.testEnd.After(s.max) {
		return Window{}, false
	}

	w := Window{
		Index:      s.idx,
		TrainStart: s.trainStart(s.min, s.step, s.idx),
		TrainEnd:   s.trainEnd,
		TestEnd:    s.testEnd,
	}

	s.trainEnd = s.trainEnd.Add(s.step)
	s.testEnd = s.testEnd.Add(s.step)
	s.idx++

	return w, true
}
