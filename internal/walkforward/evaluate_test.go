package walkforward

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinFold/internal/domain/models"
	"FinFold/internal/domain/service"
	"FinFold/internal/regress"
	"FinFold/internal/scaling"
)

// linearObs builds daily observations with y = 2x + 5.
func linearObs(days []int) []models.Observation {
	out := make([]models.Observation, 0, len(days))
	for _, d := range days {
		x := float64(d)
		out = append(out, models.Observation{
			Timestamp: day(d).Format(time.RFC3339),
			Values:    map[string]float64{"x": x, "y": 2*x + 5},
		})
	}
	return out
}

func seqDays(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for d := from; d <= to; d++ {
		out = append(out, d)
	}
	return out
}

func testConfig() Config {
	return Config{
		InitialTrain:   30 * dayDur,
		Test:           7 * dayDur,
		Step:           7 * dayDur,
		FeatureColumns: []string{"x"},
		TargetColumn:   "y",
		NewScaler:      func() service.Scaler { return scaling.NewStandard() },
		NewModel:       func() service.Model { return regress.NewOLS() },
	}
}

func mustRun(t *testing.T, cfg Config, obs []models.Observation, opts ...Option) []models.PredictionRecord {
	t.Helper()
	frame, err := NewFrame(obs)
	require.NoError(t, err)
	e, err := NewEvaluator(cfg, opts...)
	require.NoError(t, err)
	out, err := e.Run(context.Background(), frame)
	require.NoError(t, err)
	return out
}

func TestRunLinearSeriesNearExact(t *testing.T) {
	out := mustRun(t, testConfig(), linearObs(seqDays(0, 99)))
	require.NotEmpty(t, out)

	for i, rec := range out {
		assert.InDelta(t, rec.Actual, rec.Predicted, 1e-6, "row %d at %s", i, rec.Timestamp)
	}
}

func TestRunRowAccounting(t *testing.T) {
	var windows, hookRows int
	hook := WithWindowHook(func(w Window, trainRows, testRows int) {
		// Expanding window over daily rows: 31 training rows plus one step
		// of 7 per completed window.
		assert.Equal(t, 31+7*w.Index, trainRows)
		windows++
		hookRows += testRows
	})

	out := mustRun(t, testConfig(), linearObs(seqDays(0, 99)), hook)

	// testEnd = 37+7k days fits in [0, 99] for k = 0..8. Each test slice
	// holds 8 rows because both window ends are inclusive.
	assert.Equal(t, 9, windows)
	assert.Equal(t, 9*8, hookRows)
	assert.Len(t, out, hookRows)

	for i := 1; i < len(out); i++ {
		assert.False(t, out[i].Timestamp.Before(out[i-1].Timestamp),
			"output must be in window-then-time order")
	}
}

func TestRunBoundaryRowLandsInAdjacentWindows(t *testing.T) {
	out := mustRun(t, testConfig(), linearObs(seqDays(0, 99)))

	// Day 37 is both the first window's testEnd and the second window's
	// trainEnd, so it is emitted by both.
	var hits int
	for _, rec := range out {
		if rec.Timestamp.Equal(day(37)) {
			hits++
		}
	}
	assert.Equal(t, 2, hits)
}

func TestRunShortDatasetYieldsNoRows(t *testing.T) {
	out := mustRun(t, testConfig(), linearObs(seqDays(0, 20)))
	assert.Empty(t, out)
	assert.NotNil(t, out)
}

func TestRunEmptyFrame(t *testing.T) {
	out := mustRun(t, testConfig(), nil)
	assert.Empty(t, out)
	assert.NotNil(t, out)
}

func TestRunTerminatesAtFirstEmptyTestWindow(t *testing.T) {
	// Rows exist after the gap, but the walk stops at the first window
	// whose test slice is empty instead of skipping ahead.
	days := append(seqDays(0, 29), seqDays(60, 99)...)

	var windows int
	out := mustRun(t, testConfig(), linearObs(days),
		WithWindowHook(func(Window, int, int) { windows++ }))

	assert.Empty(t, out)
	assert.Equal(t, 0, windows)
}

func TestRunFutureRowsDoNotChangeEarlierWindows(t *testing.T) {
	base := linearObs(seqDays(0, 99))

	// Corrupt everything after the first window's test range.
	noisy := linearObs(seqDays(0, 99))
	for i := range noisy {
		if d, _ := time.Parse(time.RFC3339, noisy[i].Timestamp); d.After(day(37)) {
			noisy[i].Values["x"] = 1e9
			noisy[i].Values["y"] = -1e9
		}
	}

	cleanOut := mustRun(t, testConfig(), base)
	noisyOut := mustRun(t, testConfig(), noisy)

	require.GreaterOrEqual(t, len(cleanOut), 8)
	require.GreaterOrEqual(t, len(noisyOut), 8)
	assert.Equal(t, cleanOut[:8], noisyOut[:8])
}

func TestRunIdempotent(t *testing.T) {
	obs := linearObs(seqDays(0, 99))
	first := mustRun(t, testConfig(), obs)
	second := mustRun(t, testConfig(), obs)
	assert.True(t, reflect.DeepEqual(first, second))
}

func TestRunContextCancelled(t *testing.T) {
	frame, err := NewFrame(linearObs(seqDays(0, 99)))
	require.NoError(t, err)
	e, err := NewEvaluator(testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Run(ctx, frame)
	assert.ErrorIs(t, err, context.Canceled)
}

type failingModel struct{ stage string }

func (m *failingModel) Fit(x [][]float64, y []float64) error {
	if m.stage == StageFit {
		return fmt.Errorf("singular matrix")
	}
	return nil
}

func (m *failingModel) Predict(x [][]float64) ([]float64, error) {
	if m.stage == StagePredict {
		return nil, fmt.Errorf("dimension mismatch")
	}
	return make([]float64, len(x)), nil
}

func TestRunAttributesStageErrors(t *testing.T) {
	for _, stage := range []string{StageFit, StagePredict} {
		t.Run(stage, func(t *testing.T) {
			cfg := testConfig()
			cfg.NewModel = func() service.Model { return &failingModel{stage: stage} }

			frame, err := NewFrame(linearObs(seqDays(0, 99)))
			require.NoError(t, err)
			e, err := NewEvaluator(cfg)
			require.NoError(t, err)

			_, err = e.Run(context.Background(), frame)
			require.Error(t, err)

			var stageErr *StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, stage, stageErr.Stage)
			assert.Equal(t, 0, stageErr.Window)
		})
	}
}

func TestRunMissingColumn(t *testing.T) {
	cfg := testConfig()
	cfg.FeatureColumns = []string{"x", "rsi"}

	frame, err := NewFrame(linearObs(seqDays(0, 99)))
	require.NoError(t, err)
	e, err := NewEvaluator(cfg)
	require.NoError(t, err)

	_, err = e.Run(context.Background(), frame)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageSlice, stageErr.Stage)
}

func TestEvaluateWindowEmptyTrainSlice(t *testing.T) {
	// Reachable only through a custom start policy that walks past the
	// data; pinned starts always retain the first row.
	frame, err := NewFrame(linearObs(append(seqDays(0, 6), seqDays(70, 99)...)))
	require.NoError(t, err)
	e, err := NewEvaluator(testConfig())
	require.NoError(t, err)

	w := Window{Index: 3, TrainStart: day(10), TrainEnd: day(40), TestEnd: day(47)}
	_, _, err = e.evaluateWindow(w, frame)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientTrainingData)
}

func TestNewEvaluatorRejectsBadConfig(t *testing.T) {
	cases := map[string]func(*Config){
		"no features":  func(c *Config) { c.FeatureColumns = nil },
		"no target":    func(c *Config) { c.TargetColumn = "" },
		"no scaler":    func(c *Config) { c.NewScaler = nil },
		"no model":     func(c *Config) { c.NewModel = nil },
		"zero step":    func(c *Config) { c.Step = 0 },
		"negative lag": func(c *Config) { c.InitialTrain = -dayDur },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mutate(&cfg)
			_, err := NewEvaluator(cfg)
			assert.Error(t, err)
		})
	}
}
