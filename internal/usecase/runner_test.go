package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinFold/internal/domain/models"
	"FinFold/internal/strategy"
	"FinFold/pkg/cache"
	applogger "FinFold/pkg/logger"
)

type staticSource struct{ obs []models.Observation }

func (s *staticSource) Load(context.Context) ([]models.Observation, error) {
	return s.obs, nil
}

type nopMetrics struct{ errors map[string]int }

func (m *nopMetrics) RecordWindowEvaluated(string)       {}
func (m *nopMetrics) RecordRowsPredicted(string, int)    {}
func (m *nopMetrics) RecordTrainSize(string, int)        {}
func (m *nopMetrics) RecordStageLatency(string, float64) {}
func (m *nopMetrics) RecordError(kind string) {
	if m.errors == nil {
		m.errors = make(map[string]int)
	}
	m.errors[kind]++
}

func linearDataset(n int) []models.Observation {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Observation, 0, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		out = append(out, models.Observation{
			Timestamp: base.AddDate(0, 0, i).Format(time.RFC3339),
			Values:    map[string]float64{"x": x, "y": 3*x - 7},
		})
	}
	return out
}

func testSpec() models.RunSpec {
	return models.RunSpec{
		InitialTrainSpan: 30 * 24 * time.Hour,
		TestSpan:         7 * 24 * time.Hour,
		StepSpan:         7 * 24 * time.Hour,
		FeatureColumns:   []string{"x"},
		TargetColumn:     "y",
		Scaler:           "standard",
		Model:            "ols",
	}
}

func newTestRunner(t *testing.T, opts ...RunnerOption) *Runner {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return NewRunner(&staticSource{obs: linearDataset(100)}, strategy.NewRegistry(), &nopMetrics{}, log, opts...)
}

func TestRunnerExecute(t *testing.T) {
	r := newTestRunner(t)

	result, err := r.Execute(context.Background(), testSpec())
	require.NoError(t, err)

	assert.Equal(t, models.RunCompleted, result.Summary.Status)
	assert.Equal(t, 9, result.Summary.Windows)
	assert.Equal(t, len(result.Rows), result.Summary.Rows)
	assert.NotEmpty(t, result.Summary.RunID)

	tracked, err := r.GetRun(result.Summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, tracked.Status)
}

func TestRunnerDeduplicatesIdenticalSpecs(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	r := newTestRunner(t, WithCache(mem, time.Hour))

	first, err := r.Execute(context.Background(), testSpec())
	require.NoError(t, err)

	second, err := r.Execute(context.Background(), testSpec())
	require.NoError(t, err)

	// The second call is served from cache under the first run's ID.
	assert.Equal(t, first.Summary.RunID, second.Summary.RunID)
	assert.Equal(t, first.Rows, second.Rows)
}

func TestRunnerUnknownStrategyFailsRun(t *testing.T) {
	r := newTestRunner(t)

	spec := testSpec()
	spec.ID = "run-bad-model"
	spec.Model = "forest"
	_, err := r.Execute(context.Background(), spec)
	require.Error(t, err)

	// Failure is tracked, not lost.
	failed, err := r.GetRun(spec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunFailed, failed.Status)
	assert.NotEmpty(t, failed.Error)
}

func TestRunnerGetRowsPagesCachedResult(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	r := newTestRunner(t, WithCache(mem, time.Hour))

	result, err := r.Execute(context.Background(), testSpec())
	require.NoError(t, err)
	runID := result.Summary.RunID

	page, total, err := r.GetRows(context.Background(), runID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(len(result.Rows)), total)
	assert.Len(t, page, 10)
	assert.Equal(t, result.Rows[:10], page)

	tail, _, err := r.GetRows(context.Background(), runID, len(result.Rows)-3, 10)
	require.NoError(t, err)
	assert.Len(t, tail, 3)

	past, _, err := r.GetRows(context.Background(), runID, len(result.Rows)+5, 10)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestRunnerGetRowsUnknownRun(t *testing.T) {
	r := newTestRunner(t)
	_, _, err := r.GetRows(context.Background(), "run-missing", 0, 10)
	assert.ErrorIs(t, err, ErrRunNotFound)
}
