package walkforward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

const dayDur = 24 * time.Hour

func TestScheduleFirstWindow(t *testing.T) {
	s, err := NewSchedule(day(0), day(99), 30*dayDur, 7*dayDur, 7*dayDur)
	require.NoError(t, err)

	w, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, 0, w.Index)
	assert.Equal(t, day(0), w.TrainStart)
	assert.Equal(t, day(30), w.TrainEnd)
	assert.Equal(t, day(37), w.TestEnd)
}

func TestScheduleAdvancesByExactlyOneStep(t *testing.T) {
	s, err := NewSchedule(day(0), day(99), 30*dayDur, 7*dayDur, 7*dayDur)
	require.NoError(t, err)

	var prev Window
	count := 0
	for {
		w, ok := s.Next()
		if !ok {
			break
		}
		if count > 0 {
			assert.Equal(t, 7*dayDur, w.TrainEnd.Sub(prev.TrainEnd))
			assert.Equal(t, 7*dayDur, w.TestEnd.Sub(prev.TestEnd))
			assert.True(t, w.TrainEnd.After(prev.TrainEnd))
		}
		// Expanding window: the training start never moves.
		assert.Equal(t, day(0), w.TrainStart)
		assert.True(t, !w.TrainEnd.After(w.TestEnd))
		prev = w
		count++
	}

	// testEnd = 37+7k days; the last k with 37+7k <= 99 is 8.
	assert.Equal(t, 9, count)
	assert.Equal(t, day(93), prev.TestEnd)
}

func TestScheduleStopsWhenTestEndPassesMax(t *testing.T) {
	// Exactly one window's worth of data plus the test span.
	s, err := NewSchedule(day(0), day(37), 30*dayDur, 7*dayDur, 7*dayDur)
	require.NoError(t, err)

	_, ok := s.Next()
	require.True(t, ok)
	_, ok = s.Next()
	assert.False(t, ok)
}

func TestScheduleZeroWindowsForShortSpan(t *testing.T) {
	s, err := NewSchedule(day(0), day(20), 30*dayDur, 7*dayDur, 7*dayDur)
	require.NoError(t, err)

	_, ok := s.Next()
	assert.False(t, ok)
}

func TestScheduleRejectsNonPositiveSpans(t *testing.T) {
	_, err := NewSchedule(day(0), day(99), 0, 7*dayDur, 7*dayDur)
	assert.Error(t, err)
	_, err = NewSchedule(day(0), day(99), 30*dayDur, -dayDur, 7*dayDur)
	assert.Error(t, err)
	_, err = NewSchedule(day(0), day(99), 30*dayDur, 7*dayDur, 0)
	assert.Error(t, err)
}

func TestSlidingStartPolicy(t *testing.T) {
	s, err := NewSchedule(day(0), day(99), 30*dayDur, 7*dayDur, 7*dayDur)
	require.NoError(t, err)
	s.WithTrainStart(SlidingStart)

	w0, ok := s.Next()
	require.True(t, ok)
	w1, ok := s.Next()
	require.True(t, ok)

	assert.Equal(t, day(0), w0.TrainStart)
	assert.Equal(t, day(7), w1.TrainStart)
	// Training width stays fixed under the sliding policy.
	assert.Equal(t, w0.TrainEnd.Sub(w0.TrainStart), w1.TrainEnd.Sub(w1.TrainStart))
}
