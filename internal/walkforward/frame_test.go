package walkforward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinFold/internal/domain/models"
)

func obsAt(ts string, close, volume float64) models.Observation {
	return models.Observation{
		Timestamp: ts,
		Values:    map[string]float64{"close": close, "volume": volume},
	}
}

func TestNewFrameSortsByTimestamp(t *testing.T) {
	frame, err := NewFrame([]models.Observation{
		obsAt("2024-01-03", 3, 30),
		obsAt("2024-01-01", 1, 10),
		obsAt("2024-01-02", 2, 20),
	})
	require.NoError(t, err)
	require.Equal(t, 3, frame.Len())

	closes, err := frame.Column("close")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, closes)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), frame.MinTime())
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), frame.MaxTime())
}

func TestNewFrameLeavesInputUntouched(t *testing.T) {
	in := []models.Observation{
		obsAt("2024-01-02", 2, 20),
		obsAt("2024-01-01", 1, 10),
	}
	_, err := NewFrame(in)
	require.NoError(t, err)

	// The caller's slice keeps its original order.
	assert.Equal(t, "2024-01-02", in[0].Timestamp)
	assert.Equal(t, "2024-01-01", in[1].Timestamp)
}

func TestNewFrameMalformedTimestamp(t *testing.T) {
	_, err := NewFrame([]models.Observation{
		obsAt("2024-01-01", 1, 10),
		obsAt("not-a-date", 2, 20),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedTimestamp)
	assert.Contains(t, err.Error(), "not-a-date")
}

func TestBetweenInclusiveBothEnds(t *testing.T) {
	// Both endpoints are inclusive: a row exactly at a window boundary
	// lands in both adjacent slices.
	frame, err := NewFrame([]models.Observation{
		obsAt("2024-01-01", 1, 0),
		obsAt("2024-01-02", 2, 0),
		obsAt("2024-01-03", 3, 0),
		obsAt("2024-01-04", 4, 0),
	})
	require.NoError(t, err)

	boundary := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	left := frame.Between(frame.MinTime(), boundary)
	right := frame.Between(boundary, frame.MaxTime())

	leftCloses, err := left.Column("close")
	require.NoError(t, err)
	rightCloses, err := right.Column("close")
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 3}, leftCloses)
	assert.Equal(t, []float64{3, 4}, rightCloses)
}

func TestBetweenEmptyRange(t *testing.T) {
	frame, err := NewFrame([]models.Observation{
		obsAt("2024-01-01", 1, 0),
		obsAt("2024-01-10", 2, 0),
	})
	require.NoError(t, err)

	gap := frame.Between(
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
	)
	assert.Equal(t, 0, gap.Len())
}

func TestColumnMissing(t *testing.T) {
	frame, err := NewFrame([]models.Observation{obsAt("2024-01-01", 1, 10)})
	require.NoError(t, err)

	_, err = frame.Column("rsi")
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = frame.Matrix([]string{"close", "rsi"})
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestFrameEqualTimestampsKeepSourceOrder(t *testing.T) {
	frame, err := NewFrame([]models.Observation{
		obsAt("2024-01-01T12:00:00Z", 1, 0),
		obsAt("2024-01-01T12:00:00Z", 2, 0),
	})
	require.NoError(t, err)

	closes, err := frame.Column("close")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, closes)
}
