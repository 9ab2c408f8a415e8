package regress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOLSRecoversLinearRelation(t *testing.T) {
	// y = 5 + 2*a - 3*b, exactly.
	x := [][]float64{{0, 0}, {1, 0}, {0, 1}, {2, 3}, {4, 1}, {5, 5}}
	y := make([]float64, len(x))
	for i, row := range x {
		y[i] = 5 + 2*row[0] - 3*row[1]
	}

	m := NewOLS()
	require.NoError(t, m.Fit(x, y))

	preds, err := m.Predict([][]float64{{10, 10}, {-1, 2}})
	require.NoError(t, err)
	assert.InDelta(t, 5+20-30, preds[0], 1e-9)
	assert.InDelta(t, 5-2-6, preds[1], 1e-9)
}

func TestOLSErrors(t *testing.T) {
	m := NewOLS()
	assert.Error(t, m.Fit(nil, nil))
	assert.Error(t, m.Fit([][]float64{{1, 2}}, []float64{1})) // fewer rows than coefficients
	assert.Error(t, m.Fit([][]float64{{1}, {2}}, []float64{1, 2, 3}))

	_, err := NewOLS().Predict([][]float64{{1}})
	assert.Error(t, err)

	require.NoError(t, m.Fit([][]float64{{1}, {2}, {3}}, []float64{1, 2, 3}))
	_, err = m.Predict([][]float64{{1, 2}})
	assert.Error(t, err)
}

func TestRidgeShrinksTowardZero(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{2, 4, 6, 8}

	unpenalized := NewRidge(0)
	require.NoError(t, unpenalized.Fit(x, y))
	p0, err := unpenalized.Predict([][]float64{{5}})
	require.NoError(t, err)
	assert.InDelta(t, 10, p0[0], 1e-9)

	penalized := NewRidge(100)
	require.NoError(t, penalized.Fit(x, y))
	p1, err := penalized.Predict([][]float64{{5}})
	require.NoError(t, err)
	assert.Less(t, p1[0], p0[0], "heavy penalty must shrink the slope")
}

func TestRidgeRejectsNegativeLambda(t *testing.T) {
	m := NewRidge(-1)
	assert.Error(t, m.Fit([][]float64{{1}, {2}}, []float64{1, 2}))
}
