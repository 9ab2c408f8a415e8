package scaling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardScalerCentersAndScales(t *testing.T) {
	s := NewStandard()
	train := [][]float64{{1, 10}, {2, 20}, {3, 30}}
	require.NoError(t, s.Fit(train))

	out, err := s.Transform(train)
	require.NoError(t, err)

	for j := 0; j < 2; j++ {
		var sum float64
		for i := range out {
			sum += out[i][j]
		}
		assert.InDelta(t, 0, sum, 1e-12, "column %d must be centered", j)
	}
	assert.InDelta(t, -1, out[0][0], 1e-12)
	assert.InDelta(t, 1, out[2][0], 1e-12)
}

func TestStandardScalerIgnoresTransformInput(t *testing.T) {
	// Statistics come from Fit only: transforming wildly different data
	// must not shift them.
	s := NewStandard()
	require.NoError(t, s.Fit([][]float64{{1}, {2}, {3}}))

	ref, err := s.Transform([][]float64{{2}})
	require.NoError(t, err)

	_, err = s.Transform([][]float64{{1e9}, {-1e9}})
	require.NoError(t, err)

	again, err := s.Transform([][]float64{{2}})
	require.NoError(t, err)
	assert.Equal(t, ref, again)
}

func TestStandardScalerConstantColumn(t *testing.T) {
	s := NewStandard()
	require.NoError(t, s.Fit([][]float64{{5}, {5}, {5}}))

	out, err := s.Transform([][]float64{{5}, {7}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[0][0])
	assert.Equal(t, 2.0, out[1][0])
}

func TestStandardScalerErrors(t *testing.T) {
	s := NewStandard()
	assert.Error(t, s.Fit(nil))
	assert.Error(t, s.Fit([][]float64{{1, 2}, {3}}))

	_, err := NewStandard().Transform([][]float64{{1}})
	assert.Error(t, err)

	require.NoError(t, s.Fit([][]float64{{1, 2}, {3, 4}}))
	_, err = s.Transform([][]float64{{1}})
	assert.Error(t, err)
}

func TestMinMaxScalerRange(t *testing.T) {
	s := NewMinMax()
	require.NoError(t, s.Fit([][]float64{{0, 100}, {5, 200}, {10, 300}}))

	out, err := s.Transform([][]float64{{0, 100}, {10, 300}, {5, 200}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, out[0])
	assert.Equal(t, []float64{1, 1}, out[1])
	assert.Equal(t, []float64{0.5, 0.5}, out[2])
}

func TestMinMaxScalerZeroSpan(t *testing.T) {
	s := NewMinMax()
	require.NoError(t, s.Fit([][]float64{{3}, {3}}))

	out, err := s.Transform([][]float64{{3}, {9}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[0][0])
	assert.Equal(t, 0.0, out[1][0])
}
