package scaling

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"FinFold/internal/domain/service"
)

// MinMaxScaler rescales each feature to [0, 1] using the training extrema.
type MinMaxScaler struct {
	min []float64
	max []float64
}

// NewMinMax constructs an unfit min-max scaler.
func NewMinMax() *MinMaxScaler { return &MinMaxScaler{} }

func (s *MinMaxScaler) Fit(x [][]float64) error {
	if len(x) == 0 || len(x[0]) == 0 {
		return fmt.Errorf("minmax scaler: cannot fit on empty matrix")
	}

	cols := len(x[0])
	s.min = make([]float64, cols)
	s.max = make([]float64, cols)

	col := make([]float64, len(x))
	for j := 0; j < cols; j++ {
		for i, row := range x {
			if len(row) != cols {
				return fmt.Errorf("minmax scaler: ragged row %d (%d != %d)", i, len(row), cols)
			}
			col[i] = row[j]
		}
		s.min[j] = floats.Min(col)
		s.max[j] = floats.Max(col)
	}
	return nil
}

func (s *MinMaxScaler) Transform(x [][]float64) ([][]float64, error) {
	if s.min == nil {
		return nil, fmt.Errorf("minmax scaler: transform before fit")
	}

	out := make([][]float64, len(x))
	for i, row := range x {
		if len(row) != len(s.min) {
			return nil, fmt.Errorf("minmax scaler: row %d has %d features, fit saw %d", i, len(row), len(s.min))
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			span := s.max[j] - s.min[j]
			if span == 0 {
				scaled[j] = 0
				continue
			}
			scaled[j] = (v - s.min[j]) / span
		}
		out[i] = scaled
	}
	return out, nil
}

var _ service.Scaler = (*MinMaxScaler)(nil)
