package scaling

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"FinFold/internal/domain/service"
)

// StandardScaler centers each feature to zero mean and unit variance using
// statistics learned at Fit time.
type StandardScaler struct {
	mean []float64
	std  []float64
}

// NewStandard constructs an unfit standard scaler.
func NewStandard() *StandardScaler { return &StandardScaler{} }

func (s *StandardScaler) Fit(x [][]float64) error {
	if len(x) == 0 || len(x[0]) == 0 {
		return fmt.Errorf("standard scaler: cannot fit on empty matrix")
	}

	cols := len(x[0])
	s.mean = make([]float64, cols)
	s.std = make([]float64, cols)

	col := make([]float64, len(x))
	for j := 0; j < cols; j++ {
		for i, row := range x {
			if len(row) != cols {
				return fmt.Errorf("standard scaler: ragged row %d (%d != %d)", i, len(row), cols)
			}
			col[i] = row[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || len(x) < 2 {
			// Constant column: center only, leave the spread untouched.
			std = 1
		}
		s.mean[j] = mean
		s.std[j] = std
	}
	return nil
}

func (s *StandardScaler) Transform(x [][]float64) ([][]float64, error) {
	if s.mean == nil {
		return nil, fmt.Errorf("standard scaler: transform before fit")
	}

	out := make([][]float64, len(x))
	for i, row := range x {
		if len(row) != len(s.mean) {
			return nil, fmt.Errorf("standard scaler: row %d has %d features, fit saw %d", i, len(row), len(s.mean))
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.mean[j]) / s.std[j]
		}
		out[i] = scaled
	}
	return out, nil
}

var _ service.Scaler = (*StandardScaler)(nil)
