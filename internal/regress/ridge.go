package regress

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"FinFold/internal/domain/service"
)

// Ridge is L2-regularized least squares, solved from the regularized normal
// equations. The intercept is not penalized.
type Ridge struct {
	lambda float64
	coef   *mat.Dense
}

// NewRidge constructs an unfit ridge model with the given penalty.
func NewRidge(lambda float64) *Ridge { return &Ridge{lambda: lambda} }

func (m *Ridge) Fit(x [][]float64, y []float64) error {
	if m.lambda < 0 {
		return fmt.Errorf("ridge: negative lambda %v", m.lambda)
	}
	a, err := designMatrix(x)
	if err != nil {
		return err
	}
	rows, cols := a.Dims()
	if len(y) != rows {
		return fmt.Errorf("ridge: %d targets for %d rows", len(y), rows)
	}

	// A'A + lambda*I, keeping the intercept unpenalized.
	var ata mat.Dense
	ata.Mul(a.T(), a)
	for j := 1; j < cols; j++ {
		ata.Set(j, j, ata.At(j, j)+m.lambda)
	}

	var aty mat.Dense
	aty.Mul(a.T(), mat.NewDense(rows, 1, y))

	coef := mat.NewDense(cols, 1, nil)
	if err := coef.Solve(&ata, &aty); err != nil {
		return err
	}
	m.coef = coef
	return nil
}

func (m *Ridge) Predict(x [][]float64) ([]float64, error) {
	if m.coef == nil {
		return nil, fmt.Errorf("ridge: predict before fit")
	}
	return predict(x, m.coef)
}

var _ service.Model = (*Ridge)(nil)
