package regress

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"FinFold/internal/domain/service"
)

// OLS is ordinary least squares with an intercept, solved via QR
// factorization. Ill-conditioned fits surface gonum's error unmodified.
type OLS struct {
	coef *mat.Dense // (features+1) x 1, intercept first
}

// NewOLS constructs an unfit ordinary least squares model.
func NewOLS() *OLS { return &OLS{} }

func (m *OLS) Fit(x [][]float64, y []float64) error {
	a, err := designMatrix(x)
	if err != nil {
		return err
	}
	rows, cols := a.Dims()
	if len(y) != rows {
		return fmt.Errorf("ols: %d targets for %d rows", len(y), rows)
	}
	if rows < cols {
		return fmt.Errorf("ols: %d rows cannot determine %d coefficients", rows, cols)
	}

	var qr mat.QR
	qr.Factorize(a)

	coef := mat.NewDense(cols, 1, nil)
	if err := qr.SolveTo(coef, false, mat.NewDense(rows, 1, y)); err != nil {
		return err
	}
	m.coef = coef
	return nil
}

func (m *OLS) Predict(x [][]float64) ([]float64, error) {
	if m.coef == nil {
		return nil, fmt.Errorf("ols: predict before fit")
	}
	return predict(x, m.coef)
}

var _ service.Model = (*OLS)(nil)

// designMatrix prepends an intercept column of ones.
func designMatrix(x [][]float64) (*mat.Dense, error) {
	if len(x) == 0 || len(x[0]) == 0 {
		return nil, fmt.Errorf("regress: cannot fit on empty matrix")
	}
	cols := len(x[0])
	a := mat.NewDense(len(x), cols+1, nil)
	for i, row := range x {
		if len(row) != cols {
			return nil, fmt.Errorf("regress: ragged row %d (%d != %d)", i, len(row), cols)
		}
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}
	return a, nil
}

func predict(x [][]float64, coef *mat.Dense) ([]float64, error) {
	a, err := designMatrix(x)
	if err != nil {
		return nil, err
	}
	rows, cols := a.Dims()
	if cr, _ := coef.Dims(); cr != cols {
		return nil, fmt.Errorf("regress: %d features, fit saw %d", cols-1, cr-1)
	}

	var yhat mat.Dense
	yhat.Mul(a, coef)

	out := make([]float64, rows)
	for i := range out {
		out[i] = yhat.At(i, 0)
	}
	return out, nil
}
