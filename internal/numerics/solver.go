package numerics

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/matrix"
	"github.com/katalvlaran/lvlath/matrix/ops"
)

// cofactorLimit is the largest dimension handed to the cofactor solver by
// SolverFor; expansion by minors is O(n!).
const cofactorLimit = 6

// Solver computes determinants and inverses of square matrices.
type Solver interface {
	Determinant(m *Matrix) (float64, error)
	Inverse(m *Matrix) (*Matrix, error)
}

// SolverFor picks the cofactor solver for small matrices and LU otherwise.
func SolverFor(n int) Solver {
	if n <= cofactorLimit {
		return CofactorSolver{}
	}
	return LUSolver{}
}

// CofactorSolver uses Laplace expansion along the first row and the
// adjugate for the inverse.
type CofactorSolver struct{}

func (s CofactorSolver) Determinant(m *Matrix) (float64, error) {
	if !m.IsSquare() {
		return 0, ErrNotSquare
	}
	return cofactorDeterminant(m), nil
}

func cofactorDeterminant(m *Matrix) float64 {
	switch m.rows {
	case 1:
		return m.At(0, 0)
	case 2:
		return m.At(0, 0)*m.At(1, 1) - m.At(0, 1)*m.At(1, 0)
	}
	var result float64
	for c := range m.cols {
		result += m.At(0, c) * cofactor(m, 0, c)
	}
	return result
}

func cofactor(m *Matrix, row, col int) float64 {
	d := cofactorDeterminant(m.minor(row, col))
	if (row+col)%2 == 0 {
		return d
	}
	return -d
}

// Adjugate returns the transpose of the cofactor matrix.
func (s CofactorSolver) Adjugate(m *Matrix) (*Matrix, error) {
	if !m.IsSquare() {
		return nil, ErrNotSquare
	}
	if m.rows == 1 {
		return Identity(1), nil
	}
	if m.rows == 2 {
		out := Zeros(2, 2)
		out.Set(0, 0, m.At(1, 1))
		out.Set(0, 1, -m.At(0, 1))
		out.Set(1, 0, -m.At(1, 0))
		out.Set(1, 1, m.At(0, 0))
		return out, nil
	}
	out := Zeros(m.rows, m.cols)
	for c := range m.cols {
		for r := range m.rows {
			out.Set(c, r, cofactor(m, r, c))
		}
	}
	return out, nil
}

func (s CofactorSolver) Inverse(m *Matrix) (*Matrix, error) {
	if !m.IsSquare() {
		return nil, ErrNotSquare
	}
	if m.rows == 1 {
		if m.At(0, 0) == 0 {
			return nil, ErrSingular
		}
		out := Zeros(1, 1)
		out.Set(0, 0, 1.0/m.At(0, 0))
		return out, nil
	}
	det := cofactorDeterminant(m)
	if det == 0 {
		return nil, ErrSingular
	}
	adj, err := s.Adjugate(m)
	if err != nil {
		return nil, err
	}
	return adj.Scale(1.0 / det), nil
}

// LUSolver delegates to lvlath's Doolittle LU. The factorization does not
// pivot, so it needs nonzero leading principal minors; the positive definite
// matrices built for match quality always have them. A zero pivot is
// reported as ErrSingular.
type LUSolver struct{}

func toDense(m *Matrix) (matrix.Matrix, error) {
	if !m.IsSquare() {
		return nil, ErrNotSquare
	}
	d, err := matrix.NewDense(m.rows, m.cols)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadShape, err)
	}
	for r := range m.rows {
		for c := range m.cols {
			if err := d.Set(r, c, m.At(r, c)); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

func (s LUSolver) Determinant(m *Matrix) (float64, error) {
	d, err := toDense(m)
	if err != nil {
		return 0, err
	}
	_, u, err := ops.LU(d)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	det := 1.0
	for i := range m.rows {
		v, err := u.At(i, i)
		if err != nil {
			return 0, err
		}
		det *= v
	}
	if math.IsNaN(det) {
		return 0, ErrSingular
	}
	return det, nil
}

func (s LUSolver) Inverse(m *Matrix) (*Matrix, error) {
	d, err := toDense(m)
	if err != nil {
		return nil, err
	}
	inv, err := ops.Inverse(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	out := Zeros(m.rows, m.cols)
	for r := range m.rows {
		for c := range m.cols {
			v, err := inv.At(r, c)
			if err != nil {
				return nil, err
			}
			out.Set(r, c, v)
		}
	}
	return out, nil
}
