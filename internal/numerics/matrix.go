// Package numerics holds the small dense linear algebra needed by the match
// quality computation, plus integer ranges used for input validation.
package numerics

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrorTolerance is the element-wise tolerance used by Equal.
const ErrorTolerance = 1e-14

var (
	ErrNotSquare         = errors.New("numerics: matrix is not square")
	ErrDimensionMismatch = errors.New("numerics: dimension mismatch")
	ErrSingular          = errors.New("numerics: matrix is singular")
	ErrBadShape          = errors.New("numerics: invalid shape")
)

// Matrix is a dense row-major matrix of float64.
type Matrix struct {
	rows, cols int
	data       []float64
}

// NewMatrix copies the given rows into a new matrix. All rows must have the
// same length.
func NewMatrix(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrBadShape
	}
	m := Zeros(len(rows), len(rows[0]))
	for i, row := range rows {
		if len(row) != m.cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), m.cols, ErrBadShape)
		}
		copy(m.data[i*m.cols:(i+1)*m.cols], row)
	}
	return m, nil
}

// Zeros returns a rows×cols zero matrix.
func Zeros(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Column returns a column vector.
func Column(values []float64) *Matrix {
	m := Zeros(len(values), 1)
	copy(m.data, values)
	return m
}

// Row returns a row vector.
func Row(values []float64) *Matrix {
	m := Zeros(1, len(values))
	copy(m.data, values)
	return m
}

// Diagonal returns a square matrix with values on the diagonal.
func Diagonal(values []float64) *Matrix {
	m := Zeros(len(values), len(values))
	for i, v := range values {
		m.Set(i, i, v)
	}
	return m
}

// Identity returns the n×n identity.
func Identity(n int) *Matrix {
	m := Zeros(n, n)
	for i := range n {
		m.Set(i, i, 1)
	}
	return m
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) At(row, col int) float64 {
	return m.data[row*m.cols+col]
}

func (m *Matrix) Set(row, col int, v float64) {
	m.data[row*m.cols+col] = v
}

// IsSquare reports whether the matrix is square and non-empty.
func (m *Matrix) IsSquare() bool {
	return m.rows == m.cols && m.rows > 0
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	out := Zeros(m.rows, m.cols)
	copy(out.data, m.data)
	return out
}

// Transpose returns mᵀ.
func (m *Matrix) Transpose() *Matrix {
	out := Zeros(m.cols, m.rows)
	for r := range m.rows {
		for c := range m.cols {
			out.Set(c, r, m.At(r, c))
		}
	}
	return out
}

// Scale returns s·m.
func (m *Matrix) Scale(s float64) *Matrix {
	out := m.Clone()
	for i := range out.data {
		out.data[i] *= s
	}
	return out
}

// Add returns m + other.
func (m *Matrix) Add(other *Matrix) (*Matrix, error) {
	if m.rows != other.rows || m.cols != other.cols {
		return nil, fmt.Errorf("add %dx%d and %dx%d: %w", m.rows, m.cols, other.rows, other.cols, ErrDimensionMismatch)
	}
	out := m.Clone()
	for i := range out.data {
		out.data[i] += other.data[i]
	}
	return out, nil
}

// Mul returns the matrix product m·other.
func (m *Matrix) Mul(other *Matrix) (*Matrix, error) {
	if m.cols != other.rows {
		return nil, fmt.Errorf("multiply %dx%d by %dx%d: %w", m.rows, m.cols, other.rows, other.cols, ErrDimensionMismatch)
	}
	out := Zeros(m.rows, other.cols)
	for r := range m.rows {
		for c := range other.cols {
			var v float64
			for i := range m.cols {
				v += m.At(r, i) * other.At(i, c)
			}
			out.Set(r, c, v)
		}
	}
	return out, nil
}

// Equal compares element-wise within ErrorTolerance.
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil || m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i := range m.data {
		if math.Abs(m.data[i]-other.data[i]) > ErrorTolerance {
			return false
		}
	}
	return true
}

// minor returns m without the given row and column.
func (m *Matrix) minor(rowToRemove, colToRemove int) *Matrix {
	out := Zeros(m.rows-1, m.cols-1)
	dst := 0
	for r := range m.rows {
		if r == rowToRemove {
			continue
		}
		for c := range m.cols {
			if c == colToRemove {
				continue
			}
			out.data[dst] = m.At(r, c)
			dst++
		}
	}
	return out
}

func (m *Matrix) String() string {
	var b strings.Builder
	for r := range m.rows {
		b.WriteString("[")
		for c := range m.cols {
			if c > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%.6g", m.At(r, c))
		}
		b.WriteString("]\n")
	}
	return b.String()
}
