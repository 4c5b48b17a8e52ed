// Package cmat provides the dense complex128 linear algebra needed by a
// coupled-wave solver: row-major matrices with BLAS-backed products, an LU
// factorization with partial pivoting, and a general complex
// eigendecomposition built on gonum's real eigensolver.
//
// Dimension misuse (mismatched shapes, out of range indices) is a programmer
// error and panics. Numerical failure (singular systems, defective
// eigenproblems) is reported through the package sentinel errors.
package cmat

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
)

var (
	// ErrSingular reports a matrix that is singular to working precision.
	ErrSingular = errors.New("cmat: matrix is singular to working precision")
	// ErrDefective reports an eigenproblem without a full eigenvector basis.
	ErrDefective = errors.New("cmat: defective matrix, incomplete eigenvector basis")
	// ErrEigenConvergence reports a failed eigenvalue iteration.
	ErrEigenConvergence = errors.New("cmat: eigendecomposition did not converge")
)

// Matrix is a dense complex matrix in row-major order.
type Matrix struct {
	rows, cols int
	data       []complex128
}

// New returns a rows×cols matrix backed by data, which is used directly and
// must have length rows*cols. A nil data allocates a zero matrix.
func New(rows, cols int, data []complex128) *Matrix {
	if rows <= 0 || cols <= 0 {
		panic("cmat: non-positive matrix dimension")
	}
	if data == nil {
		data = make([]complex128, rows*cols)
	} else if len(data) != rows*cols {
		panic("cmat: data length does not match dimensions")
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Matrix {
	m := New(n, n, nil)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Diagonal returns the len(d)×len(d) matrix with d on its main diagonal.
func Diagonal(d []complex128) *Matrix {
	m := New(len(d), len(d), nil)
	for i, v := range d {
		m.data[i*len(d)+i] = v
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Dims returns the row and column counts.
func (m *Matrix) Dims() (rows, cols int) { return m.rows, m.cols }

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) complex128 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic("cmat: index out of range")
	}
	return m.data[i*m.cols+j]
}

// Set assigns the element at row i, column j.
func (m *Matrix) Set(i, j int, v complex128) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic("cmat: index out of range")
	}
	m.data[i*m.cols+j] = v
}

// Clone returns an independent copy of m.
func (m *Matrix) Clone() *Matrix {
	d := make([]complex128, len(m.data))
	copy(d, m.data)
	return &Matrix{rows: m.rows, cols: m.cols, data: d}
}

// Diag returns a copy of the main diagonal of a square matrix.
func (m *Matrix) Diag() []complex128 {
	if m.rows != m.cols {
		panic("cmat: Diag of non-square matrix")
	}
	d := make([]complex128, m.rows)
	for i := range d {
		d[i] = m.data[i*m.cols+i]
	}
	return d
}

// Add returns m + b.
func (m *Matrix) Add(b *Matrix) *Matrix {
	if m.rows != b.rows || m.cols != b.cols {
		panic("cmat: dimension mismatch in Add")
	}
	out := m.Clone()
	for i, v := range b.data {
		out.data[i] += v
	}
	return out
}

// Sub returns m - b.
func (m *Matrix) Sub(b *Matrix) *Matrix {
	if m.rows != b.rows || m.cols != b.cols {
		panic("cmat: dimension mismatch in Sub")
	}
	out := m.Clone()
	for i, v := range b.data {
		out.data[i] -= v
	}
	return out
}

// Scale returns s * m.
func (m *Matrix) Scale(s complex128) *Matrix {
	out := m.Clone()
	for i := range out.data {
		out.data[i] *= s
	}
	return out
}

// Mul returns the matrix product m * b using the gonum complex BLAS.
func (m *Matrix) Mul(b *Matrix) *Matrix {
	if m.cols != b.rows {
		panic("cmat: dimension mismatch in Mul")
	}
	out := New(m.rows, b.cols, nil)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1,
		cblas128.General{Rows: m.rows, Cols: m.cols, Stride: m.cols, Data: m.data},
		cblas128.General{Rows: b.rows, Cols: b.cols, Stride: b.cols, Data: b.data},
		0,
		cblas128.General{Rows: out.rows, Cols: out.cols, Stride: out.cols, Data: out.data})
	return out
}

// MulVec returns the matrix-vector product m * x.
func (m *Matrix) MulVec(x []complex128) []complex128 {
	if m.cols != len(x) {
		panic("cmat: dimension mismatch in MulVec")
	}
	y := make([]complex128, m.rows)
	cblas128.Gemv(blas.NoTrans, 1,
		cblas128.General{Rows: m.rows, Cols: m.cols, Stride: m.cols, Data: m.data},
		cblas128.Vector{N: len(x), Inc: 1, Data: x},
		0,
		cblas128.Vector{N: len(y), Inc: 1, Data: y})
	return y
}

// ScaleRows returns diag(d) * m, scaling row i of m by d[i].
func (m *Matrix) ScaleRows(d []complex128) *Matrix {
	if len(d) != m.rows {
		panic("cmat: dimension mismatch in ScaleRows")
	}
	out := m.Clone()
	for i := 0; i < m.rows; i++ {
		row := out.data[i*m.cols : (i+1)*m.cols]
		for j := range row {
			row[j] *= d[i]
		}
	}
	return out
}

// ScaleCols returns m * diag(d), scaling column j of m by d[j].
func (m *Matrix) ScaleCols(d []complex128) *Matrix {
	if len(d) != m.cols {
		panic("cmat: dimension mismatch in ScaleCols")
	}
	out := m.Clone()
	for i := 0; i < m.rows; i++ {
		row := out.data[i*m.cols : (i+1)*m.cols]
		for j := range row {
			row[j] *= d[j]
		}
	}
	return out
}

// Block2x2 assembles the partitioned matrix [a b; c d]. The blocks must have
// conforming dimensions.
func Block2x2(a, b, c, d *Matrix) *Matrix {
	if a.rows != b.rows || c.rows != d.rows || a.cols != c.cols || b.cols != d.cols {
		panic("cmat: block dimension mismatch in Block2x2")
	}
	out := New(a.rows+c.rows, a.cols+b.cols, nil)
	for i := 0; i < a.rows; i++ {
		copy(out.data[i*out.cols:], a.data[i*a.cols:(i+1)*a.cols])
		copy(out.data[i*out.cols+a.cols:], b.data[i*b.cols:(i+1)*b.cols])
	}
	for i := 0; i < c.rows; i++ {
		r := (a.rows + i) * out.cols
		copy(out.data[r:], c.data[i*c.cols:(i+1)*c.cols])
		copy(out.data[r+c.cols:], d.data[i*d.cols:(i+1)*d.cols])
	}
	return out
}

// MaxAbs returns the largest element magnitude in m.
func (m *Matrix) MaxAbs() float64 {
	max := 0.0
	for _, v := range m.data {
		if a := cmplx.Abs(v); a > max {
			max = a
		}
	}
	return max
}

// String formats small matrices for debugging output.
func (m *Matrix) String() string {
	s := ""
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			s += fmt.Sprintf("%10.4g ", m.data[i*m.cols+j])
		}
		s += "\n"
	}
	return s
}
