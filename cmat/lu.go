package cmat

import (
	"fmt"
	"math/cmplx"
)

// pivotTol declares a pivot negligible relative to the largest magnitude in
// the factored matrix. gonum carries no complex LU, so the factorization is
// implemented here directly (Crout with row pivoting).
const pivotTol = 1e-13

// LU is an LU factorization with partial pivoting of a square complex matrix,
// PA = LU with unit lower-triangular L.
type LU struct {
	n    int
	lu   []complex128 // L below the diagonal, U on and above it
	piv  []int
	norm float64 // largest |a_ij| of the factored matrix
}

// Factor computes the factorization of a. It returns an error wrapping
// ErrSingular when a pivot collapses below pivotTol relative to the matrix
// magnitude.
func (f *LU) Factor(a *Matrix) error {
	if a.rows != a.cols {
		panic("cmat: LU of non-square matrix")
	}
	n := a.rows
	f.n = n
	f.lu = make([]complex128, len(a.data))
	copy(f.lu, a.data)
	f.piv = make([]int, n)
	f.norm = a.MaxAbs()

	for k := 0; k < n; k++ {
		// Row with the largest magnitude in column k.
		p := k
		best := cmplx.Abs(f.lu[k*n+k])
		for i := k + 1; i < n; i++ {
			if ab := cmplx.Abs(f.lu[i*n+k]); ab > best {
				best = ab
				p = i
			}
		}
		f.piv[k] = p
		if p != k {
			for j := 0; j < n; j++ {
				f.lu[k*n+j], f.lu[p*n+j] = f.lu[p*n+j], f.lu[k*n+j]
			}
		}
		if best <= pivotTol*f.norm {
			return fmt.Errorf("cmat: zero pivot in column %d: %w", k, ErrSingular)
		}
		pivot := f.lu[k*n+k]
		for i := k + 1; i < n; i++ {
			l := f.lu[i*n+k] / pivot
			f.lu[i*n+k] = l
			if l == 0 {
				continue
			}
			for j := k + 1; j < n; j++ {
				f.lu[i*n+j] -= l * f.lu[k*n+j]
			}
		}
	}
	return nil
}

// Solve returns X solving A X = B for the factored A.
func (f *LU) Solve(b *Matrix) *Matrix {
	if b.rows != f.n {
		panic("cmat: dimension mismatch in LU solve")
	}
	n, nc := f.n, b.cols
	x := b.Clone()
	for k := 0; k < n; k++ {
		if p := f.piv[k]; p != k {
			for j := 0; j < nc; j++ {
				x.data[k*nc+j], x.data[p*nc+j] = x.data[p*nc+j], x.data[k*nc+j]
			}
		}
	}
	// Forward substitution with unit L.
	for i := 1; i < n; i++ {
		for k := 0; k < i; k++ {
			l := f.lu[i*n+k]
			if l == 0 {
				continue
			}
			for j := 0; j < nc; j++ {
				x.data[i*nc+j] -= l * x.data[k*nc+j]
			}
		}
	}
	// Back substitution with U.
	for i := n - 1; i >= 0; i-- {
		for k := i + 1; k < n; k++ {
			u := f.lu[i*n+k]
			if u == 0 {
				continue
			}
			for j := 0; j < nc; j++ {
				x.data[i*nc+j] -= u * x.data[k*nc+j]
			}
		}
		d := f.lu[i*n+i]
		for j := 0; j < nc; j++ {
			x.data[i*nc+j] /= d
		}
	}
	return x
}

// SolveVec returns x solving A x = b for the factored A.
func (f *LU) SolveVec(b []complex128) []complex128 {
	return f.Solve(New(len(b), 1, append([]complex128(nil), b...))).data
}

// Solve returns X with A X = B, or an error wrapping ErrSingular.
func Solve(a, b *Matrix) (*Matrix, error) {
	var f LU
	if err := f.Factor(a); err != nil {
		return nil, err
	}
	return f.Solve(b), nil
}

// SolveVec returns x with A x = b, or an error wrapping ErrSingular.
func SolveVec(a *Matrix, b []complex128) ([]complex128, error) {
	var f LU
	if err := f.Factor(a); err != nil {
		return nil, err
	}
	return f.SolveVec(b), nil
}

// Inverse returns the inverse of a, or an error wrapping ErrSingular.
func Inverse(a *Matrix) (*Matrix, error) {
	return Solve(a, Identity(a.rows))
}
