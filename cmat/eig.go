package cmat

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Tolerances for recovering the complex eigenvectors from the realified
// problem. A candidate whose recovered norm falls below ghostTol is the
// spurious partner of a conjugate eigenvalue and is discarded; a candidate
// whose component outside the span of the accepted vectors falls below
// indepTol duplicates one already taken.
const (
	ghostTol = 1e-8
	indepTol = 1e-6
	resTol   = 1e-6
)

// Eig computes the eigenvalues and right eigenvectors of a general square
// complex matrix. The columns of the returned matrix hold unit eigenvectors,
// ordered to match the eigenvalues.
//
// gonum's pure-Go LAPACK only factors real matrices, so the complex problem
// A = X + iY is lifted to the real 2n×2n matrix [X -Y; Y X]. Every eigenpair
// (λ, [p; q]) of the lifted matrix yields A(p+iq) = λ(p+iq); the recovered
// vector is zero exactly when λ belongs to the conjugate copy of the
// spectrum, and those candidates are skipped. The n survivors with the
// smallest residuals form the returned basis. An error wrapping ErrDefective
// is returned when no n linearly independent eigenvectors exist.
func Eig(a *Matrix) ([]complex128, *Matrix, error) {
	if a.rows != a.cols {
		panic("cmat: Eig of non-square matrix")
	}
	n := a.rows

	big := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := a.data[i*n+j]
			big.Set(i, j, real(v))
			big.Set(i, j+n, -imag(v))
			big.Set(i+n, j, imag(v))
			big.Set(i+n, j+n, real(v))
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(big, mat.EigenRight); !ok {
		return nil, nil, ErrEigenConvergence
	}
	lifted := eig.Values(nil)
	var liftedVecs mat.CDense
	eig.VectorsTo(&liftedVecs)

	type candidate struct {
		val complex128
		vec []complex128
		res float64
	}
	cands := make([]candidate, 0, 2*n)
	for k := 0; k < 2*n; k++ {
		v := make([]complex128, n)
		nrm := 0.0
		for i := 0; i < n; i++ {
			v[i] = liftedVecs.At(i, k) + 1i*liftedVecs.At(i+n, k)
			nrm += real(v[i])*real(v[i]) + imag(v[i])*imag(v[i])
		}
		nrm = math.Sqrt(nrm)
		if nrm <= ghostTol {
			continue
		}
		for i := range v {
			v[i] /= complex(nrm, 0)
		}
		cands = append(cands, candidate{val: lifted[k], vec: v, res: eigResidual(a, lifted[k], v)})
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].res < cands[j].res })
	cutoff := resTol * math.Max(1, a.MaxAbs())

	// Greedy selection of n independent eigenvectors, best residuals first.
	// Orthonormalized copies of the accepted vectors detect duplicates, and
	// the residual cutoff keeps spurious columns of a defective problem out.
	vals := make([]complex128, 0, n)
	vecs := New(n, n, nil)
	basis := make([][]complex128, 0, n)
	for _, c := range cands {
		if len(vals) == n || c.res > cutoff {
			break
		}
		u := append([]complex128(nil), c.vec...)
		for _, b := range basis {
			var dot complex128
			for i := range u {
				dot += cmplx.Conj(b[i]) * u[i]
			}
			for i := range u {
				u[i] -= dot * b[i]
			}
		}
		nrm := 0.0
		for _, x := range u {
			nrm += real(x)*real(x) + imag(x)*imag(x)
		}
		nrm = math.Sqrt(nrm)
		if nrm <= indepTol {
			continue
		}
		for i := range u {
			u[i] /= complex(nrm, 0)
		}
		basis = append(basis, u)
		col := len(vals)
		for i := 0; i < n; i++ {
			vecs.data[i*n+col] = c.vec[i]
		}
		vals = append(vals, c.val)
	}
	if len(vals) != n {
		return nil, nil, ErrDefective
	}
	return vals, vecs, nil
}

// eigResidual returns the 2-norm of A v - λ v for a unit vector v.
func eigResidual(a *Matrix, val complex128, v []complex128) float64 {
	n := a.rows
	res := 0.0
	for i := 0; i < n; i++ {
		var s complex128
		row := a.data[i*n : (i+1)*n]
		for j, x := range v {
			s += row[j] * x
		}
		s -= val * v[i]
		res += real(s)*real(s) + imag(s)*imag(s)
	}
	return math.Sqrt(res)
}
