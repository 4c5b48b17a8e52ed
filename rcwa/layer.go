package rcwa

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/poudelkhem/RCWA/cmat"
)

const (
	// branchTol is the magnitude below which a squared mode eigenvalue is
	// too close to cutoff for either root to be trusted.
	branchTol = 1e-12
	// axisTol decides when a root sits on the imaginary axis, where the
	// propagating representative with positive imaginary part is chosen.
	axisTol = 1e-9
)

// Layer is one slice of the device stack: a thickness and the permittivity
// and permeability convolution matrices of its cross-section.
type Layer struct {
	ThicknessUm float64
	ERC, URC    *cmat.Matrix
}

// NewLayer validates the convolution matrices, which must be square and of
// equal order.
func NewLayer(thicknessUm float64, erc, urc *cmat.Matrix) (*Layer, error) {
	if thicknessUm < 0 {
		return nil, fmt.Errorf("layer thickness must be non-negative, got %g um", thicknessUm)
	}
	if erc.Rows() != erc.Cols() || urc.Rows() != urc.Cols() || erc.Rows() != urc.Rows() {
		return nil, fmt.Errorf("convolution matrices must be square and equal, got %dx%d and %dx%d: %w",
			erc.Rows(), erc.Cols(), urc.Rows(), urc.Cols(), ErrHarmonicCount)
	}
	return &Layer{ThicknessUm: thicknessUm, ERC: erc, URC: urc}, nil
}

// UniformLayer builds a homogeneous layer, whose convolution matrices are
// scaled identities.
func UniformLayer(thicknessUm float64, med Medium, g HarmonicGrid) (*Layer, error) {
	n := g.Count()
	return NewLayer(thicknessUm,
		cmat.Identity(n).Scale(med.Er),
		cmat.Identity(n).Scale(med.Ur))
}

// Lossless reports whether both convolution matrices are Hermitian, which is
// the Fourier-space image of real-valued material profiles.
func (l *Layer) Lossless() bool {
	return isHermitian(l.ERC) && isHermitian(l.URC)
}

func isHermitian(m *cmat.Matrix) bool {
	tol := 1e-12 * math.Max(1, m.MaxAbs())
	n := m.Rows()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if cmplx.Abs(m.At(i, j)-cmplx.Conj(m.At(j, i))) > tol {
				return false
			}
		}
	}
	return true
}

// PropagationRoot chooses the mode eigenvalue from its square: the root in
// the right half-plane, so that exp(-lambda*k0*L) decays through the layer,
// with the positive-imaginary representative for roots on the imaginary
// axis, which are phase-advancing propagating modes. Squares too close to
// zero sit on the branch point itself and are reported as ErrBranchCut.
func PropagationRoot(gammaSq complex128) (complex128, error) {
	if cmplx.Abs(gammaSq) < branchTol {
		return 0, fmt.Errorf("squared eigenvalue %v at cutoff: %w", gammaSq, ErrBranchCut)
	}
	root := cmplx.Sqrt(gammaSq)
	if math.Abs(real(root)) < axisTol*cmplx.Abs(root) && imag(root) < 0 {
		root = -root
	}
	return root, nil
}

// ScatterMatrix solves the layer eigenproblem and returns the scattering
// matrix of the layer embedded between two slices of the gap medium. The
// layer's field coupling blocks are
//
//	P = [Kx E^-1 Ky,  U - Kx E^-1 Kx;  Ky E^-1 Ky - U,  -Ky E^-1 Kx]
//	Q = [Kx U^-1 Ky,  E - Kx U^-1 Kx;  Ky U^-1 Ky - E,  -Ky U^-1 Kx]
//
// with E and U the permittivity and permeability convolution matrices, and
// the mode basis diagonalizes P*Q.
func (l *Layer) ScatterMatrix(wv *WaveVectors, gap *HalfSpace) (*ScatteringMatrix, error) {
	n := wv.Grid.Count()
	if l.ERC.Rows() != n {
		return nil, fmt.Errorf("layer truncated to %d harmonics, wavevectors to %d: %w",
			l.ERC.Rows(), n, ErrHarmonicCount)
	}

	invErc, err := cmat.Inverse(l.ERC)
	if err != nil {
		return nil, fmt.Errorf("permittivity convolution matrix: %w", ErrSingularMatrix)
	}
	invUrc, err := cmat.Inverse(l.URC)
	if err != nil {
		return nil, fmt.Errorf("permeability convolution matrix: %w", ErrSingularMatrix)
	}

	p := couplingBlocks(invErc, l.URC, wv.Kx, wv.Ky)
	q := couplingBlocks(invUrc, l.ERC, wv.Kx, wv.Ky)
	omegaSq := p.Mul(q)

	gammaSq, w, err := cmat.Eig(omegaSq)
	if err != nil {
		return nil, fmt.Errorf("mode eigendecomposition: %w", ErrSingularMatrix)
	}
	lambda := make([]complex128, 2*n)
	lambdaInv := make([]complex128, 2*n)
	for m, g2 := range gammaSq {
		lam, err := PropagationRoot(g2)
		if err != nil {
			return nil, fmt.Errorf("mode %d: %w", m, err)
		}
		lambda[m] = lam
		lambdaInv[m] = 1 / lam
	}
	v := q.Mul(w).ScaleCols(lambdaInv)

	// Propagation factors through the physical thickness.
	x := make([]complex128, 2*n)
	for m := range x {
		x[m] = cmplx.Exp(-lambda[m] * complex(wv.K0*l.ThicknessUm, 0))
	}

	wInvW0, err := cmat.Solve(w, gap.W)
	if err != nil {
		return nil, fmt.Errorf("mode basis W: %w", ErrSingularMatrix)
	}
	vInvV0, err := cmat.Solve(v, gap.V)
	if err != nil {
		return nil, fmt.Errorf("mode basis V: %w", ErrSingularMatrix)
	}
	a := wInvW0.Add(vInvV0)
	b := wInvW0.Sub(vInvV0)

	aInv, err := cmat.Inverse(a)
	if err != nil {
		return nil, fmt.Errorf("layer boundary matrix: %w", ErrSingularMatrix)
	}
	xb := b.ScaleRows(x)
	xa := a.ScaleRows(x)

	var fd cmat.LU
	if err := fd.Factor(a.Sub(xb.Mul(aInv).Mul(xb))); err != nil {
		return nil, fmt.Errorf("layer interaction matrix: %w", ErrSingularMatrix)
	}
	s11 := fd.Solve(xb.Mul(aInv).Mul(xa).Sub(b))
	s12 := fd.Solve(a.Sub(b.Mul(aInv).Mul(b)).ScaleRows(x))

	// A symmetric slab scatters identically from both sides.
	return &ScatteringMatrix{S11: s11, S12: s12, S21: s12, S22: s11}, nil
}

// couplingBlocks assembles the 2N x 2N field coupling matrix from one
// inverted convolution matrix, the opposing convolution matrix, and the
// transverse wavevector diagonals.
func couplingBlocks(inv, opp *cmat.Matrix, kx, ky []complex128) *cmat.Matrix {
	return cmat.Block2x2(
		inv.ScaleRows(kx).ScaleCols(ky),
		opp.Sub(inv.ScaleRows(kx).ScaleCols(kx)),
		inv.ScaleRows(ky).ScaleCols(ky).Sub(opp),
		inv.ScaleRows(ky).ScaleCols(kx).Scale(-1),
	)
}
