package rcwa

import (
	"fmt"
	"math/cmplx"

	"github.com/poudelkhem/RCWA/cmat"
)

// Side selects which exterior region a boundary scattering matrix connects
// to the gap medium. The two sides use mirrored block formulas.
type Side int

const (
	SideReflection Side = iota
	SideTransmission
)

func (s Side) String() string {
	if s == SideReflection {
		return "reflection"
	}
	return "transmission"
}

// HalfSpace is the analytic eigenmode basis of a homogeneous region. In a
// uniform medium the plane-wave harmonics are already eigenmodes, so W is
// the identity and no dense eigensolve is needed; V follows from the region
// impedance. S holds the boundary scattering matrix against the gap medium
// and is nil for the gap itself.
type HalfSpace struct {
	W, V *cmat.Matrix
	Kz   []complex128
	S    *ScatteringMatrix
}

// NewGap builds the mode basis of the free-space gap medium that all layer
// scattering matrices are referenced to.
func NewGap(wv *WaveVectors) (*HalfSpace, error) {
	v, err := homogeneousModes(wv, Vacuum, wv.KzGap, +1i)
	if err != nil {
		return nil, fmt.Errorf("gap medium: %w", err)
	}
	return &HalfSpace{W: cmat.Identity(2 * wv.Grid.Count()), V: v, Kz: wv.KzGap}, nil
}

// NewHalfSpace builds the eigenmode basis of an exterior region and its
// boundary scattering matrix against the gap. The reflection side carries
// the backward sign convention: its stored Kz has negative real parts and
// its mode eigenvalues are -j*Kz.
func NewHalfSpace(wv *WaveVectors, med Medium, side Side, gap *HalfSpace) (*HalfSpace, error) {
	var kz []complex128
	var sign complex128
	if side == SideReflection {
		kz = wv.KzRef
		sign = -1i
	} else {
		kz = wv.KzTrn
		sign = +1i
	}
	v, err := homogeneousModes(wv, med, kz, sign)
	if err != nil {
		return nil, fmt.Errorf("%s region: %w", side, err)
	}
	hs := &HalfSpace{W: cmat.Identity(2 * wv.Grid.Count()), V: v, Kz: kz}

	// A = W0^-1 W + V0^-1 V and B = W0^-1 W - V0^-1 V, both taken from the
	// gap basis. W0 is the identity, but the solve keeps the form general.
	w0InvW, err := cmat.Solve(gap.W, hs.W)
	if err != nil {
		return nil, fmt.Errorf("%s boundary, gap W solve: %w", side, ErrSingularMatrix)
	}
	v0InvV, err := cmat.Solve(gap.V, hs.V)
	if err != nil {
		return nil, fmt.Errorf("%s boundary, gap V solve: %w", side, ErrSingularMatrix)
	}
	a := w0InvW.Add(v0InvV)
	b := w0InvW.Sub(v0InvV)

	aInv, err := cmat.Inverse(a)
	if err != nil {
		return nil, fmt.Errorf("%s boundary matrix: %w", side, ErrSingularMatrix)
	}
	bAinv := b.Mul(aInv)
	half := a.Sub(bAinv.Mul(b)).Scale(0.5)

	if side == SideReflection {
		hs.S = &ScatteringMatrix{
			S11: aInv.Mul(b).Scale(-1),
			S12: aInv.Scale(2),
			S21: half,
			S22: bAinv,
		}
	} else {
		hs.S = &ScatteringMatrix{
			S11: bAinv,
			S12: half,
			S21: aInv.Scale(2),
			S22: aInv.Mul(b).Scale(-1),
		}
	}
	return hs, nil
}

// homogeneousModes returns V = Q * inv(Lambda) for a uniform medium, with
// Lambda = sign*kz doubled over the x and y field blocks. Callers pass
// sign = +j for forward regions and -j for the backward reflection side.
func homogeneousModes(wv *WaveVectors, m Medium, kz []complex128, sign complex128) (*cmat.Matrix, error) {
	n := wv.Grid.Count()
	q11 := make([]complex128, n)
	q12 := make([]complex128, n)
	q21 := make([]complex128, n)
	q22 := make([]complex128, n)
	eu := m.Er * m.Ur
	for i := 0; i < n; i++ {
		kx, ky := wv.Kx[i], wv.Ky[i]
		q11[i] = kx * ky / m.Ur
		q12[i] = (eu - kx*kx) / m.Ur
		q21[i] = (ky*ky - eu) / m.Ur
		q22[i] = -ky * kx / m.Ur
	}
	q := cmat.Block2x2(
		cmat.Diagonal(q11), cmat.Diagonal(q12),
		cmat.Diagonal(q21), cmat.Diagonal(q22))

	lamInv := make([]complex128, 2*n)
	for i, z := range kz {
		lam := sign * z
		if cmplx.Abs(lam) < 1e-12 {
			return nil, fmt.Errorf("harmonic %d at grazing cutoff: %w", i, ErrBranchCut)
		}
		lamInv[i] = 1 / lam
		lamInv[i+n] = 1 / lam
	}
	return q.ScaleCols(lamInv), nil
}
