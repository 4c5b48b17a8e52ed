package rcwa

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/poudelkhem/RCWA/cmat"
)

// Efficiencies holds the diffraction efficiencies of every retained order.
// The grids are indexed [ix][iy] with the same order layout as HarmonicGrid;
// OrderR and OrderT look orders up by their (p, q) labels. Evanescent orders
// carry exactly zero efficiency.
type Efficiencies struct {
	Grid HarmonicGrid

	R, T           [][]float64
	RTotal, TTotal float64
}

// OrderR returns the reflection efficiency of diffraction order (p, q).
func (e *Efficiencies) OrderR(p, q int) float64 {
	return e.R[p+e.Grid.Nx/2][q+e.Grid.Ny/2]
}

// OrderT returns the transmission efficiency of diffraction order (p, q).
func (e *Efficiencies) OrderT(p, q int) float64 {
	return e.T[p+e.Grid.Nx/2][q+e.Grid.Ny/2]
}

// EnergyDefect returns |1 - RTotal - TTotal|, the conservation residual that
// should vanish for lossless stacks.
func (e *Efficiencies) EnergyDefect() float64 {
	return math.Abs(1 - e.RTotal - e.TTotal)
}

// DiffractionEfficiencies drives the incident plane wave through the global
// scattering matrix and converts the emerging mode amplitudes into per-order
// power efficiencies.
//
// The excitation is a delta at the zero-order harmonic with polarization
// pte*aTE + ptm*aTM, where aTE is the unit vector normal to the plane of
// incidence (y-directed at normal incidence) and aTM completes the
// right-handed triad with the incident direction. The amplitudes are
// normalized so the incident power is one.
func DiffractionEfficiencies(wv *WaveVectors, ref, trn *HalfSpace, refMed, trnMed Medium, global *ScatteringMatrix, pte, ptm complex128) (*Efficiencies, error) {
	n := wv.Grid.Count()
	if global.Order() != 2*n {
		return nil, fmt.Errorf("scattering matrix order %d for %d harmonics: %w",
			global.Order(), n, ErrHarmonicCount)
	}
	mag := math.Sqrt(real(pte)*real(pte) + imag(pte)*imag(pte) +
		real(ptm)*real(ptm) + imag(ptm)*imag(ptm))
	if mag == 0 {
		return nil, fmt.Errorf("zero polarization amplitudes")
	}
	pte /= complex(mag, 0)
	ptm /= complex(mag, 0)

	px, py := polarizationVector(wv, pte, ptm)
	esrc := make([]complex128, 2*n)
	z := wv.Grid.ZeroIndex()
	esrc[z] = px
	esrc[n+z] = py

	csrc, err := cmat.SolveVec(ref.W, esrc)
	if err != nil {
		return nil, fmt.Errorf("excitation projection: %w", ErrSingularMatrix)
	}
	eref := ref.W.MulVec(global.S11.MulVec(csrc))
	etrn := trn.W.MulVec(global.S21.MulVec(csrc))

	kzInc := wv.KzInc()
	eff := &Efficiencies{Grid: wv.Grid}
	rFlat := orderEfficiencies(wv, eref, wv.KzRef, -1/complex(kzInc, 0))
	urRatio := refMed.Ur / trnMed.Ur
	tFlat := orderEfficiencies(wv, etrn, wv.KzTrn, urRatio/complex(kzInc, 0))

	eff.R = reshape(rFlat, wv.Grid)
	eff.T = reshape(tFlat, wv.Grid)
	for _, v := range rFlat {
		eff.RTotal += v
	}
	for _, v := range tFlat {
		eff.TTotal += v
	}
	return eff, nil
}

// orderEfficiencies reconstructs the longitudinal field component of each
// harmonic from transversality, ez = -inv(Kz)(Kx ex + Ky ey) with the
// region's signed Kz, and scales the squared field magnitude by the
// longitudinal power factor.
func orderEfficiencies(wv *WaveVectors, field, kz []complex128, factor complex128) []float64 {
	n := wv.Grid.Count()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		ex, ey := field[i], field[n+i]
		var ez complex128
		if cmplx.Abs(kz[i]) > 1e-12 {
			ez = -(wv.Kx[i]*ex + wv.Ky[i]*ey) / kz[i]
		}
		mag := real(ex)*real(ex) + imag(ex)*imag(ex) +
			real(ey)*real(ey) + imag(ey)*imag(ey) +
			real(ez)*real(ez) + imag(ez)*imag(ez)
		out[i] = real(factor*kz[i]) * mag
	}
	return out
}

// polarizationVector returns the transverse components of the composite
// polarization for unit-power excitation.
func polarizationVector(wv *WaveVectors, pte, ptm complex128) (px, py complex128) {
	kinc := wv.KInc
	norm := math.Sqrt(kinc[0]*kinc[0] + kinc[1]*kinc[1] + kinc[2]*kinc[2])
	khat := [3]float64{kinc[0] / norm, kinc[1] / norm, kinc[2] / norm}

	var ate [3]float64
	if s := math.Hypot(kinc[0], kinc[1]); s < 1e-12 {
		ate = [3]float64{0, 1, 0}
	} else {
		ate = [3]float64{-kinc[1] / s, kinc[0] / s, 0}
	}
	atm := [3]float64{
		ate[1]*khat[2] - ate[2]*khat[1],
		ate[2]*khat[0] - ate[0]*khat[2],
		ate[0]*khat[1] - ate[1]*khat[0],
	}

	px = pte*complex(ate[0], 0) + ptm*complex(atm[0], 0)
	py = pte*complex(ate[1], 0) + ptm*complex(atm[1], 0)
	return px, py
}

// reshape lays a flat per-harmonic slice out as an [ix][iy] grid.
func reshape(flat []float64, g HarmonicGrid) [][]float64 {
	out := make([][]float64, g.Nx)
	for ix := 0; ix < g.Nx; ix++ {
		out[ix] = make([]float64, g.Ny)
		for iy := 0; iy < g.Ny; iy++ {
			out[ix][iy] = flat[g.Index(ix, iy)]
		}
	}
	return out
}
