package rcwa

import (
	"fmt"
	"math"
	"math/cmplx"
)

// HarmonicGrid is a truncated set of spatial harmonics, Nx orders along x and
// Ny along y, both odd so the zero order sits at the center. Every matrix and
// vector in the solver indexes harmonics through Index, with the x order
// outermost: the (ix, iy) pair maps to ix*Ny + iy. The convolution-matrix
// builder uses the same mapping, which is what keeps the two sides of the
// Fourier-space product consistent.
type HarmonicGrid struct {
	Nx, Ny int
}

// NewHarmonicGrid validates the truncation. Counts must be odd and positive.
func NewHarmonicGrid(nx, ny int) (HarmonicGrid, error) {
	if nx < 1 || ny < 1 || nx%2 == 0 || ny%2 == 0 {
		return HarmonicGrid{}, fmt.Errorf("harmonic counts must be odd and positive, got %d x %d: %w",
			nx, ny, ErrHarmonicCount)
	}
	return HarmonicGrid{Nx: nx, Ny: ny}, nil
}

// Count returns the total number of retained harmonics.
func (g HarmonicGrid) Count() int { return g.Nx * g.Ny }

// Index maps zero-based harmonic indices to the shared linear ordering.
func (g HarmonicGrid) Index(ix, iy int) int { return ix*g.Ny + iy }

// Order returns the diffraction orders (p, q) of linear index k, with p in
// [-Nx/2, Nx/2] and q in [-Ny/2, Ny/2].
func (g HarmonicGrid) Order(k int) (p, q int) {
	return k/g.Ny - g.Nx/2, k%g.Ny - g.Ny/2
}

// ZeroIndex returns the linear index of the (0, 0) order.
func (g HarmonicGrid) ZeroIndex() int { return g.Index(g.Nx/2, g.Ny/2) }

// Medium is a homogeneous material given by its relative permittivity and
// permeability.
type Medium struct {
	Er complex128
	Ur complex128
}

// Vacuum is the free-space medium.
var Vacuum = Medium{Er: 1, Ur: 1}

// RefractiveIndex returns sqrt(er*ur) on the principal branch.
func (m Medium) RefractiveIndex() complex128 { return cmplx.Sqrt(m.Er * m.Ur) }

// Lossless reports whether the medium has purely real material constants.
func (m Medium) Lossless() bool { return imag(m.Er) == 0 && imag(m.Ur) == 0 }

// WaveVectors holds the transverse wavevector components of every retained
// harmonic and the longitudinal components in the three homogeneous regions,
// all normalized to the free-space wavenumber k0. KzRef carries the sign of
// backward travel: its propagating entries have negative real part, so the
// reflected power factor -KzRef/KzInc comes out positive.
type WaveVectors struct {
	Grid HarmonicGrid

	// K0 is the free-space wavenumber in radians per micrometer.
	K0 float64

	Kx, Ky []complex128 // diagonal entries, one per harmonic
	KzRef  []complex128
	KzTrn  []complex128
	KzGap  []complex128

	// KInc is the normalized incident wavevector (n_ref * direction).
	KInc [3]float64
}

// NewWaveVectors lays out the transverse wavevector set for a unit cell of
// period lxUm x lyUm illuminated at the given angles. The reflection-side
// medium must be lossless so the incident wave and the power normalization
// are well defined.
func NewWaveVectors(g HarmonicGrid, wavelengthUm, thetaDeg, phiDeg, lxUm, lyUm float64, ref, trn Medium) (*WaveVectors, error) {
	switch {
	case wavelengthUm <= 0:
		return nil, fmt.Errorf("wavelength must be positive, got %g um", wavelengthUm)
	case lxUm <= 0 || lyUm <= 0:
		return nil, fmt.Errorf("lattice periods must be positive, got %g x %g um", lxUm, lyUm)
	case thetaDeg < 0 || thetaDeg >= 90:
		return nil, fmt.Errorf("incidence angle must be in [0, 90) degrees, got %g", thetaDeg)
	}
	nRef := ref.RefractiveIndex()
	if math.Abs(imag(nRef)) > 1e-9 {
		return nil, fmt.Errorf("reflection-side medium must be lossless, got index %v", nRef)
	}

	theta := thetaDeg * math.Pi / 180
	phi := phiDeg * math.Pi / 180
	n1 := real(nRef)

	wv := &WaveVectors{
		Grid: g,
		K0:   2 * math.Pi / wavelengthUm,
		KInc: [3]float64{
			n1 * math.Sin(theta) * math.Cos(phi),
			n1 * math.Sin(theta) * math.Sin(phi),
			n1 * math.Cos(theta),
		},
	}

	n := g.Count()
	wv.Kx = make([]complex128, n)
	wv.Ky = make([]complex128, n)
	wv.KzRef = make([]complex128, n)
	wv.KzTrn = make([]complex128, n)
	wv.KzGap = make([]complex128, n)
	for k := 0; k < n; k++ {
		p, q := g.Order(k)
		kx := complex(wv.KInc[0]-float64(p)*wavelengthUm/lxUm, 0)
		ky := complex(wv.KInc[1]-float64(q)*wavelengthUm/lyUm, 0)
		wv.Kx[k] = kx
		wv.Ky[k] = ky
		wv.KzRef[k] = -longitudinal(ref, kx, ky)
		wv.KzTrn[k] = longitudinal(trn, kx, ky)
		wv.KzGap[k] = longitudinal(Vacuum, kx, ky)
	}
	return wv, nil
}

// longitudinal returns the forward kz of one harmonic in a homogeneous
// medium. The conjugate of the principal square root puts evanescent and
// lossy orders on the branch whose boundary matrices stay bounded, given the
// package convention that loss is a positive imaginary material constant.
func longitudinal(m Medium, kx, ky complex128) complex128 {
	return cmplx.Conj(cmplx.Sqrt(m.Er*m.Ur - kx*kx - ky*ky))
}

// KzInc returns the normalized longitudinal component of the incident wave.
func (wv *WaveVectors) KzInc() float64 { return wv.KInc[2] }
