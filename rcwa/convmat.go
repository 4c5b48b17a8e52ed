package rcwa

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/poudelkhem/RCWA/cmat"
)

// ConvolutionMatrix converts a real-space material profile over one unit
// cell into its Fourier-space convolution matrix, truncated to the harmonic
// grid. The profile is indexed grid[iy][ix] with x increasing along a row
// and row 0 at the top of the cell (largest y), the orientation the device
// images use. Its resolution must cover the order differences the truncation
// needs: at least (2Ny-1) x (2Nx-1) samples.
//
// Element (r, c) holds the Fourier coefficient of order difference
// (p_r - p_c, q_r - q_c), so multiplying a field vector by the matrix is the
// truncated Fourier-space image of multiplying the field by the profile.
// The linear ordering is HarmonicGrid.Index, shared with the wavevector
// layout.
func ConvolutionMatrix(grid [][]complex128, g HarmonicGrid) (*cmat.Matrix, error) {
	rows, cols, err := rectSize(grid)
	if err != nil {
		return nil, err
	}
	if rows < 2*g.Ny-1 || cols < 2*g.Nx-1 {
		return nil, fmt.Errorf("profile sampled %dx%d, need at least %dx%d for %dx%d harmonics: %w",
			cols, rows, 2*g.Nx-1, 2*g.Ny-1, g.Nx, g.Ny, ErrDeviceGrid)
	}

	// Rows arrive in image order, top of the cell first; the transform
	// wants ascending y.
	work := make([][]complex128, rows)
	for i := range work {
		work[i] = append([]complex128(nil), grid[rows-1-i]...)
	}
	fft2InPlace(work)

	scale := complex(1/float64(rows*cols), 0)
	coef := func(dp, dq int) complex128 {
		return work[mod(dq, rows)][mod(dp, cols)] * scale
	}

	n := g.Count()
	c := cmat.New(n, n, nil)
	for r := 0; r < n; r++ {
		pr, qr := g.Order(r)
		for col := 0; col < n; col++ {
			pc, qc := g.Order(col)
			c.Set(r, col, coef(pr-pc, qr-qc))
		}
	}
	return c, nil
}

// fft2InPlace runs an unnormalized forward 2-D FFT, rows then columns.
func fft2InPlace(a [][]complex128) {
	h := len(a)
	w := len(a[0])

	rowFFT := fourier.NewCmplxFFT(w)
	colFFT := fourier.NewCmplxFFT(h)

	tmp := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(tmp, a[y])
		rowFFT.Coefficients(tmp, tmp)
		copy(a[y], tmp)
	}

	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = a[y][x]
		}
		colFFT.Coefficients(col, col)
		for y := 0; y < h; y++ {
			a[y][x] = col[y]
		}
	}
}

func rectSize(m [][]complex128) (h, w int, err error) {
	h = len(m)
	if h == 0 {
		return 0, 0, fmt.Errorf("empty profile grid: %w", ErrDeviceGrid)
	}
	w = len(m[0])
	for i := 1; i < h; i++ {
		if len(m[i]) != w {
			return 0, 0, fmt.Errorf("ragged profile grid: row %d has %d samples, row 0 has %d: %w",
				i, len(m[i]), w, ErrDeviceGrid)
		}
	}
	if w == 0 {
		return 0, 0, fmt.Errorf("empty profile grid: %w", ErrDeviceGrid)
	}
	return h, w, nil
}

func mod(i, n int) int {
	r := i % n
	if r < 0 {
		r += n
	}
	return r
}
