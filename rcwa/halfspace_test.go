package rcwa_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poudelkhem/RCWA/cmat"
	"github.com/poudelkhem/RCWA/rcwa"
)

// requireDiagonal asserts a matrix is value*I.
func requireDiagonal(t *testing.T, m *cmat.Matrix, value complex128) {
	t.Helper()
	rows, cols := m.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			want := complex128(0)
			if r == c {
				want = value
			}
			require.LessOrEqual(t, cmplx.Abs(m.At(r, c)-want), 1e-12,
				"entry (%d, %d)", r, c)
		}
	}
}

// TestGapModes pins the free-space mode basis at normal incidence: W is the
// identity and V couples the field blocks through the vacuum impedance.
func TestGapModes(t *testing.T) {
	wv, err := rcwa.NewWaveVectors(mustGrid(1, 1), 1.55, 0, 0, 1, 1, rcwa.Vacuum, rcwa.Vacuum)
	require.NoError(t, err)
	gap, err := rcwa.NewGap(wv)
	require.NoError(t, err)

	requireDiagonal(t, gap.W, 1)
	require.LessOrEqual(t, cmplx.Abs(gap.Kz[0]-1), 1e-12)

	require.LessOrEqual(t, cmplx.Abs(gap.V.At(0, 0)), 1e-12)
	require.LessOrEqual(t, cmplx.Abs(gap.V.At(0, 1)-(-1i)), 1e-12)
	require.LessOrEqual(t, cmplx.Abs(gap.V.At(1, 0)-1i), 1e-12)
	require.LessOrEqual(t, cmplx.Abs(gap.V.At(1, 1)), 1e-12)
}

// TestBoundaryMatrixBlocks checks both boundary scattering matrices against
// hand-evaluated values for scalar half-spaces, sign conventions included.
func TestBoundaryMatrixBlocks(t *testing.T) {
	wv, err := rcwa.NewWaveVectors(mustGrid(1, 1), 1.55, 0, 0, 1, 1,
		rcwa.Medium{Er: 2, Ur: 1}, rcwa.Medium{Er: 9, Ur: 1})
	require.NoError(t, err)
	gap, err := rcwa.NewGap(wv)
	require.NoError(t, err)

	ref, err := rcwa.NewHalfSpace(wv, rcwa.Medium{Er: 2, Ur: 1}, rcwa.SideReflection, gap)
	require.NoError(t, err)
	w := math.Sqrt2
	requireDiagonal(t, ref.S.S11, complex((w-1)/(w+1), 0))
	requireDiagonal(t, ref.S.S12, complex(2/(1+w), 0))
	requireDiagonal(t, ref.S.S21, complex(2*w/(1+w), 0))
	requireDiagonal(t, ref.S.S22, complex((1-w)/(1+w), 0))

	trn, err := rcwa.NewHalfSpace(wv, rcwa.Medium{Er: 9, Ur: 1}, rcwa.SideTransmission, gap)
	require.NoError(t, err)
	requireDiagonal(t, trn.S.S11, -0.5)
	requireDiagonal(t, trn.S.S12, 1.5)
	requireDiagonal(t, trn.S.S21, 0.5)
	requireDiagonal(t, trn.S.S22, 0.5)
}
