package spectrum_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poudelkhem/RCWA/rcwa"
	"github.com/poudelkhem/RCWA/spectrum"
)

func slabProblem(t *testing.T) rcwa.Problem {
	t.Helper()
	grid, err := rcwa.NewHarmonicGrid(1, 1)
	require.NoError(t, err)
	layer, err := rcwa.UniformLayer(0.3, rcwa.Medium{Er: 6, Ur: 1}, grid)
	require.NoError(t, err)

	return rcwa.Problem{
		Grid:   grid,
		PTE:    1,
		LxUm:   1.0,
		LyUm:   1.0,
		Ref:    rcwa.Medium{Er: 2, Ur: 1},
		Trn:    rcwa.Medium{Er: 9, Ur: 1},
		Layers: []*rcwa.Layer{layer},
	}
}

// TestRunSlabSweep checks ordering, per-point energy balance and that the
// slab interference actually moves the reflectance across the band.
func TestRunSlabSweep(t *testing.T) {
	sweep, err := spectrum.Run(context.Background(), slabProblem(t), 1.3, 1.7, 9, 2)
	require.NoError(t, err)
	require.Len(t, sweep, 9)

	minR, maxR := math.Inf(1), math.Inf(-1)
	for i, p := range sweep {
		if i > 0 {
			require.Greater(t, p.WavelengthUm, sweep[i-1].WavelengthUm, "wavelengths must ascend")
		}
		require.LessOrEqual(t, math.Abs(p.Absorption()), 1e-10, "lossless slab at %g um", p.WavelengthUm)
		minR = math.Min(minR, p.RTotal)
		maxR = math.Max(maxR, p.RTotal)
	}
	require.InDelta(t, 1.3, sweep[0].WavelengthUm, 1e-12)
	require.InDelta(t, 1.7, sweep[len(sweep)-1].WavelengthUm, 1e-12)
	require.Greater(t, maxR-minR, 1e-4, "slab fringes should modulate the reflectance")

	peakWl, peakR := sweep.PeakReflectance()
	require.InDelta(t, maxR, peakR, 1e-15)
	require.GreaterOrEqual(t, peakWl, 1.3)
	require.LessOrEqual(t, peakWl, 1.7)
}

// TestRunValidation rejects degenerate sweep ranges.
func TestRunValidation(t *testing.T) {
	base := slabProblem(t)

	_, err := spectrum.Run(context.Background(), base, 1.3, 1.7, 1, 0)
	require.Error(t, err, "single-point sweep")

	_, err = spectrum.Run(context.Background(), base, 1.7, 1.3, 5, 0)
	require.Error(t, err, "reversed range")

	_, err = spectrum.Run(context.Background(), base, 0, 1.3, 5, 0)
	require.Error(t, err, "zero start")
}

// TestRunPropagatesSolverErrors: a sweep crossing the Rayleigh wavelength of
// the lattice reports the underlying branch-cut failure.
func TestRunPropagatesSolverErrors(t *testing.T) {
	base := slabProblem(t)
	base.Grid, _ = rcwa.NewHarmonicGrid(3, 1)
	layer, err := rcwa.UniformLayer(0.3, rcwa.Medium{Er: 6, Ur: 1}, base.Grid)
	require.NoError(t, err)
	base.Layers = []*rcwa.Layer{layer}
	base.Ref = rcwa.Vacuum
	base.Trn = rcwa.Vacuum

	_, err = spectrum.Run(context.Background(), base, 0.9, 1.1, 3, 0)
	require.ErrorIs(t, err, rcwa.ErrBranchCut)
}

// TestRunHonorsCancellation stops queued wavelengths.
func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := spectrum.Run(ctx, slabProblem(t), 1.3, 1.7, 9, 1)
	require.ErrorIs(t, err, context.Canceled)
}
