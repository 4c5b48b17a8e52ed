package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCellCenters checks that samples sit at the centers of equal
// subdivisions of the period, symmetric about zero.
func TestCellCenters(t *testing.T) {
	got := cellCenters(1.0, 4)
	want := []float64{-0.375, -0.125, 0.125, 0.375}
	require.InDeltaSlice(t, want, got, 1e-15, "centers of four cells across a unit period")

	single := cellCenters(2.0, 1)
	require.Equal(t, []float64{0}, single, "a single sample sits at the cell center")
}

// TestInsideGeneralizedEllipse probes a circle and a rotated ellipse just
// inside and just outside their boundaries.
func TestInsideGeneralizedEllipse(t *testing.T) {
	// Unit-diameter circle at the origin
	require.True(t, insideGeneralizedEllipse(0.49, 0, 0, 0, 1, 1, 0), "point just inside the circle")
	require.False(t, insideGeneralizedEllipse(0.51, 0, 0, 0, 1, 1, 0), "point just outside the circle")
	require.True(t, insideGeneralizedEllipse(0.5, 0, 0, 0, 1, 1, 0), "boundary point counts as inside")

	// An ellipse with its long axis along x, rotated 90 degrees so the long
	// axis points along y.
	require.True(t, insideGeneralizedEllipse(0, 0.45, 0, 0, 1, 0.5, 90), "long axis now along y")
	require.False(t, insideGeneralizedEllipse(0.3, 0, 0, 0, 1, 0.5, 90), "short axis now along x")

	// Off-center placement
	require.True(t, insideGeneralizedEllipse(1.1, 2.0, 1.0, 2.0, 0.5, 0.5, 0), "circle moved to (1,2)")
	require.False(t, insideGeneralizedEllipse(0, 0, 1.0, 2.0, 0.5, 0.5, 0), "origin is outside the moved circle")
}

// TestInsideRotatedRect checks the axis-aligned case and the 45-degree case,
// where the rectangle's diagonal reaches further along x than its side.
func TestInsideRotatedRect(t *testing.T) {
	require.True(t, insideRotatedRect(0.49, 0.49, 0, 0, 1, 1, 0), "corner region of the unit square")
	require.False(t, insideRotatedRect(0.51, 0, 0, 0, 1, 1, 0), "outside the unit square")

	// Rotated 45 degrees, the square's diagonal spans about +-0.707 along x.
	require.True(t, insideRotatedRect(0.7, 0, 0, 0, 1, 1, 45), "inside the rotated square's diagonal")
	require.False(t, insideRotatedRect(0.6, 0.6, 0, 0, 1, 1, 45), "outside the rotated square")
}

// TestBuildLayerGridPaintsInclusions rasterizes a circular post on a uniform
// background and checks sample values, the painted area, and that a later
// inclusion overwrites an earlier one.
func TestBuildLayerGridPaintsInclusions(t *testing.T) {
	layer := LayerSpec{
		ThicknessUm: 0.2,
		Background:  MaterialSpec{Er: 4, Ur: 1},
		Inclusions: []InclusionSpec{
			{Shape: "ellipse", Er: 9, Ur: 1, XDiamUm: 0.5, YDiamUm: 0.5},
		},
	}

	n := 16
	er, ur := BuildLayerGrid(layer, 1.0, 1.0, n)
	require.Len(t, er, n, "er grid row count")
	require.Len(t, ur, n, "ur grid row count")

	require.Equal(t, complex(9, 0), er[n/2][n/2], "center sample takes the post material")
	require.Equal(t, complex(4, 0), er[0][0], "corner sample keeps the background")

	painted := 0
	for r := range er {
		require.Len(t, er[r], n, "er grid must be square")
		for c := range er[r] {
			require.Equal(t, complex128(1), ur[r][c], "permeability is 1 everywhere here")
			if er[r][c] == complex(9, 0) {
				painted++
			}
		}
	}
	// pi * 0.25^2 of a unit cell is about 19.6% of the 256 samples.
	require.Greater(t, painted, 40, "painted area lower bound")
	require.Less(t, painted, 61, "painted area upper bound")

	// A later inclusion wins where shapes overlap.
	layer.Inclusions = append(layer.Inclusions, InclusionSpec{
		Shape: "rectangle", Er: 2, Ur: 1, XDiamUm: 0.2, YDiamUm: 0.2,
	})
	er, _ = BuildLayerGrid(layer, 1.0, 1.0, n)
	require.Equal(t, complex(2, 0), er[n/2][n/2], "the notch overwrites the post at the center")
}

// TestBuildLayerGridOrientation places an off-center inclusion and checks
// that row 0 is the top of the cell (y most positive).
func TestBuildLayerGridOrientation(t *testing.T) {
	layer := LayerSpec{
		Background: MaterialSpec{Er: 1, Ur: 1},
		Inclusions: []InclusionSpec{
			{Shape: "rectangle", Er: 9, Ur: 1, YCenterUm: 0.3, XDiamUm: 1.0, YDiamUm: 0.2},
		},
	}

	n := 10
	er, _ := BuildLayerGrid(layer, 1.0, 1.0, n)

	// y = +0.3 is near the top of the cell: painted rows sit at small row
	// indices, and the bottom half stays background.
	require.Equal(t, complex(9, 0), er[2][5], "stripe near the top of the grid")
	require.Equal(t, complex(1, 0), er[7][5], "bottom half keeps the background")
}

// TestGridToMagnitudeMatrix checks the complex magnitude conversion.
func TestGridToMagnitudeMatrix(t *testing.T) {
	grid := [][]complex128{{complex(3, 4), 1}, {0, complex(0, 2)}}
	m := GridToMagnitudeMatrix(grid)
	require.Equal(t, [][]float64{{5, 1}, {0, 2}}, m, "entrywise magnitudes")
}
