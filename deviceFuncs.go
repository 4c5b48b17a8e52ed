package main

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

// insideGeneralizedEllipse returns true if x,y is inside or on the ellipse
// boundary. x0,y0 are the coordinates of the center of the ellipse and
// thetaDegrees is the counter-clockwise rotation around that center.
func insideGeneralizedEllipse(x, y, x0, y0, xDiam, yDiam, thetaDegrees float64) bool {
	xSemi := xDiam / 2.0
	ySemi := yDiam / 2.0

	thetaRadians := thetaDegrees * (math.Pi / 180.0)
	t1 := ((x-x0)*math.Cos(thetaRadians) + (y-y0)*math.Sin(thetaRadians)) / xSemi
	t2 := (-(x-x0)*math.Sin(thetaRadians) + (y-y0)*math.Cos(thetaRadians)) / ySemi
	return t1*t1+t2*t2 <= 1.0
}

// insideRotatedRect returns true if x,y falls inside or on an axis-aligned
// rectangle of the given side lengths, rotated counter-clockwise by
// thetaDegrees around its center x0,y0.
func insideRotatedRect(x, y, x0, y0, xSide, ySide, thetaDegrees float64) bool {
	thetaRadians := thetaDegrees * (math.Pi / 180.0)
	u := (x-x0)*math.Cos(thetaRadians) + (y-y0)*math.Sin(thetaRadians)
	v := -(x-x0)*math.Sin(thetaRadians) + (y-y0)*math.Cos(thetaRadians)
	return math.Abs(u) <= xSide/2.0 && math.Abs(v) <= ySide/2.0
}

// cellCenters returns n sample coordinates centered in equal subdivisions of
// a period, spanning -length/2 to +length/2 without touching either edge.
func cellCenters(length float64, n int) []float64 {
	delta := length / float64(n)
	x := make([]float64, n)
	if n == 1 {
		return x
	}
	floats.Span(x, -length/2.0+delta/2.0, length/2.0-delta/2.0)
	return x
}

// BuildLayerGrid rasterizes one layer description onto an n x n grid of
// material samples covering the unit cell. Row 0 is the top of the cell
// (y most positive) so the grids map directly onto image previews.
// Inclusions are painted in order, so a later inclusion overwrites any
// earlier one where they overlap.
func BuildLayerGrid(layer LayerSpec, lxUm, lyUm float64, n int) (er, ur [][]complex128) {
	xVals := cellCenters(lxUm, n)
	yVals := cellCenters(lyUm, n)

	er = make([][]complex128, n)
	ur = make([][]complex128, n)
	for row := 0; row < n; row++ {
		er[row] = make([]complex128, n)
		ur[row] = make([]complex128, n)
		y := yVals[n-1-row]
		for col := 0; col < n; col++ {
			er[row][col] = layer.Background.Er
			ur[row][col] = layer.Background.Ur
			x := xVals[col]
			for _, inc := range layer.Inclusions {
				var inside bool
				if inc.Shape == "rectangle" {
					inside = insideRotatedRect(x, y, inc.XCenterUm, inc.YCenterUm,
						inc.XDiamUm, inc.YDiamUm, inc.RotationDegrees)
				} else {
					inside = insideGeneralizedEllipse(x, y, inc.XCenterUm, inc.YCenterUm,
						inc.XDiamUm, inc.YDiamUm, inc.RotationDegrees)
				}
				if inside {
					er[row][col] = inc.Er
					ur[row][col] = inc.Ur
				}
			}
		}
	}
	return er, ur
}

// GridToMagnitudeMatrix converts a complex material grid to the magnitudes
// used for grayscale previews.
func GridToMagnitudeMatrix(grid [][]complex128) [][]float64 {
	out := make([][]float64, len(grid))
	for r := range grid {
		out[r] = make([]float64, len(grid[r]))
		for c := range grid[r] {
			out[r][c] = cmplx.Abs(grid[r][c])
		}
	}
	return out
}
