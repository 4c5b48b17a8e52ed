package main

import (
	"fmt"
	"image"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"

	// Liberation fonts register automatically on import
	_ "gonum.org/v1/plot/font/liberation"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/poudelkhem/RCWA/spectrum"
)

// orderGrid adapts an [ix][iy] efficiency grid to the plotter.GridXYZ
// interface, with cell coordinates equal to the (m, n) order labels.
type orderGrid struct {
	vals [][]float64
}

func (g orderGrid) Dims() (c, r int) {
	return len(g.vals), len(g.vals[0])
}

func (g orderGrid) Z(c, r int) float64 {
	return g.vals[c][r]
}

func (g orderGrid) X(c int) float64 {
	return float64(c - len(g.vals)/2)
}

func (g orderGrid) Y(r int) float64 {
	return float64(r - len(g.vals[0])/2)
}

// makeEfficiencyMapImage renders one per-order efficiency grid as a heat map
// over the (m, n) diffraction order labels.
func makeEfficiencyMapImage(vals [][]float64, title string, wPx, hPx float64) (image.Image, error) {

	p := plot.New()

	// Modify the font fields directly on existing styles
	p.Title.TextStyle.Font.Typeface = "Liberation"
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = vg.Points(12)

	p.X.Label.TextStyle.Font.Typeface = "Liberation"
	p.X.Label.TextStyle.Font.Variant = "Sans"
	p.X.Label.TextStyle.Font.Size = vg.Points(12)

	p.Y.Label.TextStyle.Font.Typeface = "Liberation"
	p.Y.Label.TextStyle.Font.Variant = "Sans"
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)

	p.X.Tick.Label.Font.Typeface = "Liberation"
	p.X.Tick.Label.Font.Variant = "Sans"
	p.X.Tick.Label.Font.Size = vg.Points(10)

	p.Y.Tick.Label.Font.Typeface = "Liberation"
	p.Y.Tick.Label.Font.Variant = "Sans"
	p.Y.Tick.Label.Font.Size = vg.Points(10)

	p.Title.Text = title
	p.X.Label.Text = "order m"
	p.Y.Label.Text = "order n"

	p.X.Tick.Marker = spectrum.StepTicks{Step: 1.0, Format: "%.0f"}
	p.Y.Tick.Marker = spectrum.StepTicks{Step: 1.0, Format: "%.0f"}

	if len(vals) == 0 || len(vals[0]) == 0 {
		return nil, fmt.Errorf("empty efficiency grid")
	}

	hm := plotter.NewHeatMap(orderGrid{vals: vals}, palette.Heat(12, 1))
	hm.Min = 0 // anchor the color scale at zero efficiency
	if hm.Max <= hm.Min {
		hm.Max = 1
	}
	p.Add(hm)

	// Render into an in-memory image
	// Choose a "virtual" size in vg units and map to pixels via DPI.
	const dpi = 96
	width := vg.Length(wPx) * vg.Inch / dpi
	height := vg.Length(hPx) * vg.Inch / dpi

	c := vgimg.New(width, height)
	dc := draw.New(c)
	p.Draw(dc)

	return c.Image(), nil
}
