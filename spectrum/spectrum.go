// Package spectrum runs wavelength sweeps of an rcwa configuration and
// renders the resulting total-efficiency spectra.
package spectrum

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	_ "gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/poudelkhem/RCWA/rcwa"
)

// Point holds the total efficiencies of one solved wavelength.
type Point struct {
	WavelengthUm float64
	RTotal       float64
	TTotal       float64
}

// Absorption returns the power unaccounted for by reflection and
// transmission. For lossless devices it is numerical noise around zero; for
// absorbing devices it is the absorbed fraction.
func (p Point) Absorption() float64 { return 1 - p.RTotal - p.TTotal }

// Sweep is a wavelength-ordered collection of solved points.
type Sweep []Point

// Run solves the base configuration at each wavelength of the inclusive
// [startUm, endUm] span and collects the total efficiencies in wavelength
// order. The base problem is copied per point, so the caller's configuration
// is never modified; the layer stack is shared read-only across the solves.
// workers bounds the concurrent solves, zero meaning one per CPU.
func Run(ctx context.Context, base rcwa.Problem, startUm, endUm float64, points, workers int) (Sweep, error) {
	if points < 2 {
		return nil, fmt.Errorf("spectrum: sweep needs at least two points, got %d", points)
	}
	if startUm <= 0 || endUm <= startUm {
		return nil, fmt.Errorf("spectrum: invalid sweep range [%g, %g] um", startUm, endUm)
	}

	wavelengths := make([]float64, points)
	floats.Span(wavelengths, startUm, endUm)

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make(Sweep, points)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(workers, points))
	for i, wl := range wavelengths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := base
			p.WavelengthUm = wl
			res, err := rcwa.Solve(gctx, &p)
			if err != nil {
				return fmt.Errorf("wavelength %g um: %w", wl, err)
			}
			out[i] = Point{WavelengthUm: wl, RTotal: res.RTotal, TTotal: res.TTotal}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// PeakReflectance returns the wavelength with the highest total reflectance
// and that reflectance. Ties resolve to the shortest wavelength.
func (s Sweep) PeakReflectance() (wavelengthUm, rTotal float64) {
	rs := make([]float64, len(s))
	for i, p := range s {
		rs[i] = p.RTotal
	}
	i := floats.MaxIdx(rs)
	return s[i].WavelengthUm, s[i].RTotal
}

// StepTicks is a tick marker with fixed step intervals.
type StepTicks struct {
	Step   float64
	Format string
}

func (t StepTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	start := math.Ceil(min/t.Step) * t.Step
	for v := start; v <= max; v += t.Step {
		ticks = append(ticks, plot.Tick{
			Value: v,
			Label: fmt.Sprintf(t.Format, v),
		})
	}
	return ticks
}

// Plot renders the spectrum: reflectance in blue, transmittance in red, and
// absorption as a black dashed line.
func (s Sweep) Plot(wPx, hPx float64) (image.Image, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("spectrum: nothing to plot")
	}

	p := plot.New()

	p.Y.Min = -0.05
	p.Y.Max = 1.05

	// Font settings
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

	span := s[len(s)-1].WavelengthUm - s[0].WavelengthUm
	if span <= 0 {
		span = 1
	}

	p.Title.Text = "Total efficiencies: reflectance (blue), transmittance (red), absorption (dashed)"
	p.X.Label.Text = "wavelength (um)"
	p.Y.Label.Text = "fraction of incident power"
	p.X.Tick.Marker = StepTicks{Step: span / 10, Format: "%.3f"}
	p.Y.Tick.Marker = StepTicks{Step: 0.1, Format: "%.1f"}
	p.Add(plotter.NewGrid())

	rPts := make(plotter.XYs, len(s))
	tPts := make(plotter.XYs, len(s))
	aPts := make(plotter.XYs, len(s))
	for i, pt := range s {
		rPts[i].X, rPts[i].Y = pt.WavelengthUm, pt.RTotal
		tPts[i].X, tPts[i].Y = pt.WavelengthUm, pt.TTotal
		aPts[i].X, aPts[i].Y = pt.WavelengthUm, pt.Absorption()
	}

	rLine, err := plotter.NewLine(rPts)
	if err != nil {
		return nil, err
	}
	rLine.Color = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	p.Add(rLine)

	tLine, err := plotter.NewLine(tPts)
	if err != nil {
		return nil, err
	}
	tLine.Color = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	p.Add(tLine)

	aLine, err := plotter.NewLine(aPts)
	if err != nil {
		return nil, err
	}
	aLine.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	aLine.Color = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	p.Add(aLine)

	// Render to image
	const dpi = 96
	width := vg.Length(wPx) * vg.Inch / dpi
	height := vg.Length(hPx) * vg.Inch / dpi

	c := vgimg.New(width, height)
	dc := vgdraw.New(c)
	p.Draw(dc)

	return c.Image(), nil
}

// SavePlot renders the spectrum and writes it to a PNG file.
func (s Sweep) SavePlot(filename string, wPx, hPx float64) (err error) {
	img, err := s.Plot(wPx, hPx)
	if err != nil {
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return png.Encode(f, img)
}
