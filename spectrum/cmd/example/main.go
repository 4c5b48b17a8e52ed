// Example program demonstrating how to use the rcwa and spectrum packages to:
// 1. Describe a one-layer lamellar grating directly in code
// 2. Solve for its diffraction efficiencies at a single wavelength
// 3. Sweep the wavelength across a band and locate the reflectance peak
// 4. Save the spectrum plot as a PNG
//
// Usage:
//
//	go run main.go
//
// The program writes spectrum_example.png into the current directory.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/poudelkhem/RCWA/rcwa"
	"github.com/poudelkhem/RCWA/spectrum"
)

func main() {
	fmt.Println("Wavelength Sweep Example")
	fmt.Println("========================")

	grid, err := rcwa.NewHarmonicGrid(5, 1)
	if err != nil {
		log.Fatalf("Failed to build the harmonic grid: %v", err)
	}

	// A lamellar grating: half the period is er 9, the other half er 4.
	// The grating only varies along x, so one sample row is enough.
	n := 40
	erProfile := [][]complex128{make([]complex128, n)}
	urProfile := [][]complex128{make([]complex128, n)}
	for i := 0; i < n; i++ {
		if i < n/2 {
			erProfile[0][i] = 9
		} else {
			erProfile[0][i] = 4
		}
		urProfile[0][i] = 1
	}

	erc, err := rcwa.ConvolutionMatrix(erProfile, grid)
	if err != nil {
		log.Fatalf("Permittivity analysis failed: %v", err)
	}
	urc, err := rcwa.ConvolutionMatrix(urProfile, grid)
	if err != nil {
		log.Fatalf("Permeability analysis failed: %v", err)
	}
	layer, err := rcwa.NewLayer(0.5, erc, urc)
	if err != nil {
		log.Fatalf("Layer construction failed: %v", err)
	}

	prob := rcwa.Problem{
		Grid:         grid,
		WavelengthUm: 1.55,
		PTE:          1,
		LxUm:         2.0,
		LyUm:         2.0,
		Ref:          rcwa.Vacuum,
		Trn:          rcwa.Medium{Er: 2.25, Ur: 1}, // glass substrate
		Layers:       []*rcwa.Layer{layer},
	}

	res, err := rcwa.Solve(context.Background(), &prob)
	if err != nil {
		log.Fatalf("Solve failed: %v", err)
	}

	fmt.Printf("\nAt %.2f um: R = %.4f  T = %.4f  (energy defect %.1e)\n",
		prob.WavelengthUm, res.RTotal, res.TTotal, res.EnergyDefect())

	fmt.Println("Propagating orders:")
	for p := -grid.Nx / 2; p <= grid.Nx/2; p++ {
		r := res.OrderR(p, 0)
		t := res.OrderT(p, 0)
		if r > 0 || t > 0 {
			fmt.Printf("  (%+d, 0): R = %.4f  T = %.4f\n", p, r, t)
		}
	}

	// Sweep a band clear of the Rayleigh cutoffs at 1.5 and 2.0 um.
	sweep, err := spectrum.Run(context.Background(), prob, 1.55, 1.95, 41, 0)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}

	peakWl, peakR := sweep.PeakReflectance()
	fmt.Printf("\nSwept %d wavelengths: peak reflectance %.4f at %.3f um\n", len(sweep), peakR, peakWl)

	if err := sweep.SavePlot("spectrum_example.png", 1200, 500); err != nil {
		log.Fatalf("Could not save the spectrum plot: %v", err)
	}
	fmt.Println("Saved spectrum plot to spectrum_example.png")

	fmt.Println("\nDone!")
}
