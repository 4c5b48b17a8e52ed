package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	json "github.com/KevinWang15/go-json5"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/poudelkhem/RCWA/rcwa"
	"github.com/poudelkhem/RCWA/spectrum"
)

// !!!!! This MUST match the app name given in the run configuration !!!!!
const version = "1_0_0"

// !!!!! This MUST match the app name given in the run configuration !!!!!

// MaterialSpec is one homogeneous material from the parameter file.
type MaterialSpec struct {
	Er complex128
	Ur complex128
}

// InclusionSpec is one shape painted into a layer's unit cell.
type InclusionSpec struct {
	Shape           string // "ellipse" or "rectangle"
	Er              complex128
	Ur              complex128
	XCenterUm       float64
	YCenterUm       float64
	XDiamUm         float64
	YDiamUm         float64
	RotationDegrees float64
}

// LayerSpec is one layer of the device stack as given in the parameter file.
type LayerSpec struct {
	ThicknessUm float64
	Background  MaterialSpec
	Inclusions  []InclusionSpec
}

type SimulationJob struct {
	Title            string
	ShowInput        bool
	WindowSizePixels int

	WavelengthUm float64
	ThetaDeg     float64
	PhiDeg       float64
	PTE          float64
	PTM          float64

	LatticeXUm float64
	LatticeYUm float64

	HarmonicsX     int
	HarmonicsY     int
	GridResolution int
	Workers        int

	Superstrate MaterialSpec
	Substrate   MaterialSpec
	Layers      []LayerSpec

	SweepGiven   bool
	SweepStartUm float64
	SweepEndUm   float64
	SweepPoints  int

	ConvergenceCheck bool
}

func main() {

	programStart := time.Now()

	// We supply an ID (hopefully unique) because we may need to use the preferences API
	myApp := app.NewWithID("com.github.poudelkhem.rcwa")
	w := myApp.NewWindow("RCWA - rigorous coupled-wave analysis of a periodic layer stack")
	w.Resize(fyne.Size{Height: 800, Width: 1200})

	args := os.Args

	if len(args) != 2 {
		fmt.Println("\n\tWrong number of arguments.\n\tUsage: RCWA <parameter-file>")
		os.Exit(1)
	}

	path := args[1]

	// Read the Json5 (or Json) parameter file
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tAttempt to read input file %q failed: %w\n", path, err))
		os.Exit(2)
	}

	// Parse json(5) data into a generic container
	var jsonTable map[string]interface{}
	err = json.Unmarshal(data, &jsonTable)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tFormat error in file %q: %w\n", path, err))
		os.Exit(3)
	}

	var job SimulationJob
	msg, ok := validateJsonFileAndFillJob(jsonTable, &job)
	if !ok {
		fmt.Println(msg)
		os.Exit(4)
	}

	// Check for user wanting printout of complete jsonTable
	if job.ShowInput {
		fmt.Printf("%s", "\nPrintout of  complete jsonTable contents...\n")
		fmt.Println(string(data))
	}

	grid, err := rcwa.NewHarmonicGrid(job.HarmonicsX, job.HarmonicsY)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tHarmonic truncation is invalid: %w", err))
		os.Exit(5)
	}

	// Sanity check on the material raster: the FFT must resolve every
	// retained harmonic of the permittivity grids.
	if job.GridResolution < 10 ||
		job.GridResolution < 2*job.HarmonicsX-1 ||
		job.GridResolution < 2*job.HarmonicsY-1 {
		fmt.Println(fmt.Errorf("\n\tA grid_resolution of %d is too coarse: it must be at least 10 and at least 2*harmonics-1 along each axis.", job.GridResolution))
		os.Exit(16)
	}

	fmt.Printf("\nVersion %s\n\n", version)

	// Raster resolution plus a quick look at how far the propagating orders reach
	resolution := job.LatticeXUm / float64(job.GridResolution)
	fmt.Printf("Resolution in the unit cell is %0.4f um/sample\n", resolution)
	refIndex := real(rcwa.Medium{Er: job.Superstrate.Er, Ur: job.Superstrate.Ur}.RefractiveIndex())
	maxOrderX := int(job.LatticeXUm * refIndex / job.WavelengthUm)
	fmt.Printf("Propagating reflection orders reach |m| = %d along x  (harmonics_x should be at least %d to capture them all)\n\n", maxOrderX, 2*maxOrderX+1)

	start := time.Now() // Time rasterization of the device stack

	erGrids := make([][][]complex128, len(job.Layers))
	urGrids := make([][][]complex128, len(job.Layers))
	for i, layerSpec := range job.Layers {
		erGrids[i], urGrids[i] = BuildLayerGrid(layerSpec, job.LatticeXUm, job.LatticeYUm, job.GridResolution)

		imgForDisplay, err := MatrixToGrayViewPercentile(GridToMagnitudeMatrix(erGrids[i]), 0.0, 100)
		if err != nil {
			fmt.Println(fmt.Errorf("creation of the layer %d preview failed: %w", i, err))
			os.Exit(11)
		}

		name := fmt.Sprintf("deviceLayer%d.png", i+1)
		err = SaveGrayPNG(name, imgForDisplay)
		if err != nil {
			fmt.Println(fmt.Errorf("writing of %q failed: %w", name, err))
			os.Exit(12)
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("Rasterization of %d device layers took %s\n", len(job.Layers), elapsed)

	start = time.Now()

	// Fourier analysis of the material grids. The per-layer convolution
	// matrices are independent, so build them concurrently.
	layers := make([]*rcwa.Layer, len(job.Layers))
	var fft errgroup.Group
	if job.Workers > 0 {
		fft.SetLimit(job.Workers)
	}
	for i := range job.Layers {
		fft.Go(func() error {
			erc, err := rcwa.ConvolutionMatrix(erGrids[i], grid)
			if err != nil {
				return fmt.Errorf("layer %d permittivity analysis: %w", i, err)
			}
			urc, err := rcwa.ConvolutionMatrix(urGrids[i], grid)
			if err != nil {
				return fmt.Errorf("layer %d permeability analysis: %w", i, err)
			}
			layers[i], err = rcwa.NewLayer(job.Layers[i].ThicknessUm, erc, urc)
			if err != nil {
				return fmt.Errorf("layer %d: %w", i, err)
			}
			return nil
		})
	}
	if err := fft.Wait(); err != nil {
		fmt.Println(fmt.Errorf("\n\tFourier analysis of the device failed: %w", err))
		os.Exit(7)
	}

	elapsed = time.Since(start)
	fmt.Printf("Convolution matrices for %d layers took %s\n", len(job.Layers), elapsed)

	prob := problemForJob(job, grid, layers)

	if job.SweepGiven {
		start = time.Now()
		sweep, err := spectrum.Run(context.Background(), prob, job.SweepStartUm, job.SweepEndUm, job.SweepPoints, job.Workers)
		if err != nil {
			fmt.Println(fmt.Errorf("\n\tWavelength sweep failed: %w", err))
			os.Exit(9)
		}
		elapsed = time.Since(start)
		fmt.Printf("Wavelength sweep of %d points took %s\n", len(sweep), elapsed)

		rVals := make([]float64, len(sweep))
		for i, pt := range sweep {
			rVals[i] = pt.RTotal
		}
		peakWl, peakR := sweep.PeakReflectance()
		fmt.Printf("Sweep reflectance spans %0.6f to %0.6f with the peak %0.6f at %0.4f um\n",
			floats.Min(rVals), floats.Max(rVals), peakR, peakWl)

		err = sweep.SavePlot("spectrum.png", 1200, 500)
		if err != nil {
			fmt.Println(fmt.Errorf("writing of %q failed: %w", "spectrum.png", err))
			os.Exit(9)
		}
	}

	start = time.Now()
	res, err := rcwa.Solve(context.Background(), &prob)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tScattering-matrix solve failed: %w", err))
		os.Exit(10)
	}
	elapsed = time.Since(start)
	fmt.Printf("Scattering-matrix solve at %0.4f um took %s\n", job.WavelengthUm, elapsed)

	if res.Warning != nil {
		fmt.Println("WARNING:", res.Warning)
	}

	if job.ConvergenceCheck {
		err = runConvergenceStudy(context.Background(), job, erGrids, urGrids)
		if err != nil {
			fmt.Println(fmt.Errorf("\n\tConvergence study failed: %w", err))
			os.Exit(10)
		}
	}

	fmt.Printf("\nZero-order efficiencies: R = %0.6f  T = %0.6f\n", res.OrderR(0, 0), res.OrderT(0, 0))
	fmt.Printf("Totals: R = %0.6f  T = %0.6f  A = %0.6f  (energy defect %0.2e)\n",
		res.RTotal, res.TTotal, 1-res.RTotal-res.TTotal, res.EnergyDefect())

	// Evanescent orders carry exactly zero efficiency, so this prints the
	// propagating set.
	fmt.Println("\nPropagating diffraction orders:")
	for p := -grid.Nx / 2; p <= grid.Nx/2; p++ {
		for q := -grid.Ny / 2; q <= grid.Ny/2; q++ {
			r := res.OrderR(p, q)
			t := res.OrderT(p, q)
			if r > 0 || t > 0 {
				fmt.Printf("  (%+d,%+d): R = %0.6f  T = %0.6f\n", p, q, r, t)
			}
		}
	}

	// Lay the order grids out as images, q most positive at the top.
	rMap := make([][]float64, grid.Ny)
	tMap := make([][]float64, grid.Ny)
	for row := 0; row < grid.Ny; row++ {
		rMap[row] = make([]float64, grid.Nx)
		tMap[row] = make([]float64, grid.Nx)
		q := grid.Ny/2 - row
		for col := 0; col < grid.Nx; col++ {
			p := col - grid.Nx/2
			rMap[row][col] = res.OrderR(p, q)
			tMap[row][col] = res.OrderT(p, q)
		}
	}

	// Make user-friendly .pngs of the order efficiency maps
	rView, err := MatrixToGrayViewPercentile(UpsampleNearest(rMap, 32), 0.0, 100)
	if err != nil {
		fmt.Println(fmt.Errorf("creation of the display image failed: %w", err))
		os.Exit(11)
	}

	err = SaveGrayPNG("reflectionMap8bit.png", rView)
	if err != nil {
		fmt.Println(fmt.Errorf("writing of %q failed: %w", "reflectionMap8bit.png", err))
		os.Exit(12)
	}

	tView, err := MatrixToGrayViewPercentile(UpsampleNearest(tMap, 32), 0.0, 100)
	if err != nil {
		fmt.Println(fmt.Errorf("creation of the display image failed: %w", err))
		os.Exit(11)
	}

	err = SaveGrayPNG("transmissionMap8bit.png", tView)
	if err != nil {
		fmt.Println(fmt.Errorf("writing of %q failed: %w", "transmissionMap8bit.png", err))
		os.Exit(12)
	}

	// Make the scientific (well-defined scaling) versions of the order maps:
	// efficiency 1.0 maps to 60000 counts
	rData, err := MatrixToGray16Data(rMap, 60000)
	if err != nil {
		fmt.Println(fmt.Errorf("creation of the reflection data image failed: %w", err))
		os.Exit(13)
	}

	err = SaveGray16PNG("reflectionMap16bit.png", rData)
	if err != nil {
		fmt.Println(fmt.Errorf("writing of %q failed: %w", "reflectionMap16bit.png", err))
		os.Exit(14)
	}

	tData, err := MatrixToGray16Data(tMap, 60000)
	if err != nil {
		fmt.Println(fmt.Errorf("creation of the transmission data image failed: %w", err))
		os.Exit(13)
	}

	err = SaveGray16PNG("transmissionMap16bit.png", tData)
	if err != nil {
		fmt.Println(fmt.Errorf("writing of %q failed: %w", "transmissionMap16bit.png", err))
		os.Exit(14)
	}

	elapsed = time.Since(programStart)
	fmt.Printf("\nTotal program run time is %s\n", elapsed)

	if job.WindowSizePixels > 0 { // We have lots of displays to make!
		size := job.WindowSizePixels

		winTitle := job.Title
		if winTitle == "" {
			winTitle = "RCWA device"
		}

		// w is our main window, created at the beginning of the program
		w.SetTitle(winTitle)
		w.SetPadded(false)
		w.CenterOnScreen()

		deviceFile := "reflectionMap8bit.png"
		if len(job.Layers) > 0 {
			deviceFile = "deviceLayer1.png"
		}

		img := canvas.NewImageFromFile(deviceFile)

		img.FillMode = canvas.ImageFillContain
		w.Resize(fyne.Size{Height: float32(size), Width: float32(size)})

		w.SetContent(container.NewStack(img))
		w.Show()

		imgR, err := makeEfficiencyMapImage(res.R, "Reflection efficiency by diffraction order", 600, 500)
		if err != nil {
			panic(err)
		}
		imgT, err := makeEfficiencyMapImage(res.T, "Transmission efficiency by diffraction order", 600, 500)
		if err != nil {
			panic(err)
		}

		mapR := canvas.NewImageFromImage(imgR)
		mapR.FillMode = canvas.ImageFillContain
		mapR.SetMinSize(fyne.NewSize(600, 500))

		mapT := canvas.NewImageFromImage(imgT)
		mapT.FillMode = canvas.ImageFillContain
		mapT.SetMinSize(fyne.NewSize(600, 500))

		w2 := myApp.NewWindow("Diffraction efficiency maps")
		w2.SetContent(container.NewGridWithColumns(2, mapR, mapT))
		w2.Resize(fyne.NewSize(1250, 550))
		w2.Show()

		if job.SweepGiven {
			spectrumImg := canvas.NewImageFromFile("spectrum.png")
			spectrumImg.FillMode = canvas.ImageFillContain
			spectrumImg.SetMinSize(fyne.NewSize(1200, 500))

			w3 := myApp.NewWindow("Wavelength sweep")
			w3.SetContent(container.NewCenter(spectrumImg))
			w3.Resize(fyne.NewSize(950, 550))
			w3.Show()
		}

		w.ShowAndRun()
	}
}

// problemForJob assembles the solver configuration for one harmonic
// truncation of the device.
func problemForJob(job SimulationJob, grid rcwa.HarmonicGrid, layers []*rcwa.Layer) rcwa.Problem {
	return rcwa.Problem{
		Grid:         grid,
		WavelengthUm: job.WavelengthUm,
		ThetaDeg:     job.ThetaDeg,
		PhiDeg:       job.PhiDeg,
		PTE:          complex(job.PTE, 0),
		PTM:          complex(job.PTM, 0),
		LxUm:         job.LatticeXUm,
		LyUm:         job.LatticeYUm,
		Ref:          rcwa.Medium{Er: job.Superstrate.Er, Ur: job.Superstrate.Ur},
		Trn:          rcwa.Medium{Er: job.Substrate.Er, Ur: job.Substrate.Ur},
		Layers:       layers,
		Workers:      job.Workers,
	}
}

// runConvergenceStudy re-solves the configuration at increasing harmonic
// truncations and reports how the zero-order efficiencies settle. Every
// convolution matrix is rebuilt at each step because its dimension follows
// the truncation.
func runConvergenceStudy(ctx context.Context, job SimulationJob, erGrids, urGrids [][][]complex128) error {
	maxCount := job.HarmonicsX
	if job.HarmonicsY > maxCount {
		maxCount = job.HarmonicsY
	}

	fmt.Println("\nConvergence of zero-order efficiencies with harmonic truncation:")

	prevR := 0.0
	prevT := 0.0
	for count := 1; count <= maxCount; count += 2 {
		nx := min(count, job.HarmonicsX)
		ny := min(count, job.HarmonicsY)
		grid, err := rcwa.NewHarmonicGrid(nx, ny)
		if err != nil {
			return err
		}

		layers := make([]*rcwa.Layer, len(erGrids))
		for i := range erGrids {
			erc, err := rcwa.ConvolutionMatrix(erGrids[i], grid)
			if err != nil {
				return fmt.Errorf("layer %d permittivity analysis: %w", i, err)
			}
			urc, err := rcwa.ConvolutionMatrix(urGrids[i], grid)
			if err != nil {
				return fmt.Errorf("layer %d permeability analysis: %w", i, err)
			}
			layers[i], err = rcwa.NewLayer(job.Layers[i].ThicknessUm, erc, urc)
			if err != nil {
				return fmt.Errorf("layer %d: %w", i, err)
			}
		}

		prob := problemForJob(job, grid, layers)

		res, err := rcwa.Solve(ctx, &prob)
		if err != nil {
			return err
		}

		r0 := res.OrderR(0, 0)
		t0 := res.OrderT(0, 0)
		if count == 1 {
			fmt.Printf("  %2d x %2d harmonics: R0 = %0.6f  T0 = %0.6f\n", nx, ny, r0, t0)
		} else {
			residual := math.Abs(r0-prevR) + math.Abs(t0-prevT)
			fmt.Printf("  %2d x %2d harmonics: R0 = %0.6f  T0 = %0.6f  (change %0.2e)\n", nx, ny, r0, t0, residual)
		}
		prevR, prevT = r0, t0
	}

	return nil
}
