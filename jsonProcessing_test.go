package main

import (
	"testing"

	json "github.com/KevinWang15/go-json5"
	"github.com/stretchr/testify/require"
)

// parseTable unmarshals a json5 parameter snippet into the generic container
// the validator consumes.
func parseTable(t *testing.T, src string) map[string]interface{} {
	t.Helper()
	var jsonTable map[string]interface{}
	err := json.Unmarshal([]byte(src), &jsonTable)
	require.NoError(t, err, "parameter snippet must parse")
	return jsonTable
}

// TestValidateFillsDefaults checks that a minimal parameter file is accepted
// and that every optional field comes back with its documented default.
func TestValidateFillsDefaults(t *testing.T) {
	table := parseTable(t, `{
		wavelength_um: 1.55,
		lattice_x_um: 0.8,
		harmonics_x: 3,
		harmonics_y: 3,
	}`)

	var job SimulationJob
	msg, ok := validateJsonFileAndFillJob(table, &job)
	require.True(t, ok, "minimal file must validate: %s", msg)

	require.Equal(t, 1.55, job.WavelengthUm, "wavelength must be read")
	require.Equal(t, 0.8, job.LatticeXUm, "lattice_x_um must be read")
	require.Equal(t, 0.8, job.LatticeYUm, "lattice_y_um defaults to the x period")
	require.Equal(t, 3, job.HarmonicsX, "harmonics_x must be read")
	require.Equal(t, 3, job.HarmonicsY, "harmonics_y must be read")

	require.False(t, job.ShowInput, "show_input_bool defaults to false")
	require.Zero(t, job.WindowSizePixels, "window_size_pixels defaults to headless")
	require.Equal(t, 0.0, job.ThetaDeg, "theta defaults to normal incidence")
	require.Equal(t, 0.0, job.PhiDeg, "phi defaults to zero azimuth")
	require.Equal(t, 1.0, job.PTE, "pte defaults to unit TE excitation")
	require.Equal(t, 0.0, job.PTM, "ptm defaults to zero")
	require.Equal(t, 256, job.GridResolution, "grid_resolution default")
	require.Equal(t, complex128(1), job.Superstrate.Er, "superstrate defaults to vacuum")
	require.Equal(t, complex128(1), job.Substrate.Er, "substrate defaults to vacuum")
	require.Empty(t, job.Layers, "no layers means a bare interface")
	require.False(t, job.SweepGiven, "no sweep group requested")
	require.False(t, job.ConvergenceCheck, "convergence study defaults off")
}

// TestValidateFullStack reads a complete device description, including json5
// comments, and checks that materials and shapes land where they should.
func TestValidateFullStack(t *testing.T) {
	table := parseTable(t, `{
		title: "etched grating",
		show_input_bool: true,
		window_size_pixels: 700,
		wavelength_um: 1.55,
		theta_degrees: 20,
		phi_degrees: 15,
		pte: 0.7,
		ptm: 0.3,
		lattice_x_um: 0.8,
		lattice_y_um: 0.9,
		harmonics_x: 5,
		harmonics_y: 3,
		grid_resolution: 64,
		workers: 4,
		convergence_check_bool: true,
		superstrate: { er: 2.25 },
		substrate: { er: 9.0, er_imag: 0.2 },
		layers: [
			{
				thickness_um: 0.23,
				background: { er: 4.0 },
				// A lossy elliptical post with a rectangular notch
				inclusions: [
					{
						shape: "ellipse",
						er: 9.0, er_imag: 0.05,
						x_diam_um: 0.5, y_diam_um: 0.4,
						rotation_degrees: 30,
					},
					{
						shape: "rectangle",
						er: 1.0,
						x_center_um: 0.2, y_center_um: -0.1,
						x_diam_um: 0.1, y_diam_um: 0.1,
					},
				],
			},
		],
		sweep: { start_um: 1.4, end_um: 1.6, points: 5 },
	}`)

	var job SimulationJob
	msg, ok := validateJsonFileAndFillJob(table, &job)
	require.True(t, ok, "full file must validate: %s", msg)

	require.Equal(t, "etched grating", job.Title, "title must be read")
	require.True(t, job.ShowInput, "show_input_bool must be read")
	require.Equal(t, 700, job.WindowSizePixels, "window size must be read")
	require.Equal(t, 0.9, job.LatticeYUm, "explicit lattice_y_um wins over the default")
	require.Equal(t, 4, job.Workers, "workers must be read")
	require.True(t, job.ConvergenceCheck, "convergence_check_bool must be read")

	require.Equal(t, complex(2.25, 0), job.Superstrate.Er, "superstrate er")
	require.Equal(t, complex(9.0, 0.2), job.Substrate.Er, "substrate er with loss")
	require.Equal(t, complex128(1), job.Substrate.Ur, "substrate ur defaults to 1")

	require.Len(t, job.Layers, 1, "one layer expected")
	layer := job.Layers[0]
	require.Equal(t, 0.23, layer.ThicknessUm, "layer thickness")
	require.Equal(t, complex(4, 0), layer.Background.Er, "layer background er")
	require.Len(t, layer.Inclusions, 2, "two inclusions expected")

	post := layer.Inclusions[0]
	require.Equal(t, "ellipse", post.Shape, "first inclusion shape")
	require.Equal(t, complex(9, 0.05), post.Er, "lossy inclusion er")
	require.Equal(t, 30.0, post.RotationDegrees, "inclusion rotation")

	notch := layer.Inclusions[1]
	require.Equal(t, "rectangle", notch.Shape, "second inclusion shape")
	require.Equal(t, 0.2, notch.XCenterUm, "notch center x")
	require.Equal(t, -0.1, notch.YCenterUm, "notch center y")

	require.True(t, job.SweepGiven, "sweep group present")
	require.Equal(t, 1.4, job.SweepStartUm, "sweep start")
	require.Equal(t, 1.6, job.SweepEndUm, "sweep end")
	require.Equal(t, 5, job.SweepPoints, "sweep points")
}

// TestValidateSweepDefaultsPoints checks the sweep group default resolution.
func TestValidateSweepDefaultsPoints(t *testing.T) {
	table := parseTable(t, `{
		wavelength_um: 1.55,
		lattice_x_um: 0.8,
		harmonics_x: 3,
		harmonics_y: 3,
		sweep: { start_um: 1.4, end_um: 1.6 },
	}`)

	var job SimulationJob
	msg, ok := validateJsonFileAndFillJob(table, &job)
	require.True(t, ok, "file must validate: %s", msg)
	require.True(t, job.SweepGiven, "sweep group present")
	require.Equal(t, 41, job.SweepPoints, "points default")
}

// TestValidateReportsProblems walks a table of malformed files and checks
// that each report names the offending field.
func TestValidateReportsProblems(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing wavelength",
			src:  `{ lattice_x_um: 0.8, harmonics_x: 3, harmonics_y: 3 }`,
			want: "wavelength_um: not found",
		},
		{
			name: "mistyped harmonics",
			src:  `{ wavelength_um: 1.55, lattice_x_um: 0.8, harmonics_x: "three", harmonics_y: 3 }`,
			want: "harmonics_x: is not a float64",
		},
		{
			name: "missing lattice",
			src:  `{ wavelength_um: 1.55, harmonics_x: 3, harmonics_y: 3 }`,
			want: "lattice_x_um: not found",
		},
		{
			name: "superstrate without er",
			src: `{ wavelength_um: 1.55, lattice_x_um: 0.8, harmonics_x: 3, harmonics_y: 3,
				superstrate: { ur: 1.0 } }`,
			want: "superstrate.er: not found",
		},
		{
			name: "layer without thickness",
			src: `{ wavelength_um: 1.55, lattice_x_um: 0.8, harmonics_x: 3, harmonics_y: 3,
				layers: [ { background: { er: 4.0 } } ] }`,
			want: "layers[0].thickness_um: not found",
		},
		{
			name: "layer without background",
			src: `{ wavelength_um: 1.55, lattice_x_um: 0.8, harmonics_x: 3, harmonics_y: 3,
				layers: [ { thickness_um: 0.2 } ] }`,
			want: "layers[0].background: group not found",
		},
		{
			name: "negative thickness",
			src: `{ wavelength_um: 1.55, lattice_x_um: 0.8, harmonics_x: 3, harmonics_y: 3,
				layers: [ { thickness_um: -0.2, background: { er: 4.0 } } ] }`,
			want: "layers[0].thickness_um: must be non-negative",
		},
		{
			name: "unknown inclusion shape",
			src: `{ wavelength_um: 1.55, lattice_x_um: 0.8, harmonics_x: 3, harmonics_y: 3,
				layers: [ { thickness_um: 0.2, background: { er: 4.0 },
					inclusions: [ { shape: "triangle", er: 9.0, x_diam_um: 0.5, y_diam_um: 0.5 } ] } ] }`,
			want: `layers[0].inclusions[0].shape: must be "ellipse" or "rectangle"`,
		},
		{
			name: "inclusion with zero diameter",
			src: `{ wavelength_um: 1.55, lattice_x_um: 0.8, harmonics_x: 3, harmonics_y: 3,
				layers: [ { thickness_um: 0.2, background: { er: 4.0 },
					inclusions: [ { shape: "ellipse", er: 9.0, x_diam_um: 0.0, y_diam_um: 0.5 } ] } ] }`,
			want: "layers[0].inclusions[0]: diameters must be positive",
		},
		{
			name: "sweep without end",
			src: `{ wavelength_um: 1.55, lattice_x_um: 0.8, harmonics_x: 3, harmonics_y: 3,
				sweep: { start_um: 1.4 } }`,
			want: "sweep.end_um: not found",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := parseTable(t, tc.src)
			var job SimulationJob
			msg, ok := validateJsonFileAndFillJob(table, &job)
			require.False(t, ok, "file must be rejected")
			require.Equal(t, tc.want, msg, "report must name the offending field")
		})
	}
}
