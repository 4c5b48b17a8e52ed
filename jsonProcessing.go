package main

import "fmt"

func getLeafValue(jsonTable map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = jsonTable
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// materialFromGroup reads an er/ur material group. er is required; er_imag,
// ur and ur_imag are optional with defaults 0, 1 and 0. Positive imaginary
// parts describe loss.
func materialFromGroup(table map[string]interface{}, label string) (MaterialSpec, string, bool) {
	spec := MaterialSpec{Er: 1, Ur: 1}

	v, ok := getLeafValue(table, "er")
	if !ok {
		return spec, label + ".er: not found", false
	}
	er, ok := v.(float64)
	if !ok {
		return spec, label + ".er: is not a float64", false
	}

	erImag := 0.0
	v, ok = getLeafValue(table, "er_imag")
	if ok {
		erImag, ok = v.(float64)
		if !ok {
			return spec, label + ".er_imag: is not a float64", false
		}
	}

	ur := 1.0
	v, ok = getLeafValue(table, "ur")
	if ok {
		ur, ok = v.(float64)
		if !ok {
			return spec, label + ".ur: is not a float64", false
		}
	}

	urImag := 0.0
	v, ok = getLeafValue(table, "ur_imag")
	if ok {
		urImag, ok = v.(float64)
		if !ok {
			return spec, label + ".ur_imag: is not a float64", false
		}
	}

	spec.Er = complex(er, erImag)
	spec.Ur = complex(ur, urImag)
	return spec, "", true
}

func inclusionFromTable(table map[string]interface{}, label string) (InclusionSpec, string, bool) {
	var inc InclusionSpec

	v, ok := getLeafValue(table, "shape")
	if !ok {
		return inc, label + ".shape: not found", false
	}
	inc.Shape, ok = v.(string)
	if !ok {
		return inc, label + ".shape: is not a string", false
	}
	if inc.Shape != "ellipse" && inc.Shape != "rectangle" {
		return inc, label + `.shape: must be "ellipse" or "rectangle"`, false
	}

	material, msg, ok := materialFromGroup(table, label)
	if !ok {
		return inc, msg, false
	}
	inc.Er = material.Er
	inc.Ur = material.Ur

	v, ok = getLeafValue(table, "x_center_um")
	if ok {
		inc.XCenterUm, ok = v.(float64)
		if !ok {
			return inc, label + ".x_center_um: is not a float64", false
		}
	}

	v, ok = getLeafValue(table, "y_center_um")
	if ok {
		inc.YCenterUm, ok = v.(float64)
		if !ok {
			return inc, label + ".y_center_um: is not a float64", false
		}
	}

	v, ok = getLeafValue(table, "x_diam_um")
	if !ok {
		return inc, label + ".x_diam_um: not found", false
	}
	inc.XDiamUm, ok = v.(float64)
	if !ok {
		return inc, label + ".x_diam_um: is not a float64", false
	}

	v, ok = getLeafValue(table, "y_diam_um")
	if !ok {
		return inc, label + ".y_diam_um: not found", false
	}
	inc.YDiamUm, ok = v.(float64)
	if !ok {
		return inc, label + ".y_diam_um: is not a float64", false
	}

	if inc.XDiamUm <= 0 || inc.YDiamUm <= 0 {
		return inc, label + ": diameters must be positive", false
	}

	v, ok = getLeafValue(table, "rotation_degrees")
	if ok {
		inc.RotationDegrees, ok = v.(float64)
		if !ok {
			return inc, label + ".rotation_degrees: is not a float64", false
		}
	}

	return inc, "", true
}

func layerFromTable(table map[string]interface{}, label string) (LayerSpec, string, bool) {
	var layer LayerSpec

	v, ok := getLeafValue(table, "thickness_um")
	if !ok {
		return layer, label + ".thickness_um: not found", false
	}
	layer.ThicknessUm, ok = v.(float64)
	if !ok {
		return layer, label + ".thickness_um: is not a float64", false
	}
	if layer.ThicknessUm < 0 {
		return layer, label + ".thickness_um: must be non-negative", false
	}

	background, ok := getLeafValue(table, "background")
	if !ok {
		return layer, label + ".background: group not found", false
	}
	backgroundTable, ok := background.(map[string]interface{})
	if !ok {
		return layer, label + ".background: is not a group", false
	}
	var msg string
	layer.Background, msg, ok = materialFromGroup(backgroundTable, label+".background")
	if !ok {
		return layer, msg, false
	}

	inclusions, ok := getLeafValue(table, "inclusions")
	if ok {
		list, ok := inclusions.([]interface{})
		if !ok {
			return layer, label + ".inclusions: is not an array", false
		}
		for i, item := range list {
			itemTable, ok := item.(map[string]interface{})
			if !ok {
				return layer, fmt.Sprintf("%s.inclusions[%d]: is not a group", label, i), false
			}
			inc, msg, ok := inclusionFromTable(itemTable, fmt.Sprintf("%s.inclusions[%d]", label, i))
			if !ok {
				return layer, msg, false
			}
			layer.Inclusions = append(layer.Inclusions, inc)
		}
	}

	return layer, "", true
}

func validateJsonFileAndFillJob(jsonTable map[string]interface{}, job *SimulationJob) (string, bool) {
	msg := "No problem found in json file" // Initialize msg to presumed success.

	showInput, ok := getLeafValue(jsonTable, "show_input_bool")
	if !ok {
		job.ShowInput = false // default to false if this field is missing
	} else {
		job.ShowInput, ok = showInput.(bool)
		if !ok {
			msg = "show_input_bool: is not a bool"
			return msg, false
		}
	}

	windowSize, ok := getLeafValue(jsonTable, "window_size_pixels")
	if !ok {
		job.WindowSizePixels = 0 // Default: no display window
	} else {
		wSize, ok := windowSize.(float64)
		if !ok {
			msg = "window_size_pixels: is not a float64"
			return msg, false
		}
		job.WindowSizePixels = int(wSize)
	}

	title, ok := getLeafValue(jsonTable, "title")
	if ok {
		job.Title, ok = title.(string)
		if !ok {
			msg = "title: is not a string"
			return msg, false
		}
	}

	wavelength, ok := getLeafValue(jsonTable, "wavelength_um")
	if !ok {
		msg = "wavelength_um: not found"
		return msg, false
	}
	job.WavelengthUm, ok = wavelength.(float64)
	if !ok {
		msg = "wavelength_um: is not a float64"
		return msg, false
	}

	theta, ok := getLeafValue(jsonTable, "theta_degrees")
	if ok {
		job.ThetaDeg, ok = theta.(float64)
		if !ok {
			msg = "theta_degrees: is not a float64"
			return msg, false
		}
	}

	phi, ok := getLeafValue(jsonTable, "phi_degrees")
	if ok {
		job.PhiDeg, ok = phi.(float64)
		if !ok {
			msg = "phi_degrees: is not a float64"
			return msg, false
		}
	}

	job.PTE = 1.0 // Default: TE-polarized unit excitation
	pte, ok := getLeafValue(jsonTable, "pte")
	if ok {
		job.PTE, ok = pte.(float64)
		if !ok {
			msg = "pte: is not a float64"
			return msg, false
		}
	}

	ptm, ok := getLeafValue(jsonTable, "ptm")
	if ok {
		job.PTM, ok = ptm.(float64)
		if !ok {
			msg = "ptm: is not a float64"
			return msg, false
		}
	}

	latticeX, ok := getLeafValue(jsonTable, "lattice_x_um")
	if !ok {
		msg = "lattice_x_um: not found"
		return msg, false
	}
	job.LatticeXUm, ok = latticeX.(float64)
	if !ok {
		msg = "lattice_x_um: is not a float64"
		return msg, false
	}

	latticeY, ok := getLeafValue(jsonTable, "lattice_y_um")
	if !ok {
		job.LatticeYUm = job.LatticeXUm // Default: square unit cell
	} else {
		job.LatticeYUm, ok = latticeY.(float64)
		if !ok {
			msg = "lattice_y_um: is not a float64"
			return msg, false
		}
	}

	harmonicsX, ok := getLeafValue(jsonTable, "harmonics_x")
	if !ok {
		msg = "harmonics_x: not found"
		return msg, false
	}
	hx, ok := harmonicsX.(float64)
	if !ok {
		msg = "harmonics_x: is not a float64"
		return msg, false
	}
	job.HarmonicsX = int(hx)

	harmonicsY, ok := getLeafValue(jsonTable, "harmonics_y")
	if !ok {
		msg = "harmonics_y: not found"
		return msg, false
	}
	hy, ok := harmonicsY.(float64)
	if !ok {
		msg = "harmonics_y: is not a float64"
		return msg, false
	}
	job.HarmonicsY = int(hy)

	job.GridResolution = 256 // Default raster resolution per unit-cell side
	resolution, ok := getLeafValue(jsonTable, "grid_resolution")
	if ok {
		res, ok := resolution.(float64)
		if !ok {
			msg = "grid_resolution: is not a float64"
			return msg, false
		}
		job.GridResolution = int(res)
	}

	workers, ok := getLeafValue(jsonTable, "workers")
	if ok {
		w, ok := workers.(float64)
		if !ok {
			msg = "workers: is not a float64"
			return msg, false
		}
		job.Workers = int(w)
	}

	convergence, ok := getLeafValue(jsonTable, "convergence_check_bool")
	if ok {
		job.ConvergenceCheck, ok = convergence.(bool)
		if !ok {
			msg = "convergence_check_bool: is not a bool"
			return msg, false
		}
	}

	// Exterior media groups are optional; either half-space defaults to vacuum.
	job.Superstrate = MaterialSpec{Er: 1, Ur: 1}
	superstrate, ok := getLeafValue(jsonTable, "superstrate")
	if ok {
		table, ok := superstrate.(map[string]interface{})
		if !ok {
			msg = "superstrate: is not a group"
			return msg, false
		}
		job.Superstrate, msg, ok = materialFromGroup(table, "superstrate")
		if !ok {
			return msg, false
		}
	}

	job.Substrate = MaterialSpec{Er: 1, Ur: 1}
	substrate, ok := getLeafValue(jsonTable, "substrate")
	if ok {
		table, ok := substrate.(map[string]interface{})
		if !ok {
			msg = "substrate: is not a group"
			return msg, false
		}
		job.Substrate, msg, ok = materialFromGroup(table, "substrate")
		if !ok {
			return msg, false
		}
	}

	// The layer stack is optional: with no layers the device is the bare
	// superstrate/substrate interface.
	layers, ok := getLeafValue(jsonTable, "layers")
	if ok {
		list, ok := layers.([]interface{})
		if !ok {
			msg = "layers: is not an array"
			return msg, false
		}
		for i, item := range list {
			table, ok := item.(map[string]interface{})
			if !ok {
				msg = fmt.Sprintf("layers[%d]: is not a group", i)
				return msg, false
			}
			layer, layerMsg, ok := layerFromTable(table, fmt.Sprintf("layers[%d]", i))
			if !ok {
				return layerMsg, false
			}
			job.Layers = append(job.Layers, layer)
		}
	}

	// Check to see if a sweep group is present --- it is optional
	_, ok = getLeafValue(jsonTable, "sweep")
	job.SweepGiven = ok

	if ok {
		v, ok := getLeafValue(jsonTable, "sweep", "start_um")
		if !ok {
			msg = "sweep.start_um: not found"
			return msg, false
		}
		job.SweepStartUm, ok = v.(float64)
		if !ok {
			msg = "sweep.start_um: is not a float64"
			return msg, false
		}

		v, ok = getLeafValue(jsonTable, "sweep", "end_um")
		if !ok {
			msg = "sweep.end_um: not found"
			return msg, false
		}
		job.SweepEndUm, ok = v.(float64)
		if !ok {
			msg = "sweep.end_um: is not a float64"
			return msg, false
		}

		job.SweepPoints = 41 // Default sweep resolution
		v, ok = getLeafValue(jsonTable, "sweep", "points")
		if ok {
			points, ok := v.(float64)
			if !ok {
				msg = "sweep.points: is not a float64"
				return msg, false
			}
			job.SweepPoints = int(points)
		}
	}

	return msg, true
}
