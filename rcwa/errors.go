package rcwa

import "errors"

// Sentinel errors reported by the solver. Callers match them with errors.Is;
// wrapped messages add the failing layer or operation.
var (
	// ErrSingularMatrix reports a linear system inside the scattering
	// computation that is singular to working precision, usually from a
	// degenerate mode basis or a resonant layer.
	ErrSingularMatrix = errors.New("rcwa: singular matrix in scattering computation")

	// ErrBranchCut reports a mode eigenvalue too close to zero for the
	// propagation branch (forward decay versus forward phase advance) to be
	// chosen reliably. This happens at cutoff, for example on a Rayleigh
	// anomaly.
	ErrBranchCut = errors.New("rcwa: mode eigenvalue too close to the branch cut")

	// ErrHarmonicCount reports disagreeing spatial-harmonic dimensions, for
	// example a convolution matrix built for a different truncation than the
	// wavevector set.
	ErrHarmonicCount = errors.New("rcwa: inconsistent spatial-harmonic count")

	// ErrEnergyConservation flags a lossless configuration whose reflected
	// plus transmitted power does not sum to one within tolerance. It is
	// attached to results as a warning, never returned as a failure.
	ErrEnergyConservation = errors.New("rcwa: energy conservation violated")

	// ErrDeviceGrid reports a real-space device grid too coarse to supply
	// the Fourier orders required by the harmonic truncation.
	ErrDeviceGrid = errors.New("rcwa: device grid too small for harmonic truncation")
)
