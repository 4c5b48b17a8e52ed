// Package rcwa computes diffraction efficiencies of layered periodic
// structures by rigorous coupled-wave analysis: each layer's Maxwell
// eigenproblem is solved in a truncated Fourier basis, the eigensolutions
// become per-layer scattering matrices, and the Redheffer star product folds
// layers and half-spaces into one global scattering matrix from which the
// reflected and transmitted order powers follow.
//
// Sign conventions, fixed throughout the package and pinned by the Fresnel
// identity tests: time dependence exp(-iwt), so lossy media carry positive
// imaginary permittivity or permeability; longitudinal wavevectors in
// homogeneous regions are conj(sqrt(er*ur - kx^2 - ky^2)), which puts
// evanescent orders on the decaying branch; the reflection-side Kz is negated
// (backward reference direction), and layer mode eigenvalues take the root
// with non-negative real part (PropagationRoot). Harmonics are ordered
// x-outermost (HarmonicGrid.Index), and the convolution matrices consumed
// here must use the same ordering, as ConvolutionMatrix does.
package rcwa

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const conservationTol = 1e-6

// Problem is one complete solver configuration: the unit cell, the incident
// wave, the exterior media, and the layer stack ordered from the reflection
// side to the transmission side.
type Problem struct {
	Grid HarmonicGrid

	WavelengthUm float64
	ThetaDeg     float64
	PhiDeg       float64
	PTE, PTM     complex128

	LxUm, LyUm float64
	Ref, Trn   Medium
	Layers     []*Layer

	// Workers bounds the parallel per-layer eigensolves. Zero means one
	// worker per CPU.
	Workers int
}

// Result is the solver output. The embedded efficiencies carry the per-order
// grids and totals; Global is the composed scattering matrix of the whole
// stack. Warning holds an ErrEnergyConservation diagnostic when a lossless
// configuration fails the power balance, with the result still usable.
type Result struct {
	*Efficiencies

	Global  *ScatteringMatrix
	Warning error
}

// Solve runs the full pipeline for one configuration. Layer eigenproblems
// are independent and solved concurrently; the star-product fold is
// inherently sequential and preserves the physical stack order. The context
// cancels pending layer solves.
func Solve(ctx context.Context, p *Problem) (*Result, error) {
	wv, err := NewWaveVectors(p.Grid, p.WavelengthUm, p.ThetaDeg, p.PhiDeg, p.LxUm, p.LyUm, p.Ref, p.Trn)
	if err != nil {
		return nil, err
	}
	gap, err := NewGap(wv)
	if err != nil {
		return nil, err
	}
	ref, err := NewHalfSpace(wv, p.Ref, SideReflection, gap)
	if err != nil {
		return nil, err
	}
	trn, err := NewHalfSpace(wv, p.Trn, SideTransmission, gap)
	if err != nil {
		return nil, err
	}

	smats := make([]*ScatteringMatrix, len(p.Layers))
	if len(p.Layers) > 0 {
		workers := p.Workers
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(workers, len(p.Layers)))
		for i, layer := range p.Layers {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				s, err := layer.ScatterMatrix(wv, gap)
				if err != nil {
					return fmt.Errorf("layer %d: %w", i, err)
				}
				smats[i] = s
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	global := ref.S
	for i, sm := range smats {
		if global, err = Star(global, sm); err != nil {
			return nil, fmt.Errorf("folding layer %d: %w", i, err)
		}
	}
	if global, err = Star(global, trn.S); err != nil {
		return nil, fmt.Errorf("folding transmission boundary: %w", err)
	}

	eff, err := DiffractionEfficiencies(wv, ref, trn, p.Ref, p.Trn, global, p.PTE, p.PTM)
	if err != nil {
		return nil, err
	}

	res := &Result{Efficiencies: eff, Global: global}
	if p.lossless() && eff.EnergyDefect() > conservationTol {
		res.Warning = fmt.Errorf("lossless stack with energy defect %.3g: %w",
			eff.EnergyDefect(), ErrEnergyConservation)
	}
	return res, nil
}

// lossless reports whether every medium and layer in the configuration has
// real material constants, the precondition for the power-balance check.
func (p *Problem) lossless() bool {
	if !p.Ref.Lossless() || !p.Trn.Lossless() {
		return false
	}
	for _, l := range p.Layers {
		if !l.Lossless() {
			return false
		}
	}
	return true
}
