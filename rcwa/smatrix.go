package rcwa

import (
	"fmt"

	"github.com/poudelkhem/RCWA/cmat"
)

// ScatteringMatrix relates the mode coefficients entering a section of the
// stack to those leaving it,
//
//	[c1-]   [S11 S12] [c1+]
//	[c2+] = [S21 S22] [c2-]
//
// with side 1 facing the reflection region and side 2 the transmission
// region. Each block is square of order 2N, the x and y field components of
// the N harmonics. Values are never mutated after construction, so a matrix
// may be shared between goroutines.
type ScatteringMatrix struct {
	S11, S12, S21, S22 *cmat.Matrix
}

// Order returns the block order 2N.
func (s *ScatteringMatrix) Order() int { return s.S11.Rows() }

// PassThrough returns the identity element of the star product for block
// order n: no reflection, unit transmission. Folding it into any matrix
// returns that matrix unchanged.
func PassThrough(n int) *ScatteringMatrix {
	return &ScatteringMatrix{
		S11: cmat.New(n, n, nil),
		S12: cmat.Identity(n),
		S21: cmat.Identity(n),
		S22: cmat.New(n, n, nil),
	}
}

// Star combines two scattering matrices with the Redheffer star product,
// with a on the reflection side of b. The product is associative but not
// commutative; the solver folds the stack left to right. An error wrapping
// ErrSingularMatrix is returned when the interaction term I - S11*S22 cannot
// be inverted, which happens on an exact internal resonance.
func Star(a, b *ScatteringMatrix) (*ScatteringMatrix, error) {
	n := a.Order()
	if b.Order() != n {
		return nil, fmt.Errorf("star product of order %d with order %d: %w", n, b.Order(), ErrHarmonicCount)
	}
	eye := cmat.Identity(n)

	invA, err := cmat.Inverse(eye.Sub(b.S11.Mul(a.S22)))
	if err != nil {
		return nil, fmt.Errorf("star product interaction (I - B11*A22): %w", ErrSingularMatrix)
	}
	invB, err := cmat.Inverse(eye.Sub(a.S22.Mul(b.S11)))
	if err != nil {
		return nil, fmt.Errorf("star product interaction (I - A22*B11): %w", ErrSingularMatrix)
	}

	d := a.S12.Mul(invA)
	f := b.S21.Mul(invB)
	return &ScatteringMatrix{
		S11: a.S11.Add(d.Mul(b.S11).Mul(a.S21)),
		S12: d.Mul(b.S12),
		S21: f.Mul(a.S21),
		S22: b.S22.Add(f.Mul(a.S22).Mul(b.S12)),
	}, nil
}
