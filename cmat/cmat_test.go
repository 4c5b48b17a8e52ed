package cmat_test

import (
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poudelkhem/RCWA/cmat"
)

// requireMatClose fails when any element of got differs from want by more
// than tol in magnitude.
func requireMatClose(t *testing.T, want [][]complex128, got *cmat.Matrix, tol float64) {
	t.Helper()
	require.Equal(t, len(want), got.Rows(), "row count")
	require.Equal(t, len(want[0]), got.Cols(), "column count")
	for i := range want {
		for j := range want[i] {
			d := cmplx.Abs(want[i][j] - got.At(i, j))
			require.LessOrEqual(t, d, tol, "element (%d,%d): want %v, got %v", i, j, want[i][j], got.At(i, j))
		}
	}
}

// randomMatrix fills an n×m matrix with reproducible entries in [-1,1)+[-1,1)i.
func randomMatrix(rng *rand.Rand, n, m int) *cmat.Matrix {
	a := cmat.New(n, m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			a.Set(i, j, complex(2*rng.Float64()-1, 2*rng.Float64()-1))
		}
	}
	return a
}

// TestMulKnownProduct checks a hand-computed complex product.
func TestMulKnownProduct(t *testing.T) {
	a := cmat.New(2, 3, []complex128{
		1 + 1i, 2, 0,
		0, 1 - 1i, 3,
	})
	b := cmat.New(3, 2, []complex128{
		1, 1i,
		2i, 1,
		1, 1,
	})
	want := [][]complex128{
		{1 + 5i, 1 + 1i},
		{5 + 2i, 4 - 1i},
	}
	requireMatClose(t, want, a.Mul(b), 1e-14)
}

// TestIdentityAndDiagonal verifies the basic constructors multiply correctly.
func TestIdentityAndDiagonal(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := randomMatrix(rng, 4, 4)

	ia := cmat.Identity(4).Mul(a)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			require.InDelta(t, real(a.At(i, j)), real(ia.At(i, j)), 1e-14)
			require.InDelta(t, imag(a.At(i, j)), imag(ia.At(i, j)), 1e-14)
		}
	}

	d := []complex128{2, 1i, -1, 0.5 - 0.5i}
	byDense := cmat.Diagonal(d).Mul(a)
	byScale := a.ScaleRows(d)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			require.LessOrEqual(t, cmplx.Abs(byDense.At(i, j)-byScale.At(i, j)), 1e-14)
		}
	}

	byDense = a.Mul(cmat.Diagonal(d))
	byScale = a.ScaleCols(d)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			require.LessOrEqual(t, cmplx.Abs(byDense.At(i, j)-byScale.At(i, j)), 1e-14)
		}
	}
}

// TestBlock2x2 verifies partitioned assembly places each block correctly.
func TestBlock2x2(t *testing.T) {
	fill := func(r, c int, v complex128) *cmat.Matrix {
		m := cmat.New(r, c, nil)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				m.Set(i, j, v)
			}
		}
		return m
	}
	g := cmat.Block2x2(fill(2, 2, 1), fill(2, 3, 2), fill(1, 2, 3), fill(1, 3, 4))
	require.Equal(t, 3, g.Rows())
	require.Equal(t, 5, g.Cols())
	for i := 0; i < 3; i++ {
		for j := 0; j < 5; j++ {
			var want complex128
			switch {
			case i < 2 && j < 2:
				want = 1
			case i < 2:
				want = 2
			case j < 2:
				want = 3
			default:
				want = 4
			}
			require.Equal(t, want, g.At(i, j), "element (%d,%d)", i, j)
		}
	}
}

// TestLUSolveRoundTrip solves A X = A X0 and recovers X0.
func TestLUSolveRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	a := randomMatrix(rng, 6, 6)
	x0 := randomMatrix(rng, 6, 2)
	b := a.Mul(x0)

	x, err := cmat.Solve(a, b)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		for j := 0; j < 2; j++ {
			require.LessOrEqual(t, cmplx.Abs(x.At(i, j)-x0.At(i, j)), 1e-10,
				"solution element (%d,%d)", i, j)
		}
	}
}

// TestSolveVec solves a small fixed system with a known solution.
func TestSolveVec(t *testing.T) {
	a := cmat.New(2, 2, []complex128{
		1, 1i,
		-1i, 2,
	})
	// x = (1, 1-1i): b = (1 + i(1-i), -i + 2(1-i)) = (2+i, 2-3i).
	b := []complex128{2 + 1i, 2 - 3i}
	x, err := cmat.SolveVec(a, b)
	require.NoError(t, err)
	require.LessOrEqual(t, cmplx.Abs(x[0]-1), 1e-12)
	require.LessOrEqual(t, cmplx.Abs(x[1]-(1-1i)), 1e-12)
}

// TestInverseReconstruction checks A * inv(A) against the identity.
func TestInverseReconstruction(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	a := randomMatrix(rng, 8, 8)
	inv, err := cmat.Inverse(a)
	require.NoError(t, err)

	prod := a.Mul(inv)
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			want := complex128(0)
			if i == j {
				want = 1
			}
			require.LessOrEqual(t, cmplx.Abs(prod.At(i, j)-want), 1e-10,
				"product element (%d,%d)", i, j)
		}
	}
}

// TestSingularSystems verifies singular inputs surface ErrSingular.
func TestSingularSystems(t *testing.T) {
	cases := []struct {
		name string
		a    *cmat.Matrix
	}{
		{"duplicate rows", cmat.New(3, 3, []complex128{
			1, 2 + 1i, 3,
			1, 2 + 1i, 3,
			0, 1, 1,
		})},
		{"zero matrix", cmat.New(2, 2, nil)},
		{"rank one", cmat.New(2, 2, []complex128{
			1i, 2i,
			2i, 4i,
		})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := cmat.Inverse(tc.a)
			require.ErrorIs(t, err, cmat.ErrSingular)
		})
	}
}
