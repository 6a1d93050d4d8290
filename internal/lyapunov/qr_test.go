package lyapunov

import (
	"math"
	"testing"
)

func TestOrthonormalize(t *testing.T) {
	basis := [][]float64{
		{2, 0.5, -1},
		{0.3, 4, 0.2},
		{-0.7, 0.1, 3},
	}

	logs := orthonormalize(basis)

	for i := 0; i < 3; i++ {
		n := math.Sqrt(basis[i][0]*basis[i][0] + basis[i][1]*basis[i][1] + basis[i][2]*basis[i][2])
		if math.Abs(n-1) > 1e-12 {
			t.Errorf("vector %d not unit norm: %v", i, n)
		}
		for j := 0; j < i; j++ {
			dot := basis[i][0]*basis[j][0] + basis[i][1]*basis[j][1] + basis[i][2]*basis[j][2]
			if math.Abs(dot) > 1e-12 {
				t.Errorf("vectors %d,%d not orthogonal: dot=%v", i, j, dot)
			}
		}
	}

	// the first diagonal is just the norm of the first input vector
	want := math.Log(math.Sqrt(2*2 + 0.5*0.5 + 1))
	if math.Abs(logs[0]-want) > 1e-12 {
		t.Errorf("logs[0]=%v, want %v", logs[0], want)
	}
}

func TestOrthonormalizeDegenerate(t *testing.T) {
	// second vector is parallel to the first, so R_11 collapses to the
	// epsilon floor instead of producing -Inf
	basis := [][]float64{
		{1, 0, 0},
		{2, 0, 0},
		{0, 0, 1},
	}

	logs := orthonormalize(basis)

	if math.IsInf(logs[1], -1) || math.IsNaN(logs[1]) {
		t.Fatalf("degenerate direction produced %v", logs[1])
	}
	if logs[1] > math.Log(qrEpsilon)+1e-9 {
		t.Errorf("expected floored log, got %v", logs[1])
	}
}
