package ctm

import (
	"math"
	"testing"
)

func TestKaplanYorke(t *testing.T) {
	tests := []struct {
		name string
		exps []float64
		want float64
	}{
		{"negative leading exponent", []float64{-0.1, -0.2, -0.3}, 0},
		{"zero leading exponent", []float64{0, -0.2, -0.3}, 0},
		{"sum never negative", []float64{0.3, 0.2, 0.1}, 3},
		{"typical chaotic spectrum", []float64{0.1, 0, -0.67}, 2 + 0.1/0.67},
		{"two positive", []float64{0.2, 0.1, -0.5}, 2 + 0.3/0.5},
		{"unsorted input", []float64{-0.67, 0.1, 0}, 2 + 0.1/0.67},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		got := KaplanYorke(tt.exps)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestKaplanYorkeBounds(t *testing.T) {
	spectra := [][]float64{
		{0.5, 0.4, -0.1},
		{1, -0.5, -0.6},
		{0.01, -0.01, -0.57},
		{-1, -2, -3},
		{2, 1, 0.5},
	}
	for _, s := range spectra {
		d := KaplanYorke(s)
		if d < 0 || d > float64(len(s)) {
			t.Errorf("D_KY(%v)=%v outside [0,%d]", s, d, len(s))
		}
	}
}

func TestComputeModerateChaos(t *testing.T) {
	// reference spectrum for b=0.19: lambda1~0.10, sum~-0.57
	res, err := Compute([3]float64{0.10, 0, -0.67}, 0.19)
	if err != nil {
		t.Fatal(err)
	}

	wantCL := 1 - math.Exp(-0.10/(3*0.19))
	if math.Abs(res.Components.Lyapunov-wantCL) > 1e-12 {
		t.Errorf("C_lambda=%v, want %v", res.Components.Lyapunov, wantCL)
	}
	if res.Regime != RegimeModerate {
		t.Errorf("regime %v, want moderate", res.Regime)
	}
	if !res.SumCheck.OK {
		t.Errorf("sum identity should hold: residual %v", res.SumCheck.Residual)
	}
}

func TestComputeStable(t *testing.T) {
	res, err := Compute([3]float64{-0.34, -0.34, -0.82}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if res.CTM != 0 {
		t.Errorf("CTM=%v for non-chaotic spectrum, want 0", res.CTM)
	}
	if res.Regime != RegimeStable {
		t.Errorf("regime %v, want stable", res.Regime)
	}
	if res.KaplanYorke != 0 {
		t.Errorf("D_KY=%v, want 0", res.KaplanYorke)
	}
}

func TestComputeRange(t *testing.T) {
	// CTM must stay inside [0,1] over a broad sweep of spectra
	for _, l1 := range []float64{-0.5, 0, 0.05, 0.2, 1, 5} {
		for _, l3 := range []float64{-5, -1, -0.1} {
			res, err := Compute([3]float64{l1, 0, l3}, 0.19)
			if err != nil {
				t.Fatalf("l1=%v l3=%v: %v", l1, l3, err)
			}
			if res.CTM < 0 || res.CTM > 1 {
				t.Errorf("CTM=%v outside [0,1] for l1=%v l3=%v", res.CTM, l1, l3)
			}
		}
	}
}

func TestComputeRejectsBadInput(t *testing.T) {
	if _, err := Compute([3]float64{0.1, 0, -0.5}, 0); err == nil {
		t.Error("b=0 accepted")
	}
	if _, err := Compute([3]float64{math.NaN(), 0, -0.5}, 0.19); err == nil {
		t.Error("NaN exponent accepted")
	}
	if _, err := Compute([3]float64{math.Inf(1), 0, -0.5}, 0.19); err == nil {
		t.Error("Inf exponent accepted")
	}
}

func TestSumCheckFlagsViolation(t *testing.T) {
	res, err := Compute([3]float64{0.3, 0.2, -0.1}, 0.19)
	if err != nil {
		t.Fatal(err)
	}
	if res.SumCheck.OK {
		t.Error("sum far from -3b must be flagged")
	}
}

func TestClassifyBanding(t *testing.T) {
	tests := []struct {
		ctm  float64
		want Regime
	}{
		{0.0, RegimeStable},
		{0.049, RegimeStable},
		{0.05, RegimeWeak},
		{0.149, RegimeWeak},
		{0.15, RegimeModerate},
		{0.249, RegimeModerate},
		{0.25, RegimeStrong},
		{0.89, RegimeStrong},
		{0.9, RegimeHyperchaotic},
		{1.0, RegimeHyperchaotic},
	}
	for _, tt := range tests {
		if got := Classify(tt.ctm); got != tt.want {
			t.Errorf("Classify(%v)=%v, want %v", tt.ctm, got, tt.want)
		}
	}
}

func TestRegimeString(t *testing.T) {
	for r := RegimeStable; r <= RegimeHyperchaotic; r++ {
		if r.String() == "unknown" {
			t.Errorf("regime %d has no name", r)
		}
	}
}
