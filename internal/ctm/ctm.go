// Package ctm derives the composite chaos meter from a Lyapunov spectrum.
//
// The meter combines an unpredictability component built from the leading
// exponent with a geometric-complexity component built from the
// Kaplan-Yorke dimension:
//
//	C_lambda = 1 - exp(-lambda1/(3b))        (0 when lambda1 <= 0)
//	C_D      = clamp(D_KY - 2, 0, 1)
//	CTM      = sqrt(C_lambda * C_D)
//
// The geometric mean with clamped components guarantees CTM in [0,1].
// Every result also carries the analytic sum-identity check
// |sum(lambda) + 3b| < tol, reported rather than raised: a violation
// means the integrator or QR step has a bug.
package ctm

import (
	"fmt"
	"math"
	"sort"

	"github.com/pranavr/chaosmeter/internal/dynamo"
)

// sumTolerance bounds the acceptable residual of the sum identity for a
// well-converged run.
const sumTolerance = 1e-2

// Components are the two clamped CTM ingredients.
type Components struct {
	Lyapunov  float64 // C_lambda, unpredictability
	Dimension float64 // C_D, geometric complexity
}

// SumCheck reports the analytic identity sum(lambda) = -3b.
type SumCheck struct {
	Sum      float64
	Expected float64
	Residual float64
	OK       bool
}

// Result is one CTM evaluation. It is a pure function of the exponents
// and b; nothing is cached between calls.
type Result struct {
	CTM         float64
	Components  Components
	KaplanYorke float64
	Regime      Regime
	SumCheck    SumCheck
}

// KaplanYorke computes the Kaplan-Yorke dimension of a spectrum: the
// number of exponents whose partial sum stays non-negative, plus the
// fractional interpolation into the first exponent that would tip it
// negative. Boundary cases: a non-positive leading exponent gives 0; a
// sum that never goes negative gives n.
func KaplanYorke(exponents []float64) float64 {
	n := len(exponents)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, exponents)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	if sorted[0] <= 0 {
		return 0
	}

	sum := 0.0
	j := 0
	for j < n && sum+sorted[j] >= 0 {
		sum += sorted[j]
		j++
	}
	if j >= n {
		return float64(n)
	}

	d := float64(j) + sum/math.Abs(sorted[j])
	if d < 0 {
		d = 0
	}
	return d
}

// Compute evaluates the chaos meter for a spectrum at damping b.
func Compute(exponents [3]float64, b float64) (Result, error) {
	if b <= 0 || math.IsNaN(b) {
		return Result{}, fmt.Errorf("b=%v: %w", b, dynamo.ErrInvalidParameter)
	}
	for _, l := range exponents {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			return Result{}, fmt.Errorf("exponents %v: %w", exponents, dynamo.ErrInvalidState)
		}
	}

	lambda1 := math.Max(exponents[0], math.Max(exponents[1], exponents[2]))
	dky := KaplanYorke(exponents[:])

	var cLambda float64
	if lambda1 > 0 {
		cLambda = 1 - math.Exp(-lambda1/(3*b))
	}
	cDim := clamp(dky-2, 0, 1)
	meter := math.Sqrt(cLambda * cDim)

	sum := exponents[0] + exponents[1] + exponents[2]
	residual := math.Abs(sum - (-3 * b))

	res := Result{
		CTM:         meter,
		Components:  Components{Lyapunov: cLambda, Dimension: cDim},
		KaplanYorke: dky,
		Regime:      Classify(meter),
		SumCheck: SumCheck{
			Sum:      sum,
			Expected: -3 * b,
			Residual: residual,
			OK:       residual < sumTolerance,
		},
	}

	if math.IsNaN(res.CTM) || res.CTM < 0 || res.CTM > 1 {
		return Result{}, fmt.Errorf("ctm=%v out of range: %w", res.CTM, dynamo.ErrInvalidState)
	}
	return res, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
