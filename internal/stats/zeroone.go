package stats

import (
	"fmt"
	"math"

	"github.com/pranavr/chaosmeter/internal/dynamo"
)

// Classification thresholds for the 0-1 test statistic K.
const (
	kRegularMax  = 0.1
	kChaoticMin  = 0.9
	minSeriesLen = 100
)

// translation constant for the p/q variables; an irrational-like choice
// that avoids trivial resonance with the sampled dynamics.
const zeroOneC = math.Pi

// ZeroOneClass is the verdict of the 0-1 test.
type ZeroOneClass int

const (
	ClassRegular ZeroOneClass = iota
	ClassIndeterminate
	ClassChaotic
)

func (c ZeroOneClass) String() string {
	switch c {
	case ClassRegular:
		return "regular"
	case ClassIndeterminate:
		return "indeterminate"
	case ClassChaotic:
		return "chaotic"
	default:
		return "unknown"
	}
}

// ZeroOneResult carries the growth-rate statistic K and its class.
// K near 1 indicates chaotic dynamics, K near 0 regular dynamics.
type ZeroOneResult struct {
	K     float64
	Class ZeroOneClass
}

// ZeroOneTest runs the Gottwald-Melbourne 0-1 test on a scalar series.
// The series should be sampled coarsely enough that successive points are
// not trivially correlated (for flow data, roughly one sample per
// characteristic time).
//
// The translation variables p and q random-walk for chaotic input and
// stay bounded for regular input; K is the correlation of their
// mean-square displacement with the lag, clamped to [0,1].
func ZeroOneTest(series []float64) (ZeroOneResult, error) {
	n := len(series)
	if n < minSeriesLen {
		return ZeroOneResult{}, fmt.Errorf("series length %d, need %d: %w", n, minSeriesLen, ErrInsufficientData)
	}
	for _, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ZeroOneResult{}, fmt.Errorf("series contains NaN/Inf: %w", dynamo.ErrInvalidState)
		}
	}

	p := make([]float64, n)
	q := make([]float64, n)
	var cp, cq float64
	for i, x := range series {
		arg := zeroOneC * float64(i+1)
		cp += x * math.Cos(arg)
		cq += x * math.Sin(arg)
		p[i] = cp
		q[i] = cq
	}

	ncut := n / 10
	msd := make([]float64, ncut)
	lags := make([]float64, ncut)
	norm := variance(p) + variance(q)
	if norm == 0 {
		// constant translation variables: nothing displaces, so regular
		return ZeroOneResult{K: 0, Class: ClassRegular}, nil
	}

	for j := 1; j <= ncut; j++ {
		sum := 0.0
		for i := 0; i+j < n; i++ {
			dp := p[i+j] - p[i]
			dq := q[i+j] - q[i]
			sum += dp*dp + dq*dq
		}
		msd[j-1] = sum / (float64(n-j) * norm)
		lags[j-1] = float64(j)
	}

	k := clamp01(correlation(lags, msd))

	class := ClassIndeterminate
	switch {
	case k > kChaoticMin:
		class = ClassChaotic
	case k < kRegularMax:
		class = ClassRegular
	}
	return ZeroOneResult{K: k, Class: class}, nil
}

func variance(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		m += x
	}
	m /= float64(len(xs))

	v := 0.0
	for _, x := range xs {
		d := x - m
		v += d * d
	}
	return v / float64(len(xs))
}

func correlation(xs, ys []float64) float64 {
	n := float64(len(xs))
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= n
	my /= n

	var cov, vx, vy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
