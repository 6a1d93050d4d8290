package sweep

import "github.com/pranavr/chaosmeter/internal/ctm"

// CriticalPoint marks a grid index where the CTM-vs-b curve has a
// feature.
type CriticalPoint struct {
	Index int
	B     float64
	CTM   float64
}

// Transition marks a regime change between adjacent grid points; Index
// names the right-hand point.
type Transition struct {
	Index int
	B     float64
	From  ctm.Regime
	To    ctm.Regime
}

// Analysis summarizes the CTM curve of a completed sweep.
type Analysis struct {
	Maxima      []CriticalPoint
	Minima      []CriticalPoint
	Inflections []CriticalPoint
	Transitions []Transition

	// OnsetIndex is the first grid point with a positive leading
	// exponent, -1 when the whole sweep stays regular.
	OnsetIndex int
	OnsetB     float64
}

// Analyze scans the per-point results for extrema, inflections, regime
// transitions and the chaos onset. Failed points break the curve: no
// feature is reported across them.
func Analyze(grid []float64, points []PointResult) Analysis {
	a := Analysis{OnsetIndex: -1}
	n := len(points)
	ok := func(i int) bool { return points[i].Err == nil }

	for i := 0; i < n; i++ {
		if ok(i) && points[i].Lambda1() > 0 {
			a.OnsetIndex = i
			a.OnsetB = grid[i]
			break
		}
	}

	// three-point extremum test
	for i := 1; i < n-1; i++ {
		if !ok(i-1) || !ok(i) || !ok(i+1) {
			continue
		}
		l := points[i-1].Metric.CTM
		c := points[i].Metric.CTM
		r := points[i+1].Metric.CTM
		cp := CriticalPoint{Index: i, B: grid[i], CTM: c}
		switch {
		case c > l && c > r:
			a.Maxima = append(a.Maxima, cp)
		case c < l && c < r:
			a.Minima = append(a.Minima, cp)
		}
	}

	// inflection where the second difference changes sign
	for i := 1; i < n-2; i++ {
		if !ok(i-1) || !ok(i) || !ok(i+1) || !ok(i+2) {
			continue
		}
		d1 := secondDiff(points, i)
		d2 := secondDiff(points, i+1)
		if d1*d2 < 0 {
			a.Inflections = append(a.Inflections, CriticalPoint{
				Index: i, B: grid[i], CTM: points[i].Metric.CTM,
			})
		}
	}

	for i := 1; i < n; i++ {
		if !ok(i-1) || !ok(i) {
			continue
		}
		from := points[i-1].Metric.Regime
		to := points[i].Metric.Regime
		if from != to {
			a.Transitions = append(a.Transitions, Transition{
				Index: i, B: grid[i], From: from, To: to,
			})
		}
	}

	return a
}

func secondDiff(points []PointResult, i int) float64 {
	return points[i+1].Metric.CTM - 2*points[i].Metric.CTM + points[i-1].Metric.CTM
}
