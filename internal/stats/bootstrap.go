package stats

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/pranavr/chaosmeter/internal/ctm"
	"github.com/pranavr/chaosmeter/internal/dynamo"
	"github.com/pranavr/chaosmeter/internal/lyapunov"
)

// MinWindows is the smallest FTLE sample the bootstrap accepts.
const MinWindows = 10

// ErrInsufficientData indicates too few FTLE windows for resampling.
var ErrInsufficientData = errors.New("stats: insufficient FTLE windows for bootstrap")

// Interval is a two-sided percentile confidence bound.
type Interval struct {
	Lower float64
	Upper float64
}

func (i Interval) Contains(v float64) bool {
	return v >= i.Lower && v <= i.Upper
}

// BootstrapResult holds percentile intervals for the chaos meter and its
// main ingredients.
type BootstrapResult struct {
	CTM         Interval
	Lambda1     Interval
	KaplanYorke Interval
	Level       float64
	Resamples   int
	Windows     int
}

// BootstrapCI resamples the FTLE windows with replacement, recomputes the
// chaos meter from each resampled average spectrum, and returns the
// [alpha/2, 1-alpha/2] percentile intervals. The seed makes the interval
// reproducible.
func BootstrapCI(windows []lyapunov.Window, b float64, resamples int, level float64, seed int64) (BootstrapResult, error) {
	if len(windows) < MinWindows {
		return BootstrapResult{}, fmt.Errorf("%d windows, need %d: %w", len(windows), MinWindows, ErrInsufficientData)
	}
	if resamples < 1 {
		return BootstrapResult{}, fmt.Errorf("resamples=%d: %w", resamples, dynamo.ErrInvalidParameter)
	}
	if level <= 0 || level >= 1 {
		return BootstrapResult{}, fmt.Errorf("confidence level=%v: %w", level, dynamo.ErrInvalidParameter)
	}

	rng := rand.New(rand.NewSource(seed))
	n := len(windows)

	ctms := make([]float64, 0, resamples)
	lambdas := make([]float64, 0, resamples)
	dims := make([]float64, 0, resamples)

	for r := 0; r < resamples; r++ {
		var avg [3]float64
		for i := 0; i < n; i++ {
			w := windows[rng.Intn(n)]
			for k := 0; k < 3; k++ {
				avg[k] += w.Exponents[k]
			}
		}
		for k := 0; k < 3; k++ {
			avg[k] /= float64(n)
		}

		res, err := ctm.Compute(avg, b)
		if err != nil {
			return BootstrapResult{}, err
		}
		ctms = append(ctms, res.CTM)
		lambdas = append(lambdas, math.Max(avg[0], math.Max(avg[1], avg[2])))
		dims = append(dims, res.KaplanYorke)
	}

	return BootstrapResult{
		CTM:         percentileInterval(ctms, level),
		Lambda1:     percentileInterval(lambdas, level),
		KaplanYorke: percentileInterval(dims, level),
		Level:       level,
		Resamples:   resamples,
		Windows:     n,
	}, nil
}

func percentileInterval(vals []float64, level float64) Interval {
	sort.Float64s(vals)
	alpha := (1 - level) / 2
	n := float64(len(vals) - 1)

	lo := int(math.Floor(alpha * n))
	hi := int(math.Ceil((1 - alpha) * n))

	return Interval{Lower: vals[lo], Upper: vals[hi]}
}
