package sweep

import (
	"fmt"
	"math"
	"sort"

	"github.com/pranavr/chaosmeter/internal/dynamo"
)

// gridScale rounds grid values to 9 decimals so repeated additions of the
// step cannot drift two nominally equal points apart.
const gridScale = 1e9

// Zone is a sub-range of the sweep refined with a finer step.
type Zone struct {
	From float64
	To   float64
	Step float64
}

// GridSpec describes a 1-D grid over the damping parameter b.
type GridSpec struct {
	Min   float64
	Max   float64
	Step  float64
	Zones []Zone
}

// Build expands the spec into a sorted, deduplicated list of b values.
func (g GridSpec) Build() ([]float64, error) {
	if g.Min <= 0 || g.Step <= 0 {
		return nil, fmt.Errorf("grid min=%v step=%v: %w", g.Min, g.Step, dynamo.ErrInvalidParameter)
	}
	if g.Max < g.Min {
		return nil, fmt.Errorf("grid max=%v below min=%v: %w", g.Max, g.Min, dynamo.ErrInvalidParameter)
	}

	seen := make(map[float64]bool)
	var points []float64

	add := func(from, to, step float64) {
		n := int(math.Floor((to-from)/step + 0.5))
		for i := 0; i <= n; i++ {
			v := roundGrid(from + float64(i)*step)
			if v < g.Min || v > g.Max || seen[v] {
				continue
			}
			seen[v] = true
			points = append(points, v)
		}
	}

	add(g.Min, g.Max, g.Step)
	for _, z := range g.Zones {
		if z.Step <= 0 || z.To < z.From {
			return nil, fmt.Errorf("refinement zone [%v,%v] step %v: %w", z.From, z.To, z.Step, dynamo.ErrInvalidParameter)
		}
		add(z.From, z.To, z.Step)
	}

	sort.Float64s(points)
	return points, nil
}

func roundGrid(v float64) float64 {
	return math.Round(v*gridScale) / gridScale
}
