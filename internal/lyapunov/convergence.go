package lyapunov

import "math"

const (
	snapshotWindow  = 10
	convergenceSpan = 5
)

// Snapshot captures the running exponent estimate at a step.
type Snapshot struct {
	Step      int
	Exponents [3]float64
}

// Monitor tracks recent exponent snapshots and declares convergence once
// the spread between the two most recent snapshot groups drops below
// tolerance. Convergence is advisory: callers may keep stepping.
type Monitor struct {
	tol      float64
	minSteps int
	snaps    []Snapshot
}

func NewMonitor(tol float64, minSteps int) *Monitor {
	return &Monitor{
		tol:      tol,
		minSteps: minSteps,
		snaps:    make([]Snapshot, 0, snapshotWindow),
	}
}

func (m *Monitor) Record(s Snapshot) {
	m.snaps = append(m.snaps, s)
	if len(m.snaps) > snapshotWindow {
		m.snaps = m.snaps[1:]
	}
}

// Converged compares the per-axis mean of the 5 most recent snapshots with
// the mean of the 5 before that. It never reports convergence before
// minSteps steps or before the window has filled.
func (m *Monitor) Converged() bool {
	if len(m.snaps) < 2*convergenceSpan {
		return false
	}
	if m.snaps[len(m.snaps)-1].Step < m.minSteps {
		return false
	}

	recent := mean(m.snaps[len(m.snaps)-convergenceSpan:])
	prior := mean(m.snaps[len(m.snaps)-2*convergenceSpan : len(m.snaps)-convergenceSpan])

	for i := 0; i < 3; i++ {
		if math.Abs(recent[i]-prior[i]) >= m.tol {
			return false
		}
	}
	return true
}

func (m *Monitor) Reset() {
	m.snaps = m.snaps[:0]
}

func (m *Monitor) Clone() *Monitor {
	c := NewMonitor(m.tol, m.minSteps)
	c.snaps = append(c.snaps, m.snaps...)
	return c
}

func mean(snaps []Snapshot) [3]float64 {
	var out [3]float64
	for _, s := range snaps {
		for i := 0; i < 3; i++ {
			out[i] += s.Exponents[i]
		}
	}
	n := float64(len(snaps))
	for i := 0; i < 3; i++ {
		out[i] /= n
	}
	return out
}
