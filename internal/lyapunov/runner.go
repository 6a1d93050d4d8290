package lyapunov

import (
	"context"
	"fmt"
	"math"

	"github.com/pranavr/chaosmeter/internal/dynamo"
	"github.com/pranavr/chaosmeter/internal/integrators"
)

const (
	// stateDim is the base phase-space dimension; augDim adds the three
	// tangent vectors.
	stateDim = 3
	augDim   = 12

	// ctxPollInterval bounds how many steps StepN takes between context
	// checks.
	ctxPollInterval = 1000
)

// Params collects the knobs of a Benettin run.
type Params struct {
	QRPeriod            int
	WindowSize          int
	MinConvergenceSteps int
	Tolerance           float64
}

func DefaultParams() Params {
	return Params{
		QRPeriod:            10,
		WindowSize:          10000,
		MinConvergenceSteps: 10000,
		Tolerance:           1e-6,
	}
}

// tangentSystem couples the base flow with three tangent vectors evolved
// under the linearized dynamics dv/dt = J(x)·v. Layout of the augmented
// state: [x y z | v1 | v2 | v3]. Evolving the tangent vectors with the
// same RK4 scheme as the trajectory keeps both at the same order of
// accuracy.
type tangentSystem struct {
	base dynamo.Linearized
}

func (t *tangentSystem) Dim() int { return augDim }

func (t *tangentSystem) Derive(x dynamo.State) dynamo.State {
	d := make(dynamo.State, augDim)
	copy(d, t.base.Derive(x[:stateDim]))

	j := t.base.Jacobian(x[:stateDim])
	for k := 0; k < 3; k++ {
		lo := stateDim + 3*k
		jv := j.MulVec(x[lo : lo+3])
		copy(d[lo:lo+3], jv)
	}
	return d
}

// Runner owns one Benettin run: trajectory, tangent basis, per-axis
// log-growth sums, convergence monitor, and FTLE windows. It exposes
// step-granular entry points so a caller can interleave work or cancel
// between batches; the runner itself never yields.
type Runner struct {
	sys    dynamo.Linearized
	aug    *tangentSystem
	integ  *integrators.RK4
	params Params

	x    dynamo.State // augmented, length 12
	dt   float64
	step int
	sums [3]float64

	monitor *Monitor
	ftle    *WindowManager
}

// NewRunner validates the inputs and builds a run with the tangent basis
// initialized to the identity.
func NewRunner(sys dynamo.Linearized, seed dynamo.State, dt float64, p Params) (*Runner, error) {
	if dt <= 0 || math.IsNaN(dt) {
		return nil, fmt.Errorf("dt=%v: %w", dt, dynamo.ErrInvalidParameter)
	}
	if len(seed) != stateDim || !seed.IsValid() {
		return nil, fmt.Errorf("seed %v: %w", seed, dynamo.ErrInvalidSeed)
	}
	if p.QRPeriod < 1 {
		return nil, fmt.Errorf("qrPeriod=%d: %w", p.QRPeriod, dynamo.ErrInvalidParameter)
	}
	if p.WindowSize < 1 {
		return nil, fmt.Errorf("windowSize=%d: %w", p.WindowSize, dynamo.ErrInvalidParameter)
	}

	r := &Runner{
		sys:     sys,
		aug:     &tangentSystem{base: sys},
		integ:   integrators.NewRK4(),
		params:  p,
		dt:      dt,
		monitor: NewMonitor(p.Tolerance, p.MinConvergenceSteps),
		ftle:    NewWindowManager(p.WindowSize, dt),
	}
	r.initState(seed)
	return r, nil
}

func (r *Runner) initState(seed dynamo.State) {
	r.x = make(dynamo.State, augDim)
	copy(r.x, seed)
	// identity tangent basis
	for k := 0; k < 3; k++ {
		r.x[stateDim+3*k+k] = 1
	}
	r.step = 0
	r.sums = [3]float64{}
}

// Step advances trajectory and tangent basis by one RK4 step and, on QR
// boundaries, renormalizes the basis and accumulates log-growth.
func (r *Runner) Step() {
	r.x = r.integ.Step(r.aug, r.x, r.dt)
	r.step++

	if r.step%r.params.QRPeriod != 0 {
		return
	}

	basis := [][]float64{
		r.x[stateDim : stateDim+3],
		r.x[stateDim+3 : stateDim+6],
		r.x[stateDim+6 : stateDim+9],
	}
	logs := orthonormalize(basis)

	for i := 0; i < 3; i++ {
		r.sums[i] += logs[i]
	}
	r.ftle.Accumulate(r.step, logs)
	r.monitor.Record(Snapshot{Step: r.step, Exponents: r.Exponents()})
}

// StepN advances n steps, polling ctx between batches so long runs stay
// cancellable mid-point. A trajectory or tangent vector that leaves the
// finite range aborts the run with the offending step attached.
func (r *Runner) StepN(ctx context.Context, n int) error {
	for done := 0; done < n; {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch := ctxPollInterval
		if rem := n - done; rem < batch {
			batch = rem
		}
		for i := 0; i < batch; i++ {
			r.Step()
		}
		done += batch

		if !r.x.IsValid() {
			return &dynamo.RunError{Step: r.step, Wrapped: dynamo.ErrInvalidState}
		}
	}
	return nil
}

// Exponents returns the current per-axis estimates sum_i/(steps*dt).
func (r *Runner) Exponents() [3]float64 {
	var out [3]float64
	if r.step == 0 {
		return out
	}
	t := float64(r.step) * r.dt
	for i := 0; i < 3; i++ {
		out[i] = r.sums[i] / t
	}
	return out
}

func (r *Runner) StepCount() int { return r.step }
func (r *Runner) Dt() float64    { return r.dt }

// Converged reports the advisory convergence status.
func (r *Runner) Converged() bool { return r.monitor.Converged() }

// Position returns a copy of the current trajectory point.
func (r *Runner) Position() dynamo.State {
	return r.x[:stateDim].Clone()
}

// Basis returns a copy of the current tangent vectors.
func (r *Runner) Basis() [][]float64 {
	out := make([][]float64, 3)
	for k := 0; k < 3; k++ {
		v := make([]float64, 3)
		copy(v, r.x[stateDim+3*k:stateDim+3*k+3])
		out[k] = v
	}
	return out
}

// Windows returns the completed FTLE windows.
func (r *Runner) Windows() []Window { return r.ftle.Windows() }

// WindowCount reports how many FTLE windows have closed.
func (r *Runner) WindowCount() int { return r.ftle.Count() }

// Reset restores the runner to a fresh run at the given seed, clearing
// sums, snapshots and windows.
func (r *Runner) Reset(seed dynamo.State) error {
	if len(seed) != stateDim || !seed.IsValid() {
		return fmt.Errorf("seed %v: %w", seed, dynamo.ErrInvalidSeed)
	}
	r.initState(seed)
	r.monitor.Reset()
	r.ftle.Reset()
	return nil
}

// Clone deep-copies the run so a caller can persist or inspect state
// without aliasing the live run. The clone gets its own integrator
// scratch space.
func (r *Runner) Clone() *Runner {
	return &Runner{
		sys:     r.sys,
		aug:     &tangentSystem{base: r.sys},
		integ:   integrators.NewRK4(),
		params:  r.params,
		x:       r.x.Clone(),
		dt:      r.dt,
		step:    r.step,
		sums:    r.sums,
		monitor: r.monitor.Clone(),
		ftle:    r.ftle.Clone(),
	}
}
