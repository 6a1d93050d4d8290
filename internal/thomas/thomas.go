// Package thomas implements the cyclically symmetric Thomas attractor,
// a three-dimensional flow with constant divergence -3b:
//
//	dx/dt = sin(y) - b*x
//	dy/dt = sin(z) - b*y
//	dz/dt = sin(x) - b*z
//
// For small b the system is chaotic (b=0.19 is a common choice); for large
// b every trajectory spirals into a stable focus.
package thomas

import (
	"fmt"
	"math"

	"github.com/pranavr/chaosmeter/internal/dynamo"
	"github.com/pranavr/chaosmeter/internal/integrators"
)

// System is the parameterized Thomas vector field. It implements
// dynamo.Linearized.
type System struct {
	b float64
}

func NewSystem(b float64) *System { return &System{b: b} }

func (s *System) Dim() int   { return 3 }
func (s *System) B() float64 { return s.b }

func (s *System) Derive(x dynamo.State) dynamo.State {
	return dynamo.State{
		math.Sin(x[1]) - s.b*x[0],
		math.Sin(x[2]) - s.b*x[1],
		math.Sin(x[0]) - s.b*x[2],
	}
}

// Jacobian evaluates the analytic Jacobian at x. The diagonal is constant
// -b; the off-diagonal cosines follow the cyclic coupling of the field.
func (s *System) Jacobian(x dynamo.State) dynamo.Matrix3 {
	return dynamo.Matrix3{
		{-s.b, math.Cos(x[1]), 0},
		{0, -s.b, math.Cos(x[2])},
		{math.Cos(x[0]), 0, -s.b},
	}
}

// Divergence is the (constant) trace of the Jacobian.
func (s *System) Divergence() float64 { return -3 * s.b }

func (s *System) DefaultState() dynamo.State { return dynamo.State{0.1, 0, 0} }

func (s *System) GetParams() map[string]float64 {
	return map[string]float64{"b": s.b}
}

// divergenceTol bounds the acceptable defect in trace(J) = -3b. Anything
// larger means the Jacobian itself is wrong, not the numerics.
const divergenceTol = 1e-10

// Model owns one trajectory of the Thomas system: the current position,
// the step counter, and the integration parameters. A Model is not safe
// for concurrent use; independent runs get independent Models.
type Model struct {
	sys   *System
	integ dynamo.Integrator
	x     dynamo.State
	seed  dynamo.State
	dt    float64
	step  int
}

// StepResult is the per-step output: the new position, the Jacobian
// evaluated there, and the index of the completed step.
type StepResult struct {
	Position dynamo.State
	Jacobian dynamo.Matrix3
	Step     int
}

// NewModel validates b, dt and seed and constructs a trajectory at the
// seed position. The core never clamps: out-of-range input is an error.
func NewModel(b, dt float64, seed dynamo.State) (*Model, error) {
	if b <= 0 || math.IsNaN(b) {
		return nil, fmt.Errorf("b=%v: %w", b, dynamo.ErrInvalidParameter)
	}
	if dt <= 0 || math.IsNaN(dt) {
		return nil, fmt.Errorf("dt=%v: %w", dt, dynamo.ErrInvalidParameter)
	}
	if err := validateSeed(seed); err != nil {
		return nil, err
	}
	m := &Model{
		sys:  NewSystem(b),
		dt:   dt,
		seed: seed.Clone(),
	}
	m.integ = integrators.NewRK4()
	m.x = seed.Clone()
	return m, nil
}

func validateSeed(seed dynamo.State) error {
	if len(seed) != 3 || !seed.IsValid() {
		return fmt.Errorf("seed %v: %w", seed, dynamo.ErrInvalidSeed)
	}
	return nil
}

func (m *Model) System() *System     { return m.sys }
func (m *Model) B() float64          { return m.sys.b }
func (m *Model) Dt() float64         { return m.dt }
func (m *Model) StepIndex() int      { return m.step }
func (m *Model) State() dynamo.State { return m.x.Clone() }

// Step advances the trajectory by one RK4 step.
func (m *Model) Step() StepResult {
	m.x = m.integ.Step(m.sys, m.x, m.dt)
	m.step++
	return StepResult{
		Position: m.x.Clone(),
		Jacobian: m.sys.Jacobian(m.x),
		Step:     m.step,
	}
}

// Reset restores the trajectory to the given seed and zeroes the step
// counter.
func (m *Model) Reset(seed dynamo.State) error {
	if err := validateSeed(seed); err != nil {
		return err
	}
	m.seed = seed.Clone()
	m.x = seed.Clone()
	m.step = 0
	return nil
}

// UpdateParameters replaces b and dt and performs a full reset: a changed
// parameter invalidates every accumulated statistic downstream.
func (m *Model) UpdateParameters(b, dt float64) error {
	if b <= 0 || math.IsNaN(b) {
		return fmt.Errorf("b=%v: %w", b, dynamo.ErrInvalidParameter)
	}
	if dt <= 0 || math.IsNaN(dt) {
		return fmt.Errorf("dt=%v: %w", dt, dynamo.ErrInvalidParameter)
	}
	m.sys = NewSystem(b)
	m.dt = dt
	return m.Reset(m.seed)
}

// VerifyDivergence checks trace(J) against the analytic value -3b at the
// current position. This is a self-test of the model definition, not of
// the integration.
func (m *Model) VerifyDivergence() bool {
	tr := m.sys.Jacobian(m.x).Trace()
	return math.Abs(tr-m.sys.Divergence()) < divergenceTol
}
