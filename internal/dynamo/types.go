package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Dot(other State) float64 {
	sum := 0.0
	for i := range s {
		sum += s[i] * other[i]
	}
	return sum
}

// Matrix3 is the Jacobian of a three-dimensional flow, row-major.
type Matrix3 [3][3]float64

func (m Matrix3) Trace() float64 {
	return m[0][0] + m[1][1] + m[2][2]
}

// MulVec computes m·v for a 3-vector stored in v[0:3].
func (m Matrix3) MulVec(v State) State {
	return State{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// System is an autonomous ODE system dX/dt = f(X).
type System interface {
	Derive(x State) State
	Dim() int
}

// Linearized is a system whose Jacobian is available in closed form.
// The tangent-space evolver requires it.
type Linearized interface {
	System
	Jacobian(x State) Matrix3
}

// Integrator advances a system state by one fixed step.
type Integrator interface {
	Step(dyn System, x State, dt float64) State
}
