// Package flower scores how closely a projected trajectory traces a
// rhodonea (rose) curve r(theta) = a*cos(k*m*theta + phi). The Thomas
// attractor at small b sweeps petal-like lobes in projection; the flower
// index couples the geometric fit with the leading Lyapunov exponent, so
// a clean rose traced by a regular trajectory scores near 1 and a
// chaotic scribble scores near 0.
package flower

import (
	"fmt"
	"math"

	"github.com/pranavr/chaosmeter/internal/dynamo"
)

// Rhodonea holds the rose-curve parameters of r(theta) = a*cos(k*m*theta + phi).
type Rhodonea struct {
	K   float64
	M   float64
	Phi float64
	A   float64
}

// Radius evaluates the rose curve at the given angle.
func (r Rhodonea) Radius(theta float64) float64 {
	return r.A * math.Cos(r.K*r.M*theta+r.Phi)
}

// Plane selects which two coordinates survive the projection.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneYZ
	PlaneZX
)

// Axis names a rotation axis applied before projection.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Projection is a rotation followed by a planar projection.
type Projection struct {
	Plane Plane
	Axis  Axis
	Angle float64 // radians
}

func (p Projection) apply(x dynamo.State) (u, v float64) {
	r := rotate(x, p.Axis, p.Angle)
	switch p.Plane {
	case PlaneYZ:
		return r[1], r[2]
	case PlaneZX:
		return r[2], r[0]
	default:
		return r[0], r[1]
	}
}

func rotate(x dynamo.State, axis Axis, angle float64) dynamo.State {
	if angle == 0 {
		return x
	}
	c, s := math.Cos(angle), math.Sin(angle)
	switch axis {
	case AxisX:
		return dynamo.State{x[0], c*x[1] - s*x[2], s*x[1] + c*x[2]}
	case AxisY:
		return dynamo.State{c*x[0] + s*x[2], x[1], -s*x[0] + c*x[2]}
	default:
		return dynamo.State{c*x[0] - s*x[1], s*x[0] + c*x[1], x[2]}
	}
}

// Error computes the radial RMS error of the projected trajectory
// against the rose curve: for each point, the difference between its
// polar radius and the curve radius at its polar angle.
func Error(points []dynamo.State, proj Projection, rh Rhodonea) (float64, error) {
	if len(points) == 0 {
		return 0, fmt.Errorf("no trajectory points: %w", dynamo.ErrInvalidState)
	}
	sum := 0.0
	for _, p := range points {
		if !p.IsValid() {
			return 0, fmt.Errorf("point %v: %w", p, dynamo.ErrInvalidState)
		}
		u, v := proj.apply(p)
		theta := math.Atan2(v, u)
		d := math.Hypot(u, v) - rh.Radius(theta)
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(points))), nil
}

// Index is the flower index FI = (1/(1+E)) * exp(-lambdaMax). Negative
// or non-finite inputs yield NaN; the caller decides how to report it.
func Index(eFlower, lambdaMax float64) float64 {
	if math.IsNaN(eFlower) || math.IsNaN(lambdaMax) || eFlower < 0 || lambdaMax < 0 {
		return math.NaN()
	}
	return (1 / (1 + eFlower)) * math.Exp(-lambdaMax)
}
