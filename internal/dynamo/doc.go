// Package dynamo provides core primitives for autonomous dynamical systems.
//
// The package defines the fundamental types shared by the numerical core:
//
//   - [State]: vector representing a point in phase space
//   - [Matrix3]: 3x3 Jacobian matrix of a three-dimensional flow
//   - [System]: interface for autonomous ODE systems (dX/dt = f(X))
//   - [Linearized]: a System that also exposes its analytic Jacobian
//   - [Integrator]: fixed-step numerical integrator interface
//
// # Thread Safety
//
// States and systems carry no synchronization. Each analysis run owns its
// state exclusively; callers that hand state to another goroutine must
// Clone it first.
package dynamo
