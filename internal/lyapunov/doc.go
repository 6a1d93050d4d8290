// Package lyapunov estimates the full Lyapunov spectrum of a
// three-dimensional flow with Benettin's QR method.
//
// A [Runner] advances the trajectory together with three tangent vectors
// evolved under the linearized dynamics dv/dt = J(x)·v, using the same
// RK4 scheme for both so position and tangent accuracy stay matched.
// Every QRPeriod steps the tangent basis is re-orthonormalized with
// modified Gram-Schmidt and the log of each diagonal growth factor is
// accumulated per axis:
//
//	lambda_i = sum_i / (steps * dt)
//
// The runner also maintains a sliding window of exponent snapshots for the
// advisory convergence check, and a ring buffer of finite-time (FTLE)
// windows that feed the bootstrap estimator in package stats.
//
// Runners are single-threaded and deterministic: identical (system, seed,
// dt, step count) inputs yield bit-identical estimates. Use Clone before
// handing state to another goroutine.
package lyapunov
