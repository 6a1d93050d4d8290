// Package stats validates chaos estimates statistically.
//
// It provides bootstrap confidence intervals over finite-time Lyapunov
// windows and the model-free 0-1 test for chaos on a scalar observable.
// Both operate on plain data produced by the numerical core and never
// influence it.
package stats
