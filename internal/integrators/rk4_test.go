package integrators

import (
	"math"
	"testing"

	"github.com/pranavr/chaosmeter/internal/dynamo"
)

type oscillator struct{}

func (o *oscillator) Derive(x dynamo.State) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (o *oscillator) Dim() int { return 2 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &oscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4Deterministic(t *testing.T) {
	dyn := &oscillator{}

	run := func() dynamo.State {
		integ := NewRK4()
		x := dynamo.State{0.3, -0.7}
		for i := 0; i < 500; i++ {
			x = integ.Step(dyn, x, 0.02)
		}
		return x
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs diverged at component %d: %v vs %v", i, a[i], b[i])
		}
	}
}
