package thomas

import (
	"errors"
	"math"
	"testing"

	"github.com/pranavr/chaosmeter/internal/dynamo"
)

func TestDerive(t *testing.T) {
	sys := NewSystem(0.19)
	x := dynamo.State{0.5, 1.0, -0.3}

	d := sys.Derive(x)

	want := dynamo.State{
		math.Sin(1.0) - 0.19*0.5,
		math.Sin(-0.3) - 0.19*1.0,
		math.Sin(0.5) - 0.19*(-0.3),
	}
	for i := range want {
		if math.Abs(d[i]-want[i]) > 1e-15 {
			t.Errorf("component %d: got %v, want %v", i, d[i], want[i])
		}
	}
}

func TestJacobianTrace(t *testing.T) {
	for _, b := range []float64{0.1, 0.19, 0.5, 2.0} {
		sys := NewSystem(b)
		j := sys.Jacobian(dynamo.State{0.7, -1.2, 3.4})
		if math.Abs(j.Trace()-(-3*b)) > 1e-12 {
			t.Errorf("b=%v: trace %v, want %v", b, j.Trace(), -3*b)
		}
	}
}

func TestNewModelValidation(t *testing.T) {
	seed := dynamo.State{0.1, 0, 0}

	cases := []struct {
		name string
		b    float64
		dt   float64
		seed dynamo.State
		want error
	}{
		{"negative b", -0.1, 0.005, seed, dynamo.ErrInvalidParameter},
		{"zero b", 0, 0.005, seed, dynamo.ErrInvalidParameter},
		{"zero dt", 0.19, 0, seed, dynamo.ErrInvalidParameter},
		{"short seed", 0.19, 0.005, dynamo.State{0.1, 0}, dynamo.ErrInvalidSeed},
		{"long seed", 0.19, 0.005, dynamo.State{0.1, 0, 0, 0}, dynamo.ErrInvalidSeed},
		{"nan seed", 0.19, 0.005, dynamo.State{math.NaN(), 0, 0}, dynamo.ErrInvalidSeed},
	}

	for _, tc := range cases {
		_, err := NewModel(tc.b, tc.dt, tc.seed)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}

	if _, err := NewModel(0.19, 0.005, seed); err != nil {
		t.Fatalf("valid construction failed: %v", err)
	}
}

func TestStepDeterminism(t *testing.T) {
	run := func() dynamo.State {
		m, err := NewModel(0.19, 0.005, dynamo.State{0.1, 0, 0})
		if err != nil {
			t.Fatal(err)
		}
		var last StepResult
		for i := 0; i < 2000; i++ {
			last = m.Step()
		}
		return last.Position
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("trajectories not bit-identical at component %d", i)
		}
	}
}

func TestResetRestoresSeed(t *testing.T) {
	m, err := NewModel(0.19, 0.005, dynamo.State{0.1, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		m.Step()
	}

	if err := m.Reset(dynamo.State{1, 1, 1}); err != nil {
		t.Fatal(err)
	}
	if m.StepIndex() != 0 {
		t.Errorf("step index not reset: %d", m.StepIndex())
	}
	s := m.State()
	if s[0] != 1 || s[1] != 1 || s[2] != 1 {
		t.Errorf("state not reset: %v", s)
	}
}

func TestUpdateParameters(t *testing.T) {
	m, err := NewModel(0.19, 0.005, dynamo.State{0.1, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		m.Step()
	}

	if err := m.UpdateParameters(0.5, 0.01); err != nil {
		t.Fatal(err)
	}
	if m.B() != 0.5 || m.Dt() != 0.01 {
		t.Errorf("parameters not applied: b=%v dt=%v", m.B(), m.Dt())
	}
	if m.StepIndex() != 0 {
		t.Error("update must reset the run")
	}

	if err := m.UpdateParameters(-1, 0.01); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestVerifyDivergence(t *testing.T) {
	m, err := NewModel(0.19, 0.005, dynamo.State{0.1, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 500; i++ {
		m.Step()
		if !m.VerifyDivergence() {
			t.Fatalf("divergence identity violated at step %d", m.StepIndex())
		}
	}
}
