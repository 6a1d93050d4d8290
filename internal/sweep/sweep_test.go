package sweep

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavr/chaosmeter/internal/dynamo"
	"github.com/pranavr/chaosmeter/internal/lyapunov"
)

func testConfig() Config {
	return Config{
		Grid:           GridSpec{Min: 0.15, Max: 0.35, Step: 0.1},
		Dt:             0.01,
		Seed:           dynamo.State{0.1, 0, 0},
		TransientSteps: 500,
		AnalysisSteps:  3000,
		Lyapunov: lyapunov.Params{
			QRPeriod:            10,
			WindowSize:          1000,
			MinConvergenceSteps: 1000,
			Tolerance:           1e-6,
		},
		Workers: 2,
	}
}

func TestNewValidation(t *testing.T) {
	cfg := testConfig()
	cfg.Dt = 0
	_, err := New(cfg, nil)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Seed = dynamo.State{0.1}
	_, err = New(cfg, nil)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.AnalysisSteps = 0
	_, err = New(cfg, nil)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Grid.Step = 0
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func TestSweepRun(t *testing.T) {
	o, err := New(testConfig(), nil)
	require.NoError(t, err)

	res, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, StatusCompleted, o.Job().Status())
	assert.Equal(t, 1.0, o.Job().Progress())
	assert.Equal(t, 0, res.Failed)

	require.Len(t, res.Points, 3)
	assert.Equal(t, []float64{0.15, 0.25, 0.35}, res.Grid)

	for i, p := range res.Points {
		require.NoError(t, p.Err)
		assert.Equal(t, i, p.Index)
		assert.Equal(t, res.Grid[i], p.B)
		assert.GreaterOrEqual(t, p.Metric.CTM, 0.0)
		assert.LessOrEqual(t, p.Metric.CTM, 1.0)
	}
}

func TestSweepOnPointCallback(t *testing.T) {
	o, err := New(testConfig(), nil)
	require.NoError(t, err)

	var mu sync.Mutex
	seen := map[int]bool{}
	o.OnPoint(func(p PointResult) {
		mu.Lock()
		seen[p.Index] = true
		mu.Unlock()
	})

	_, err = o.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, seen, 3)
}

func TestSweepCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o, err := New(testConfig(), nil)
	require.NoError(t, err)

	res, err := o.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusCancelled, res.Status)
	assert.Equal(t, StatusCancelled, o.Job().Status())
}

func TestSweepDeterministic(t *testing.T) {
	run := func() *Result {
		o, err := New(testConfig(), nil)
		require.NoError(t, err)
		res, err := o.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	for i := range a.Points {
		assert.Equal(t, a.Points[i].Exponents, b.Points[i].Exponents)
		assert.Equal(t, a.Points[i].Metric.CTM, b.Points[i].Metric.CTM)
	}
}

// Bad Lyapunov parameters fail every point, which fails the sweep as a
// whole.
func TestSweepAllPointsFailed(t *testing.T) {
	cfg := testConfig()
	cfg.Lyapunov.QRPeriod = 0

	o, err := New(cfg, nil)
	require.NoError(t, err)

	res, err := o.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, 3, res.Failed)
}
