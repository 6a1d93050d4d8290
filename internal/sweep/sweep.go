// Package sweep runs the chaos-meter pipeline across a grid of damping
// values and condenses the per-point results into a picture of how the
// Thomas system moves between regimes.
package sweep

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/pranavr/chaosmeter/internal/ctm"
	"github.com/pranavr/chaosmeter/internal/dynamo"
	"github.com/pranavr/chaosmeter/internal/lyapunov"
	"github.com/pranavr/chaosmeter/internal/stats"
	"github.com/pranavr/chaosmeter/internal/thomas"
)

// transientPollInterval bounds how many transient steps run between
// context checks.
const transientPollInterval = 1000

// Config collects everything one sweep needs. Workers defaults to
// runtime.NumCPU when zero.
type Config struct {
	Grid GridSpec
	Dt   float64
	Seed dynamo.State

	TransientSteps int
	AnalysisSteps  int
	Lyapunov       lyapunov.Params

	BootstrapResamples int
	ConfidenceLevel    float64
	BootstrapSeed      int64

	Workers int
}

// PointResult is the outcome at one grid value. A point that failed
// carries Err and nothing else of use; the sweep keeps going.
type PointResult struct {
	Index     int
	B         float64
	Exponents [3]float64
	Converged bool
	Windows   int
	Metric    ctm.Result
	Bootstrap *stats.BootstrapResult
	Err       error
}

// Lambda1 is the leading exponent of the point's spectrum.
func (p PointResult) Lambda1() float64 {
	l := p.Exponents[0]
	for _, e := range p.Exponents[1:] {
		if e > l {
			l = e
		}
	}
	return l
}

// Result is the full sweep output: one PointResult per grid value, in
// grid order, plus the curve analysis.
type Result struct {
	Grid     []float64
	Points   []PointResult
	Analysis Analysis
	Status   Status
	Failed   int
}

// Orchestrator fans the grid points out over a worker pool. Each point
// gets its own model and Benettin runner, so workers share nothing but
// the result slice, written at distinct indices.
type Orchestrator struct {
	cfg  Config
	grid []float64
	log  *slog.Logger
	job  *Job

	mu      sync.Mutex
	onPoint func(PointResult)
}

// New validates the configuration, expands the grid and prepares a job.
// Run may be called once.
func New(cfg Config, log *slog.Logger) (*Orchestrator, error) {
	grid, err := cfg.Grid.Build()
	if err != nil {
		return nil, err
	}
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("dt=%v: %w", cfg.Dt, dynamo.ErrInvalidParameter)
	}
	if len(cfg.Seed) != 3 || !cfg.Seed.IsValid() {
		return nil, fmt.Errorf("seed %v: %w", cfg.Seed, dynamo.ErrInvalidSeed)
	}
	if cfg.TransientSteps < 0 || cfg.AnalysisSteps < 1 {
		return nil, fmt.Errorf("transient=%d analysis=%d: %w",
			cfg.TransientSteps, cfg.AnalysisSteps, dynamo.ErrInvalidParameter)
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Workers > len(grid) {
		cfg.Workers = len(grid)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orchestrator{
		cfg:  cfg,
		grid: grid,
		log:  log,
		job:  newJob(len(grid)),
	}, nil
}

// Job exposes status and progress for a concurrent observer.
func (o *Orchestrator) Job() *Job { return o.job }

// Grid returns the expanded b values in ascending order.
func (o *Orchestrator) Grid() []float64 {
	out := make([]float64, len(o.grid))
	copy(out, o.grid)
	return out
}

// OnPoint registers a callback invoked as each point finishes, in
// completion order. Set it before Run; it is called from worker
// goroutines, one at a time.
func (o *Orchestrator) OnPoint(fn func(PointResult)) {
	o.mu.Lock()
	o.onPoint = fn
	o.mu.Unlock()
}

func (o *Orchestrator) emit(p PointResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.onPoint != nil {
		o.onPoint(p)
	}
}

// Run executes the sweep. Per-point failures are logged and recorded in
// the point, never fatal; only cancellation ends the sweep early, with
// the partial result returned alongside the context error.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	points := make([]PointResult, len(o.grid))
	idx := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < o.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				points[i] = o.runPoint(ctx, i, o.grid[i])
				o.job.markPoint()
				o.emit(points[i])
			}
		}()
	}

feed:
	for i := range o.grid {
		select {
		case idx <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(idx)
	wg.Wait()

	res := &Result{Grid: o.Grid(), Points: points}
	for _, p := range points {
		if p.Err != nil {
			res.Failed++
		}
	}

	if err := ctx.Err(); err != nil {
		o.job.finish(StatusCancelled)
		res.Status = StatusCancelled
		done, total := o.job.Done()
		o.log.Info("sweep cancelled", "done", done, "total", total)
		return res, err
	}

	if res.Failed == len(points) {
		o.job.finish(StatusError)
		res.Status = StatusError
		o.log.Error("sweep failed at every point", "points", len(points))
		return res, fmt.Errorf("sweep: all %d points failed", len(points))
	}

	res.Analysis = Analyze(res.Grid, points)
	o.job.finish(StatusCompleted)
	res.Status = StatusCompleted
	o.log.Info("sweep completed",
		"points", len(points),
		"failed", res.Failed,
		"onset_b", res.Analysis.OnsetB,
		"transitions", len(res.Analysis.Transitions))
	return res, nil
}

// runPoint runs transient, Benettin analysis and the chaos meter for a
// single b. All state is local to the call.
func (o *Orchestrator) runPoint(ctx context.Context, i int, b float64) PointResult {
	pr := PointResult{Index: i, B: b}

	model, err := thomas.NewModel(b, o.cfg.Dt, o.cfg.Seed)
	if err != nil {
		pr.Err = err
		o.log.Error("sweep point setup failed", "b", b, "error", err)
		return pr
	}

	// let the trajectory settle onto the attractor before measuring
	for t := 0; t < o.cfg.TransientSteps; t++ {
		if t%transientPollInterval == 0 {
			if err := ctx.Err(); err != nil {
				pr.Err = err
				return pr
			}
		}
		model.Step()
	}

	runner, err := lyapunov.NewRunner(model.System(), model.State(), o.cfg.Dt, o.cfg.Lyapunov)
	if err != nil {
		pr.Err = err
		o.log.Error("sweep point setup failed", "b", b, "error", err)
		return pr
	}
	if err := runner.StepN(ctx, o.cfg.AnalysisSteps); err != nil {
		pr.Err = err
		return pr
	}

	pr.Exponents = runner.Exponents()
	pr.Converged = runner.Converged()
	pr.Windows = runner.WindowCount()

	metric, err := ctm.Compute(pr.Exponents, b)
	if err != nil {
		pr.Err = err
		o.log.Error("chaos meter failed", "b", b, "exponents", pr.Exponents, "error", err)
		return pr
	}
	pr.Metric = metric

	if !metric.SumCheck.OK {
		o.log.Warn("spectrum sum identity violated",
			"b", b, "sum", metric.SumCheck.Sum, "expected", metric.SumCheck.Expected)
	}
	if !pr.Converged {
		o.log.Warn("exponents not converged", "b", b, "steps", o.cfg.AnalysisSteps)
	}

	if o.cfg.BootstrapResamples > 0 && pr.Windows >= stats.MinWindows {
		ci, err := stats.BootstrapCI(runner.Windows(), b,
			o.cfg.BootstrapResamples, o.cfg.ConfidenceLevel, o.cfg.BootstrapSeed+int64(i))
		if err != nil {
			o.log.Warn("bootstrap failed", "b", b, "error", err)
		} else {
			pr.Bootstrap = &ci
		}
	}

	o.log.Debug("sweep point done",
		"b", b, "lambda1", pr.Lambda1(), "ctm", metric.CTM, "regime", metric.Regime.String())
	return pr
}
