package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/pranavr/chaosmeter/internal/config"
	"github.com/pranavr/chaosmeter/internal/ctm"
	"github.com/pranavr/chaosmeter/internal/dynamo"
	"github.com/pranavr/chaosmeter/internal/flower"
	"github.com/pranavr/chaosmeter/internal/lyapunov"
	"github.com/pranavr/chaosmeter/internal/stats"
	"github.com/pranavr/chaosmeter/internal/sweep"
	"github.com/pranavr/chaosmeter/internal/thomas"
	"github.com/pranavr/chaosmeter/internal/tui"
)

var (
	bParam    float64
	dt        float64
	seedX     float64
	seedY     float64
	seedZ     float64
	transient int
	steps     int
	qrPeriod  int
	window    int
	resamples int
	level     float64
	bootSeed  int64
	// sweep grid
	sweepMin  float64
	sweepMax  float64
	sweepStep float64
	workers   int
	// flower fit
	setsFile string
	setID    string
	// config file and preset
	configFile string
	preset     string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chaosmeter",
		Short: "chaos analysis of the Thomas attractor",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			lvl := slog.LevelInfo
			if verbose {
				lvl = slog.LevelDebug
			}
			slog.SetDefault(slog.New(
				tint.NewHandler(os.Stderr, &tint.Options{
					Level:      lvl,
					TimeFormat: "15:04:05",
				}),
			))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "full chaos analysis at a single damping value",
		RunE:  runAnalyze,
	}
	addModelFlags(analyzeCmd)
	analyzeCmd.Flags().IntVar(&resamples, "resamples", config.DefaultResamples, "bootstrap resamples (0 disables)")
	analyzeCmd.Flags().Float64Var(&level, "level", config.DefaultConfidenceLevel, "bootstrap confidence level")
	analyzeCmd.Flags().Int64Var(&bootSeed, "boot-seed", 1, "bootstrap rng seed")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep the damping parameter across a grid",
		RunE:  runSweep,
	}
	addModelFlags(sweepCmd)
	addSweepFlags(sweepCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "sweep with a live terminal monitor",
		RunE:  runLive,
	}
	addModelFlags(liveCmd)
	addSweepFlags(liveCmd)

	flowerCmd := &cobra.Command{
		Use:   "flower",
		Short: "flower index for a named parameter set",
		RunE:  runFlower,
	}
	flowerCmd.Flags().StringVar(&setsFile, "sets", "", "parameter sets file (yaml)")
	flowerCmd.Flags().StringVar(&setID, "set", "", "set id to analyze")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s b=%.2f dt=%.3f steps=%d\n", name, p.B, p.Dt, p.AnalysisSteps)
			}
		},
	}

	rootCmd.AddCommand(analyzeCmd, sweepCmd, liveCmd, flowerCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&bParam, "b", config.DefaultB, "damping parameter")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&seedX, "x", 0.1, "initial x")
	cmd.Flags().Float64Var(&seedY, "y", 0.0, "initial y")
	cmd.Flags().Float64Var(&seedZ, "z", 0.0, "initial z")
	cmd.Flags().IntVar(&transient, "transient", config.DefaultTransientSteps, "transient steps discarded before analysis")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultAnalysisSteps, "analysis steps")
	cmd.Flags().IntVar(&qrPeriod, "qr-period", config.DefaultQRPeriod, "steps between QR renormalizations")
	cmd.Flags().IntVar(&window, "window", config.DefaultWindowSize, "FTLE window size in steps")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func addSweepFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&sweepMin, "min", 0.05, "sweep lower bound")
	cmd.Flags().Float64Var(&sweepMax, "max", 0.45, "sweep upper bound")
	cmd.Flags().Float64Var(&sweepStep, "step", 0.02, "sweep step")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = NumCPU)")
	cmd.Flags().IntVar(&resamples, "resamples", 0, "bootstrap resamples per point (0 disables)")
	cmd.Flags().Float64Var(&level, "level", config.DefaultConfidenceLevel, "bootstrap confidence level")
	cmd.Flags().Int64Var(&bootSeed, "boot-seed", 1, "bootstrap rng seed")
}

// resolveConfig layers preset, config file and flags: a preset seeds the
// values, the config file overrides it, and explicitly set flags win.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("b") {
		cfg.B = bParam
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("x") || flags.Changed("y") || flags.Changed("z") {
		cfg.Seed = config.SeedConfig{X: seedX, Y: seedY, Z: seedZ}
	}
	if flags.Changed("transient") {
		cfg.TransientSteps = transient
	}
	if flags.Changed("steps") {
		cfg.AnalysisSteps = steps
	}
	if flags.Changed("qr-period") {
		cfg.QRPeriod = qrPeriod
	}
	if flags.Changed("window") {
		cfg.WindowSize = window
	}
	if flags.Changed("resamples") {
		cfg.Bootstrap.Resamples = resamples
	}
	if flags.Changed("level") {
		cfg.Bootstrap.ConfidenceLevel = level
	}
	if flags.Changed("boot-seed") {
		cfg.Bootstrap.Seed = bootSeed
	}
	if flags.Lookup("min") != nil {
		if flags.Changed("min") {
			cfg.Sweep.Min = sweepMin
		}
		if flags.Changed("max") {
			cfg.Sweep.Max = sweepMax
		}
		if flags.Changed("step") {
			cfg.Sweep.Step = sweepStep
		}
		if flags.Changed("workers") {
			cfg.Workers = workers
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	log := slog.Default()
	log.Info("analyzing", "b", cfg.B, "dt", cfg.Dt, "steps", cfg.AnalysisSteps)
	start := time.Now()

	model, err := thomas.NewModel(cfg.B, cfg.Dt, cfg.InitState())
	if err != nil {
		return err
	}
	if !model.VerifyDivergence() {
		return fmt.Errorf("divergence self-check failed at b=%v", cfg.B)
	}

	// transient, with the x series kept for the 0-1 test afterwards
	for i := 0; i < cfg.TransientSteps; i++ {
		model.Step()
	}

	runner, err := lyapunov.NewRunner(model.System(), model.State(), cfg.Dt, cfg.LyapunovParams())
	if err != nil {
		return err
	}
	if err := runner.StepN(ctx, cfg.AnalysisSteps); err != nil {
		return err
	}

	exps := runner.Exponents()
	res, err := ctm.Compute(exps, cfg.B)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start).Round(time.Millisecond))
	printAnalysis(runner, res)

	if cfg.Bootstrap.Resamples > 0 {
		if runner.WindowCount() < stats.MinWindows {
			log.Warn("too few FTLE windows for bootstrap",
				"windows", runner.WindowCount(), "need", stats.MinWindows)
		} else {
			ci, err := stats.BootstrapCI(runner.Windows(), cfg.B,
				cfg.Bootstrap.Resamples, cfg.Bootstrap.ConfidenceLevel, cfg.Bootstrap.Seed)
			if err != nil {
				return err
			}
			printBootstrap(ci)
		}
	}

	zres, err := zeroOneFromTrajectory(ctx, cfg)
	if err != nil {
		log.Warn("0-1 test skipped", "error", err)
		return nil
	}
	fmt.Printf("\n0-1 test: K=%.4f (%s)\n", zres.K, zres.Class)
	return nil
}

// zeroOneFromTrajectory reruns the trajectory and samples x once per
// half time unit, decorrelated enough for the translation variables.
func zeroOneFromTrajectory(ctx context.Context, cfg *config.Config) (stats.ZeroOneResult, error) {
	const samples = 2000
	stride := int(0.5 / cfg.Dt)
	if stride < 1 {
		stride = 1
	}

	model, err := thomas.NewModel(cfg.B, cfg.Dt, cfg.InitState())
	if err != nil {
		return stats.ZeroOneResult{}, err
	}
	for i := 0; i < cfg.TransientSteps; i++ {
		model.Step()
	}

	series := make([]float64, 0, samples)
	for len(series) < samples {
		if err := ctx.Err(); err != nil {
			return stats.ZeroOneResult{}, err
		}
		var last dynamo.State
		for s := 0; s < stride; s++ {
			last = model.Step().Position
		}
		series = append(series, last[0])
	}
	return stats.ZeroOneTest(series)
}

func printAnalysis(runner *lyapunov.Runner, res ctm.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "lambda1\t%+.6f\n", maxOf(runner.Exponents()))
	fmt.Fprintf(w, "spectrum\t%+.6f  %+.6f  %+.6f\n",
		runner.Exponents()[0], runner.Exponents()[1], runner.Exponents()[2])
	fmt.Fprintf(w, "converged\t%v\n", runner.Converged())
	fmt.Fprintf(w, "sum check\t%+.6f vs %+.6f (ok=%v)\n",
		res.SumCheck.Sum, res.SumCheck.Expected, res.SumCheck.OK)
	fmt.Fprintf(w, "D_KY\t%.4f\n", res.KaplanYorke)
	fmt.Fprintf(w, "C_lambda\t%.4f\n", res.Components.Lyapunov)
	fmt.Fprintf(w, "C_D\t%.4f\n", res.Components.Dimension)
	fmt.Fprintf(w, "CTM\t%.4f\n", res.CTM)
	fmt.Fprintf(w, "regime\t%s\n", res.Regime)
	fmt.Fprintf(w, "ftle windows\t%d\n", runner.WindowCount())
	w.Flush()
}

func printBootstrap(ci stats.BootstrapResult) {
	fmt.Printf("\nbootstrap (%d resamples over %d windows, %.0f%% level):\n",
		ci.Resamples, ci.Windows, ci.Level*100)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "  ctm\t[%.4f, %.4f]\n", ci.CTM.Lower, ci.CTM.Upper)
	fmt.Fprintf(w, "  lambda1\t[%+.4f, %+.4f]\n", ci.Lambda1.Lower, ci.Lambda1.Upper)
	fmt.Fprintf(w, "  D_KY\t[%.4f, %.4f]\n", ci.KaplanYorke.Lower, ci.KaplanYorke.Upper)
	w.Flush()
}

func maxOf(e [3]float64) float64 {
	m := e[0]
	for _, v := range e[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func runSweep(cmd *cobra.Command, args []string) error {
	orch, err := buildOrchestrator(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	res, err := orch.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("sweep completed in %v\n\n", time.Since(start).Round(time.Millisecond))
	printSweep(res)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	orch, err := buildOrchestrator(cmd)
	if err != nil {
		return err
	}
	res, err := tui.Run(orch)
	if err != nil {
		return err
	}
	if res != nil && res.Status == sweep.StatusCompleted {
		printSweep(res)
	}
	return nil
}

func buildOrchestrator(cmd *cobra.Command) (*sweep.Orchestrator, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	return sweep.New(cfg.OrchestratorConfig(), slog.Default())
}

func printSweep(res *sweep.Result) {
	data := make([]float64, 0, len(res.Points))
	for _, p := range res.Points {
		if p.Err == nil {
			data = append(data, p.Metric.CTM)
		}
	}
	if len(data) >= 2 {
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(12),
			asciigraph.Width(70),
			asciigraph.Caption("CTM vs b")))
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "b\tlambda1\tD_KY\tCTM\tregime\tconverged")
	for _, p := range res.Points {
		if p.Err != nil {
			fmt.Fprintf(w, "%.4f\tfailed: %v\n", p.B, p.Err)
			continue
		}
		fmt.Fprintf(w, "%.4f\t%+.4f\t%.3f\t%.4f\t%s\t%v\n",
			p.B, p.Lambda1(), p.Metric.KaplanYorke, p.Metric.CTM, p.Metric.Regime, p.Converged)
	}
	w.Flush()

	a := res.Analysis
	if a.OnsetIndex >= 0 {
		fmt.Printf("\nchaos onset: b=%.4f\n", a.OnsetB)
	}
	if len(a.Transitions) > 0 {
		fmt.Println("\nregime transitions:")
		for _, tr := range a.Transitions {
			fmt.Printf("  b=%.4f  %s -> %s\n", tr.B, tr.From, tr.To)
		}
	}
	if len(a.Maxima)+len(a.Minima) > 0 {
		fmt.Println("\ncritical points:")
		for _, cp := range a.Maxima {
			fmt.Printf("  max  b=%.4f  ctm=%.4f\n", cp.B, cp.CTM)
		}
		for _, cp := range a.Minima {
			fmt.Printf("  min  b=%.4f  ctm=%.4f\n", cp.B, cp.CTM)
		}
	}
}

func runFlower(cmd *cobra.Command, args []string) error {
	if setsFile == "" || setID == "" {
		return fmt.Errorf("flower requires --sets and --set")
	}
	sets, err := config.LoadSets(setsFile)
	if err != nil {
		return err
	}
	var set *config.Set
	for i := range sets {
		if sets[i].ID == setID {
			set = &sets[i]
			break
		}
	}
	if set == nil {
		return fmt.Errorf("set %q not found in %s", setID, setsFile)
	}

	ctx, cancel := signalContext()
	defer cancel()

	log := slog.Default()
	log.Info("flower fit", "set", set.ID, "b", set.B, "steps", set.Steps)

	model, err := thomas.NewModel(set.B, set.Dt, set.InitState())
	if err != nil {
		return err
	}
	for i := 0; i < set.TransientSteps; i++ {
		model.Step()
	}

	// run trajectory and exponents off the same settled state
	runner, err := lyapunov.NewRunner(model.System(), model.State(), set.Dt, lyapunov.DefaultParams())
	if err != nil {
		return err
	}

	points := make([]dynamo.State, 0, set.Steps)
	traj, err := thomas.NewModel(set.B, set.Dt, model.State())
	if err != nil {
		return err
	}
	for i := 0; i < set.Steps; i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		points = append(points, traj.Step().Position)
	}
	if err := runner.StepN(ctx, set.Steps); err != nil {
		return err
	}

	rh := flower.Rhodonea{
		K: set.Rhodonea.K, M: set.Rhodonea.M,
		Phi: set.Rhodonea.Phi, A: set.Rhodonea.A,
	}
	eFlower, err := flower.Error(points, flower.Projection{Plane: flower.PlaneXY}, rh)
	if err != nil {
		return err
	}
	lambda1 := maxOf(runner.Exponents())
	fi := flower.Index(eFlower, lambda1)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "set\t%s\n", set.ID)
	if set.Description != "" {
		fmt.Fprintf(w, "description\t%s\n", set.Description)
	}
	fmt.Fprintf(w, "E_flower\t%.6f\n", eFlower)
	fmt.Fprintf(w, "lambda1\t%+.6f\n", lambda1)
	fmt.Fprintf(w, "flower index\t%.6f\n", fi)
	w.Flush()
	return nil
}
