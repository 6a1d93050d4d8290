package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pranavr/chaosmeter/internal/dynamo"
	"github.com/pranavr/chaosmeter/internal/lyapunov"
	"github.com/pranavr/chaosmeter/internal/sweep"
)

const (
	DefaultB                   = 0.19
	DefaultDt                  = 0.005
	DefaultTransientSteps      = 20000
	DefaultAnalysisSteps       = 200000
	DefaultQRPeriod            = 10
	DefaultWindowSize          = 10000
	DefaultMinConvergenceSteps = 10000
	DefaultTolerance           = 1e-6
	DefaultResamples           = 1000
	DefaultConfidenceLevel     = 0.95
)

type Config struct {
	B    float64    `yaml:"b"`
	Dt   float64    `yaml:"dt"`
	Seed SeedConfig `yaml:"seed"`

	TransientSteps int `yaml:"transient_steps"`
	AnalysisSteps  int `yaml:"analysis_steps"`

	QRPeriod            int     `yaml:"qr_period"`
	WindowSize          int     `yaml:"window_size"`
	MinConvergenceSteps int     `yaml:"min_convergence_steps"`
	Tolerance           float64 `yaml:"tolerance"`

	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Sweep     SweepConfig     `yaml:"sweep"`

	Workers int `yaml:"workers"`
}

type SeedConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type BootstrapConfig struct {
	Resamples       int     `yaml:"resamples"`
	ConfidenceLevel float64 `yaml:"confidence_level"`
	Seed            int64   `yaml:"seed"`
}

type SweepConfig struct {
	Min   float64      `yaml:"min"`
	Max   float64      `yaml:"max"`
	Step  float64      `yaml:"step"`
	Zones []ZoneConfig `yaml:"zones"`
}

type ZoneConfig struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
	Step float64 `yaml:"step"`
}

func DefaultConfig() *Config {
	return &Config{
		B:                   DefaultB,
		Dt:                  DefaultDt,
		Seed:                SeedConfig{X: 0.1},
		TransientSteps:      DefaultTransientSteps,
		AnalysisSteps:       DefaultAnalysisSteps,
		QRPeriod:            DefaultQRPeriod,
		WindowSize:          DefaultWindowSize,
		MinConvergenceSteps: DefaultMinConvergenceSteps,
		Tolerance:           DefaultTolerance,
		Bootstrap: BootstrapConfig{
			Resamples:       DefaultResamples,
			ConfidenceLevel: DefaultConfidenceLevel,
			Seed:            1,
		},
		Sweep: SweepConfig{Min: 0.05, Max: 0.45, Step: 0.02},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the ranges the analysis pipeline would otherwise reject
// point by point.
func (c *Config) Validate() error {
	if c.B <= 0 || math.IsNaN(c.B) {
		return fmt.Errorf("b=%v: %w", c.B, dynamo.ErrInvalidParameter)
	}
	if c.Dt <= 0 || math.IsNaN(c.Dt) {
		return fmt.Errorf("dt=%v: %w", c.Dt, dynamo.ErrInvalidParameter)
	}
	if !c.InitState().IsValid() {
		return fmt.Errorf("seed (%v,%v,%v): %w", c.Seed.X, c.Seed.Y, c.Seed.Z, dynamo.ErrInvalidSeed)
	}
	if c.TransientSteps < 0 || c.AnalysisSteps < 1 {
		return fmt.Errorf("transient_steps=%d analysis_steps=%d: %w",
			c.TransientSteps, c.AnalysisSteps, dynamo.ErrInvalidParameter)
	}
	if c.QRPeriod < 1 || c.WindowSize < 1 {
		return fmt.Errorf("qr_period=%d window_size=%d: %w",
			c.QRPeriod, c.WindowSize, dynamo.ErrInvalidParameter)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance=%v: %w", c.Tolerance, dynamo.ErrInvalidParameter)
	}
	if c.Bootstrap.Resamples < 0 {
		return fmt.Errorf("bootstrap resamples=%d: %w", c.Bootstrap.Resamples, dynamo.ErrInvalidParameter)
	}
	if c.Bootstrap.Resamples > 0 &&
		(c.Bootstrap.ConfidenceLevel <= 0 || c.Bootstrap.ConfidenceLevel >= 1) {
		return fmt.Errorf("confidence_level=%v: %w", c.Bootstrap.ConfidenceLevel, dynamo.ErrInvalidParameter)
	}
	return nil
}

func (c *Config) InitState() dynamo.State {
	return dynamo.State{c.Seed.X, c.Seed.Y, c.Seed.Z}
}

func (c *Config) LyapunovParams() lyapunov.Params {
	return lyapunov.Params{
		QRPeriod:            c.QRPeriod,
		WindowSize:          c.WindowSize,
		MinConvergenceSteps: c.MinConvergenceSteps,
		Tolerance:           c.Tolerance,
	}
}

// SweepSpec translates the yaml sweep block into a grid spec.
func (c *Config) SweepSpec() sweep.GridSpec {
	zones := make([]sweep.Zone, len(c.Sweep.Zones))
	for i, z := range c.Sweep.Zones {
		zones[i] = sweep.Zone{From: z.From, To: z.To, Step: z.Step}
	}
	return sweep.GridSpec{Min: c.Sweep.Min, Max: c.Sweep.Max, Step: c.Sweep.Step, Zones: zones}
}

// OrchestratorConfig assembles the full sweep configuration.
func (c *Config) OrchestratorConfig() sweep.Config {
	return sweep.Config{
		Grid:               c.SweepSpec(),
		Dt:                 c.Dt,
		Seed:               c.InitState(),
		TransientSteps:     c.TransientSteps,
		AnalysisSteps:      c.AnalysisSteps,
		Lyapunov:           c.LyapunovParams(),
		BootstrapResamples: c.Bootstrap.Resamples,
		ConfidenceLevel:    c.Bootstrap.ConfidenceLevel,
		BootstrapSeed:      c.Bootstrap.Seed,
		Workers:            c.Workers,
	}
}
