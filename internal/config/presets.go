package config

import "sort"

// Presets are named parameter sets covering the qualitatively distinct
// corners of the Thomas system. Each value is a full config; unlisted
// fields fall back to the defaults at load time.
var Presets = map[string]*Config{
	"chaotic": {
		B: 0.19, Dt: 0.005,
		Seed:           SeedConfig{X: 0.1},
		TransientSteps: 20000, AnalysisSteps: 200000,
	},
	"strong": {
		B: 0.10, Dt: 0.005,
		Seed:           SeedConfig{X: 0.1},
		TransientSteps: 20000, AnalysisSteps: 200000,
	},
	"onset": {
		B: 0.32, Dt: 0.005,
		Seed:           SeedConfig{X: 0.1},
		TransientSteps: 40000, AnalysisSteps: 400000,
	},
	"stable": {
		B: 0.50, Dt: 0.01,
		Seed:           SeedConfig{X: 0.1},
		TransientSteps: 10000, AnalysisSteps: 100000,
	},
	"quick": {
		B: 0.19, Dt: 0.01,
		Seed:           SeedConfig{X: 0.1},
		TransientSteps: 2000, AnalysisSteps: 20000,
	},
}

// GetPreset returns a copy of the named preset merged over the defaults,
// or nil if the name is unknown.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.B = p.B
	cfg.Dt = p.Dt
	cfg.Seed = p.Seed
	cfg.TransientSteps = p.TransientSteps
	cfg.AnalysisSteps = p.AnalysisSteps
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
