package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pranavr/chaosmeter/internal/dynamo"
)

// Set is one named parameter set: the model parameters for a run plus
// the rose-curve reference used by the flower index.
type Set struct {
	ID             string         `yaml:"id"`
	Description    string         `yaml:"description"`
	B              float64        `yaml:"b"`
	Dt             float64        `yaml:"dt"`
	Steps          int            `yaml:"steps"`
	TransientSteps int            `yaml:"transient_steps"`
	Seed           SeedConfig     `yaml:"seed"`
	Rhodonea       RhodoneaConfig `yaml:"rhodonea"`
	Notes          string         `yaml:"notes"`
}

// RhodoneaConfig parameterizes r(theta) = a*cos(k*m*theta + phi).
type RhodoneaConfig struct {
	K   float64 `yaml:"k"`
	M   float64 `yaml:"m"`
	Phi float64 `yaml:"phi"`
	A   float64 `yaml:"a"`
}

func (s *Set) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("set without id: %w", dynamo.ErrInvalidParameter)
	}
	if s.B <= 0 || s.Dt <= 0 {
		return fmt.Errorf("set %q: b=%v dt=%v: %w", s.ID, s.B, s.Dt, dynamo.ErrInvalidParameter)
	}
	if s.Steps < 1 || s.TransientSteps < 0 {
		return fmt.Errorf("set %q: steps=%d transient_steps=%d: %w",
			s.ID, s.Steps, s.TransientSteps, dynamo.ErrInvalidParameter)
	}
	if s.Rhodonea.A <= 0 {
		return fmt.Errorf("set %q: rhodonea a=%v: %w", s.ID, s.Rhodonea.A, dynamo.ErrInvalidParameter)
	}
	return nil
}

func (s *Set) InitState() dynamo.State {
	return dynamo.State{s.Seed.X, s.Seed.Y, s.Seed.Z}
}

// LoadSets reads a yaml list of parameter sets and validates each entry.
// Duplicate ids are an error.
func LoadSets(path string) ([]Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sets []Set
	if err := yaml.Unmarshal(data, &sets); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for i := range sets {
		if err := sets[i].Validate(); err != nil {
			return nil, err
		}
		if seen[sets[i].ID] {
			return nil, fmt.Errorf("duplicate set id %q: %w", sets[i].ID, dynamo.ErrInvalidParameter)
		}
		seen[sets[i].ID] = true
	}
	return sets, nil
}
