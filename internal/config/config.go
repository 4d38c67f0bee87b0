package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEndTime      = 10000.0
	DefaultInitialDt    = 10.0
	DefaultMinDt        = 0.1
	DefaultMaxDt        = 500.0
	DefaultMaxDivisions = 10
	DefaultGridLength   = 100.0
	DefaultGridCells    = 250
)

type Config struct {
	Model         string       `yaml:"model"`
	EndTime       float64      `yaml:"end_time"`
	InitialDt     float64      `yaml:"initial_dt"`
	MinDt         float64      `yaml:"min_dt"`
	MaxDt         float64      `yaml:"max_dt"`
	MaxDivisions  int          `yaml:"max_divisions"`
	EpisodeLength float64      `yaml:"episode_length"`
	Grid          GridConfig   `yaml:"grid"`
	Newton        NewtonConfig `yaml:"newton"`
}

type GridConfig struct {
	Length float64 `yaml:"length"`
	Cells  int     `yaml:"cells"`
}

type NewtonConfig struct {
	MaxIterations    int     `yaml:"max_iterations"`
	TargetIterations int     `yaml:"target_iterations"`
	Tolerance        float64 `yaml:"tolerance"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:        "powerinjection",
		EndTime:      DefaultEndTime,
		InitialDt:    DefaultInitialDt,
		MinDt:        DefaultMinDt,
		MaxDt:        DefaultMaxDt,
		MaxDivisions: DefaultMaxDivisions,
		Grid: GridConfig{
			Length: DefaultGridLength,
			Cells:  DefaultGridCells,
		},
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

func (c *Config) Validate() error {
	if c.MinDt <= 0 {
		return fmt.Errorf("min_dt must be positive, got %g", c.MinDt)
	}
	if c.MaxDt < c.MinDt {
		return fmt.Errorf("max_dt (%g) must not be below min_dt (%g)", c.MaxDt, c.MinDt)
	}
	if c.MaxDivisions < 0 {
		return fmt.Errorf("max_divisions must not be negative, got %d", c.MaxDivisions)
	}
	if c.EndTime <= 0 {
		return fmt.Errorf("end_time must be positive, got %g", c.EndTime)
	}
	if c.EpisodeLength < 0 {
		return fmt.Errorf("episode_length must not be negative, got %g", c.EpisodeLength)
	}
	if c.Grid.Length <= 0 || c.Grid.Cells < 1 {
		return fmt.Errorf("invalid grid: length %g, cells %d", c.Grid.Length, c.Grid.Cells)
	}
	return nil
}
