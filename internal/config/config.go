package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"energy-expansion/internal/solver"
	"energy-expansion/internal/store"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	OutputDir string `yaml:"output_dir"`
	// Plots defaults to true when omitted.
	Plots *bool `yaml:"plots"`
	PDF   bool  `yaml:"pdf"`
	CSV   bool  `yaml:"csv"`

	Solver SolverConfig `yaml:"solver"`
	Store  StoreConfig  `yaml:"store"`

	// Optional: load scenarios from a separate YAML holding only `scenarios:`.
	// Inline scenarios override file scenarios with the same name.
	ScenarioFile string     `yaml:"scenario_file"`
	Scenarios    []Scenario `yaml:"scenarios"`
}

type SolverConfig struct {
	Name      string        `yaml:"name"`
	Binary    string        `yaml:"binary"`
	TimeLimit time.Duration `yaml:"time_limit"`
	KeepFiles bool          `yaml:"keep_files"`
	WorkDir   string        `yaml:"work_dir"`
	Tolerance float64       `yaml:"tolerance"`
}

type StoreConfig struct {
	// Driver is sqlite or postgres; empty disables the archive.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Scenario is one model run: a workbook and the tag used in output names.
type Scenario struct {
	Name        string `yaml:"name"`
	Workbook    string `yaml:"workbook"`
	Tag         string `yaml:"tag"`
	Hours       int    `yaml:"hours"`
	Description string `yaml:"description"`
}

const (
	DefaultOutputDir = "results"
	DefaultBinary    = "cbc"
)

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i := range c.Scenarios {
		if c.Scenarios[i].Workbook != "" {
			c.Scenarios[i].Workbook = resolve(dir, c.Scenarios[i].Workbook)
		}
	}
	if c.ScenarioFile != "" {
		loaded, err := loadScenarioFile(resolve(dir, c.ScenarioFile))
		if err != nil {
			return nil, err
		}
		c.Scenarios = MergeScenarios(loaded, c.Scenarios)
	}
	return &c, nil
}

// resolve prefers interpreting relative paths as relative to the config
// file directory, but falls back to the provided path (relative to cwd) if
// that doesn't exist.
func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

// ApplyDefaults fills the optional fields.
func (c *Config) ApplyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.Plots == nil {
		on := true
		c.Plots = &on
	}
	if c.Solver.Name == "" {
		c.Solver.Name = solver.NameCBC
	}
	if c.Solver.Binary == "" {
		c.Solver.Binary = DefaultBinary
	}
	for i := range c.Scenarios {
		if c.Scenarios[i].Tag == "" {
			c.Scenarios[i].Tag = c.Scenarios[i].Name
		}
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if len(c.Scenarios) == 0 {
		return errors.New("at least one scenario is required")
	}
	seen := map[string]bool{}
	for i, s := range c.Scenarios {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("scenarios[%d].name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("scenario %q is defined twice", s.Name)
		}
		seen[s.Name] = true
		if s.Workbook == "" {
			return fmt.Errorf("scenario %q: workbook is required", s.Name)
		}
		if s.Hours < 0 {
			return fmt.Errorf("scenario %q: hours must be >= 0", s.Name)
		}
	}
	switch c.Solver.Name {
	case "", solver.NameCBC, solver.NameSimplex:
	default:
		return fmt.Errorf("solver.name %q is not supported", c.Solver.Name)
	}
	if c.Solver.TimeLimit < 0 {
		return errors.New("solver.time_limit must be >= 0")
	}
	if c.Solver.Tolerance < 0 {
		return errors.New("solver.tolerance must be >= 0")
	}
	switch c.Store.Driver {
	case "":
	case store.DriverSQLite, store.DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("store.driver %q is not supported", c.Store.Driver)
	}
	return nil
}

// Scenario looks up a scenario by name.
func (c *Config) Scenario(name string) (Scenario, bool) {
	for _, s := range c.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

func (c *Config) PlotsEnabled() bool { return c.Plots == nil || *c.Plots }

func (c *Config) SolverConfig() solver.Config {
	return solver.Config{
		Name:      c.Solver.Name,
		Binary:    c.Solver.Binary,
		TimeLimit: c.Solver.TimeLimit,
		KeepFiles: c.Solver.KeepFiles,
		WorkDir:   c.Solver.WorkDir,
		Tolerance: c.Solver.Tolerance,
	}
}

type scenarioFileWrapper struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

func loadScenarioFile(path string) ([]Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w scenarioFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	// workbooks in the scenario file are relative to that file
	dir := filepath.Dir(path)
	for i := range w.Scenarios {
		if w.Scenarios[i].Workbook != "" {
			w.Scenarios[i].Workbook = resolve(dir, w.Scenarios[i].Workbook)
		}
	}
	return w.Scenarios, nil
}

// MergeScenarios overlays override onto base by name: matching entries get
// the non-zero fields of the override, new names are appended.
func MergeScenarios(base, override []Scenario) []Scenario {
	out := append([]Scenario(nil), base...)
	for _, o := range override {
		idx := -1
		for i := range out {
			if out[i].Name == o.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			out = append(out, o)
			continue
		}
		out[idx] = MergeScenario(out[idx], o)
	}
	return out
}

// MergeScenario overlays non-zero fields from override onto base.
func MergeScenario(base, override Scenario) Scenario {
	out := base
	if override.Workbook != "" {
		out.Workbook = override.Workbook
	}
	if override.Tag != "" {
		out.Tag = override.Tag
	}
	if override.Hours != 0 {
		out.Hours = override.Hours
	}
	if override.Description != "" {
		out.Description = override.Description
	}
	return out
}
