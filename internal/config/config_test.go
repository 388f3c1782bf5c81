package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"energy-expansion/internal/solver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsAndResolution(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data/input_50.xlsx", "x")
	path := writeFile(t, dir, "config.yaml", `
solver:
  name: simplex
  time_limit: 90s
scenarios:
  - name: biomass_50
    workbook: data/input_50.xlsx
    hours: 48
  - name: elsewhere
    workbook: not/here.xlsx
    tag: other
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputDir, c.OutputDir)
	assert.True(t, c.PlotsEnabled())
	assert.False(t, c.PDF)
	assert.Equal(t, solver.NameSimplex, c.Solver.Name)
	assert.Equal(t, DefaultBinary, c.Solver.Binary)
	assert.Equal(t, 90*time.Second, c.Solver.TimeLimit)

	s, ok := c.Scenario("biomass_50")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "data/input_50.xlsx"), s.Workbook)
	assert.Equal(t, "biomass_50", s.Tag)
	assert.Equal(t, 48, s.Hours)

	s, ok = c.Scenario("elsewhere")
	require.True(t, ok)
	assert.Equal(t, "not/here.xlsx", s.Workbook, "falls back to the cwd relative path")
	assert.Equal(t, "other", s.Tag)

	_, ok = c.Scenario("nope")
	assert.False(t, ok)

	sc := c.SolverConfig()
	assert.Equal(t, solver.NameSimplex, sc.Name)
	assert.Equal(t, 90*time.Second, sc.TimeLimit)
}

func TestLoad_ScenarioFileMerge(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scenarios/wb.xlsx", "x")
	writeFile(t, dir, "scenarios/all.yaml", `
scenarios:
  - name: base
    workbook: wb.xlsx
    description: exercise workbook
  - name: biomass_25
    workbook: wb.xlsx
    tag: "25"
`)
	path := writeFile(t, dir, "config.yaml", `
plots: false
scenario_file: scenarios/all.yaml
scenarios:
  - name: base
    hours: 24
  - name: extra
    workbook: x.xlsx
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.False(t, c.PlotsEnabled())
	require.Len(t, c.Scenarios, 3)

	base := c.Scenarios[0]
	assert.Equal(t, "base", base.Name)
	assert.Equal(t, filepath.Join(dir, "scenarios", "wb.xlsx"), base.Workbook)
	assert.Equal(t, 24, base.Hours)
	assert.Equal(t, "exercise workbook", base.Description)
	assert.Equal(t, "25", c.Scenarios[1].Tag)
	assert.Equal(t, "extra", c.Scenarios[2].Name)
}

func TestValidate(t *testing.T) {
	ok := func() *Config {
		c := &Config{Scenarios: []Scenario{{Name: "a", Workbook: "a.xlsx"}}}
		c.ApplyDefaults()
		return c
	}
	require.NoError(t, ok().Validate())

	cases := map[string]func(c *Config){
		"no scenarios":   func(c *Config) { c.Scenarios = nil },
		"missing name":   func(c *Config) { c.Scenarios[0].Name = " " },
		"duplicate":      func(c *Config) { c.Scenarios = append(c.Scenarios, c.Scenarios[0]) },
		"no workbook":    func(c *Config) { c.Scenarios[0].Workbook = "" },
		"negative hours": func(c *Config) { c.Scenarios[0].Hours = -1 },
		"bad solver":     func(c *Config) { c.Solver.Name = "gurobi" },
		"bad time limit": func(c *Config) { c.Solver.TimeLimit = -time.Second },
		"bad tolerance":  func(c *Config) { c.Solver.Tolerance = -1 },
		"store no dsn":   func(c *Config) { c.Store.Driver = "sqlite" },
		"bad store":      func(c *Config) { c.Store = StoreConfig{Driver: "mongo", DSN: "x"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := ok()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", "scenarios: [")
	_, err = Load(path)
	assert.Error(t, err)

	path = writeFile(t, dir, "ref.yaml", "scenario_file: nowhere.yaml\n")
	_, err = LoadUnchecked(path)
	assert.Error(t, err)
}

func TestExampleConfig(t *testing.T) {
	c, err := LoadUnchecked(filepath.Join("..", "..", "examples", "config.yaml"))
	require.NoError(t, err)
	c.ApplyDefaults()
	require.NoError(t, c.Validate())

	names := []string{}
	for _, s := range c.Scenarios {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"base", "biomass_50", "param_change", "biomass_25", "biomass_100"}, names)
}

func TestServerFromEnv(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("API_ENV", "production")
	t.Setenv("API_CONFIG", "")
	t.Setenv("API_JWT_SECRET", "s3cret")
	t.Setenv("API_CORS_ORIGINS", "http://a.test, ,http://b.test")

	s := ServerFromEnv()
	assert.Equal(t, "8080", s.Port)
	assert.True(t, s.Production())
	assert.Equal(t, "examples/config.yaml", s.ConfigPath)
	assert.Equal(t, "s3cret", s.JWTSecret)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, s.CORSOrigins)
}
