package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, 15, cfg.Simulation.MaxSteps)
	assert.Equal(t, 5000, cfg.Planner.MaxExpansions)
	assert.Equal(t, 8, cfg.Planner.PlanningDamage)
	assert.InDelta(t, 0.1, cfg.Environment.FailureRate, 1e-9)
	assert.Equal(t, 20, cfg.Environment.StaminaCap)
	assert.Equal(t, NarratorTemplate, cfg.Narrator.Provider)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guardian.yaml")
	doc := `
simulation:
  max_steps: 25
  seed: 42
environment:
  failure_rate: 0.0
narrator:
  provider: gemini
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	t.Setenv("GUARDIAN_PLANNER_MAX_EXPANSIONS", "200")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Simulation.MaxSteps)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)
	assert.Equal(t, 200, cfg.Planner.MaxExpansions)
	assert.Equal(t, "secret", cfg.Narrator.APIKey)
	assert.Zero(t, cfg.Environment.FailureRate)
	assert.Equal(t, uint64(42), cfg.EngineConfig().Seed)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		v := viper.New()
		SetDefaults(v)
		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Logger.Format = "xml" }},
		{"steps", func(c *Config) { c.Simulation.MaxSteps = 0 }},
		{"seed", func(c *Config) { c.Simulation.Seed = -1 }},
		{"expansions", func(c *Config) { c.Planner.MaxExpansions = 0 }},
		{"damage", func(c *Config) { c.Planner.PlanningDamage = -3 }},
		{"failure rate", func(c *Config) { c.Environment.FailureRate = 2 }},
		{"stamina cap", func(c *Config) { c.Environment.StaminaCap = 0 }},
		{"provider", func(c *Config) { c.Narrator.Provider = "oracle" }},
		{"gemini without key", func(c *Config) { c.Narrator.Provider = NarratorGemini; c.Narrator.APIKey = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, valid().Validate())
}
