// Package config loads the guardian's settings from defaults, an optional
// YAML file and GUARDIAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/tatianab/dungeon-guardian/internal/engine"
)

// Config holds the application configuration.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Simulation  SimulationConfig  `mapstructure:"simulation" yaml:"simulation"`
	Planner     PlannerConfig     `mapstructure:"planner" yaml:"planner"`
	Environment EnvironmentConfig `mapstructure:"environment" yaml:"environment"`
	Narrator    NarratorConfig    `mapstructure:"narrator" yaml:"narrator"`
}

type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // console or json
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

type SimulationConfig struct {
	MaxSteps     int    `mapstructure:"max_steps" yaml:"max_steps"`
	Seed         int64  `mapstructure:"seed" yaml:"seed"` // 0 picks a random seed
	ScenarioFile string `mapstructure:"scenario_file" yaml:"scenario_file"`
}

type PlannerConfig struct {
	MaxExpansions  int `mapstructure:"max_expansions" yaml:"max_expansions"`
	PlanningDamage int `mapstructure:"planning_damage" yaml:"planning_damage"`
}

type EnvironmentConfig struct {
	FailureRate            float64 `mapstructure:"failure_rate" yaml:"failure_rate"`
	EnemySpawnChance       float64 `mapstructure:"enemy_spawn_chance" yaml:"enemy_spawn_chance"`
	ThreatEscalationChance float64 `mapstructure:"threat_escalation_chance" yaml:"threat_escalation_chance"`
	SafeZoneRegen          int     `mapstructure:"safe_zone_regen" yaml:"safe_zone_regen"`
	StaminaCap             int     `mapstructure:"stamina_cap" yaml:"stamina_cap"`
}

type NarratorConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider"` // template or gemini
	Model    string `mapstructure:"model" yaml:"model"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
}

const (
	NarratorTemplate = "template"
	NarratorGemini   = "gemini"
)

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "guardian")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)

	v.SetDefault("simulation.max_steps", 15)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.scenario_file", "")

	v.SetDefault("planner.max_expansions", 5000)
	v.SetDefault("planner.planning_damage", 8)

	env := engine.DefaultConfig()
	v.SetDefault("environment.failure_rate", env.FailureRate)
	v.SetDefault("environment.enemy_spawn_chance", env.EnemySpawnChance)
	v.SetDefault("environment.threat_escalation_chance", env.ThreatEscalationChance)
	v.SetDefault("environment.safe_zone_regen", env.SafeZoneRegen)
	v.SetDefault("environment.stamina_cap", env.StaminaCap)

	v.SetDefault("narrator.provider", NarratorTemplate)
	v.SetDefault("narrator.model", "gemini-2.5-flash")
	v.SetDefault("narrator.api_key", "")
}

// Load reads path if given, or guardian.yaml from the working directory if
// present, applies environment overrides and validates the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("guardian")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("GUARDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The Gemini key keeps its conventional name.
	if err := v.BindEnv("narrator.api_key", "GUARDIAN_NARRATOR_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper decodes and validates whatever v currently holds.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	if c.Simulation.MaxSteps < 1 {
		return fmt.Errorf("simulation.max_steps must be a positive integer")
	}
	if c.Simulation.Seed < 0 {
		return fmt.Errorf("simulation.seed must not be negative")
	}
	if c.Planner.MaxExpansions < 1 {
		return fmt.Errorf("planner.max_expansions must be a positive integer")
	}
	if c.Planner.PlanningDamage < 0 {
		return fmt.Errorf("planner.planning_damage must not be negative")
	}
	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	switch c.Narrator.Provider {
	case NarratorTemplate:
	case NarratorGemini:
		if c.Narrator.APIKey == "" {
			return fmt.Errorf("narrator.provider gemini needs an API key (GEMINI_API_KEY)")
		}
	default:
		return fmt.Errorf("narrator.provider must be template or gemini, got %q", c.Narrator.Provider)
	}
	return nil
}

// EngineConfig converts the environment section for engine.New.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		FailureRate:            c.Environment.FailureRate,
		EnemySpawnChance:       c.Environment.EnemySpawnChance,
		ThreatEscalationChance: c.Environment.ThreatEscalationChance,
		SafeZoneRegen:          c.Environment.SafeZoneRegen,
		StaminaCap:             c.Environment.StaminaCap,
		Seed:                   uint64(c.Simulation.Seed),
	}
}
