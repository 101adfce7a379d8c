// Package engine is the guardian's world: it carries out actions with a
// chance of failure and random combat damage, and moves the world along
// between turns.
package engine

import (
	"fmt"
	"math/rand/v2"

	"github.com/tatianab/dungeon-guardian/internal/catalog"
	"github.com/tatianab/dungeon-guardian/internal/models"
	"go.uber.org/zap"
)

// Config tunes the environment's randomness.
type Config struct {
	FailureRate            float64
	EnemySpawnChance       float64
	ThreatEscalationChance float64
	SafeZoneRegen          int
	StaminaCap             int
	Seed                   uint64 // 0 picks a random seed
}

func DefaultConfig() Config {
	return Config{
		FailureRate:            0.1,
		EnemySpawnChance:       0.2,
		ThreatEscalationChance: 0.15,
		SafeZoneRegen:          2,
		StaminaCap:             models.MaxStamina,
	}
}

// Validate checks probabilities and bounds.
func (c Config) Validate() error {
	for name, p := range map[string]float64{
		"failure rate":             c.FailureRate,
		"enemy spawn chance":       c.EnemySpawnChance,
		"threat escalation chance": c.ThreatEscalationChance,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s %.2f outside 0..1", name, p)
		}
	}
	if c.SafeZoneRegen < 0 {
		return fmt.Errorf("safe zone regen %d is negative", c.SafeZoneRegen)
	}
	if c.StaminaCap < 1 {
		return fmt.Errorf("stamina cap %d is below 1", c.StaminaCap)
	}
	return nil
}

// Environment is not safe for concurrent use; each simulation owns one.
type Environment struct {
	cfg    Config
	seed   uint64
	rng    *rand.Rand
	logger *zap.Logger
}

type Option func(*Environment)

func WithLogger(l *zap.Logger) Option {
	return func(e *Environment) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(cfg Config, opts ...Option) *Environment {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	e := &Environment{
		cfg:    cfg,
		seed:   seed,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Seed returns the seed in use, so a run can be reproduced.
func (e *Environment) Seed() uint64 { return e.seed }

var failureMessages = map[catalog.ActionID]string{
	catalog.HealSelf:        "The potion slipped and shattered on the stones.",
	catalog.AttackEnemy:     "The strike missed and the enemy stands firm.",
	catalog.Retreat:         "The way back to the sanctuary was blocked.",
	catalog.DefendTreasure:  "The raiders slipped past the guard.",
	catalog.CallBackup:      "The horn call went unanswered.",
	catalog.SearchForPotion: "The search turned up nothing but dust.",
}

var successMessages = map[catalog.ActionID]string{
	catalog.HealSelf:        "Drank a potion and felt strength return.",
	catalog.AttackEnemy:     "Drove the enemy off.",
	catalog.Retreat:         "Fell back to the safe zone.",
	catalog.DefendTreasure:  "Secured the treasure.",
	catalog.CallBackup:      "Reinforcements arrived and cleared the halls.",
	catalog.SearchForPotion: "Found a potion.",
}

// Execute carries out a in state s. On failure the state is returned
// unchanged.
func (e *Environment) Execute(a catalog.Action, s models.WorldState) (bool, string, models.WorldState) {
	if !a.Applicable(s) {
		e.logger.Debug("Action not applicable", zap.String("action", string(a.ID)))
		return false, "Preconditions not met.", s
	}
	if e.rng.Float64() < e.cfg.FailureRate {
		msg, ok := failureMessages[a.ID]
		if !ok {
			msg = fmt.Sprintf("%s failed.", a.ID)
		}
		e.logger.Debug("Action failed", zap.String("action", string(a.ID)))
		return false, msg, s
	}

	next := a.Perform(s, e.rng)
	msg, ok := successMessages[a.ID]
	if !ok {
		msg = fmt.Sprintf("%s succeeded.", a.ID)
	}
	if a.ID == catalog.AttackEnemy && next.Health < s.Health {
		msg = fmt.Sprintf("%s Took %d damage.", msg, s.Health-next.Health)
	}
	return true, msg, next
}

// Drift applies one turn of background change: an enemy may show up, the
// threat to the treasure may rise one level, and resting in the safe zone
// restores stamina.
func (e *Environment) Drift(s models.WorldState) models.WorldState {
	next := s
	if !next.EnemyNearby && e.rng.Float64() < e.cfg.EnemySpawnChance {
		next.EnemyNearby = true
		e.logger.Debug("Enemy appeared")
	}
	if next.TreasureThreatLevel < models.ThreatHigh && e.rng.Float64() < e.cfg.ThreatEscalationChance {
		next.TreasureThreatLevel++
		e.logger.Debug("Threat escalated", zap.Stringer("threat", next.TreasureThreatLevel))
	}
	if next.IsInSafeZone && next.Stamina < e.cfg.StaminaCap {
		next.Stamina = min(e.cfg.StaminaCap, next.Stamina+e.cfg.SafeZoneRegen)
	}
	return next
}
