package models

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ThreatLevel is the ordered danger level of the treasure.
type ThreatLevel int

const (
	ThreatLow ThreatLevel = iota
	ThreatMedium
	ThreatHigh
)

var threatNames = []string{"low", "medium", "high"}

func (t ThreatLevel) String() string {
	if t < ThreatLow || t > ThreatHigh {
		return fmt.Sprintf("ThreatLevel(%d)", int(t))
	}
	return threatNames[t]
}

// Valid reports whether t is one of the known levels.
func (t ThreatLevel) Valid() bool {
	return t >= ThreatLow && t <= ThreatHigh
}

// ParseThreatLevel maps "low", "medium" or "high" (any case) to a ThreatLevel.
func ParseThreatLevel(s string) (ThreatLevel, error) {
	for i, name := range threatNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return ThreatLevel(i), nil
		}
	}
	return ThreatLow, fmt.Errorf("unknown threat level %q", s)
}

func (t ThreatLevel) MarshalYAML() (interface{}, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal threat level %d", int(t))
	}
	return t.String(), nil
}

func (t *ThreatLevel) UnmarshalYAML(node *yaml.Node) error {
	level, err := ParseThreatLevel(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*t = level
	return nil
}

// WorldState is a snapshot of the guardian and its surroundings.
//
// It is a plain comparable value: copies never share memory, and two states
// with the same fields are equal under ==.
type WorldState struct {
	Health              int         `yaml:"health"`
	Stamina             int         `yaml:"stamina"`
	PotionCount         int         `yaml:"potion_count"`
	TreasureThreatLevel ThreatLevel `yaml:"treasure_threat_level"`
	EnemyNearby         bool        `yaml:"enemy_nearby"`
	IsInSafeZone        bool        `yaml:"is_in_safe_zone"`
	HasPotion           bool        `yaml:"has_potion"` // not synchronized with PotionCount
	BackupAvailable     bool        `yaml:"backup_available"`
}

const (
	MaxHealth  = 100
	MaxStamina = 20
)

// DefaultWorldState is a rested guardian in the safe zone with backup on call.
func DefaultWorldState() WorldState {
	return WorldState{
		Health:              MaxHealth,
		Stamina:             MaxStamina,
		TreasureThreatLevel: ThreatLow,
		IsInSafeZone:        true,
		BackupAvailable:     true,
	}
}

// Stable reports whether the guardian is healthy, alone, and the treasure is safe.
func (s WorldState) Stable() bool {
	return s.Health >= 70 && !s.EnemyNearby && s.TreasureThreatLevel == ThreatLow && s.IsInSafeZone
}

// Defeated reports whether the guardian has fallen.
func (s WorldState) Defeated() bool {
	return s.Health <= 0
}

func (s WorldState) String() string {
	return fmt.Sprintf("health=%d stamina=%d potions=%d threat=%s enemy=%t safe=%t has_potion=%t backup=%t",
		s.Health, s.Stamina, s.PotionCount, s.TreasureThreatLevel,
		s.EnemyNearby, s.IsInSafeZone, s.HasPotion, s.BackupAvailable)
}

// Scenario is a named starting position for a simulation.
type Scenario struct {
	Name          string              `yaml:"name"`
	Description   string              `yaml:"description,omitempty"`
	MaxSteps      int                 `yaml:"max_steps,omitempty"`
	State         WorldState          `yaml:"state"`
	GoalOverrides map[string][]string `yaml:"goal_overrides,omitempty"` // goal name -> expressions
}
