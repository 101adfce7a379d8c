package catalog

import (
	"fmt"
	"math/rand/v2"

	"github.com/tatianab/dungeon-guardian/internal/models"
)

const (
	// MaxCombatDamage is the upper bound of the damage taken in one attack.
	MaxCombatDamage = 15
	// DefaultPlanningDamage is the rounded-up mean of a 0..MaxCombatDamage draw.
	DefaultPlanningDamage = 8

	healAmount      = 40
	maxPotionSearch = 3
)

// DefaultActions returns the guardian's six built-in actions. The planner
// assumes an attack costs planningDamage health; execution draws the damage
// uniformly from 0..MaxCombatDamage.
func DefaultActions(planningDamage int) []Action {
	return []Action{
		{
			ID:            HealSelf,
			Preconditions: Conditions{Is(HasPotion, Bool(true))},
			Effects: []Effect{
				Add(Health, healAmount, models.MaxHealth),
				Set(HasPotion, Bool(false)),
				Add(PotionCount, -1, -1),
			},
			Cost: 1,
		},
		{
			ID:            AttackEnemy,
			Preconditions: Conditions{Is(EnemyNearby, Bool(true)), AtLeast(Stamina, 5)},
			Effects: []Effect{
				Set(EnemyNearby, Bool(false)),
				Add(Stamina, -5, -1),
				Roll(Health, fmt.Sprintf("-= 0..%d", MaxCombatDamage),
					func(v Value) Value { return Value(clamp(int(v)-planningDamage, 0, models.MaxHealth)) },
					func(v Value, rng *rand.Rand) Value {
						return Value(clamp(int(v)-rng.IntN(MaxCombatDamage+1), 0, models.MaxHealth))
					}),
			},
			Cost: 2,
		},
		{
			ID:            Retreat,
			Preconditions: Conditions{Is(IsInSafeZone, Bool(false))},
			Effects: []Effect{
				Set(IsInSafeZone, Bool(true)),
				Set(EnemyNearby, Bool(false)),
				Add(Stamina, -2, -1),
			},
			Cost: 1,
		},
		{
			ID:            DefendTreasure,
			Preconditions: Conditions{OneOf(TreasureThreatLevel, Threat(models.ThreatMedium), Threat(models.ThreatHigh))},
			Effects: []Effect{
				Set(TreasureThreatLevel, Threat(models.ThreatLow)),
				Add(Stamina, -3, -1),
			},
			Cost: 2,
		},
		{
			ID:            CallBackup,
			Preconditions: Conditions{Is(BackupAvailable, Bool(true))},
			Effects: []Effect{
				Set(EnemyNearby, Bool(false)),
				Set(BackupAvailable, Bool(false)),
				Set(TreasureThreatLevel, Threat(models.ThreatLow)),
			},
			Cost: 3,
		},
		{
			ID:            SearchForPotion,
			Preconditions: Conditions{Below(PotionCount, maxPotionSearch)},
			Effects: []Effect{
				Set(HasPotion, Bool(true)),
				Add(PotionCount, 1, -1),
				Add(Stamina, -1, -1),
			},
			Cost: 1,
		},
	}
}

// Default builds the built-in catalog.
func Default(planningDamage int) (*Catalog, error) {
	if planningDamage < 0 || planningDamage > MaxCombatDamage {
		return nil, &DefinitionError{
			Subject: "planning damage",
			Reason:  fmt.Sprintf("%d is outside 0..%d", planningDamage, MaxCombatDamage),
		}
	}
	return NewCatalog(DefaultActions(planningDamage)...)
}
