package catalog

import (
	"math/rand/v2"

	"github.com/tatianab/dungeon-guardian/internal/models"
)

// ActionID identifies an action in a catalog.
type ActionID string

const (
	HealSelf        ActionID = "HealSelf"
	AttackEnemy     ActionID = "AttackEnemy"
	Retreat         ActionID = "Retreat"
	DefendTreasure  ActionID = "DefendTreasure"
	CallBackup      ActionID = "CallBackup"
	SearchForPotion ActionID = "SearchForPotion"
)

// Action is an immutable (preconditions, effects, cost) triple.
type Action struct {
	ID            ActionID
	Preconditions Conditions
	Effects       []Effect
	Cost          int
}

// Applicable reports whether every precondition holds for s.
func (a Action) Applicable(s models.WorldState) bool {
	return a.Preconditions.Satisfied(s)
}

// Apply returns the deterministic successor of s. Every effect reads the
// pre-effect state, so effect order does not matter.
func (a Action) Apply(s models.WorldState) models.WorldState {
	next := s
	for _, e := range a.Effects {
		next = e.field.Set(next, e.plan(e.field.Get(s)))
	}
	return next
}

// Perform is Apply with random effects drawn from rng.
func (a Action) Perform(s models.WorldState, rng *rand.Rand) models.WorldState {
	next := s
	for _, e := range a.Effects {
		next = e.field.Set(next, e.perform(e.field.Get(s), rng))
	}
	return next
}
