// Package goals decides what the guardian wants next and what achieving it
// looks like.
package goals

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tatianab/dungeon-guardian/internal/catalog"
	"github.com/tatianab/dungeon-guardian/internal/models"
)

// Goal is one of the guardian's four objectives.
type Goal int

const (
	Survive Goal = iota
	EliminateThreat
	ProtectTreasure
	PrepareForBattle
)

var goalNames = []string{"Survive", "EliminateThreat", "ProtectTreasure", "PrepareForBattle"}

// All lists the goals in priority order.
func All() []Goal {
	return []Goal{Survive, EliminateThreat, ProtectTreasure, PrepareForBattle}
}

func (g Goal) String() string {
	if g < Survive || g > PrepareForBattle {
		return fmt.Sprintf("Goal(%d)", int(g))
	}
	return goalNames[g]
}

// ParseGoal accepts a goal name in any case, with or without separators
// ("prepare-for-battle", "PrepareForBattle").
func ParseGoal(s string) (Goal, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.TrimSpace(s))
	for i, name := range goalNames {
		if strings.EqualFold(norm, name) {
			return Goal(i), nil
		}
	}
	return 0, fmt.Errorf("unknown goal %q (want one of %s)", s, strings.Join(goalNames, ", "))
}

const criticalHealth = 30

// SelectGoal picks the goal for s. The first matching rule wins.
func SelectGoal(s models.WorldState) Goal {
	switch {
	case s.Health <= criticalHealth:
		return Survive
	case s.TreasureThreatLevel == models.ThreatHigh && s.EnemyNearby:
		return EliminateThreat
	case s.TreasureThreatLevel >= models.ThreatMedium:
		return ProtectTreasure
	default:
		return PrepareForBattle
	}
}

// Predicate returns the built-in conditions that satisfy g.
func Predicate(g Goal) catalog.Conditions {
	switch g {
	case Survive:
		return catalog.Conditions{
			catalog.AtLeast(catalog.Health, 50),
			catalog.Is(catalog.IsInSafeZone, catalog.Bool(true)),
		}
	case EliminateThreat:
		return catalog.Conditions{
			catalog.Is(catalog.EnemyNearby, catalog.Bool(false)),
			catalog.Is(catalog.TreasureThreatLevel, catalog.Threat(models.ThreatLow)),
		}
	case ProtectTreasure:
		return catalog.Conditions{
			catalog.Is(catalog.TreasureThreatLevel, catalog.Threat(models.ThreatLow)),
		}
	case PrepareForBattle:
		return catalog.Conditions{
			catalog.AtLeast(catalog.Stamina, 15),
			catalog.Is(catalog.HasPotion, catalog.Bool(true)),
		}
	}
	return nil
}

// Selector pairs goal selection with predicates, some of which may be
// replaced by a scenario.
type Selector struct {
	predicates map[Goal]catalog.Conditions
}

// NewSelector builds a selector. overrides maps a goal name to expressions
// that replace its built-in predicate; they are compiled and checked here so
// a bad scenario fails before any search runs.
func NewSelector(overrides map[string][]string) (*Selector, error) {
	sel := &Selector{predicates: make(map[Goal]catalog.Conditions, len(goalNames))}
	for _, g := range All() {
		sel.predicates[g] = Predicate(g)
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		g, err := ParseGoal(name)
		if err != nil {
			return nil, fmt.Errorf("goal override: %w", err)
		}
		var cs catalog.Conditions
		for _, source := range overrides[name] {
			c, err := catalog.Expr(source)
			if err != nil {
				return nil, fmt.Errorf("goal override %s: %w", g, err)
			}
			cs = append(cs, c)
		}
		if err := catalog.ValidateConditions("goal "+g.String(), cs); err != nil {
			return nil, err
		}
		sel.predicates[g] = cs
	}
	return sel, nil
}

// Select is SelectGoal.
func (s *Selector) Select(state models.WorldState) Goal {
	return SelectGoal(state)
}

// Predicate returns the conditions in effect for g.
func (s *Selector) Predicate(g Goal) catalog.Conditions {
	return s.predicates[g]
}
